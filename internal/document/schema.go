package document

import (
	_ "embed"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"

	"github.com/keyline/keyline/internal/timeline"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error
)

// loadSchema compiles the embedded schema once. A compile failure here
// is a programming error in schema.cue, not a user input problem.
func loadSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		compiled := schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := compiled.Err(); err != nil {
			schemaErr = fmt.Errorf("compiling timeline schema: %w", err)
			return
		}
		schemaDef = compiled.LookupPath(cue.ParsePath("#Timeline"))
		if err := schemaDef.Err(); err != nil {
			schemaErr = fmt.Errorf("looking up #Timeline: %w", err)
		}
	})
	return schemaCtx, schemaDef, schemaErr
}

// validateDocument checks the raw document bytes against the timeline
// schema and returns the data re-encoded as JSON, ready for the model's
// own decode and invariant re-validation.
//
// Schema violations come back as MALFORMED_STATE errors carrying the
// CUE diagnostics, file positions included.
func validateDocument(filename string, data []byte, format Format) ([]byte, error) {
	ctx, schema, err := loadSchema()
	if err != nil {
		return nil, err
	}

	var val cue.Value
	switch format {
	case FormatJSON:
		expr, err := cuejson.Extract(filename, data)
		if err != nil {
			return nil, timeline.NewMalformedStateError("cannot parse JSON document", err)
		}
		val = ctx.BuildExpr(expr)
	case FormatYAML:
		file, err := cueyaml.Extract(filename, data)
		if err != nil {
			return nil, timeline.NewMalformedStateError("cannot parse YAML document", err)
		}
		val = ctx.BuildFile(file)
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}
	if err := val.Err(); err != nil {
		return nil, timeline.NewMalformedStateError("cannot build document value", err)
	}

	unified := schema.Unify(val)
	if err := unified.Validate(cue.Concrete(true), cue.Final()); err != nil {
		detail := cueerrors.Details(err, nil)
		return nil, timeline.NewMalformedStateError("document violates timeline schema:\n"+detail, err)
	}

	jsonBytes, err := val.MarshalJSON()
	if err != nil {
		return nil, timeline.NewMalformedStateError("cannot re-encode document", err)
	}
	return jsonBytes, nil
}
