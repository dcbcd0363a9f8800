package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keyline/keyline/internal/document"
	"github.com/keyline/keyline/internal/timeline"
)

// InspectLayer is one row of the inspect report's layer tree.
type InspectLayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Indent    int    `json:"indent"`
	Group     bool   `json:"group"`
	Visible   bool   `json:"visible"`
	Locked    bool   `json:"locked"`
	Keyframes int    `json:"keyframes"`
	Tweens    int    `json:"tweens"`
}

// InspectReport summarizes a timeline document.
type InspectReport struct {
	File        string         `json:"file"`
	Duration    float64        `json:"duration"`
	CurrentTime float64        `json:"currentTime"`
	TimeScale   float64        `json:"timeScale"`
	LayerCount  int            `json:"layerCount"`
	Keyframes   int            `json:"keyframeCount"`
	Tweens      int            `json:"tweenCount"`
	Layers      []InspectLayer `json:"layers"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Summarize a timeline document",
		Long: `Print a summary of a timeline document: duration, playhead, and the
layer tree with per-layer keyframe and tween counts. Collapsed groups
still list their children; inspect shows the whole tree.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runInspect(opts *RootOptions, file string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	m, err := loadDocument(formatter, file)
	if err != nil {
		return err
	}

	report := buildInspectReport(file, m)

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "%s\n", report.File)
	fmt.Fprintf(formatter.Writer, "  duration:  %g\n", report.Duration)
	fmt.Fprintf(formatter.Writer, "  playhead:  %g\n", report.CurrentTime)
	fmt.Fprintf(formatter.Writer, "  timeScale: %g\n", report.TimeScale)
	fmt.Fprintf(formatter.Writer, "  layers:    %d (%d keyframes, %d tweens)\n",
		report.LayerCount, report.Keyframes, report.Tweens)
	for _, row := range report.Layers {
		marks := ""
		if row.Group {
			marks += " [group]"
		}
		if !row.Visible {
			marks += " [hidden]"
		}
		if row.Locked {
			marks += " [locked]"
		}
		fmt.Fprintf(formatter.Writer, "  %s%s (%s)%s: %d kf, %d tween\n",
			strings.Repeat("  ", row.Indent+1), row.Name, row.ID, marks, row.Keyframes, row.Tweens)
	}
	return nil
}

func buildInspectReport(file string, m *timeline.Model) InspectReport {
	report := InspectReport{
		File:        file,
		Duration:    m.Duration(),
		CurrentTime: m.CurrentTime(),
		TimeScale:   m.TimeScale(),
	}

	layers := m.Layers()
	children := make(map[string][]*timeline.Layer)
	for _, layer := range layers {
		report.LayerCount++
		report.Keyframes += len(layer.Keyframes)
		report.Tweens += len(layer.Tweens)
		children[layer.ParentID] = append(children[layer.ParentID], layer)
	}
	for _, siblings := range children {
		sort.Slice(siblings, func(i, j int) bool { return siblings[i].Index < siblings[j].Index })
	}

	// Walk the whole tree, collapsed groups included; inspect differs
	// from LayersWithIndentation in that nothing is hidden.
	var walk func(parentID string, indent int)
	walk = func(parentID string, indent int) {
		for _, layer := range children[parentID] {
			report.Layers = append(report.Layers, InspectLayer{
				ID:        layer.ID,
				Name:      layer.Name,
				Indent:    indent,
				Group:     len(children[layer.ID]) > 0,
				Visible:   layer.Visible,
				Locked:    layer.Locked,
				Keyframes: len(layer.Keyframes),
				Tweens:    len(layer.Tweens),
			})
			walk(layer.ID, indent+1)
		}
	}
	walk("", 0)
	return report
}

// loadDocument loads a document for a command, mapping failures to exit
// codes: malformed documents are document failures, anything else
// (missing file, bad extension) is a command error.
func loadDocument(formatter *OutputFormatter, file string) (*timeline.Model, error) {
	m, err := document.Load(file)
	if err != nil {
		code := ExitCommandError
		errCode := "COMMAND_ERROR"
		if timeline.IsMalformedState(err) {
			code = ExitFailure
			errCode = string(timeline.ErrCodeMalformedState)
		}
		_ = formatter.Error(errCode, err.Error(), nil)
		return nil, WrapExitError(code, fmt.Sprintf("loading %s", file), err)
	}
	return m, nil
}
