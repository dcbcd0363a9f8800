package timeline

import "github.com/google/uuid"

// IDGenerator generates unique entity ids for layers, keyframes, and
// tweens. Implemented by UUIDv7Generator (production) and
// testutil.SequenceIDs (tests).
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 ids.
//
// UUIDv7 embeds a timestamp in the most significant bits, so ids created
// later sort later. That keeps serialized documents roughly in creation
// order, which is convenient when diffing them.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
