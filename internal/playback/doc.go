// Package playback advances the timeline playhead.
//
// The scheduler is externally driven: a UI animation-frame loop (or the
// Run ticker for headless use) supplies one elapsed wall-clock delta per
// tick, and the scheduler writes the next playhead position back through
// the same mutation API manual scrubbing uses. Each tick is bounded,
// non-blocking work; pausing is just state, no cancellation tokens.
//
// Duration growth at the timeline's tail is the scheduler's decision,
// not SetCurrentTime's. This split keeps a single extension per tick:
// the model clamps, the scheduler grows.
package playback
