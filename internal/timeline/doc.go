// Package timeline implements the timeline data model: layers, their
// keyframes and motion tweens, the group hierarchy, the playhead clock
// fields, and selection state.
//
// ARCHITECTURE:
//
// Model is the single authoritative owner of timeline state. Every edit
// goes through a Model mutation call, which validates first and mutates
// only when the whole operation can succeed; a failed call leaves state
// untouched. Consumers (rendering layers, toolbars, the playback
// scheduler) hold no copy of the state - they re-query derived views
// after each change notification.
//
// Change notification contract:
//   - one or more structured Events per mutation call
//   - delivered synchronously, in subscription order, strictly after
//     the mutation is fully applied and strictly before the call returns
//   - no coalescing; listener-triggered mutation cycles are the
//     caller's responsibility
//
// Snapshot discipline:
// Every query returns clones or owned copies, never live aliases into
// model state. A consumer iterating a previous snapshot is unaffected
// by later mutations.
//
// Group semantics are derived, not stored: a layer is a group iff other
// layers reference it as their ParentID. The one invariant-critical
// check is cycle prevention on reparenting, re-verified on every
// UpdateLayer call that changes ParentID.
package timeline
