// Package document reads and writes timeline document files.
//
// Documents are the serialized timeline state in JSON or YAML. Every
// load runs two validation layers before any state is accepted:
//
//  1. the embedded CUE schema (shape, types, value ranges), which
//     yields diagnostics with file positions
//  2. the model's own invariant re-validation (unique ids, referential
//     integrity, acyclic parent links) on the decoded state
//
// Both layers report MALFORMED_STATE; a failing document never
// partially applies.
package document
