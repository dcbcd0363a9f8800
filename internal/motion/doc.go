// Package motion provides the value model and interpolation math for
// animated properties.
//
// This package contains the property value types and the pure functions
// that blend them. All other internal packages import motion; motion
// imports nothing internal. This keeps the interpolation layer free of
// model state and usable on plain snapshots.
//
// Key design constraints:
//   - Property values are a sealed tagged union (Number, Color, Text, Bool);
//     interpolation dispatches on the tag, never on reflection.
//   - Easing functions are pure and total on [0,1] -> [0,1]; unknown names
//     resolve to linear rather than failing.
//   - An unparseable color never fails a blend; it degrades to a discrete
//     switch and logs a warning.
package motion
