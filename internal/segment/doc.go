// Package segment implements the window transforms that stand in for a
// codec's transform stage.
//
// Four modes are available:
//
//   - PassThrough copies the first target bytes verbatim.
//   - Sample picks one representative byte per window.
//   - Average emits the rounded mean of each window.
//   - Scale remaps each byte by a rational factor, clamped to [0,255].
//
// Sample and Average walk the input with a fixed stride of
// max(1, floor(n/target)) bytes. Window j starts at j*stride, so when
// n >= target exactly target bytes are produced and the n mod target bytes
// after the last window are dropped. When n < target the input is shorter
// than the budget and n bytes are produced. At target == n both modes are
// the identity.
//
// All functions are pure: they read the input, write only into the output
// buffer handed to them, and check the output capacity before writing the
// first byte.
package segment
