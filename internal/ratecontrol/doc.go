// Package ratecontrol maps a quality parameter and an input size to a
// target output size.
//
// The policy is linear: a quality of q keeps q percent of the input,
// rounded half up, and the result is capped at the output capacity. For a
// fixed input length and capacity the target never decreases as quality
// increases. A computed target of zero is an error (KindZeroTargetSize)
// rather than an empty result, so that stride computations downstream never
// divide by zero.
package ratecontrol
