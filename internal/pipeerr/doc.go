// Package pipeerr defines the failure kinds shared by every stage of the
// transform pipeline.
//
// Each stage validates its own preconditions and returns an *Error carrying
// a Kind. Callers match kinds with errors.Is against the exported sentinels
// or extract them with KindOf:
//
//	if errors.Is(err, pipeerr.ErrCapacityExceeded) {
//	    // pre-size the output buffer and retry
//	}
//
// Errors are always returned as values. No stage truncates output to make
// a request fit, and no stage recovers from a failure of another stage.
package pipeerr
