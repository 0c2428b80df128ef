// Package container implements byte-range container operations: trim,
// merge and split.
//
// The operations treat buffers as opaque byte ranges. They never parse
// container structure; where a format needs a header dropped during a
// merge, the caller supplies a SkipPrefixFunc.
//
// # Trim
//
// Trim copies [start, min(start+length, len)) into the output buffer.
// A start past the end of the input fails with RangeOutOfBounds, while an
// empty range inside the input is a valid empty result.
//
// # Merge
//
// Merge concatenates items in order. The total size after header skipping
// is checked against the output capacity before any byte is written:
//
//	skip := container.HeaderSkipper([]byte("%PDF-"), container.FirstLine)
//	err := container.Merge(items, out, skip)
//
// # Split
//
// Split partitions a buffer into n contiguous parts of floor(len/n) bytes,
// with the remainder appended to the last part. Merging the parts in order
// reproduces the input exactly.
package container
