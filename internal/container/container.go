package container

import (
	"bytes"

	"media-pipeline/internal/buffer"
	"media-pipeline/internal/pipeerr"
)

// SkipPrefixFunc returns how many leading bytes of items[i] a merge drops.
type SkipPrefixFunc func(i int, item []byte) int

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns End-Start.
func (r Range) Len() int {
	return r.End - r.Start
}

// TrimRange resolves a trim request against an input of n bytes.
func TrimRange(n, start, length int) (Range, error) {
	const op = "container.Trim"
	if start < 0 || length < 0 {
		return Range{}, pipeerr.New(pipeerr.KindInvalidInput, op, "negative range start=%d length=%d", start, length)
	}
	if start > n {
		return Range{}, pipeerr.New(pipeerr.KindRangeOutOfBounds, op, "start %d beyond input length %d", start, n)
	}
	end := n
	if length < n-start {
		end = start + length
	}
	return Range{Start: start, End: end}, nil
}

// Trim writes the bytes of in that fall into [start, start+length) to out.
// It returns the number of bytes written, which may be zero.
func Trim(in []byte, start, length int, out *buffer.ByteBuffer) (int, error) {
	r, err := TrimRange(len(in), start, length)
	if err != nil {
		return 0, err
	}
	if out == nil {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, "container.Trim", "nil output buffer")
	}
	if err := out.Append(in[r.Start:r.End]); err != nil {
		return 0, err
	}
	return r.Len(), nil
}

// Merge concatenates items into out in order. When skip is non-nil the
// number of bytes it returns is dropped from the front of each item.
// Nothing is written unless the whole result fits.
func Merge(items [][]byte, out *buffer.ByteBuffer, skip SkipPrefixFunc) (int, error) {
	const op = "container.Merge"
	if len(items) == 0 {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "no items to merge")
	}
	if out == nil {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "nil output buffer")
	}

	offsets := make([]int, len(items))
	total := 0
	for i, item := range items {
		if skip != nil {
			n := skip(i, item)
			if n < 0 || n > len(item) {
				return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "skip %d out of range for item %d of %d bytes", n, i, len(item))
			}
			offsets[i] = n
		}
		total += len(item) - offsets[i]
	}
	if err := out.Reserve(total); err != nil {
		return 0, err
	}

	for i, item := range items {
		if err := out.Append(item[offsets[i]:]); err != nil {
			return 0, err
		}
	}
	return total, nil
}

// HeaderSkipper returns a SkipPrefixFunc that, for every item after the
// first that starts with prefix, skips headerLen(item) bytes.
func HeaderSkipper(prefix []byte, headerLen func(item []byte) int) SkipPrefixFunc {
	return func(i int, item []byte) int {
		if i == 0 || !bytes.HasPrefix(item, prefix) {
			return 0
		}
		return headerLen(item)
	}
}

// FirstLine returns the length of the first line of b including its
// terminator ("\n", "\r" or "\r\n"). Without a terminator it returns len(b).
func FirstLine(b []byte) int {
	i := bytes.IndexAny(b, "\r\n")
	if i < 0 {
		return len(b)
	}
	if b[i] == '\r' && i+1 < len(b) && b[i+1] == '\n' {
		return i + 2
	}
	return i + 1
}

// SplitRanges partitions n bytes into parts contiguous ranges.
func SplitRanges(n, parts int) ([]Range, error) {
	if parts <= 0 || parts > n {
		return nil, pipeerr.New(pipeerr.KindInvalidPartitionCount, "container.Split", "cannot split %d bytes into %d parts", n, parts)
	}
	size := n / parts
	ranges := make([]Range, parts)
	for i := range ranges {
		ranges[i] = Range{Start: i * size, End: (i + 1) * size}
	}
	ranges[parts-1].End = n
	return ranges, nil
}

// Split copies in into parts contiguous pieces. The returned slices do not
// alias in.
func Split(in []byte, parts int) ([][]byte, error) {
	ranges, err := SplitRanges(len(in), parts)
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(ranges))
	for i, r := range ranges {
		out[i] = bytes.Clone(in[r.Start:r.End])
	}
	return out, nil
}
