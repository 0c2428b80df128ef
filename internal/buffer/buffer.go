package buffer

import "media-pipeline/internal/pipeerr"

// ByteBuffer is an owned, fixed-capacity byte sequence. The zero value is
// an empty buffer with capacity 0.
type ByteBuffer struct {
	data   []byte
	length int
}

// Acquire returns a zero-initialised buffer with the given capacity.
func Acquire(capacity int) (*ByteBuffer, error) {
	if capacity < 0 {
		return nil, pipeerr.New(pipeerr.KindInvalidInput, "buffer.Acquire", "negative capacity %d", capacity)
	}
	return &ByteBuffer{data: make([]byte, capacity)}, nil
}

// Cap returns the fixed capacity.
func (b *ByteBuffer) Cap() int {
	return len(b.data)
}

// Len returns the number of bytes written so far.
func (b *ByteBuffer) Len() int {
	return b.length
}

// Available returns how many bytes can still be appended.
func (b *ByteBuffer) Available() int {
	return len(b.data) - b.length
}

// Bytes returns the written region. The slice aliases the buffer.
func (b *ByteBuffer) Bytes() []byte {
	return b.data[:b.length:b.length]
}

// WriteAt copies p into the buffer at offset. The length becomes
// max(Len(), offset+len(p)).
func (b *ByteBuffer) WriteAt(offset int, p []byte) error {
	if offset < 0 {
		return pipeerr.New(pipeerr.KindInvalidInput, "buffer.WriteAt", "negative offset %d", offset)
	}
	end := offset + len(p)
	if end > len(b.data) || end < offset {
		return pipeerr.CapacityExceeded("buffer.WriteAt", end, len(b.data))
	}
	copy(b.data[offset:end], p)
	if end > b.length {
		b.length = end
	}
	return nil
}

// Append writes p after the current length.
func (b *ByteBuffer) Append(p []byte) error {
	return b.WriteAt(b.length, p)
}

// AppendByte writes a single byte after the current length.
func (b *ByteBuffer) AppendByte(c byte) error {
	if b.length >= len(b.data) {
		return pipeerr.CapacityExceeded("buffer.AppendByte", b.length+1, len(b.data))
	}
	b.data[b.length] = c
	b.length++
	return nil
}

// Reserve checks that n more bytes would fit without writing anything.
func (b *ByteBuffer) Reserve(n int) error {
	if n < 0 {
		return pipeerr.New(pipeerr.KindInvalidInput, "buffer.Reserve", "negative size %d", n)
	}
	if b.length+n > len(b.data) {
		return pipeerr.CapacityExceeded("buffer.Reserve", b.length+n, len(b.data))
	}
	return nil
}

// Truncate shrinks the length to n. Growing is not allowed.
func (b *ByteBuffer) Truncate(n int) error {
	if n < 0 || n > b.length {
		return pipeerr.New(pipeerr.KindInvalidInput, "buffer.Truncate", "length %d outside [0,%d]", n, b.length)
	}
	clear(b.data[n:b.length])
	b.length = n
	return nil
}

// Reset zeroes the written region and sets the length to 0.
func (b *ByteBuffer) Reset() {
	clear(b.data[:b.length])
	b.length = 0
}

// Detach returns a copy of the written region sized exactly to Len().
// Results leave the pipeline through Detach so that no caller keeps a
// reference into a pipeline-owned buffer.
func (b *ByteBuffer) Detach() []byte {
	out := make([]byte, b.length)
	copy(out, b.data[:b.length])
	return out
}
