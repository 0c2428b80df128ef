package container

import (
	"bytes"
	"errors"
	"testing"

	"media-pipeline/internal/buffer"
	"media-pipeline/internal/pipeerr"

	"github.com/google/go-cmp/cmp"
)

func seq(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func mustAcquire(t *testing.T, capacity int) *buffer.ByteBuffer {
	t.Helper()
	b, err := buffer.Acquire(capacity)
	if err != nil {
		t.Fatalf("Acquire(%d): %v", capacity, err)
	}
	return b
}

func TestTrim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       []byte
		start    int
		length   int
		capacity int
		want     []byte
		wantErr  error
	}{
		{name: "middle", in: seq(10), start: 2, length: 3, capacity: 10, want: []byte{2, 3, 4}},
		{name: "clipped at end", in: seq(10), start: 8, length: 5, capacity: 10, want: []byte{8, 9}},
		{name: "start at end is empty", in: seq(10), start: 10, length: 5, capacity: 10, want: []byte{}},
		{name: "zero length", in: seq(10), start: 3, length: 0, capacity: 10, want: []byte{}},
		{name: "start beyond end", in: seq(100), start: 150, length: 10, capacity: 100, wantErr: pipeerr.ErrRangeOutOfBounds},
		{name: "negative start", in: seq(10), start: -1, length: 3, capacity: 10, wantErr: pipeerr.ErrInvalidInput},
		{name: "negative length", in: seq(10), start: 1, length: -3, capacity: 10, wantErr: pipeerr.ErrInvalidInput},
		{name: "output too small", in: seq(10), start: 0, length: 10, capacity: 4, wantErr: pipeerr.ErrCapacityExceeded},
		{name: "huge length does not overflow", in: seq(10), start: 5, length: int(^uint(0) >> 1), capacity: 10, want: []byte{5, 6, 7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := mustAcquire(t, tt.capacity)
			n, err := Trim(tt.in, tt.start, tt.length, out)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Trim() error = %v, want %v", err, tt.wantErr)
				}
				if out.Len() != 0 {
					t.Errorf("Trim() wrote %d bytes on failure", out.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("Trim() unexpected error: %v", err)
			}
			if n != len(tt.want) {
				t.Errorf("Trim() = %d, want %d", n, len(tt.want))
			}
			if diff := cmp.Diff(tt.want, out.Bytes()); diff != "" {
				t.Errorf("Trim() output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	t.Run("concatenates in order", func(t *testing.T) {
		t.Parallel()
		out := mustAcquire(t, 10)
		n, err := Merge([][]byte{{1, 2, 3}, {4, 5}}, out, nil)
		if err != nil {
			t.Fatalf("Merge() unexpected error: %v", err)
		}
		if n != 5 {
			t.Errorf("Merge() = %d, want 5", n)
		}
		if diff := cmp.Diff([]byte{1, 2, 3, 4, 5}, out.Bytes()); diff != "" {
			t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("capacity checked before writing", func(t *testing.T) {
		t.Parallel()
		out := mustAcquire(t, 4)
		_, err := Merge([][]byte{{1, 2, 3}, {4, 5}}, out, nil)
		if !errors.Is(err, pipeerr.ErrCapacityExceeded) {
			t.Fatalf("Merge() error = %v, want CapacityExceeded", err)
		}
		if out.Len() != 0 {
			t.Errorf("Merge() wrote %d bytes on failure", out.Len())
		}
	})

	t.Run("no items", func(t *testing.T) {
		t.Parallel()
		_, err := Merge(nil, mustAcquire(t, 4), nil)
		if !errors.Is(err, pipeerr.ErrInvalidInput) {
			t.Fatalf("Merge() error = %v, want InvalidInput", err)
		}
	})

	t.Run("skip out of range", func(t *testing.T) {
		t.Parallel()
		skip := func(int, []byte) int { return 10 }
		_, err := Merge([][]byte{{1}, {2}}, mustAcquire(t, 4), skip)
		if !errors.Is(err, pipeerr.ErrInvalidInput) {
			t.Fatalf("Merge() error = %v, want InvalidInput", err)
		}
	})

	t.Run("header skipped after first item", func(t *testing.T) {
		t.Parallel()
		items := [][]byte{
			[]byte("%PDF-1.4\nAAA"),
			[]byte("%PDF-1.7\r\nBBB"),
			[]byte("CCC"),
		}
		skip := HeaderSkipper([]byte("%PDF-"), FirstLine)
		out := mustAcquire(t, 32)
		if _, err := Merge(items, out, skip); err != nil {
			t.Fatalf("Merge() unexpected error: %v", err)
		}
		if got, want := string(out.Bytes()), "%PDF-1.4\nAAABBBCCC"; got != want {
			t.Errorf("Merge() = %q, want %q", got, want)
		}
	})

	t.Run("capacity counts skipped bytes out", func(t *testing.T) {
		t.Parallel()
		items := [][]byte{[]byte("H\nab"), []byte("H\ncd")}
		skip := HeaderSkipper([]byte("H"), FirstLine)
		out := mustAcquire(t, 6)
		n, err := Merge(items, out, skip)
		if err != nil {
			t.Fatalf("Merge() unexpected error: %v", err)
		}
		if n != 6 {
			t.Errorf("Merge() = %d, want 6", n)
		}
	})
}

func TestFirstLine(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"%PDF-1.4\nrest", 9},
		{"%PDF-1.4\r\nrest", 10},
		{"%PDF-1.4\rrest", 9},
		{"no terminator", 13},
		{"", 0},
	}

	for _, tt := range tests {
		if got := FirstLine([]byte(tt.in)); got != tt.want {
			t.Errorf("FirstLine(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	got, err := Split([]byte{0, 1, 2, 3, 4, 5, 6}, 3)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	want := [][]byte{{0, 1}, {2, 3}, {4, 5, 6}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Split() mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    []byte
		parts int
	}{
		{"zero parts", seq(4), 0},
		{"negative parts", seq(4), -2},
		{"more parts than bytes", seq(4), 5},
		{"empty input", nil, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Split(tt.in, tt.parts); !errors.Is(err, pipeerr.ErrInvalidPartitionCount) {
				t.Errorf("Split(%d bytes, %d) error = %v, want InvalidPartitionCount", len(tt.in), tt.parts, err)
			}
		})
	}
}

func TestSplitDoesNotAlias(t *testing.T) {
	in := seq(6)
	parts, err := Split(in, 2)
	if err != nil {
		t.Fatalf("Split() unexpected error: %v", err)
	}
	in[0] = 99
	if parts[0][0] != 0 {
		t.Errorf("Split() part aliases input")
	}
}

func TestSplitThenMergeReproducesInput(t *testing.T) {
	t.Parallel()

	in := seq(37)
	for n := 1; n <= len(in); n++ {
		parts, err := Split(in, n)
		if err != nil {
			t.Fatalf("Split(%d) unexpected error: %v", n, err)
		}
		if len(parts) != n {
			t.Fatalf("Split(%d) returned %d parts", n, len(parts))
		}
		out := mustAcquire(t, len(in))
		if _, err := Merge(parts, out, nil); err != nil {
			t.Fatalf("Merge(split %d) unexpected error: %v", n, err)
		}
		if !bytes.Equal(out.Bytes(), in) {
			t.Errorf("split %d then merge differs from input", n)
		}
	}
}

func TestTrimThenMergeReconstructs(t *testing.T) {
	t.Parallel()

	in := seq(50)
	for cut := 0; cut <= len(in); cut++ {
		head := mustAcquire(t, len(in))
		tail := mustAcquire(t, len(in))
		if _, err := Trim(in, 0, cut, head); err != nil {
			t.Fatalf("Trim(head %d): %v", cut, err)
		}
		if _, err := Trim(in, cut, len(in)-cut, tail); err != nil {
			t.Fatalf("Trim(tail %d): %v", cut, err)
		}
		out := mustAcquire(t, len(in))
		if _, err := Merge([][]byte{head.Bytes(), tail.Bytes()}, out, nil); err != nil {
			t.Fatalf("Merge(cut %d): %v", cut, err)
		}
		if !bytes.Equal(out.Bytes(), in) {
			t.Errorf("cut %d: trim/merge did not reconstruct input", cut)
		}
	}
}

func TestSplitRangesCoverInput(t *testing.T) {
	ranges, err := SplitRanges(10, 3)
	if err != nil {
		t.Fatalf("SplitRanges() unexpected error: %v", err)
	}
	want := []Range{{0, 3}, {3, 6}, {6, 10}}
	if diff := cmp.Diff(want, ranges); diff != "" {
		t.Errorf("SplitRanges() mismatch (-want +got):\n%s", diff)
	}
}
