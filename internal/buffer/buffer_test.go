package buffer

import (
	"errors"
	"testing"

	"media-pipeline/internal/pipeerr"

	"github.com/google/go-cmp/cmp"
)

func TestAcquire(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		capacity int
		wantErr  error
	}{
		{"zero capacity", 0, nil},
		{"small capacity", 16, nil},
		{"negative capacity", -1, pipeerr.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := Acquire(tt.capacity)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Acquire(%d) error = %v, want %v", tt.capacity, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Acquire(%d) unexpected error: %v", tt.capacity, err)
			}
			if b.Cap() != tt.capacity {
				t.Errorf("Cap() = %d, want %d", b.Cap(), tt.capacity)
			}
			if b.Len() != 0 {
				t.Errorf("Len() = %d, want 0", b.Len())
			}
		})
	}
}

func TestWriteAt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		offset  int
		data    []byte
		wantErr error
		wantLen int
	}{
		{"write at start", 0, []byte{1, 2, 3}, nil, 3},
		{"write fills capacity", 2, []byte{1, 2, 3}, nil, 5},
		{"write past capacity", 3, []byte{1, 2, 3}, pipeerr.ErrCapacityExceeded, 0},
		{"offset past capacity", 6, nil, pipeerr.ErrCapacityExceeded, 0},
		{"empty write at capacity", 5, nil, nil, 5},
		{"negative offset", -1, []byte{1}, pipeerr.ErrInvalidInput, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := Acquire(5)
			if err != nil {
				t.Fatal(err)
			}
			err = b.WriteAt(tt.offset, tt.data)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("WriteAt() error = %v, want %v", err, tt.wantErr)
				}
				if b.Len() != 0 {
					t.Errorf("failed write changed length to %d", b.Len())
				}
				return
			}
			if err != nil {
				t.Fatalf("WriteAt() unexpected error: %v", err)
			}
			if b.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", b.Len(), tt.wantLen)
			}
		})
	}
}

func TestWriteAtFailureLeavesBufferUntouched(t *testing.T) {
	t.Parallel()

	b, _ := Acquire(4)
	if err := b.Append([]byte{9, 8}); err != nil {
		t.Fatal(err)
	}
	if err := b.Append([]byte{7, 6, 5}); !errors.Is(err, pipeerr.ErrCapacityExceeded) {
		t.Fatalf("Append() error = %v, want CapacityExceeded", err)
	}
	if diff := cmp.Diff([]byte{9, 8}, b.Bytes()); diff != "" {
		t.Errorf("buffer contents changed (-want +got):\n%s", diff)
	}
}

func TestAppendByte(t *testing.T) {
	t.Parallel()

	b, _ := Acquire(2)
	if err := b.AppendByte(1); err != nil {
		t.Fatal(err)
	}
	if err := b.AppendByte(2); err != nil {
		t.Fatal(err)
	}
	if err := b.AppendByte(3); !errors.Is(err, pipeerr.ErrCapacityExceeded) {
		t.Errorf("AppendByte() past capacity error = %v", err)
	}
	if b.Available() != 0 {
		t.Errorf("Available() = %d, want 0", b.Available())
	}
}

func TestReserve(t *testing.T) {
	t.Parallel()

	b, _ := Acquire(3)
	if err := b.Reserve(3); err != nil {
		t.Errorf("Reserve(3) unexpected error: %v", err)
	}
	if err := b.Reserve(4); !errors.Is(err, pipeerr.ErrCapacityExceeded) {
		t.Errorf("Reserve(4) error = %v, want CapacityExceeded", err)
	}
	if err := b.Reserve(-1); !errors.Is(err, pipeerr.ErrInvalidInput) {
		t.Errorf("Reserve(-1) error = %v, want InvalidInput", err)
	}
	if b.Len() != 0 {
		t.Errorf("Reserve wrote data, Len() = %d", b.Len())
	}
}

func TestTruncateAndReset(t *testing.T) {
	t.Parallel()

	b, _ := Acquire(8)
	_ = b.Append([]byte{1, 2, 3, 4})

	if err := b.Truncate(2); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]byte{1, 2}, b.Bytes()); diff != "" {
		t.Errorf("after Truncate (-want +got):\n%s", diff)
	}
	if err := b.Truncate(3); !errors.Is(err, pipeerr.ErrInvalidInput) {
		t.Errorf("Truncate growing error = %v", err)
	}

	// Truncated bytes are zeroed, so a sparse WriteAt does not resurrect them.
	_ = b.WriteAt(3, []byte{9})
	if diff := cmp.Diff([]byte{1, 2, 0, 9}, b.Bytes()); diff != "" {
		t.Errorf("after WriteAt (-want +got):\n%s", diff)
	}

	b.Reset()
	if b.Len() != 0 || b.Cap() != 8 {
		t.Errorf("after Reset Len=%d Cap=%d", b.Len(), b.Cap())
	}
}

func TestDetach(t *testing.T) {
	t.Parallel()

	b, _ := Acquire(8)
	_ = b.Append([]byte{1, 2, 3})

	out := b.Detach()
	if len(out) != 3 || cap(out) != 3 {
		t.Errorf("Detach() len=%d cap=%d, want 3/3", len(out), cap(out))
	}

	out[0] = 42
	if b.Bytes()[0] != 1 {
		t.Error("Detach() result aliases the buffer")
	}
}
