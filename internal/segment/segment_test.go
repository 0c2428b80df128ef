package segment

import (
	"errors"
	"testing"

	"media-pipeline/internal/buffer"
	"media-pipeline/internal/pipeerr"

	"github.com/google/go-cmp/cmp"
)

func ramp(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func run(t *testing.T, m Mode, in []byte, target, capacity int) ([]byte, error) {
	t.Helper()
	out, err := buffer.Acquire(capacity)
	if err != nil {
		t.Fatal(err)
	}
	n, err := Apply(m, in, target, out)
	if err != nil {
		if out.Len() != 0 {
			t.Errorf("failed Apply wrote %d bytes", out.Len())
		}
		return nil, err
	}
	if n != out.Len() {
		t.Errorf("Apply returned %d but buffer holds %d bytes", n, out.Len())
	}
	return out.Detach(), nil
}

func TestApply(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mode   Mode
		in     []byte
		target int
		want   []byte
	}{
		{"passthrough prefix", PassThrough(), []byte{5, 6, 7, 8}, 2, []byte{5, 6}},
		{"passthrough short input", PassThrough(), []byte{5, 6}, 4, []byte{5, 6}},
		{"sample halves", Sample(), ramp(10), 5, []byte{0, 2, 4, 6, 8}},
		{"sample uneven", Sample(), ramp(10), 4, []byte{0, 2, 4, 6}},
		{"sample stride one", Sample(), ramp(10), 6, []byte{0, 1, 2, 3, 4, 5}},
		{"sample short input", Sample(), ramp(3), 8, []byte{0, 1, 2}},
		{"average pairs", Average(), []byte{10, 20, 30, 40}, 2, []byte{15, 35}},
		{"average rounds half up", Average(), []byte{1, 2, 2, 3}, 2, []byte{2, 3}},
		{"average drops tail", Average(), []byte{3, 3, 3, 9, 9}, 2, []byte{3, 6}},
		{"average uneven", Average(), ramp(10), 4, []byte{1, 3, 5, 7}},
		{"average single window", Average(), []byte{0, 255}, 1, []byte{128}},
		{"scale quality", Scale(50, 100), []byte{200, 100, 1}, 3, []byte{100, 50, 0}},
		{"scale clamps", Scale(120, 100), []byte{250, 100}, 2, []byte{255, 120}},
		{"scale prefix only", Scale(1, 1), []byte{1, 2, 3}, 2, []byte{1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := run(t, tt.mode, tt.in, tt.target, 64)
			if err != nil {
				t.Fatalf("Apply(%s) unexpected error: %v", tt.mode, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Apply(%s) mismatch (-want +got):\n%s", tt.mode, diff)
			}
		})
	}
}

func TestSampleIdentityAtFullTarget(t *testing.T) {
	t.Parallel()

	for _, n := range []int{1, 2, 17, 256, 1000} {
		in := ramp(n)
		for _, m := range []Mode{Sample(), Average(), PassThrough()} {
			got, err := run(t, m, in, n, n)
			if err != nil {
				t.Fatalf("n=%d %s: %v", n, m, err)
			}
			if diff := cmp.Diff(in, got); diff != "" {
				t.Errorf("n=%d %s is not the identity (-want +got):\n%s", n, m, diff)
			}
		}
	}
}

func TestStrideExactCount(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 64; n++ {
		for target := 1; target <= n; target++ {
			for _, m := range []Mode{Sample(), Average()} {
				got, err := run(t, m, ramp(n), target, target)
				if err != nil {
					t.Fatalf("n=%d target=%d %s: %v", n, target, m, err)
				}
				if len(got) != target {
					t.Fatalf("n=%d target=%d %s produced %d bytes", n, target, m, len(got))
				}
			}
		}
	}
}

func TestWindowsFixedStride(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 50; n++ {
		for target := 1; target <= 60; target++ {
			windows := Windows(n, target)
			count := min(n, target)
			if len(windows) != count {
				t.Fatalf("n=%d target=%d: %d windows, want %d", n, target, len(windows), count)
			}
			step := max(n/count, 1)
			for j, w := range windows {
				if w != [2]int{j * step, (j + 1) * step} {
					t.Fatalf("n=%d target=%d: window %d = %v, want stride %d", n, target, j, w, step)
				}
			}
			if tail := n - windows[len(windows)-1][1]; tail < 0 || tail >= count {
				t.Fatalf("n=%d target=%d: %d bytes after the last window", n, target, tail)
			}
		}
	}
}

func TestApplyErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mode     Mode
		in       []byte
		target   int
		capacity int
		wantErr  error
	}{
		{"empty input", Sample(), nil, 4, 8, pipeerr.ErrEmptyInput},
		{"zero target", Average(), ramp(4), 0, 8, pipeerr.ErrZeroTargetSize},
		{"negative target", Average(), ramp(4), -2, 8, pipeerr.ErrInvalidInput},
		{"capacity too small", Sample(), ramp(10), 5, 4, pipeerr.ErrCapacityExceeded},
		{"passthrough capacity", PassThrough(), ramp(10), 10, 9, pipeerr.ErrCapacityExceeded},
		{"zero denominator", Scale(1, 0), ramp(4), 2, 8, pipeerr.ErrInvalidInput},
		{"negative numerator", Scale(-1, 2), ramp(4), 2, 8, pipeerr.ErrInvalidInput},
		{"unknown mode", Mode{Kind: "fft"}, ramp(4), 2, 8, pipeerr.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := run(t, tt.mode, tt.in, tt.target, tt.capacity)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Apply() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyNilBuffer(t *testing.T) {
	t.Parallel()

	if _, err := Apply(Sample(), ramp(4), 2, nil); !errors.Is(err, pipeerr.ErrInvalidInput) {
		t.Errorf("Apply(nil buffer) error = %v", err)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"passthrough", PassThrough(), false},
		{"Sample", Sample(), false},
		{" average ", Average(), false},
		{"scale(3/4)", Scale(3, 4), false},
		{"scale(3/0)", Mode{}, true},
		{"scale(x/4)", Mode{}, true},
		{"dct", Mode{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseMode(%q) expected error, got %v", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMode(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if round, _ := ParseMode(got.String()); round != got {
				t.Errorf("ParseMode(%q.String()) = %v", got, round)
			}
		})
	}
}
