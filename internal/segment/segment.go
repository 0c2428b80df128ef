package segment

import (
	"fmt"
	"strconv"
	"strings"

	"media-pipeline/internal/buffer"
	"media-pipeline/internal/pipeerr"
)

// ModeKind names a transform mode.
type ModeKind string

const (
	// KindPassThrough copies bytes unchanged.
	KindPassThrough ModeKind = "passthrough"
	// KindSample keeps one byte per window.
	KindSample ModeKind = "sample"
	// KindAverage keeps the mean of each window.
	KindAverage ModeKind = "average"
	// KindScale multiplies each byte by Num/Den.
	KindScale ModeKind = "scale"
)

// Mode selects a transform and its parameters.
type Mode struct {
	Kind ModeKind `json:"kind"`
	// Num and Den are only used by KindScale.
	Num int `json:"num,omitempty"`
	Den int `json:"den,omitempty"`
}

// PassThrough returns the copy mode.
func PassThrough() Mode { return Mode{Kind: KindPassThrough} }

// Sample returns the stride sampling mode.
func Sample() Mode { return Mode{Kind: KindSample} }

// Average returns the stride averaging mode.
func Average() Mode { return Mode{Kind: KindAverage} }

// Scale returns the byte scaling mode with factor num/den.
func Scale(num, den int) Mode { return Mode{Kind: KindScale, Num: num, Den: den} }

func (m Mode) String() string {
	if m.Kind == KindScale {
		return fmt.Sprintf("%s(%d/%d)", m.Kind, m.Num, m.Den)
	}
	return string(m.Kind)
}

// ParseMode parses the String form of a mode, e.g. "average" or "scale(3/4)".
func ParseMode(s string) (Mode, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch ModeKind(s) {
	case KindPassThrough, KindSample, KindAverage:
		return Mode{Kind: ModeKind(s)}, nil
	}
	if inner, ok := strings.CutPrefix(s, string(KindScale)+"("); ok {
		if numStr, denStr, ok := strings.Cut(strings.TrimSuffix(inner, ")"), "/"); ok {
			num, errNum := strconv.Atoi(numStr)
			den, errDen := strconv.Atoi(denStr)
			if errNum == nil && errDen == nil {
				m := Scale(num, den)
				return m, m.validate("segment.ParseMode")
			}
		}
	}
	return Mode{}, pipeerr.New(pipeerr.KindInvalidInput, "segment.ParseMode", "unknown mode %q", s)
}

func (m Mode) validate(op string) error {
	switch m.Kind {
	case KindPassThrough, KindSample, KindAverage:
		return nil
	case KindScale:
		if m.Den <= 0 || m.Num < 0 {
			return pipeerr.New(pipeerr.KindInvalidInput, op, "invalid scale factor %d/%d", m.Num, m.Den)
		}
		return nil
	default:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "unknown mode %q", m.Kind)
	}
}

// OutputLen returns how many bytes m produces for n input bytes and the
// given target.
func OutputLen(n, target int) int {
	return min(n, target)
}

// Apply runs mode m over in, appending at most target bytes to out.
// It returns the number of bytes written.
func Apply(m Mode, in []byte, target int, out *buffer.ByteBuffer) (int, error) {
	const op = "segment.Apply"

	if err := m.validate(op); err != nil {
		return 0, err
	}
	if len(in) == 0 {
		return 0, pipeerr.EmptyInput(op)
	}
	if target < 0 {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "negative target %d", target)
	}
	if target == 0 {
		return 0, pipeerr.New(pipeerr.KindZeroTargetSize, op, "target size is zero")
	}
	if out == nil {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "nil output buffer")
	}

	count := OutputLen(len(in), target)
	if err := out.Reserve(count); err != nil {
		return 0, err
	}

	switch m.Kind {
	case KindPassThrough:
		err := out.Append(in[:count])
		return count, err
	case KindSample:
		return count, sample(in, count, out)
	case KindAverage:
		return count, average(in, count, out)
	default:
		return count, scale(in[:count], m.Num, m.Den, out)
	}
}

// stride returns the window width for n input bytes and count outputs.
func stride(n, count int) int {
	return max(n/count, 1)
}

func sample(in []byte, count int, out *buffer.ByteBuffer) error {
	step := stride(len(in), count)
	for j := 0; j < count; j++ {
		if err := out.AppendByte(in[j*step]); err != nil {
			return err
		}
	}
	return nil
}

func average(in []byte, count int, out *buffer.ByteBuffer) error {
	step := stride(len(in), count)
	for j := 0; j < count; j++ {
		sum := 0
		for _, c := range in[j*step : (j+1)*step] {
			sum += int(c)
		}
		if err := out.AppendByte(byte((sum + step/2) / step)); err != nil {
			return err
		}
	}
	return nil
}

func scale(in []byte, num, den int, out *buffer.ByteBuffer) error {
	for _, c := range in {
		v := int(c) * num / den
		if v > 255 {
			v = 255
		}
		if err := out.AppendByte(byte(v)); err != nil {
			return err
		}
	}
	return nil
}

// Windows returns the [start,end) boundaries Sample and Average use for n
// input bytes and the given target. Bytes past the last window are not read.
func Windows(n, target int) [][2]int {
	count := OutputLen(n, target)
	if count <= 0 {
		return nil
	}
	step := stride(n, count)
	windows := make([][2]int, count)
	for j := range windows {
		windows[j] = [2]int{j * step, (j + 1) * step}
	}
	return windows
}
