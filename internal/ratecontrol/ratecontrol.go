package ratecontrol

import "media-pipeline/internal/pipeerr"

const (
	// MinQuality is the lowest accepted quality.
	MinQuality = 0
	// MaxQuality is the highest accepted quality.
	MaxQuality = 100
	// DefaultQuality is used by hosts when a request does not name one.
	DefaultQuality Quality = 75
)

// Quality is a compression quality in [0,100].
type Quality int

// ParseQuality validates q at the host boundary.
func ParseQuality(q int) (Quality, error) {
	if q < MinQuality || q > MaxQuality {
		return 0, pipeerr.New(pipeerr.KindInvalidQuality, "ratecontrol.ParseQuality", "quality %d outside [%d,%d]", q, MinQuality, MaxQuality)
	}
	return Quality(q), nil
}

// Valid reports whether q lies in [0,100].
func (q Quality) Valid() bool {
	return q >= MinQuality && q <= MaxQuality
}

// Ratio returns the fraction of the input the quality keeps.
func (q Quality) Ratio() float64 {
	return float64(q) / MaxQuality
}

// TargetSize returns min(round(inputLen*quality/100), outputCapacity).
func TargetSize(inputLen int, quality Quality, outputCapacity int) (int, error) {
	const op = "ratecontrol.TargetSize"

	if !quality.Valid() {
		return 0, pipeerr.New(pipeerr.KindInvalidQuality, op, "quality %d outside [%d,%d]", quality, MinQuality, MaxQuality)
	}
	if inputLen < 0 {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "negative input length %d", inputLen)
	}
	if inputLen == 0 {
		return 0, pipeerr.EmptyInput(op)
	}
	if outputCapacity <= 0 {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "non-positive output capacity %d", outputCapacity)
	}

	raw := roundedShare(inputLen, int(quality))
	if raw == 0 {
		return 0, pipeerr.New(pipeerr.KindZeroTargetSize, op, "quality %d of %d bytes rounds to zero", quality, inputLen)
	}
	return min(raw, outputCapacity), nil
}

// roundedShare computes round(n*q/100) half up without floating point.
// Splitting n keeps the intermediate product small for large inputs.
func roundedShare(n, q int) int {
	whole := (n / MaxQuality) * q
	rest := ((n%MaxQuality)*q + MaxQuality/2) / MaxQuality
	return whole + rest
}
