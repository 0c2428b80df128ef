package transcoder

import (
	"math"
	"strings"

	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/pipeerr"
	"media-pipeline/internal/ratecontrol"
	"media-pipeline/internal/resize"
)

// Operation names what a Request does.
type Operation string

// Supported operations.
const (
	OpProcess     Operation = "process"
	OpCompress    Operation = "compress"
	OpMerge       Operation = "merge"
	OpTrim        Operation = "trim"
	OpSplit       Operation = "split"
	OpResize      Operation = "resize"
	OpExtractText Operation = "extract_text"
)

// Operations lists every operation.
func Operations() []Operation {
	return []Operation{OpProcess, OpCompress, OpMerge, OpTrim, OpSplit, OpResize, OpExtractText}
}

// ParseOperation parses an operation name. Hyphens are accepted in place
// of underscores.
func ParseOperation(s string) (Operation, error) {
	op := Operation(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Operations() {
		if op == known {
			return op, nil
		}
	}
	return "", pipeerr.New(pipeerr.KindInvalidInput, "transcoder.ParseOperation", "unknown operation %q", s)
}

// TrimRange selects part of an input. Units depend on the media kind:
// seconds for audio, frames for video and bytes for images and documents.
type TrimRange struct {
	Start  float64 `json:"start"`
	Length float64 `json:"length"`
}

// Request is one transform invocation. Treat it as immutable once built;
// Invoke never modifies the input buffers.
type Request struct {
	Kind      mediatypes.MediaKind
	Operation Operation
	Inputs    [][]byte
	Geometry  mediatypes.Geometry
	Quality   ratecontrol.Quality
	Format    mediatypes.Format

	// Capacity bounds the output size. 0 uses the transcoder maximum.
	Capacity int

	Trim   TrimRange
	Parts  int
	Resize resize.Size
}

// TotalInputBytes sums the input lengths.
func (r *Request) TotalInputBytes() int {
	total := 0
	for _, in := range r.Inputs {
		total += len(in)
	}
	return total
}

// geometryRequired reports whether op cannot run without geometry. Video
// always needs one for its frame rate.
func geometryRequired(kind mediatypes.MediaKind, op Operation) bool {
	if kind == mediatypes.KindVideo {
		return true
	}
	switch op {
	case OpResize:
		return true
	case OpTrim:
		return kind == mediatypes.KindAudio
	}
	return false
}

// toBytes converts a non-negative amount of units to a byte offset,
// truncating toward zero and saturating at math.MaxInt.
func toBytes(v float64, unitBytes int) (int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	units := math.Trunc(v)
	if units*float64(unitBytes) >= 1<<62 {
		return math.MaxInt, true
	}
	return int(units) * unitBytes, true
}
