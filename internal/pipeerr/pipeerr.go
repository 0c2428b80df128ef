package pipeerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors that did not originate in the pipeline.
	KindUnknown Kind = iota
	// KindInvalidInput covers nil or empty buffers and non-positive sizes.
	KindInvalidInput
	// KindInvalidQuality is returned when a quality parameter lies outside [0,100].
	KindInvalidQuality
	// KindCapacityExceeded is returned when a write would pass the declared capacity.
	KindCapacityExceeded
	// KindRangeOutOfBounds is returned when a trim starts past the end of its input.
	KindRangeOutOfBounds
	// KindInvalidPartitionCount is returned when a split count is not in [1, len].
	KindInvalidPartitionCount
	// KindZeroTargetSize is returned when the rate controller computes an empty target.
	KindZeroTargetSize
	// KindUnsupportedFormat is returned when no strategy is registered for a format.
	KindUnsupportedFormat
)

var kindNames = map[Kind]string{
	KindUnknown:               "unknown",
	KindInvalidInput:          "invalid_input",
	KindInvalidQuality:        "invalid_quality",
	KindCapacityExceeded:      "capacity_exceeded",
	KindRangeOutOfBounds:      "range_out_of_bounds",
	KindInvalidPartitionCount: "invalid_partition_count",
	KindZeroTargetSize:        "zero_target_size",
	KindUnsupportedFormat:     "unsupported_format",
}

// String returns the snake_case name used in logs, metrics labels and JSON.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Kinds returns every pipeline kind, excluding KindUnknown.
func Kinds() []Kind {
	return []Kind{
		KindInvalidInput,
		KindInvalidQuality,
		KindCapacityExceeded,
		KindRangeOutOfBounds,
		KindInvalidPartitionCount,
		KindZeroTargetSize,
		KindUnsupportedFormat,
	}
}

// Error is a classified pipeline failure.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "buffer.WriteAt".
	Op string
	// Msg is a human readable detail.
	Msg string
	// Err is an optional underlying cause.
	Err error
}

func (e *Error) Error() string {
	var msg string
	switch {
	case e.Op != "" && e.Msg != "":
		msg = e.Op + ": " + e.Msg
	case e.Op != "":
		msg = e.Op + ": " + e.Kind.String()
	case e.Msg != "":
		msg = e.Msg
	default:
		msg = e.Kind.String()
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a pipeline error of the same kind. A target
// with a Msg only matches when the messages are equal as well, which lets
// ErrEmptyInput be distinguished from other invalid-input failures.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Msg == "" || t.Msg == e.Msg
}

// Sentinels for errors.Is matching. They carry no Op so that they match any
// error of their kind.
var (
	ErrInvalidInput          = &Error{Kind: KindInvalidInput}
	ErrInvalidQuality        = &Error{Kind: KindInvalidQuality}
	ErrCapacityExceeded      = &Error{Kind: KindCapacityExceeded}
	ErrRangeOutOfBounds      = &Error{Kind: KindRangeOutOfBounds}
	ErrInvalidPartitionCount = &Error{Kind: KindInvalidPartitionCount}
	ErrZeroTargetSize        = &Error{Kind: KindZeroTargetSize}
	ErrUnsupportedFormat     = &Error{Kind: KindUnsupportedFormat}

	// ErrEmptyInput is the invalid-input failure for a zero-length input.
	ErrEmptyInput = &Error{Kind: KindInvalidInput, Msg: emptyInputMsg}
)

const emptyInputMsg = "empty input"

// New returns an *Error of the given kind.
func New(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Wrap returns an *Error of the given kind around cause.
func Wrap(kind Kind, op string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Err: cause}
}

// EmptyInput returns the invalid-input failure for a zero-length input.
func EmptyInput(op string) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Msg: emptyInputMsg}
}

// CapacityExceeded reports that need bytes were requested against capacity.
func CapacityExceeded(op string, need, capacity int) *Error {
	return New(KindCapacityExceeded, op, "need %d bytes, capacity %d", need, capacity)
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
