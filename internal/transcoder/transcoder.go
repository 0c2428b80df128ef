package transcoder

import (
	"fmt"
	"math"
	"time"

	"media-pipeline/internal/buffer"
	"media-pipeline/internal/codec"
	"media-pipeline/internal/container"
	"media-pipeline/internal/logging"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/pipeerr"
	"media-pipeline/internal/resize"
)

// DefaultMaxCapacity is the output bound used when Options.MaxCapacity is 0.
const DefaultMaxCapacity = 64 << 20

// Observer records invocation metrics. Implementations are provided by the
// metrics package to keep this package free of Prometheus.
type Observer interface {
	// ObserveInvocation is called once per Invoke with the final error, if any.
	ObserveInvocation(kind, operation string, durationSeconds float64, inputBytes, outputBytes int, err error)
	// ObserveBatch is called once per RunBatch.
	ObserveBatch(size, failed int, durationSeconds float64)
}

// Options configures a Transcoder.
type Options struct {
	// Registry maps (kind, format) to strategies. nil uses codec.DefaultRegistry.
	Registry *codec.Registry
	// MaxCapacity bounds every output. Requests asking for more are rejected.
	MaxCapacity int
	// Observer receives metrics. nil disables them.
	Observer Observer
	// Backpressure is consulted by RunBatch before each request. nil
	// disables it.
	Backpressure Backpressure
}

// Backpressure blocks batch workers while memory is under pressure.
// memory.Monitor implements it.
type Backpressure interface {
	// WaitIfPaused returns false once the monitor has been stopped.
	WaitIfPaused() bool
}

// Transcoder routes requests to the pipeline components.
type Transcoder struct {
	registry    *codec.Registry
	maxCapacity int
	observer    Observer
	pressure    Backpressure
}

// Metadata describes a completed invocation.
type Metadata struct {
	Kind        mediatypes.MediaKind `json:"kind"`
	Operation   Operation            `json:"operation"`
	Format      mediatypes.Format    `json:"format,omitempty"`
	Strategy    string               `json:"strategy,omitempty"`
	Mode        string               `json:"mode,omitempty"`
	Geometry    mediatypes.Geometry  `json:"geometry,omitempty"`
	InputBytes  int                  `json:"inputBytes"`
	OutputBytes int                  `json:"outputBytes"`
	TargetSize  int                  `json:"targetSize,omitempty"`
	Parts       int                  `json:"parts,omitempty"`
	Duration    time.Duration        `json:"durationNs"`
}

// Result is a successful invocation. Split fills Parts; every other
// operation fills Output.
type Result struct {
	Output   []byte
	Parts    [][]byte
	Metadata Metadata
}

// New returns a Transcoder.
func New(opts Options) *Transcoder {
	t := &Transcoder{
		registry:    opts.Registry,
		maxCapacity: opts.MaxCapacity,
		observer:    opts.Observer,
		pressure:    opts.Backpressure,
	}
	if t.registry == nil {
		t.registry = codec.DefaultRegistry()
	}
	if t.maxCapacity <= 0 {
		t.maxCapacity = DefaultMaxCapacity
	}
	return t
}

// Registry returns the strategy registry in use.
func (t *Transcoder) Registry() *codec.Registry {
	return t.registry
}

// MaxCapacity returns the output bound.
func (t *Transcoder) MaxCapacity() int {
	return t.maxCapacity
}

// Invoke validates and runs one request.
func (t *Transcoder) Invoke(req Request) (*Result, error) {
	start := time.Now()

	res, err := t.dispatch(req)
	elapsed := time.Since(start)

	outputBytes := 0
	if err != nil {
		err = fmt.Errorf("%s %s: %w", req.Kind, req.Operation, err)
		logging.Debug("transform failed: kind=%s op=%s format=%s inputs=%d error_kind=%s: %v",
			req.Kind, req.Operation, req.Format, len(req.Inputs), pipeerr.KindOf(err), err)
		res = nil
	} else {
		res.Metadata.Duration = elapsed
		outputBytes = res.Metadata.OutputBytes
	}

	if t.observer != nil {
		t.observer.ObserveInvocation(string(req.Kind), string(req.Operation), elapsed.Seconds(), req.TotalInputBytes(), outputBytes, err)
	}
	return res, err
}

func (t *Transcoder) dispatch(req Request) (*Result, error) {
	capacity, err := t.validate(req)
	if err != nil {
		return nil, err
	}

	meta := Metadata{
		Kind:       req.Kind,
		Operation:  req.Operation,
		Format:     req.Format,
		Geometry:   req.Geometry,
		InputBytes: req.TotalInputBytes(),
	}

	var res *Result
	switch req.Operation {
	case OpProcess:
		res, err = t.process(req, capacity, meta)
	case OpCompress:
		res, err = t.compress(req, capacity, meta)
	case OpMerge:
		res, err = t.merge(req, capacity, meta)
	case OpTrim:
		res, err = t.trim(req, capacity, meta)
	case OpSplit:
		res, err = t.split(req, capacity, meta)
	case OpResize:
		res, err = t.resize(req, capacity, meta)
	case OpExtractText:
		res, err = t.extractText(req, capacity, meta)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// validate checks everything that does not depend on the operation's
// arithmetic and returns the effective output capacity.
func (t *Transcoder) validate(req Request) (int, error) {
	const op = "transcoder.Invoke"

	if !validKind(req.Kind) {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "unknown media kind %q", req.Kind)
	}
	if !validOperation(req.Operation) {
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "unknown operation %q", req.Operation)
	}
	if !req.Quality.Valid() {
		return 0, pipeerr.New(pipeerr.KindInvalidQuality, op, "quality %d outside [0,100]", req.Quality)
	}
	if err := mediatypes.CheckGeometry(req.Kind, req.Geometry, geometryRequired(req.Kind, req.Operation)); err != nil {
		return 0, err
	}

	switch {
	case len(req.Inputs) == 0:
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "no input buffers")
	case req.Operation != OpMerge && len(req.Inputs) != 1:
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "%s takes exactly one input, got %d", req.Operation, len(req.Inputs))
	}
	for i, in := range req.Inputs {
		if len(in) == 0 {
			return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "input %d: %s", i, pipeerr.ErrEmptyInput.Msg)
		}
	}

	switch {
	case req.Capacity < 0:
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "negative capacity %d", req.Capacity)
	case req.Capacity > t.maxCapacity:
		return 0, pipeerr.New(pipeerr.KindInvalidInput, op, "capacity %d above maximum %d", req.Capacity, t.maxCapacity)
	case req.Capacity == 0:
		return t.maxCapacity, nil
	}
	return req.Capacity, nil
}

func validKind(k mediatypes.MediaKind) bool {
	for _, known := range mediatypes.Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

func validOperation(o Operation) bool {
	for _, known := range Operations() {
		if o == known {
			return true
		}
	}
	return false
}

// acquire returns a buffer that can hold need bytes, or exactly capacity
// bytes when need is larger, so that the following write reports
// CapacityExceeded instead of allocating past the bound.
func acquire(need, capacity int) (*buffer.ByteBuffer, error) {
	return buffer.Acquire(min(need, capacity))
}

func (t *Transcoder) process(req Request, capacity int, meta Metadata) (*Result, error) {
	strategy, err := t.registry.Lookup(req.Kind, req.Format)
	if err != nil {
		return nil, err
	}
	return runStrategy(strategy, req, capacity, meta)
}

func (t *Transcoder) compress(req Request, capacity int, meta Metadata) (*Result, error) {
	mode := codec.CompressionMode(req.Kind)
	strategy := codec.NewRateControlled(mode.String(), codec.Fixed(mode))
	return runStrategy(strategy, req, capacity, meta)
}

func runStrategy(s codec.Strategy, req Request, capacity int, meta Metadata) (*Result, error) {
	out, err := s.Transform(codec.Input{
		Data:     req.Inputs[0],
		Geometry: req.Geometry,
		Quality:  req.Quality,
		Capacity: capacity,
	})
	if err != nil {
		return nil, err
	}
	meta.Strategy = s.Name()
	if out.Mode.Kind != "" {
		meta.Mode = out.Mode.String()
	}
	meta.TargetSize = out.TargetSize
	meta.OutputBytes = len(out.Data)
	return &Result{Output: out.Data, Metadata: meta}, nil
}

func (t *Transcoder) merge(req Request, capacity int, meta Metadata) (*Result, error) {
	out, err := acquire(req.TotalInputBytes(), capacity)
	if err != nil {
		return nil, err
	}
	n, err := container.Merge(req.Inputs, out, codec.MergeSkipper(req.Kind))
	if err != nil {
		return nil, err
	}
	meta.OutputBytes = n
	return &Result{Output: out.Detach(), Metadata: meta}, nil
}

// trimBytes converts the request's trim range to a byte range.
func trimBytes(req Request) (start, length int, err error) {
	unit := 1
	scale := 1.0
	switch g := req.Geometry.(type) {
	case mediatypes.AudioGeometry:
		unit = g.BytesPerFrame()
		scale = float64(g.SampleRate)
	case mediatypes.VideoGeometry:
		unit = g.FrameSize()
	}

	start, okStart := toBytes(req.Trim.Start*scale, unit)
	length, okLength := toBytes(req.Trim.Length*scale, unit)
	if !okStart || !okLength {
		return 0, 0, pipeerr.New(pipeerr.KindInvalidInput, "transcoder.Trim", "invalid trim range start=%v length=%v", req.Trim.Start, req.Trim.Length)
	}
	return start, length, nil
}

func (t *Transcoder) trim(req Request, capacity int, meta Metadata) (*Result, error) {
	start, length, err := trimBytes(req)
	if err != nil {
		return nil, err
	}
	r, err := container.TrimRange(len(req.Inputs[0]), start, length)
	if err != nil {
		return nil, err
	}
	out, err := acquire(r.Len(), capacity)
	if err != nil {
		return nil, err
	}
	n, err := container.Trim(req.Inputs[0], start, length, out)
	if err != nil {
		return nil, err
	}
	if g, ok := req.Geometry.(mediatypes.VideoGeometry); ok {
		g.DurationFrames = n / g.FrameSize()
		meta.Geometry = g
	}
	meta.OutputBytes = n
	return &Result{Output: out.Detach(), Metadata: meta}, nil
}

func (t *Transcoder) split(req Request, capacity int, meta Metadata) (*Result, error) {
	in := req.Inputs[0]
	parts := req.Parts
	if g, ok := req.Geometry.(mediatypes.DocumentGeometry); ok && parts == 0 && g.PageCount > 0 {
		parts = g.PageCount
	}
	if len(in) > capacity {
		return nil, pipeerr.CapacityExceeded("transcoder.Split", len(in), capacity)
	}
	pieces, err := container.Split(in, parts)
	if err != nil {
		return nil, err
	}
	meta.Parts = len(pieces)
	meta.OutputBytes = len(in)
	return &Result{Parts: pieces, Metadata: meta}, nil
}

func (t *Transcoder) resize(req Request, capacity int, meta Metadata) (*Result, error) {
	const op = "transcoder.Resize"

	in := req.Inputs[0]
	switch g := req.Geometry.(type) {
	case mediatypes.ImageGeometry:
		need := outputSize(req.Resize.Width, req.Resize.Height, g.Channels, 1)
		out, err := acquire(need, capacity)
		if err != nil {
			return nil, err
		}
		resized, err := resize.Image(in, g, req.Resize, out)
		if err != nil {
			return nil, err
		}
		meta.Geometry = resized
		meta.OutputBytes = out.Len()
		return &Result{Output: out.Detach(), Metadata: meta}, nil

	case mediatypes.VideoGeometry:
		frames := 0
		if fs := g.FrameSize(); fs > 0 {
			frames = len(in) / fs
		}
		need := outputSize(req.Resize.Width, req.Resize.Height, mediatypes.RGBChannels, frames)
		out, err := acquire(need, capacity)
		if err != nil {
			return nil, err
		}
		resized, err := resize.Video(in, g, req.Resize, out)
		if err != nil {
			return nil, err
		}
		meta.Geometry = resized
		meta.OutputBytes = out.Len()
		return &Result{Output: out.Detach(), Metadata: meta}, nil
	}
	return nil, pipeerr.New(pipeerr.KindInvalidInput, op, "resize is not defined for %s", req.Kind)
}

// outputSize multiplies the factors, returning math.MaxInt on overflow or
// 0 when a factor is not positive.
func outputSize(factors ...int) int {
	size := 1
	for _, f := range factors {
		if f <= 0 {
			return 0
		}
		if size > math.MaxInt/f {
			return math.MaxInt
		}
		size *= f
	}
	return size
}

func (t *Transcoder) extractText(req Request, capacity int, meta Metadata) (*Result, error) {
	if req.Kind != mediatypes.KindDocument {
		return nil, pipeerr.New(pipeerr.KindInvalidInput, "transcoder.ExtractText", "text extraction is not defined for %s", req.Kind)
	}
	meta.Format = mediatypes.FormatTXT
	return runStrategy(codec.TextExtraction{}, req, capacity, meta)
}
