package handlers

import (
	"net/url"
	"strconv"

	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/pipeerr"
	"media-pipeline/internal/ratecontrol"
	"media-pipeline/internal/resize"
	"media-pipeline/internal/transcoder"
)

// GeometryJSON is the wire form of every geometry. Only the fields of the
// request's kind are read; an all-zero value means no geometry.
type GeometryJSON struct {
	SampleRate     int `json:"sampleRate,omitempty"`
	Channels       int `json:"channels,omitempty"`
	BitsPerSample  int `json:"bitsPerSample,omitempty"`
	Width          int `json:"width,omitempty"`
	Height         int `json:"height,omitempty"`
	FrameRate      int `json:"frameRate,omitempty"`
	DurationFrames int `json:"durationFrames,omitempty"`
	PageCount      int `json:"pageCount,omitempty"`
}

func (g *GeometryJSON) toGeometry(kind mediatypes.MediaKind) mediatypes.Geometry {
	if g == nil || *g == (GeometryJSON{}) {
		return nil
	}
	switch kind {
	case mediatypes.KindAudio:
		return mediatypes.AudioGeometry{SampleRate: g.SampleRate, Channels: g.Channels, BitsPerSample: g.BitsPerSample}
	case mediatypes.KindImage:
		return mediatypes.ImageGeometry{Width: g.Width, Height: g.Height, Channels: g.Channels}
	case mediatypes.KindVideo:
		return mediatypes.VideoGeometry{Width: g.Width, Height: g.Height, FrameRate: g.FrameRate, DurationFrames: g.DurationFrames}
	case mediatypes.KindDocument:
		return mediatypes.DocumentGeometry{PageCount: g.PageCount}
	}
	return nil
}

// TransformRequest is the JSON body of /api/transform. Inputs are base64.
type TransformRequest struct {
	Kind      string                `json:"kind"`
	Operation string                `json:"operation"`
	Inputs    [][]byte              `json:"inputs"`
	Geometry  *GeometryJSON         `json:"geometry,omitempty"`
	Quality   *int                  `json:"quality,omitempty"`
	Format    string                `json:"format,omitempty"`
	Capacity  int                   `json:"capacity,omitempty"`
	Trim      *transcoder.TrimRange `json:"trim,omitempty"`
	Parts     int                   `json:"parts,omitempty"`
	Resize    *resize.Size          `json:"resize,omitempty"`
}

// TransformResponse is the JSON result of /api/transform. Output and Parts
// are base64.
type TransformResponse struct {
	Output   []byte              `json:"output,omitempty"`
	Parts    [][]byte            `json:"parts,omitempty"`
	Metadata transcoder.Metadata `json:"metadata"`
}

// BatchRequest is the JSON body of /api/batch.
type BatchRequest struct {
	Requests []TransformRequest `json:"requests"`
	// Workers overrides the pool size, capped at the server setting.
	Workers int `json:"workers,omitempty"`
}

// BatchItem is one entry of a BatchResponse, in request order.
type BatchItem struct {
	Index  int                `json:"index"`
	Result *TransformResponse `json:"result,omitempty"`
	Error  *ErrorResponse     `json:"error,omitempty"`
	Status int                `json:"status"`
}

// BatchResponse is the JSON result of /api/batch.
type BatchResponse struct {
	BatchID   string      `json:"batchId"`
	Results   []BatchItem `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// toRequest converts the wire request. capacityLimit bounds Capacity.
func (tr *TransformRequest) toRequest(capacityLimit int) (transcoder.Request, error) {
	const op = "handlers.TransformRequest"

	kind, err := mediatypes.ParseKind(tr.Kind)
	if err != nil {
		return transcoder.Request{}, err
	}
	operation, err := transcoder.ParseOperation(tr.Operation)
	if err != nil {
		return transcoder.Request{}, err
	}

	req := transcoder.Request{
		Kind:      kind,
		Operation: operation,
		Inputs:    tr.Inputs,
		Geometry:  tr.Geometry.toGeometry(kind),
		Quality:   ratecontrol.DefaultQuality,
		Capacity:  tr.Capacity,
		Parts:     tr.Parts,
	}
	if tr.Quality != nil {
		if req.Quality, err = ratecontrol.ParseQuality(*tr.Quality); err != nil {
			return transcoder.Request{}, err
		}
	}
	if tr.Format != "" {
		req.Format = mediatypes.ParseFormat(tr.Format)
	}
	if tr.Capacity < 0 || tr.Capacity > capacityLimit {
		return transcoder.Request{}, pipeerr.New(pipeerr.KindInvalidInput, op,
			"capacity %d outside [0,%d]", tr.Capacity, capacityLimit)
	}
	if tr.Trim != nil {
		req.Trim = *tr.Trim
	}
	if tr.Resize != nil {
		req.Resize = *tr.Resize
	}
	return req, nil
}

// requestFromQuery builds the wire request of a raw call from its route
// variables and query string.
func requestFromQuery(kind, operation string, q url.Values, body []byte) (*TransformRequest, error) {
	const op = "handlers.requestFromQuery"

	tr := &TransformRequest{
		Kind:      kind,
		Operation: operation,
		Inputs:    [][]byte{body},
		Format:    q.Get("format"),
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"capacity", &tr.Capacity},
		{"parts", &tr.Parts},
	}
	for _, p := range ints {
		if v := q.Get(p.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, pipeerr.New(pipeerr.KindInvalidInput, op, "invalid %s %q", p.name, v)
			}
			*p.dst = n
		}
	}

	if v := q.Get("quality"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, pipeerr.New(pipeerr.KindInvalidQuality, op, "invalid quality %q", v)
		}
		tr.Quality = &n
	}

	if q.Has("start") || q.Has("length") {
		trim := &transcoder.TrimRange{}
		for name, dst := range map[string]*float64{"start": &trim.Start, "length": &trim.Length} {
			if v := q.Get(name); v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, pipeerr.New(pipeerr.KindInvalidInput, op, "invalid %s %q", name, v)
				}
				*dst = f
			}
		}
		tr.Trim = trim
	}

	geom := GeometryJSON{}
	geomFields := map[string]*int{
		"sample_rate":     &geom.SampleRate,
		"channels":        &geom.Channels,
		"bits_per_sample": &geom.BitsPerSample,
		"width":           &geom.Width,
		"height":          &geom.Height,
		"frame_rate":      &geom.FrameRate,
		"duration_frames": &geom.DurationFrames,
		"page_count":      &geom.PageCount,
	}
	for name, dst := range geomFields {
		if v := q.Get(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, pipeerr.New(pipeerr.KindInvalidInput, op, "invalid %s %q", name, v)
			}
			*dst = n
		}
	}
	tr.Geometry = &geom

	if q.Has("target_width") || q.Has("target_height") {
		size := &resize.Size{}
		for name, dst := range map[string]*int{"target_width": &size.Width, "target_height": &size.Height} {
			if v := q.Get(name); v != "" {
				n, err := strconv.Atoi(v)
				if err != nil {
					return nil, pipeerr.New(pipeerr.KindInvalidInput, op, "invalid %s %q", name, v)
				}
				*dst = n
			}
		}
		tr.Resize = size
	}
	return tr, nil
}

func toResponse(res *transcoder.Result) *TransformResponse {
	return &TransformResponse{Output: res.Output, Parts: res.Parts, Metadata: res.Metadata}
}
