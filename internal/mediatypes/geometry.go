package mediatypes

import "media-pipeline/internal/pipeerr"

// RGBChannels is the channel count of raw video frames.
const RGBChannels = 3

// Geometry is the kind-specific metadata carried alongside a buffer.
type Geometry interface {
	Kind() MediaKind
	Validate() error
}

// AudioGeometry describes interleaved PCM-like audio.
type AudioGeometry struct {
	SampleRate    int `json:"sampleRate"`
	Channels      int `json:"channels"`
	BitsPerSample int `json:"bitsPerSample"`
}

// Kind implements Geometry.
func (AudioGeometry) Kind() MediaKind { return KindAudio }

// Validate requires positive rate and channels and a whole-byte sample width.
func (g AudioGeometry) Validate() error {
	const op = "mediatypes.AudioGeometry"
	switch {
	case g.SampleRate <= 0:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "sample rate must be positive, got %d", g.SampleRate)
	case g.Channels <= 0:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "channels must be positive, got %d", g.Channels)
	case g.BitsPerSample <= 0 || g.BitsPerSample%8 != 0:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "bits per sample must be a positive multiple of 8, got %d", g.BitsPerSample)
	}
	return nil
}

// BytesPerFrame returns the size of one sample across all channels.
func (g AudioGeometry) BytesPerFrame() int {
	return g.BitsPerSample / 8 * g.Channels
}

// BytesPerSecond returns the byte rate.
func (g AudioGeometry) BytesPerSecond() int {
	return g.BytesPerFrame() * g.SampleRate
}

// ImageGeometry describes a raw interleaved pixel buffer.
type ImageGeometry struct {
	Width    int `json:"width"`
	Height   int `json:"height"`
	Channels int `json:"channels"`
}

// Kind implements Geometry.
func (ImageGeometry) Kind() MediaKind { return KindImage }

// Validate requires positive dimensions and 1 to 4 channels.
func (g ImageGeometry) Validate() error {
	const op = "mediatypes.ImageGeometry"
	switch {
	case g.Width <= 0 || g.Height <= 0:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "dimensions must be positive, got %dx%d", g.Width, g.Height)
	case g.Channels < 1 || g.Channels > 4:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "channels must be in [1,4], got %d", g.Channels)
	}
	return nil
}

// PixelBytes returns width*height*channels.
func (g ImageGeometry) PixelBytes() int {
	return g.Width * g.Height * g.Channels
}

// VideoGeometry describes a sequence of raw RGB frames.
type VideoGeometry struct {
	Width     int `json:"width"`
	Height    int `json:"height"`
	FrameRate int `json:"frameRate"`
	// DurationFrames is the number of frames, 0 if unknown.
	DurationFrames int `json:"durationFrames"`
}

// Kind implements Geometry.
func (VideoGeometry) Kind() MediaKind { return KindVideo }

// Validate requires positive dimensions and frame rate.
func (g VideoGeometry) Validate() error {
	const op = "mediatypes.VideoGeometry"
	switch {
	case g.FrameRate <= 0:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "frame rate must be positive, got %d", g.FrameRate)
	case g.Width <= 0 || g.Height <= 0:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "dimensions must be positive, got %dx%d", g.Width, g.Height)
	case g.DurationFrames < 0:
		return pipeerr.New(pipeerr.KindInvalidInput, op, "duration must not be negative, got %d", g.DurationFrames)
	}
	return nil
}

// FrameSize returns the byte size of one RGB frame.
func (g VideoGeometry) FrameSize() int {
	return g.Width * g.Height * RGBChannels
}

// DocumentGeometry describes a paged document.
type DocumentGeometry struct {
	PageCount int `json:"pageCount"`
}

// Kind implements Geometry.
func (DocumentGeometry) Kind() MediaKind { return KindDocument }

// Validate requires a non-negative page count.
func (g DocumentGeometry) Validate() error {
	if g.PageCount < 0 {
		return pipeerr.New(pipeerr.KindInvalidInput, "mediatypes.DocumentGeometry", "page count must not be negative, got %d", g.PageCount)
	}
	return nil
}

// CheckGeometry validates g and checks that it belongs to kind. A nil
// geometry is accepted unless required is set.
func CheckGeometry(kind MediaKind, g Geometry, required bool) error {
	const op = "mediatypes.CheckGeometry"
	if g == nil {
		if required {
			return pipeerr.New(pipeerr.KindInvalidInput, op, "%s geometry is required", kind)
		}
		return nil
	}
	if g.Kind() != kind {
		return pipeerr.New(pipeerr.KindInvalidInput, op, "%s geometry supplied for %s request", g.Kind(), kind)
	}
	return g.Validate()
}
