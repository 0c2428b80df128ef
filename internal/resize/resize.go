package resize

import (
	"image"

	"media-pipeline/internal/buffer"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/pipeerr"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Size is a target width and height in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) validate(op string) error {
	if s.Width <= 0 || s.Height <= 0 {
		return pipeerr.New(pipeerr.KindInvalidInput, op, "target size must be positive, got %dx%d", s.Width, s.Height)
	}
	return nil
}

// Image resizes a raw interleaved pixel buffer described by g to target and
// appends the result to out. It returns the resized geometry.
func Image(in []byte, g mediatypes.ImageGeometry, target Size, out *buffer.ByteBuffer) (mediatypes.ImageGeometry, error) {
	const op = "resize.Image"

	if err := g.Validate(); err != nil {
		return mediatypes.ImageGeometry{}, err
	}
	if err := target.validate(op); err != nil {
		return mediatypes.ImageGeometry{}, err
	}
	if len(in) != g.PixelBytes() {
		return mediatypes.ImageGeometry{}, pipeerr.New(pipeerr.KindInvalidInput, op,
			"input is %d bytes, geometry %dx%dx%d needs %d", len(in), g.Width, g.Height, g.Channels, g.PixelBytes())
	}
	if out == nil {
		return mediatypes.ImageGeometry{}, pipeerr.New(pipeerr.KindInvalidInput, op, "nil output buffer")
	}

	result := mediatypes.ImageGeometry{Width: target.Width, Height: target.Height, Channels: g.Channels}
	if err := out.Reserve(result.PixelBytes()); err != nil {
		return mediatypes.ImageGeometry{}, err
	}

	if g.Channels == 2 {
		return result, nearestInterleaved(in, g, target, out)
	}

	resized := imaging.Resize(toImage(in, g), target.Width, target.Height, imaging.NearestNeighbor)
	return result, appendChannels(resized, g.Channels, out)
}

// toImage wraps or converts a raw buffer into an image.Image. Grey and RGBA
// buffers are wrapped without copying.
func toImage(in []byte, g mediatypes.ImageGeometry) image.Image {
	rect := image.Rect(0, 0, g.Width, g.Height)
	switch g.Channels {
	case 1:
		return &image.Gray{Pix: in, Stride: g.Width, Rect: rect}
	case 4:
		return &image.NRGBA{Pix: in, Stride: g.Width * 4, Rect: rect}
	default:
		return rgbToNRGBA(in, rect)
	}
}

func rgbToNRGBA(in []byte, rect image.Rectangle) *image.NRGBA {
	img := image.NewNRGBA(rect)
	for i, j := 0, 0; i+2 < len(in); i, j = i+3, j+4 {
		img.Pix[j] = in[i]
		img.Pix[j+1] = in[i+1]
		img.Pix[j+2] = in[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// appendChannels writes the first channels bytes of every NRGBA pixel.
func appendChannels(img *image.NRGBA, channels int, out *buffer.ByteBuffer) error {
	b := img.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+b.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			if err := out.Append(row[x : x+channels]); err != nil {
				return err
			}
		}
	}
	return nil
}

// nearestInterleaved samples src pixel floor(x*srcW/dstW), floor(y*srcH/dstH)
// for every destination pixel.
func nearestInterleaved(in []byte, g mediatypes.ImageGeometry, target Size, out *buffer.ByteBuffer) error {
	ch := g.Channels
	for y := 0; y < target.Height; y++ {
		sy := y * g.Height / target.Height
		for x := 0; x < target.Width; x++ {
			sx := x * g.Width / target.Width
			off := (sy*g.Width + sx) * ch
			if err := out.Append(in[off : off+ch]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Video resizes every RGB frame of in to target and appends the frames to
// out. It returns the resized geometry.
func Video(in []byte, g mediatypes.VideoGeometry, target Size, out *buffer.ByteBuffer) (mediatypes.VideoGeometry, error) {
	const op = "resize.Video"

	if err := g.Validate(); err != nil {
		return mediatypes.VideoGeometry{}, err
	}
	if err := target.validate(op); err != nil {
		return mediatypes.VideoGeometry{}, err
	}
	frameSize := g.FrameSize()
	if len(in) == 0 || len(in)%frameSize != 0 {
		return mediatypes.VideoGeometry{}, pipeerr.New(pipeerr.KindInvalidInput, op,
			"input is %d bytes, not a whole number of %d byte frames", len(in), frameSize)
	}
	frames := len(in) / frameSize
	if g.DurationFrames != 0 && g.DurationFrames != frames {
		return mediatypes.VideoGeometry{}, pipeerr.New(pipeerr.KindInvalidInput, op,
			"input holds %d frames, geometry declares %d", frames, g.DurationFrames)
	}
	if out == nil {
		return mediatypes.VideoGeometry{}, pipeerr.New(pipeerr.KindInvalidInput, op, "nil output buffer")
	}

	result := mediatypes.VideoGeometry{
		Width:          target.Width,
		Height:         target.Height,
		FrameRate:      g.FrameRate,
		DurationFrames: frames,
	}
	if err := out.Reserve(frames * result.FrameSize()); err != nil {
		return mediatypes.VideoGeometry{}, err
	}

	srcRect := image.Rect(0, 0, g.Width, g.Height)
	dst := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	for f := 0; f < frames; f++ {
		src := rgbToRGBA(in[f*frameSize:(f+1)*frameSize], srcRect)
		draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, srcRect, draw.Src, nil)
		for i := 0; i < len(dst.Pix); i += 4 {
			if err := out.Append(dst.Pix[i : i+3]); err != nil {
				return mediatypes.VideoGeometry{}, err
			}
		}
	}
	return result, nil
}

func rgbToRGBA(frame []byte, rect image.Rectangle) *image.RGBA {
	img := image.NewRGBA(rect)
	for i, j := 0, 0; i+2 < len(frame); i, j = i+3, j+4 {
		img.Pix[j] = frame[i]
		img.Pix[j+1] = frame[i+1]
		img.Pix[j+2] = frame[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}
