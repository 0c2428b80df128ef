package codec

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"sync"

	"media-pipeline/internal/buffer"
	"media-pipeline/internal/container"
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/pipeerr"
	"media-pipeline/internal/ratecontrol"
	"media-pipeline/internal/segment"
	"media-pipeline/internal/textextract"
)

// Input is the single-buffer request a Strategy serves.
type Input struct {
	Data     []byte
	Geometry mediatypes.Geometry
	Quality  ratecontrol.Quality
	// Capacity bounds the output length.
	Capacity int
}

// Output is a Strategy result.
type Output struct {
	Data []byte
	// Mode is the segment mode used, zero for strategies that do not use one.
	Mode segment.Mode
	// TargetSize is the budget the strategy worked to, 0 if none.
	TargetSize int
}

// Strategy transforms one buffer into a target format.
type Strategy interface {
	Name() string
	Transform(in Input) (Output, error)
}

// ModeFunc picks a segment mode for a quality.
type ModeFunc func(q ratecontrol.Quality) segment.Mode

// RateControlled is a Strategy that sizes its output with the rate
// controller and fills it with a segment mode.
type RateControlled struct {
	name string
	mode ModeFunc
}

// NewRateControlled returns a rate-controlled strategy.
func NewRateControlled(name string, mode ModeFunc) *RateControlled {
	return &RateControlled{name: name, mode: mode}
}

// Fixed returns a ModeFunc that ignores quality.
func Fixed(m segment.Mode) ModeFunc {
	return func(ratecontrol.Quality) segment.Mode { return m }
}

// Name implements Strategy.
func (s *RateControlled) Name() string {
	return s.name
}

// Transform implements Strategy.
func (s *RateControlled) Transform(in Input) (Output, error) {
	target, err := ratecontrol.TargetSize(len(in.Data), in.Quality, in.Capacity)
	if err != nil {
		return Output{}, err
	}
	mode := s.mode(in.Quality)
	out, err := buffer.Acquire(target)
	if err != nil {
		return Output{}, err
	}
	if _, err := segment.Apply(mode, in.Data, target, out); err != nil {
		return Output{}, err
	}
	return Output{Data: out.Detach(), Mode: mode, TargetSize: target}, nil
}

// TextExtraction is a Strategy that converts a PDF into UTF-8 text.
type TextExtraction struct{}

// Name implements Strategy.
func (TextExtraction) Name() string {
	return "textextract"
}

// Transform implements Strategy. The whole text must fit Capacity.
func (TextExtraction) Transform(in Input) (Output, error) {
	return extractInto("codec.TextExtraction", in, func(text string) []byte { return []byte(text) })
}

// WordText is a Strategy that converts a PDF into the WordprocessingML body
// of a .docx document: one paragraph per line of extracted text. Only the
// main document part is produced, not the zip package around it.
type WordText struct{}

// Name implements Strategy.
func (WordText) Name() string {
	return "wordtext"
}

// Transform implements Strategy. The whole document must fit Capacity.
func (WordText) Transform(in Input) (Output, error) {
	return extractInto("codec.WordText", in, wordML)
}

func extractInto(op string, in Input, render func(text string) []byte) (Output, error) {
	if in.Capacity < 0 {
		return Output{}, pipeerr.New(pipeerr.KindInvalidInput, op, "negative capacity %d", in.Capacity)
	}
	doc, err := textextract.Extract(in.Data)
	if err != nil {
		return Output{}, err
	}
	data := render(doc.Text())
	if len(data) > in.Capacity {
		return Output{}, pipeerr.CapacityExceeded(op, len(data), in.Capacity)
	}
	return Output{Data: data}, nil
}

const (
	wordMLHeader = xml.Header + `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`
	wordMLFooter = `</w:body></w:document>`
)

// wordML renders text as WordprocessingML, one <w:p> per line.
func wordML(text string) []byte {
	var buf bytes.Buffer
	buf.WriteString(wordMLHeader)
	for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
		if line == "" {
			buf.WriteString("<w:p/>")
			continue
		}
		buf.WriteString(`<w:p><w:r><w:t xml:space="preserve">`)
		// Writes to a bytes.Buffer do not fail.
		_ = xml.EscapeText(&buf, []byte(line))
		buf.WriteString("</w:t></w:r></w:p>")
	}
	buf.WriteString(wordMLFooter)
	return buf.Bytes()
}

type key struct {
	kind   mediatypes.MediaKind
	format mediatypes.Format
}

// Registration describes one registry entry.
type Registration struct {
	Kind     mediatypes.MediaKind `json:"kind"`
	Format   mediatypes.Format    `json:"format"`
	Strategy string               `json:"strategy"`
}

// Registry maps (kind, format) to strategies. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	strategies map[key]Strategy
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[key]Strategy)}
}

// Register adds or replaces the strategy for kind and format.
func (r *Registry) Register(kind mediatypes.MediaKind, format mediatypes.Format, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[key{kind, format}] = s
}

// Lookup returns the strategy for kind and format.
func (r *Registry) Lookup(kind mediatypes.MediaKind, format mediatypes.Format) (Strategy, error) {
	r.mu.RLock()
	s, ok := r.strategies[key{kind, format}]
	r.mu.RUnlock()
	if !ok {
		return nil, pipeerr.New(pipeerr.KindUnsupportedFormat, "codec.Lookup", "no strategy for %s/%s", kind, format)
	}
	return s, nil
}

// Formats lists the registrations ordered by kind, then format.
func (r *Registry) Formats() []Registration {
	order := make(map[mediatypes.MediaKind]int)
	for i, k := range mediatypes.Kinds() {
		order[k] = i
	}

	r.mu.RLock()
	regs := make([]Registration, 0, len(r.strategies))
	for k, s := range r.strategies {
		regs = append(regs, Registration{Kind: k.kind, Format: k.format, Strategy: s.Name()})
	}
	r.mu.RUnlock()

	sort.Slice(regs, func(i, j int) bool {
		if regs[i].Kind != regs[j].Kind {
			oi, iok := order[regs[i].Kind]
			oj, jok := order[regs[j].Kind]
			if iok && jok {
				return oi < oj
			}
			return regs[i].Kind < regs[j].Kind
		}
		return regs[i].Format < regs[j].Format
	})
	return regs
}

// scaleMode returns a ModeFunc for byte scaling by (q+offset)/(100+offset).
func scaleMode(offset int) ModeFunc {
	return func(q ratecontrol.Quality) segment.Mode {
		return segment.Scale(int(q)+offset, 100+offset)
	}
}

// DefaultRegistry returns a registry with the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	sample := NewRateControlled("sample", Fixed(segment.Sample()))
	average := NewRateControlled("average", Fixed(segment.Average()))
	passthrough := NewRateControlled("passthrough", Fixed(segment.PassThrough()))

	r.Register(mediatypes.KindAudio, mediatypes.FormatMP3, sample)
	r.Register(mediatypes.KindAudio, mediatypes.FormatWAV, passthrough)
	r.Register(mediatypes.KindAudio, mediatypes.FormatAAC, average)

	r.Register(mediatypes.KindImage, mediatypes.FormatJPEG, NewRateControlled("scale(q/100)", scaleMode(0)))
	r.Register(mediatypes.KindImage, mediatypes.FormatPNG, passthrough)
	r.Register(mediatypes.KindImage, mediatypes.FormatWEBP, NewRateControlled("scale((q+20)/120)", scaleMode(20)))

	for _, f := range []mediatypes.Format{mediatypes.FormatMP4, mediatypes.FormatMOV, mediatypes.FormatMKV} {
		r.Register(mediatypes.KindVideo, f, sample)
	}
	r.Register(mediatypes.KindVideo, mediatypes.FormatAVI, average)

	r.Register(mediatypes.KindDocument, mediatypes.FormatPDF, sample)
	r.Register(mediatypes.KindDocument, mediatypes.FormatTXT, TextExtraction{})
	r.Register(mediatypes.KindDocument, mediatypes.FormatDOCX, WordText{})

	return r
}

// CompressionMode returns the segment mode the compress operation uses for
// a kind.
func CompressionMode(kind mediatypes.MediaKind) segment.Mode {
	switch kind {
	case mediatypes.KindAudio, mediatypes.KindVideo:
		return segment.Average()
	default:
		return segment.Sample()
	}
}

// PDFHeader is the prefix of a PDF file header line.
var PDFHeader = []byte("%PDF-")

// MergeSkipper returns the header skip to apply when merging items of a
// kind, or nil.
func MergeSkipper(kind mediatypes.MediaKind) container.SkipPrefixFunc {
	if kind == mediatypes.KindDocument {
		return container.HeaderSkipper(PDFHeader, container.FirstLine)
	}
	return nil
}

// String implements fmt.Stringer.
func (r Registration) String() string {
	return fmt.Sprintf("%s/%s=%s", r.Kind, r.Format, r.Strategy)
}
