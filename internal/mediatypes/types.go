package mediatypes

import (
	"sort"
	"strings"

	"media-pipeline/internal/pipeerr"
)

// MediaKind is the family of media a buffer holds.
type MediaKind string

const (
	// KindAudio is raw or encoded audio.
	KindAudio MediaKind = "audio"
	// KindImage is raw pixels or an encoded image.
	KindImage MediaKind = "image"
	// KindVideo is raw frames or an encoded video.
	KindVideo MediaKind = "video"
	// KindDocument is a paged document such as a PDF.
	KindDocument MediaKind = "document"
)

// Kinds lists every media kind in a stable order.
func Kinds() []MediaKind {
	return []MediaKind{KindAudio, KindImage, KindVideo, KindDocument}
}

// ParseKind parses a kind name, case-insensitively.
func ParseKind(s string) (MediaKind, error) {
	k := MediaKind(strings.ToLower(strings.TrimSpace(s)))
	switch k {
	case KindAudio, KindImage, KindVideo, KindDocument:
		return k, nil
	}
	return "", pipeerr.New(pipeerr.KindInvalidInput, "mediatypes.ParseKind", "unknown media kind %q", s)
}

// Format identifies a target format. Formats carry no codec knowledge; they
// only select a registered strategy.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatAAC  Format = "aac"
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWEBP Format = "webp"
	FormatMP4  Format = "mp4"
	FormatMOV  Format = "mov"
	FormatAVI  Format = "avi"
	FormatMKV  Format = "mkv"
	FormatPDF  Format = "pdf"
	FormatTXT  Format = "txt"
	FormatDOCX Format = "docx"
)

// ParseFormat normalises a format identifier. Aliases such as "jpg" map to
// their canonical form. Unknown identifiers are returned lower-cased so that
// a strategy lookup can report them as unsupported.
func ParseFormat(s string) Format {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if canonical, ok := formatAliases[f]; ok {
		return canonical
	}
	return f
}

var formatAliases = map[Format]Format{
	"jpg":  FormatJPEG,
	"text": FormatTXT,
	"m4a":  FormatAAC,
}

type extensionInfo struct {
	kind   MediaKind
	format Format
}

var extensions = map[string]extensionInfo{
	".mp3":  {KindAudio, FormatMP3},
	".wav":  {KindAudio, FormatWAV},
	".aac":  {KindAudio, FormatAAC},
	".m4a":  {KindAudio, FormatAAC},
	".jpg":  {KindImage, FormatJPEG},
	".jpeg": {KindImage, FormatJPEG},
	".png":  {KindImage, FormatPNG},
	".webp": {KindImage, FormatWEBP},
	".mp4":  {KindVideo, FormatMP4},
	".mov":  {KindVideo, FormatMOV},
	".avi":  {KindVideo, FormatAVI},
	".mkv":  {KindVideo, FormatMKV},
	".pdf":  {KindDocument, FormatPDF},
	".txt":  {KindDocument, FormatTXT},
	".docx": {KindDocument, FormatDOCX},
}

// LookupExtension returns the kind and format for a lower-case extension
// including the leading dot (e.g. ".mp3").
func LookupExtension(ext string) (MediaKind, Format, bool) {
	info, ok := extensions[ext]
	return info.kind, info.format, ok
}

// Extensions returns the known extensions for kind, sorted.
func Extensions(kind MediaKind) []string {
	var exts []string
	for ext, info := range extensions {
		if info.kind == kind {
			exts = append(exts, ext)
		}
	}
	sort.Strings(exts)
	return exts
}

var mimeTypes = map[Format]string{
	FormatMP3:  "audio/mpeg",
	FormatWAV:  "audio/wav",
	FormatAAC:  "audio/aac",
	FormatJPEG: "image/jpeg",
	FormatPNG:  "image/png",
	FormatWEBP: "image/webp",
	FormatMP4:  "video/mp4",
	FormatMOV:  "video/quicktime",
	FormatAVI:  "video/x-msvideo",
	FormatMKV:  "video/x-matroska",
	FormatPDF:  "application/pdf",
	FormatTXT:  "text/plain; charset=utf-8",
	FormatDOCX: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// MimeType returns the MIME type for a format, or
// "application/octet-stream" if the format is not recognised.
func MimeType(f Format) string {
	if mime, ok := mimeTypes[f]; ok {
		return mime
	}
	return "application/octet-stream"
}
