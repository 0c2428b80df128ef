package mediatypes

import (
	"errors"
	"testing"

	"media-pipeline/internal/pipeerr"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    MediaKind
		wantErr bool
	}{
		{name: "audio", input: "audio", want: KindAudio},
		{name: "upper case image", input: "IMAGE", want: KindImage},
		{name: "padded video", input: " video ", want: KindVideo},
		{name: "document", input: "document", want: KindDocument},
		{name: "unknown", input: "hologram", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseKind(tt.input)
			if tt.wantErr {
				if !errors.Is(err, pipeerr.ErrInvalidInput) {
					t.Errorf("ParseKind(%q) error = %v, want InvalidInput", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseKind(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"mp3", FormatMP3},
		{"JPG", FormatJPEG},
		{".png", FormatPNG},
		{"text", FormatTXT},
		{"docx", Format("docx")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLookupExtension(t *testing.T) {
	tests := []struct {
		name       string
		ext        string
		wantKind   MediaKind
		wantFormat Format
		wantOK     bool
	}{
		{name: "MP3 audio", ext: ".mp3", wantKind: KindAudio, wantFormat: FormatMP3, wantOK: true},
		{name: "JPEG image", ext: ".jpg", wantKind: KindImage, wantFormat: FormatJPEG, wantOK: true},
		{name: "MKV video", ext: ".mkv", wantKind: KindVideo, wantFormat: FormatMKV, wantOK: true},
		{name: "PDF document", ext: ".pdf", wantKind: KindDocument, wantFormat: FormatPDF, wantOK: true},
		{name: "Word document", ext: ".docx", wantKind: KindDocument, wantFormat: FormatDOCX, wantOK: true},
		{name: "Unknown extension", ext: ".xyz"},
		{name: "Empty extension", ext: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, format, ok := LookupExtension(tt.ext)
			if ok != tt.wantOK || kind != tt.wantKind || format != tt.wantFormat {
				t.Errorf("LookupExtension(%q) = (%v, %v, %v), want (%v, %v, %v)",
					tt.ext, kind, format, ok, tt.wantKind, tt.wantFormat, tt.wantOK)
			}
		})
	}
}

func TestExtensionsSorted(t *testing.T) {
	got := Extensions(KindImage)
	want := []string{".jpeg", ".jpg", ".png", ".webp"}
	if len(got) != len(want) {
		t.Fatalf("Extensions(image) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Extensions(image)[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatMP3, "audio/mpeg"},
		{FormatMOV, "video/quicktime"},
		{FormatPDF, "application/pdf"},
		{FormatDOCX, "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{Format("unknown"), "application/octet-stream"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := MimeType(tt.format); got != tt.want {
				t.Errorf("MimeType(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}
