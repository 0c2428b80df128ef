package textextract

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "simple Tj",
			content: "BT /F1 12 Tf 72 712 Td (Hello) Tj ET",
			want:    []string{"Hello"},
		},
		{
			name:    "text outside BT is ignored",
			content: "(stray) Tj BT (kept) Tj ET (after) Tj",
			want:    []string{"kept"},
		},
		{
			name:    "TJ array joins pieces",
			content: "BT [(Wor) -250 (ld)] TJ ET",
			want:    []string{"World"},
		},
		{
			name:    "quote operators",
			content: "BT (one) ' 1 2 (two) \" ET",
			want:    []string{"one", "two"},
		},
		{
			name:    "escaped parentheses",
			content: `BT (a \(b\) c) Tj ET`,
			want:    []string{"a (b) c"},
		},
		{
			name:    "balanced parentheses",
			content: "BT (f(x) = y) Tj ET",
			want:    []string{"f(x) = y"},
		},
		{
			name:    "octal and named escapes",
			content: `BT (caf\351\t\\) Tj ET`,
			want:    []string{"caf\xe9\t\\"},
		},
		{
			name:    "line continuation",
			content: "BT (split \\\nline) Tj ET",
			want:    []string{"split line"},
		},
		{
			name:    "hex string",
			content: "BT <48 65 6C6C 6F> Tj ET",
			want:    []string{"Hello"},
		},
		{
			name:    "odd hex digit padded",
			content: "BT <414> Tj ET",
			want:    []string{"A@"},
		},
		{
			name:    "dictionary is not a hex string",
			content: "/P <</MCID 0>> BDC BT (marked) Tj ET EMC",
			want:    []string{"marked"},
		},
		{
			name:    "comments skipped",
			content: "BT % (not text) Tj\n(text) Tj ET",
			want:    []string{"text"},
		},
		{
			name:    "inline image skipped",
			content: "BI /W 2 /H 1 /BPC 8 /CS /G ID \x00(\xff EI Q BT (after) Tj ET",
			want:    []string{"after"},
		},
		{
			name:    "ET inside string does not end text",
			content: "BT (BT ET) Tj ET",
			want:    []string{"BT ET"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Scan(strings.NewReader(tt.content))
			if err != nil {
				t.Fatalf("Scan() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestScanUnterminated(t *testing.T) {
	t.Parallel()

	for _, content := range []string{"BT (open Tj ET", "BT <4142 Tj ET", "BT [(a) TJ ET"} {
		if _, err := Scan(strings.NewReader(content)); !errors.Is(err, ErrUnterminated) {
			t.Errorf("Scan(%q) error = %v, want ErrUnterminated", content, err)
		}
	}
}

func TestDecodeLatin1(t *testing.T) {
	got, err := DecodeLatin1([]byte("caf\xe9\x01\tok\n"))
	if err != nil {
		t.Fatalf("DecodeLatin1() unexpected error: %v", err)
	}
	if want := "café\tok\n"; got != want {
		t.Errorf("DecodeLatin1() = %q, want %q", got, want)
	}
}

func TestFromContent(t *testing.T) {
	got, err := FromContent([]byte("BT (Hello) Tj [(Wor) 10 (ld)] TJ ( ) Tj ET"))
	if err != nil {
		t.Fatalf("FromContent() unexpected error: %v", err)
	}
	if want := "Hello World"; got != want {
		t.Errorf("FromContent() = %q, want %q", got, want)
	}
}
