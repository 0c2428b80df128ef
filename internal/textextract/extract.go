package textextract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode"

	"media-pipeline/internal/pipeerr"

	"golang.org/x/text/encoding/charmap"
	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// Document is the text of a PDF, one entry per page.
type Document struct {
	Pages []string
}

// Text joins the page texts with newlines.
func (d *Document) Text() string {
	return strings.Join(d.Pages, "\n")
}

// Extract reads a PDF document from data and returns the text shown on
// each page.
func Extract(data []byte) (*Document, error) {
	const op = "textextract.Extract"

	if len(data) == 0 {
		return nil, pipeerr.EmptyInput(op)
	}

	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return nil, pipeerr.Wrap(pipeerr.KindInvalidInput, op, fmt.Errorf("reading document: %w", err))
	}
	defer r.Close()

	refs, err := pagetree.FindPages(r)
	if err != nil {
		return nil, pipeerr.Wrap(pipeerr.KindInvalidInput, op, fmt.Errorf("reading page tree: %w", err))
	}

	doc := &Document{Pages: make([]string, 0, len(refs))}
	for i, ref := range refs {
		if ref == 0 {
			// inline page dictionaries are not valid page objects
			doc.Pages = append(doc.Pages, "")
			continue
		}
		content, err := pagetree.ContentStream(r, ref)
		if err != nil {
			return nil, pipeerr.Wrap(pipeerr.KindInvalidInput, op, fmt.Errorf("page %d: %w", i+1, err))
		}
		text, err := pageText(content)
		if err != nil {
			return nil, pipeerr.Wrap(pipeerr.KindInvalidInput, op, fmt.Errorf("page %d: %w", i+1, err))
		}
		doc.Pages = append(doc.Pages, text)
	}
	return doc, nil
}

// FromContent extracts the text of a single decoded content stream.
func FromContent(content []byte) (string, error) {
	text, err := pageText(bytes.NewReader(content))
	if err != nil {
		return "", pipeerr.Wrap(pipeerr.KindInvalidInput, "textextract.FromContent", err)
	}
	return text, nil
}

func pageText(content io.Reader) (string, error) {
	shown, err := Scan(content)
	if err != nil {
		return "", err
	}
	pieces := make([]string, 0, len(shown))
	for _, s := range shown {
		decoded, err := DecodeLatin1([]byte(s))
		if err != nil {
			return "", err
		}
		if decoded = strings.TrimSpace(decoded); decoded != "" {
			pieces = append(pieces, decoded)
		}
	}
	return strings.Join(pieces, " "), nil
}

// DecodeLatin1 converts ISO 8859-1 bytes to UTF-8 and drops control
// characters other than tab and newline.
func DecodeLatin1(b []byte) (string, error) {
	utf, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, string(utf)), nil
}
