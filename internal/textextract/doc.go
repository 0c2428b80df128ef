// Package textextract pulls shown text out of PDF documents.
//
// The PDF object model (cross-reference table, page tree and stream
// filters) is read with seehuhn.de/go/pdf. Each page's decoded content
// stream is then scanned for text-showing operators inside BT/ET blocks:
//
//	(Hello) Tj
//	[(Wor) -250 (ld)] TJ
//	(next line) '
//	1 2 (with spacing) "
//
// Literal strings support escapes, octal codes and balanced parentheses;
// hex strings are decoded as well. String bytes are interpreted as Latin-1
// with golang.org/x/text/encoding/charmap, which matches the standard
// encoding of simple fonts closely enough for search and indexing.
// Font-specific encodings and CMaps are not applied.
//
// Scan works on raw content stream bytes and can be used without a full
// document:
//
//	pages, err := textextract.Scan(strings.NewReader("BT (Hi) Tj ET"))
package textextract
