package textextract

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// ErrUnterminated is returned for a string or array that runs past the
// end of the content stream.
var ErrUnterminated = errors.New("unterminated content stream token")

type tokenKind int

const (
	tokOperator tokenKind = iota
	tokString
	tokArrayStart
	tokArrayEnd
	tokOther
)

type token struct {
	kind tokenKind
	text string
}

// lexer splits a content stream into the tokens text extraction cares
// about. Numbers, names and dictionaries are reported as tokOther.
type lexer struct {
	r *bufio.Reader
}

func isWhite(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) next() (token, error) {
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			return token{}, err
		}
		switch {
		case isWhite(c):
			continue
		case c == '%':
			if err := l.skipComment(); err != nil {
				return token{}, err
			}
			continue
		case c == '(':
			s, err := l.literal()
			return token{kind: tokString, text: s}, err
		case c == '<':
			peek, err := l.r.Peek(1)
			if err == nil && peek[0] == '<' {
				_, _ = l.r.ReadByte()
				return token{kind: tokOther, text: "<<"}, nil
			}
			s, err := l.hex()
			return token{kind: tokString, text: s}, err
		case c == '>':
			if peek, err := l.r.Peek(1); err == nil && peek[0] == '>' {
				_, _ = l.r.ReadByte()
			}
			return token{kind: tokOther, text: ">>"}, nil
		case c == '[':
			return token{kind: tokArrayStart}, nil
		case c == ']':
			return token{kind: tokArrayEnd}, nil
		case c == '/':
			name := l.regular()
			return token{kind: tokOther, text: "/" + name}, nil
		case isDelim(c):
			return token{kind: tokOther, text: string(c)}, nil
		default:
			_ = l.r.UnreadByte()
			word := l.regular()
			if isNumber(word) {
				return token{kind: tokOther, text: word}, nil
			}
			return token{kind: tokOperator, text: word}, nil
		}
	}
}

func (l *lexer) skipComment() error {
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			return err
		}
		if c == '\n' || c == '\r' {
			return nil
		}
	}
}

func (l *lexer) regular() string {
	var sb strings.Builder
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			return sb.String()
		}
		if isWhite(c) || isDelim(c) {
			_ = l.r.UnreadByte()
			return sb.String()
		}
		sb.WriteByte(c)
	}
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && c != '.' && c != '-' && c != '+' {
			return false
		}
	}
	return true
}

// literal reads a literal string after its opening parenthesis.
func (l *lexer) literal() (string, error) {
	var sb strings.Builder
	depth := 1
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			return sb.String(), ErrUnterminated
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return sb.String(), nil
			}
		case '\\':
			if err := l.escape(&sb); err != nil {
				return sb.String(), err
			}
			continue
		case '\r':
			// end-of-line markers inside strings read as a single newline
			if peek, err := l.r.Peek(1); err == nil && peek[0] == '\n' {
				_, _ = l.r.ReadByte()
			}
			c = '\n'
		}
		sb.WriteByte(c)
	}
}

func (l *lexer) escape(sb *strings.Builder) error {
	c, err := l.r.ReadByte()
	if err != nil {
		return ErrUnterminated
	}
	switch c {
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 't':
		sb.WriteByte('\t')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case '\r':
		if peek, err := l.r.Peek(1); err == nil && peek[0] == '\n' {
			_, _ = l.r.ReadByte()
		}
	case '\n':
		// line continuation
	case '0', '1', '2', '3', '4', '5', '6', '7':
		v := int(c - '0')
		for i := 0; i < 2; i++ {
			peek, err := l.r.Peek(1)
			if err != nil || peek[0] < '0' || peek[0] > '7' {
				break
			}
			_, _ = l.r.ReadByte()
			v = v*8 + int(peek[0]-'0')
		}
		sb.WriteByte(byte(v))
	default:
		// \( \) \\ and unknown escapes yield the character itself
		sb.WriteByte(c)
	}
	return nil
}

// hex reads a hex string after its opening angle bracket. An odd final
// digit is padded with zero.
func (l *lexer) hex() (string, error) {
	var sb strings.Builder
	var hi byte
	haveHi := false
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			return sb.String(), ErrUnterminated
		}
		if c == '>' {
			if haveHi {
				sb.WriteByte(hi << 4)
			}
			return sb.String(), nil
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if haveHi {
			sb.WriteByte(hi<<4 | v)
			haveHi = false
		} else {
			hi = v
			haveHi = true
		}
	}
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// skipInlineImage discards inline image data up to and including the EI
// operator.
func (l *lexer) skipInlineImage() error {
	var prev [3]byte
	for {
		c, err := l.r.ReadByte()
		if err != nil {
			return err
		}
		if isWhite(prev[0]) && prev[1] == 'E' && prev[2] == 'I' && isWhite(c) {
			return nil
		}
		prev[0], prev[1], prev[2] = prev[1], prev[2], c
	}
}

// Scan returns the raw bytes of every string shown inside BT/ET blocks of
// a content stream, one element per shown string or TJ array. The bytes
// are not yet decoded to text.
func Scan(r io.Reader) ([]string, error) {
	l := &lexer{r: bufio.NewReader(r)}

	var (
		shown    []string
		operands []string
		array    []string
		inArray  bool
		inText   bool
	)
	for {
		tok, err := l.next()
		if errors.Is(err, io.EOF) {
			if inArray {
				return shown, ErrUnterminated
			}
			return shown, nil
		}
		if err != nil {
			return shown, err
		}

		switch tok.kind {
		case tokString:
			if inArray {
				array = append(array, tok.text)
			} else {
				operands = append(operands, tok.text)
			}
		case tokArrayStart:
			inArray = true
			array = array[:0]
		case tokArrayEnd:
			inArray = false
			operands = append(operands, strings.Join(array, ""))
		case tokOperator:
			switch tok.text {
			case "BT":
				inText = true
			case "ET":
				inText = false
			case "Tj", "TJ", "'", "\"":
				if inText && len(operands) > 0 {
					shown = append(shown, operands[len(operands)-1])
				}
			case "ID":
				if err := l.skipInlineImage(); err != nil && !errors.Is(err, io.EOF) {
					return shown, err
				}
			}
			operands = operands[:0]
		}
	}
}
