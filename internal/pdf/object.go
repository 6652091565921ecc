// Package pdf reads just enough of a PDF file to walk its page tree:
// cross-reference tables and streams, object streams, and page
// dictionaries. It is used to inspect exported documents.
package pdf

import (
	"bytes"
	"fmt"
	"strconv"
)

// Kind identifies the type of a PDF object.
type Kind int

const (
	Null Kind = iota
	Bool
	Int
	Real
	String
	Name
	Array
	Dictionary
	Stream
	Ref
)

// Object holds any PDF object value.
type Object struct {
	Kind  Kind
	Bool  bool
	Int   int64
	Real  float64
	Str   []byte
	Name  string
	Items []*Object
	Dict  Dict
	Data  []byte // raw, still-encoded stream bytes
	Ref   Reference
}

var nullObject = &Object{Kind: Null}

// Number returns the numeric value of an Int or Real object.
func (o *Object) Number() (float64, bool) {
	if o == nil {
		return 0, false
	}
	switch o.Kind {
	case Int:
		return float64(o.Int), true
	case Real:
		return o.Real, true
	}
	return 0, false
}

// Reference is an indirect object reference (N G R).
type Reference struct {
	Number int
	Gen    int
}

// Dict is a PDF dictionary.
type Dict map[string]*Object

// Int returns an integer entry.
func (d Dict) Int(key string) (int64, bool) {
	n, ok := d[key].Number()
	return int64(n), ok
}

// Name returns a name entry.
func (d Dict) Name(key string) (string, bool) {
	o, ok := d[key]
	if !ok || o.Kind != Name {
		return "", false
	}
	return o.Name, true
}

const maxDepth = 100

// lexer is a recursive-descent object parser over a byte slice.
type lexer struct {
	buf   []byte
	pos   int
	depth int
}

func newLexer(buf []byte, pos int) *lexer {
	return &lexer{buf: buf, pos: pos}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

// skip moves past whitespace and comments.
func (l *lexer) skip() {
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		switch {
		case c == '%':
			for l.pos < len(l.buf) && l.buf[l.pos] != '\n' && l.buf[l.pos] != '\r' {
				l.pos++
			}
		case isSpace(c):
			l.pos++
		default:
			return
		}
	}
}

// accept consumes s when it is next in the input.
func (l *lexer) accept(s string) bool {
	if bytes.HasPrefix(l.buf[l.pos:], []byte(s)) {
		l.pos += len(s)
		return true
	}
	return false
}

// word reads a regular token.
func (l *lexer) word() string {
	start := l.pos
	for l.pos < len(l.buf) && !isSpace(l.buf[l.pos]) && !isDelimiter(l.buf[l.pos]) {
		l.pos++
	}
	return string(l.buf[start:l.pos])
}

// header consumes "N G obj" and returns N.
func (l *lexer) header() (int, error) {
	l.skip()
	n, err := strconv.Atoi(l.word())
	if err != nil {
		return 0, fmt.Errorf("object number: %w", err)
	}
	l.skip()
	l.word()
	l.skip()
	if !l.accept("obj") {
		return 0, fmt.Errorf("expected 'obj' after object %d", n)
	}
	return n, nil
}

// object parses the next object.
func (l *lexer) object() (*Object, error) {
	if l.depth > maxDepth {
		return nil, fmt.Errorf("exceeded maximum nesting depth")
	}
	l.depth++
	defer func() { l.depth-- }()

	l.skip()
	if l.pos >= len(l.buf) {
		return nullObject, nil
	}
	c := l.buf[l.pos]
	switch {
	case l.accept("null"):
		return nullObject, nil
	case l.accept("true"):
		return &Object{Kind: Bool, Bool: true}, nil
	case l.accept("false"):
		return &Object{Kind: Bool}, nil
	case c == '(':
		return l.literal(), nil
	case l.accept("<<"):
		return l.dictionary()
	case c == '<':
		return l.hex(), nil
	case c == '/':
		return &Object{Kind: Name, Name: l.name()}, nil
	case c == '[':
		return l.array()
	case c == '+' || c == '-' || c == '.' || (c >= '0' && c <= '9'):
		return l.number(), nil
	}
	l.word()
	if l.pos < len(l.buf) && l.buf[l.pos] == c {
		l.pos++
	}
	return nullObject, nil
}

// literal parses a (string). Escapes are resolved only as far as page
// inspection needs; octal escapes and line continuations are honoured.
func (l *lexer) literal() *Object {
	l.pos++
	var out bytes.Buffer
	depth := 1
	for l.pos < len(l.buf) {
		c := l.buf[l.pos]
		l.pos++
		switch c {
		case '\\':
			if l.pos >= len(l.buf) {
				break
			}
			e := l.buf[l.pos]
			l.pos++
			switch e {
			case 'n':
				out.WriteByte('\n')
			case 'r':
				out.WriteByte('\r')
			case 't':
				out.WriteByte('\t')
			case '\n':
			case '\r':
				l.accept("\n")
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && l.pos < len(l.buf) && l.buf[l.pos] >= '0' && l.buf[l.pos] <= '7'; i++ {
						v = v*8 + int(l.buf[l.pos]-'0')
						l.pos++
					}
					out.WriteByte(byte(v))
				} else {
					out.WriteByte(e)
				}
			}
		case '(':
			depth++
			out.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				return &Object{Kind: String, Str: out.Bytes()}
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
		}
	}
	return &Object{Kind: String, Str: out.Bytes()}
}

func unhex(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10
	}
	return 0
}

// hex parses a <hex string>.
func (l *lexer) hex() *Object {
	l.pos++
	var digits []byte
	for l.pos < len(l.buf) && l.buf[l.pos] != '>' {
		if !isSpace(l.buf[l.pos]) {
			digits = append(digits, l.buf[l.pos])
		}
		l.pos++
	}
	l.accept(">")
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, len(digits)/2)
	for i := range out {
		out[i] = unhex(digits[2*i])<<4 | unhex(digits[2*i+1])
	}
	return &Object{Kind: String, Str: out}
}

// name parses /Name, resolving #XX escapes.
func (l *lexer) name() string {
	l.pos++
	raw := l.word()
	if !bytes.ContainsRune([]byte(raw), '#') {
		return raw
	}
	var out bytes.Buffer
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			out.WriteByte(unhex(raw[i+1])<<4 | unhex(raw[i+2]))
			i += 2
			continue
		}
		out.WriteByte(raw[i])
	}
	return out.String()
}

func (l *lexer) array() (*Object, error) {
	l.pos++
	arr := &Object{Kind: Array}
	for {
		l.skip()
		if l.pos >= len(l.buf) {
			return arr, nil
		}
		if l.buf[l.pos] == ']' {
			l.pos++
			return arr, nil
		}
		item, err := l.object()
		if err != nil {
			return nil, err
		}
		arr.Items = append(arr.Items, item)
	}
}

// dictionary parses the body of <<...>> and a trailing stream, if any.
func (l *lexer) dictionary() (*Object, error) {
	d := make(Dict)
	for {
		l.skip()
		if l.pos >= len(l.buf) || l.accept(">>") {
			break
		}
		if l.buf[l.pos] != '/' {
			l.pos++
			continue
		}
		key := l.name()
		val, err := l.object()
		if err != nil {
			return nil, err
		}
		d[key] = val
	}

	l.skip()
	if !l.accept("stream") {
		return &Object{Kind: Dictionary, Dict: d}, nil
	}
	l.accept("\r")
	l.accept("\n")

	start := l.pos
	end := -1
	if n, ok := d["Length"]; ok && n.Kind == Int && start+int(n.Int) <= len(l.buf) {
		end = start + int(n.Int)
	}
	if end < 0 {
		i := bytes.Index(l.buf[start:], []byte("endstream"))
		if i < 0 {
			i = len(l.buf) - start
		}
		end = start + i
	}
	l.pos = end
	l.skip()
	l.accept("endstream")
	return &Object{Kind: Stream, Dict: d, Data: l.buf[start:end]}, nil
}

// number parses an integer, a real, or an "N G R" reference.
func (l *lexer) number() *Object {
	tok := l.word()
	n, intErr := strconv.ParseInt(tok, 10, 64)
	if intErr == nil {
		after := l.pos
		l.skip()
		if g, err := strconv.Atoi(l.word()); err == nil {
			l.skip()
			if l.pos < len(l.buf) && l.buf[l.pos] == 'R' &&
				(l.pos+1 >= len(l.buf) || isSpace(l.buf[l.pos+1]) || isDelimiter(l.buf[l.pos+1])) {
				l.pos++
				return &Object{Kind: Ref, Ref: Reference{Number: int(n), Gen: g}}
			}
		}
		l.pos = after
		return &Object{Kind: Int, Int: n}
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return &Object{Kind: Real, Real: f}
	}
	return nullObject
}
