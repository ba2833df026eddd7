package bibtex

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseFile parses the .bib file at path.
func ParseFile(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads a BibTeX database and returns its entries in source order.
// @string definitions are expanded, @comment and @preamble blocks are
// skipped, and text outside of entries is ignored.
func Parse(r io.Reader) ([]Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bibliography: %w", err)
	}

	p := &parser{
		src:    data,
		line:   1,
		macros: make(map[string]string, len(monthMacros)),
	}
	for k, v := range monthMacros {
		p.macros[k] = v
	}
	return p.parse()
}

type parser struct {
	src    []byte
	pos    int
	line   int
	macros map[string]string
}

func (p *parser) parse() ([]Entry, error) {
	entries := []Entry{}

	for p.skipTo('@') {
		start := p.line
		p.next()
		p.skipSpace()

		typ := strings.ToLower(p.ident())
		if typ == "" {
			continue
		}
		p.skipSpace()

		if typ == "comment" {
			if err := p.skipComment(); err != nil {
				return nil, err
			}
			continue
		}

		open := p.peek()
		if open != '{' && open != '(' {
			// Free text such as an e-mail address.
			continue
		}
		p.next()
		closer := byte('}')
		if open == '(' {
			closer = ')'
		}

		switch typ {
		case "preamble":
			if err := p.skipBalanced(open, closer, start); err != nil {
				return nil, err
			}
		case "string":
			if err := p.parseMacro(closer, start); err != nil {
				return nil, err
			}
		default:
			entry, err := p.parseEntry(typ, closer, start)
			if err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

func (p *parser) parseEntry(typ string, closer byte, start int) (Entry, error) {
	entry := Entry{
		Type:   typ,
		Fields: make(map[string]string),
		Line:   start,
	}

	p.skipSpace()
	entry.Key = p.key(closer)
	p.skipSpace()

	switch p.peek() {
	case closer:
		p.next()
		return entry, nil
	case ',':
		p.next()
	default:
		if p.eof() {
			return entry, &ParseError{Line: start, Msg: fmt.Sprintf("unterminated @%s entry", typ)}
		}
		return entry, p.errorf("expected ',' after citation key %q", entry.Key)
	}

	for {
		p.skipSpace()
		if p.eof() {
			return entry, &ParseError{Line: start, Msg: fmt.Sprintf("unterminated @%s entry %q", typ, entry.Key)}
		}
		if p.peek() == closer {
			p.next()
			return entry, nil
		}

		name := strings.ToLower(p.ident())
		if name == "" {
			return entry, p.errorf("expected field name in entry %q", entry.Key)
		}
		p.skipSpace()
		if p.peek() != '=' {
			return entry, p.errorf("expected '=' after field %q in entry %q", name, entry.Key)
		}
		p.next()

		value, err := p.value()
		if err != nil {
			return entry, err
		}
		entry.Fields[name] = value

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.next()
		case closer:
			p.next()
			return entry, nil
		default:
			if p.eof() {
				return entry, &ParseError{Line: start, Msg: fmt.Sprintf("unterminated @%s entry %q", typ, entry.Key)}
			}
			return entry, p.errorf("expected ',' or '%c' after field %q in entry %q", closer, name, entry.Key)
		}
	}
}

// parseMacro reads the body of an @string definition.
func (p *parser) parseMacro(closer byte, start int) error {
	p.skipSpace()
	name := strings.ToLower(p.ident())
	if name == "" {
		return p.errorf("expected macro name in @string")
	}
	p.skipSpace()
	if p.peek() != '=' {
		return p.errorf("expected '=' after macro %q", name)
	}
	p.next()

	value, err := p.value()
	if err != nil {
		return err
	}
	p.skipSpace()
	if p.peek() != closer {
		if p.eof() {
			return &ParseError{Line: start, Msg: "unterminated @string"}
		}
		return p.errorf("expected '%c' after macro %q", closer, name)
	}
	p.next()

	p.macros[name] = value
	return nil
}

// value reads a field value: braced, quoted, numeric or macro parts
// joined with '#'.
func (p *parser) value() (string, error) {
	var b strings.Builder

	for {
		p.skipSpace()
		if p.eof() {
			return "", p.errorf("unexpected end of input, expected value")
		}

		switch c := p.peek(); {
		case c == '{':
			s, err := p.delimited('{')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case c == '"':
			s, err := p.delimited('"')
			if err != nil {
				return "", err
			}
			b.WriteString(s)
		case isIdentByte(c):
			word := p.ident()
			if isNumber(word) {
				b.WriteString(word)
				break
			}
			expansion, ok := p.macros[strings.ToLower(word)]
			if !ok {
				return "", p.errorf("undefined macro %q", word)
			}
			b.WriteString(expansion)
		default:
			return "", p.errorf("unexpected %q, expected value", c)
		}

		p.skipSpace()
		if p.peek() != '#' {
			return b.String(), nil
		}
		p.next()
	}
}

// delimited reads a braced or quoted value and returns its content
// without the outer delimiters. Nested braces are kept verbatim.
func (p *parser) delimited(open byte) (string, error) {
	start := p.line
	p.next()
	begin := p.pos
	depth := 0

	for !p.eof() {
		switch p.peek() {
		case '{':
			depth++
		case '}':
			if depth == 0 {
				if open != '{' {
					return "", p.errorf("unbalanced '}' in quoted value")
				}
				s := string(p.src[begin:p.pos])
				p.next()
				return s, nil
			}
			depth--
		case '"':
			if open == '"' && depth == 0 {
				s := string(p.src[begin:p.pos])
				p.next()
				return s, nil
			}
		}
		p.next()
	}

	return "", &ParseError{Line: start, Msg: "unterminated field value"}
}

// skipComment skips an @comment, either a balanced block or the rest of the line.
func (p *parser) skipComment() error {
	switch p.peek() {
	case '{':
		p.next()
		return p.skipBalanced('{', '}', p.line)
	case '(':
		p.next()
		return p.skipBalanced('(', ')', p.line)
	}
	for !p.eof() && p.peek() != '\n' {
		p.next()
	}
	return nil
}

// skipBalanced skips to the delimiter closing an already consumed opener.
func (p *parser) skipBalanced(open, closer byte, start int) error {
	depth := 1
	for !p.eof() {
		switch p.peek() {
		case open:
			depth++
		case closer:
			depth--
		}
		p.next()
		if depth == 0 {
			return nil
		}
	}
	return &ParseError{Line: start, Msg: "unterminated block"}
}

// key reads a citation key, which runs up to ',' or the entry closer.
func (p *parser) key(closer byte) string {
	begin := p.pos
	for !p.eof() {
		c := p.peek()
		if c == ',' || c == closer || isSpace(c) {
			break
		}
		p.next()
	}
	return string(p.src[begin:p.pos])
}

func (p *parser) ident() string {
	begin := p.pos
	for !p.eof() && isIdentByte(p.peek()) {
		p.next()
	}
	return string(p.src[begin:p.pos])
}

// skipTo advances to the next occurrence of c and reports whether one was found.
func (p *parser) skipTo(c byte) bool {
	for !p.eof() {
		if p.peek() == c {
			return true
		}
		p.next()
	}
	return false
}

func (p *parser) skipSpace() {
	for !p.eof() && isSpace(p.peek()) {
		p.next()
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) next() {
	if p.eof() {
		return
	}
	if p.src[p.pos] == '\n' {
		p.line++
	}
	p.pos++
}

func (p *parser) errorf(format string, args ...any) error {
	return &ParseError{Line: p.line, Msg: fmt.Sprintf(format, args...)}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentByte(c byte) bool {
	if c == 0 || isSpace(c) {
		return false
	}
	return !strings.ContainsRune(`{}()",=#%'@`, rune(c))
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
