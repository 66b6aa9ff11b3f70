package scanner

import (
	"fmt"
	"strings"
)

type tokenKind uint8

const (
	tokIdent tokenKind = iota + 1
	tokString
	tokChar
	tokNumber
	tokPunct
	tokSystem // $display and friends
)

type token struct {
	kind  tokenKind
	text  string
	lower string
	pos   int
	line  int
	col   int
}

func (t token) is(s string) bool {
	return t.kind != tokString && t.kind != tokChar && t.lower == s
}

// lexError is the first unrecoverable lexical problem in a file.
type lexError struct {
	line, col int
	msg       string
}

func (e *lexError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.line, e.col, e.msg)
}

// cursor walks a source buffer tracking line and column.
type cursor struct {
	src  []byte
	pos  int
	line int
	col  int
	toks []token
}

func newCursor(src []byte) *cursor {
	return &cursor{src: src, line: 1, col: 1}
}

func (c *cursor) eof() bool { return c.pos >= len(c.src) }

func (c *cursor) peek(off int) byte {
	if c.pos+off >= len(c.src) {
		return 0
	}
	return c.src[c.pos+off]
}

func (c *cursor) advance() {
	if c.src[c.pos] == '\n' {
		c.line++
		c.col = 1
	} else {
		c.col++
	}
	c.pos++
}

func (c *cursor) skipLine() {
	for !c.eof() && c.src[c.pos] != '\n' {
		c.advance()
	}
}

// skipBlockComment consumes a /* */ comment starting at the cursor.
func (c *cursor) skipBlockComment() *lexError {
	line, col := c.line, c.col
	c.advance()
	c.advance()
	for !c.eof() {
		if c.src[c.pos] == '*' && c.peek(1) == '/' {
			c.advance()
			c.advance()
			return nil
		}
		c.advance()
	}
	return &lexError{line: line, col: col, msg: "unterminated block comment"}
}

func (c *cursor) emit(kind tokenKind, start, line, col int) {
	text := string(c.src[start:c.pos])
	c.toks = append(c.toks, token{
		kind:  kind,
		text:  text,
		lower: strings.ToLower(text),
		pos:   start,
		line:  line,
		col:   col,
	})
}

func (c *cursor) last() (token, bool) {
	if len(c.toks) == 0 {
		return token{}, false
	}
	return c.toks[len(c.toks)-1], true
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isIdentPart(b byte) bool {
	return isLetter(b) || isDigit(b) || b == '_'
}

// stream is a read-only view over a token slice used by the front ends.
type stream struct {
	toks []token
}

func (s stream) at(i int) token {
	if i < 0 || i >= len(s.toks) {
		return token{}
	}
	return s.toks[i]
}

func (s stream) is(i int, word string) bool {
	return s.at(i).is(word)
}

func (s stream) ident(i int) bool {
	return s.at(i).kind == tokIdent
}

// skipParens returns the index after the parenthesis group opening at i.
func (s stream) skipParens(i int, end int) int {
	depth := 0
	for j := i; j < end; j++ {
		switch s.toks[j].text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return j + 1
			}
		}
	}
	return end
}

// next returns the index of the first token at or after i with text word.
func (s stream) next(i, end int, word string) int {
	for j := i; j < end; j++ {
		if s.toks[j].is(word) {
			return j
		}
	}
	return -1
}
