package scanner

// vhdlReserved holds VHDL-2008 reserved words. A reserved word never names a
// unit and never prefixes an attribute tick.
var vhdlReserved = wordSet(`abs access after alias all and architecture array assert assume
assume_guarantee attribute begin block body buffer bus case component configuration
constant context cover default disconnect downto else elsif end entity exit fairness
file for force function generate generic group guarded if impure in inertial inout is
label library linkage literal loop map mod nand new next nor not null of on open or
others out package parameter port postponed procedure process property protected pure
range record register reject release rem report restrict restrict_guarantee return rol
ror select sequence severity shared signal sla sll sra srl strong subtype then to
transport type unaffected units until use variable vmode vprop vunit wait when while
with xnor xor`)

var vhdlMultiPunct = []string{"<=", "=>", ":=", "/=", ">=", "**", "<>", "??", "?=", "?/=", "<<", ">>"}

func lexVHDL(src []byte) ([]token, *lexError) {
	c := newCursor(src)
	for !c.eof() {
		b := c.src[c.pos]
		start, line, col := c.pos, c.line, c.col
		switch {
		case isSpace(b):
			c.advance()
		case b == '-' && c.peek(1) == '-':
			c.skipLine()
		case b == '/' && c.peek(1) == '*':
			if err := c.skipBlockComment(); err != nil {
				return nil, err
			}
		case b == '"':
			if err := lexVHDLString(c, '"'); err != nil {
				return nil, err
			}
			c.emit(tokString, start, line, col)
		case b == '\'':
			if c.peek(2) == '\'' && !vhdlTickFollows(c) {
				c.advance()
				c.advance()
				c.advance()
				c.emit(tokChar, start, line, col)
			} else {
				c.advance()
				c.emit(tokPunct, start, line, col)
			}
		case b == '\\':
			if err := lexVHDLString(c, '\\'); err != nil {
				return nil, err
			}
			c.emit(tokIdent, start, line, col)
		case isLetter(b):
			for !c.eof() && isIdentPart(c.src[c.pos]) {
				c.advance()
			}
			if !c.eof() && c.src[c.pos] == '"' {
				// bit string literal such as x"FF" or 8ux"0F"
				if err := lexVHDLString(c, '"'); err != nil {
					return nil, err
				}
				c.emit(tokString, start, line, col)
				continue
			}
			c.emit(tokIdent, start, line, col)
		case isDigit(b):
			lexVHDLNumber(c)
			c.emit(tokNumber, start, line, col)
		default:
			n := matchPunct(c, vhdlMultiPunct)
			for range n {
				c.advance()
			}
			c.emit(tokPunct, start, line, col)
		}
	}
	return c.toks, nil
}

// vhdlTickFollows reports whether a tick at the cursor is an attribute or
// qualified expression tick rather than the start of a character literal.
func vhdlTickFollows(c *cursor) bool {
	prev, ok := c.last()
	if !ok {
		return false
	}
	switch prev.kind {
	case tokIdent:
		return !vhdlReserved[prev.lower] || prev.lower == "all"
	case tokPunct:
		return prev.text == ")" || prev.text == "]"
	default:
		return false
	}
}

// lexVHDLString consumes a literal delimited by quote, where a doubled
// delimiter escapes itself. Literals may not span lines.
func lexVHDLString(c *cursor, quote byte) *lexError {
	line, col := c.line, c.col
	for c.src[c.pos] != quote {
		c.advance()
	}
	c.advance()
	for {
		if c.eof() || c.src[c.pos] == '\n' {
			if quote == '\\' {
				return &lexError{line: line, col: col, msg: "unterminated extended identifier"}
			}
			return &lexError{line: line, col: col, msg: "unterminated string literal"}
		}
		if c.src[c.pos] == quote {
			c.advance()
			if !c.eof() && c.src[c.pos] == quote {
				c.advance()
				continue
			}
			return nil
		}
		c.advance()
	}
}

func lexVHDLNumber(c *cursor) {
	for !c.eof() {
		b := c.src[c.pos]
		switch {
		case isIdentPart(b) || b == '#':
			c.advance()
		case b == '.' && isDigit(c.peek(1)):
			c.advance()
		case (b == '+' || b == '-') && (c.src[c.pos-1] == 'e' || c.src[c.pos-1] == 'E') && isDigit(c.peek(1)):
			c.advance()
		default:
			return
		}
	}
}

func matchPunct(c *cursor, multi []string) int {
	best := 1
	for _, p := range multi {
		if len(p) <= best || c.pos+len(p) > len(c.src) {
			continue
		}
		if string(c.src[c.pos:c.pos+len(p)]) == p {
			best = len(p)
		}
	}
	return best
}
