package scanner

// lexVerilog tokenizes Verilog and SystemVerilog. Compiler directives are
// consumed here; macro bodies never reach the front end.
func lexVerilog(src []byte) ([]token, *lexError) {
	c := newCursor(src)
	for !c.eof() {
		b := c.src[c.pos]
		start, line, col := c.pos, c.line, c.col
		switch {
		case isSpace(b):
			c.advance()
		case b == '/' && c.peek(1) == '/':
			c.skipLine()
		case b == '/' && c.peek(1) == '*':
			if err := c.skipBlockComment(); err != nil {
				return nil, err
			}
		case b == '(' && c.peek(1) == '*' && c.peek(2) != ')':
			if err := skipAttribute(c); err != nil {
				return nil, err
			}
		case b == '"':
			if err := lexVerilogString(c); err != nil {
				return nil, err
			}
			c.emit(tokString, start, line, col)
		case b == '`':
			skipDirective(c)
		case b == '\\':
			for !c.eof() && !isSpace(c.src[c.pos]) {
				c.advance()
			}
			c.emit(tokIdent, start, line, col)
		case b == '$' && isIdentPart(c.peek(1)):
			c.advance()
			for !c.eof() && (isIdentPart(c.src[c.pos]) || c.src[c.pos] == '$') {
				c.advance()
			}
			c.emit(tokSystem, start, line, col)
		case isLetter(b) || b == '_':
			for !c.eof() && (isIdentPart(c.src[c.pos]) || c.src[c.pos] == '$') {
				c.advance()
			}
			c.emit(tokIdent, start, line, col)
		case isDigit(b):
			lexVerilogNumber(c)
			c.emit(tokNumber, start, line, col)
		case b == '\'':
			if lexBasedLiteral(c) {
				c.emit(tokNumber, start, line, col)
			} else {
				c.advance()
				c.emit(tokPunct, start, line, col)
			}
		default:
			if b == ':' && c.peek(1) == ':' {
				c.advance()
			}
			c.advance()
			c.emit(tokPunct, start, line, col)
		}
	}
	return c.toks, nil
}

func skipAttribute(c *cursor) *lexError {
	line, col := c.line, c.col
	c.advance()
	c.advance()
	for !c.eof() {
		if c.src[c.pos] == '*' && c.peek(1) == ')' {
			c.advance()
			c.advance()
			return nil
		}
		c.advance()
	}
	return &lexError{line: line, col: col, msg: "unterminated attribute instance"}
}

func lexVerilogString(c *cursor) *lexError {
	line, col := c.line, c.col
	c.advance()
	for {
		if c.eof() || c.src[c.pos] == '\n' {
			return &lexError{line: line, col: col, msg: "unterminated string literal"}
		}
		switch c.src[c.pos] {
		case '\\':
			c.advance()
			if !c.eof() {
				c.advance()
			}
		case '"':
			c.advance()
			return nil
		default:
			c.advance()
		}
	}
}

// lineDirectives take the rest of the line as their argument.
var lineDirectives = wordSet(`define include timescale default_nettype line pragma undef
unconnected_drive nounconnected_drive begin_keywords end_keywords undefineall`)

// nameDirectives take exactly one identifier.
var nameDirectives = wordSet(`ifdef ifndef elsif`)

func skipDirective(c *cursor) {
	c.advance()
	start := c.pos
	for !c.eof() && isIdentPart(c.src[c.pos]) {
		c.advance()
	}
	name := string(c.src[start:c.pos])
	switch {
	case lineDirectives[name]:
		for !c.eof() && c.src[c.pos] != '\n' {
			if c.src[c.pos] == '\\' && c.peek(1) == '\n' {
				c.advance()
			}
			c.advance()
		}
	case nameDirectives[name]:
		for !c.eof() && (c.src[c.pos] == ' ' || c.src[c.pos] == '\t') {
			c.advance()
		}
		for !c.eof() && isIdentPart(c.src[c.pos]) {
			c.advance()
		}
	}
}

func lexVerilogNumber(c *cursor) {
	for !c.eof() {
		b := c.src[c.pos]
		switch {
		case isDigit(b) || b == '_':
			c.advance()
		case b == '.' && isDigit(c.peek(1)):
			c.advance()
		case (b == 'e' || b == 'E') && (isDigit(c.peek(1)) || c.peek(1) == '-' || c.peek(1) == '+'):
			c.advance()
			c.advance()
		case isLetter(b):
			// time literal suffix such as 10ns
			c.advance()
		default:
			return
		}
	}
}

// lexBasedLiteral consumes 'hFF, 'sb101, '0, '1, 'x or 'z at the cursor.
func lexBasedLiteral(c *cursor) bool {
	off := 1
	if b := c.peek(off); b == 's' || b == 'S' {
		off++
	}
	switch c.peek(off) {
	case 'b', 'B', 'o', 'O', 'd', 'D', 'h', 'H':
		off++
		for c.peek(off) == ' ' || c.peek(off) == '\t' {
			off++
		}
		for {
			b := c.peek(off)
			if !isIdentPart(b) && b != '?' {
				break
			}
			off++
		}
	case '0', '1', 'x', 'X', 'z', 'Z':
		if off != 1 || isIdentPart(c.peek(2)) {
			return false
		}
		off++
	default:
		return false
	}
	for range off {
		c.advance()
	}
	return true
}
