package savedvars

// scanner is a minimal lexer over a Lua table-constructor document. It
// understands just enough of the grammar (strings, long brackets,
// comments, brace nesting) to split the top-level table into entry spans
// without interpreting them.
type scanner struct {
	data []byte
	pos  int
	line int
}

func newScanner(data []byte) *scanner {
	return &scanner{data: data, line: 1}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.data)
}

func (s *scanner) peek() byte {
	return s.data[s.pos]
}

// next consumes one byte, tracking line numbers.
func (s *scanner) next() byte {
	c := s.data[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

func (s *scanner) errf(msg string) *ParseError {
	return &ParseError{Line: s.line, Msg: msg}
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdent(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// skipTrivia consumes whitespace and comments (line and long-bracket).
func (s *scanner) skipTrivia() error {
	for !s.eof() {
		c := s.peek()
		switch {
		case isSpace(c):
			s.next()
		case c == '-' && s.pos+1 < len(s.data) && s.data[s.pos+1] == '-':
			s.next()
			s.next()
			if level, ok := s.longBracketLevel(); ok {
				if err := s.skipLongBracket(level); err != nil {
					return err
				}
				continue
			}
			for !s.eof() && s.peek() != '\n' {
				s.next()
			}
		default:
			return nil
		}
	}
	return nil
}

// longBracketLevel checks for a long-bracket opener ([[, [=[, ...) at the
// current position and consumes it if present.
func (s *scanner) longBracketLevel() (int, bool) {
	if s.eof() || s.peek() != '[' {
		return 0, false
	}
	i := s.pos + 1
	level := 0
	for i < len(s.data) && s.data[i] == '=' {
		level++
		i++
	}
	if i >= len(s.data) || s.data[i] != '[' {
		return 0, false
	}
	for s.pos <= i {
		s.next()
	}
	return level, true
}

// skipLongBracket consumes input up to and including the matching closer.
func (s *scanner) skipLongBracket(level int) error {
	for !s.eof() {
		if s.next() != ']' {
			continue
		}
		i := s.pos
		eq := 0
		for i < len(s.data) && s.data[i] == '=' {
			eq++
			i++
		}
		if eq == level && i < len(s.data) && s.data[i] == ']' {
			for s.pos <= i {
				s.next()
			}
			return nil
		}
	}
	return s.errf("unterminated long bracket")
}

// skipString consumes a quoted string body after the opening quote.
func (s *scanner) skipString(quote byte) error {
	for !s.eof() {
		c := s.next()
		switch c {
		case '\\':
			if s.eof() {
				return s.errf("unterminated escape sequence")
			}
			s.next()
		case quote:
			return nil
		case '\n':
			return s.errf("unterminated string")
		}
	}
	return s.errf("unterminated string")
}

// scanIdent consumes an identifier and returns it.
func (s *scanner) scanIdent() string {
	start := s.pos
	if s.eof() || !isIdentStart(s.peek()) {
		return ""
	}
	for !s.eof() && isIdent(s.peek()) {
		s.next()
	}
	return string(s.data[start:s.pos])
}

// scanElement consumes one table element: everything up to and including
// the comma or semicolon that terminates it at the current nesting depth.
// A closing brace at the current depth ends the element without being
// consumed.
func (s *scanner) scanElement() error {
	depth := 0
	for !s.eof() {
		c := s.peek()
		switch c {
		case '"', '\'':
			s.next()
			if err := s.skipString(c); err != nil {
				return err
			}
		case '-':
			if s.pos+1 < len(s.data) && s.data[s.pos+1] == '-' {
				if err := s.skipTrivia(); err != nil {
					return err
				}
				continue
			}
			s.next()
		case '[':
			if level, ok := s.longBracketLevel(); ok {
				if err := s.skipLongBracket(level); err != nil {
					return err
				}
				continue
			}
			s.next()
		case '{':
			depth++
			s.next()
		case '}':
			if depth == 0 {
				return nil
			}
			depth--
			s.next()
		case ',', ';':
			s.next()
			if depth == 0 {
				return nil
			}
		default:
			s.next()
		}
	}
	if depth > 0 {
		return s.errf("unbalanced braces")
	}
	return s.errf("unterminated table")
}
