// Package scanner provides string-boundary-aware scanning of host source
// text. It tracks single- and double-quoted string literals, escape
// sequences and # comments so callers can ask InCode() instead of keeping
// their own quote/escape flags.
package scanner

import "strings"

// closingKind tracks which type of string delimiter was just closed.
type closingKind byte

const (
	noClosing     closingKind = iota
	closingDouble             // just closed a "..." string
	closingSingle             // just closed a '...' string
)

// CodeScanner iterates byte-by-byte over source text, tracking string
// literal boundaries, escape sequences and comments.
//
// InString() returns true for the entire string span including both
// opening and closing delimiters. InComment() is true from the # up to,
// but not including, the terminating newline.
type CodeScanner struct {
	src       string
	pos       int
	line      int
	inDbl     bool
	inSgl     bool
	inComment bool
	escaped   bool
	closing   closingKind // set when a closing delimiter is processed
}

// New creates a CodeScanner for the given source text.
// Call Next() to advance to the first byte.
func New(src string) *CodeScanner {
	return &CodeScanner{src: src, pos: -1, line: 1}
}

// Next advances to the next byte, updating string/escape/comment state.
// Returns the byte and true, or (0, false) at end of input.
func (s *CodeScanner) Next() (byte, bool) {
	s.closing = noClosing
	s.pos++
	if s.pos >= len(s.src) {
		return 0, false
	}
	ch := s.src[s.pos]
	if ch == '\n' {
		s.line++
		s.inComment = false
		return ch, true
	}
	if s.inComment {
		return ch, true
	}

	if s.escaped {
		s.escaped = false
		return ch, true
	}
	if ch == '\\' && (s.inDbl || s.inSgl) {
		s.escaped = true
		return ch, true
	}
	switch {
	case ch == '"' && !s.inSgl:
		if s.inDbl {
			s.closing = closingDouble
		}
		s.inDbl = !s.inDbl
	case ch == '\'' && !s.inDbl:
		if s.inSgl {
			s.closing = closingSingle
		}
		s.inSgl = !s.inSgl
	case ch == '#' && !s.inDbl && !s.inSgl:
		s.inComment = true
	}

	return ch, true
}

// InString reports whether the current position is inside a string literal,
// including both opening and closing delimiters.
func (s *CodeScanner) InString() bool {
	return s.inDbl || s.inSgl || s.closing != noClosing
}

// InComment reports whether the current byte belongs to a # comment.
func (s *CodeScanner) InComment() bool { return s.inComment }

// InCode reports whether the current position is outside all string
// literals and comments.
func (s *CodeScanner) InCode() bool { return !s.InString() && !s.inComment }

// Pos returns the current byte offset (the position of the last byte
// returned by Next). Returns -1 before the first call to Next.
func (s *CodeScanner) Pos() int { return s.pos }

// Line returns the current 1-based line number.
func (s *CodeScanner) Line() int { return s.line }

// Peek returns the next byte without advancing, or (0, false) at end.
func (s *CodeScanner) Peek() (byte, bool) {
	if s.pos+1 >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos+1], true
}

// IsOpenBracket reports whether ch is an opening bracket/paren/brace.
func IsOpenBracket(ch byte) bool {
	return ch == '(' || ch == '[' || ch == '{'
}

// IsCloseBracket reports whether ch is a closing bracket/paren/brace.
func IsCloseBracket(ch byte) bool {
	return ch == ')' || ch == ']' || ch == '}'
}

var closerFor = map[byte]byte{'(': ')', '[': ']', '{': '}'}

// FindClosing returns the offset of the bracket that closes the one at
// openPos, skipping brackets inside string literals. Returns -1 when the
// bracket is never closed.
func FindClosing(s string, openPos int) int {
	depth := 0
	sc := New(s[openPos:])
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if !sc.InCode() {
			continue
		}
		if IsOpenBracket(ch) {
			depth++
		} else if IsCloseBracket(ch) {
			depth--
			if depth == 0 {
				return openPos + sc.Pos()
			}
		}
	}
	return -1
}

// FindTopLevel scans s for a byte matching pred at bracket depth 0,
// outside all string literals and comments. Returns the byte offset or -1.
func FindTopLevel(s string, pred func(ch byte, pos int, src string) bool) int {
	depth := 0
	sc := New(s)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if !sc.InCode() {
			continue
		}
		if IsOpenBracket(ch) {
			depth++
		} else if IsCloseBracket(ch) {
			depth--
		}
		if depth == 0 && pred(ch, sc.Pos(), s) {
			return sc.Pos()
		}
	}
	return -1
}

// BalanceFix appends the closing brackets that src leaves open, innermost
// first. Stray closers and brackets inside strings or comments are
// ignored. Source that is already balanced is returned unchanged.
func BalanceFix(src string) string {
	var open []byte
	body := strings.TrimRight(src, "\n")
	sc := New(body)
	for ch, ok := sc.Next(); ok; ch, ok = sc.Next() {
		if !sc.InCode() {
			continue
		}
		if IsOpenBracket(ch) {
			open = append(open, ch)
		} else if IsCloseBracket(ch) && len(open) > 0 && closerFor[open[len(open)-1]] == ch {
			open = open[:len(open)-1]
		}
	}
	if len(open) == 0 {
		return src
	}
	var sb strings.Builder
	sb.WriteString(body)
	if sc.InComment() {
		sb.WriteByte('\n')
	}
	for i := len(open) - 1; i >= 0; i-- {
		sb.WriteByte(closerFor[open[i]])
	}
	if strings.HasSuffix(src, "\n") {
		sb.WriteByte('\n')
	}
	return sb.String()
}
