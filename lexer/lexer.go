// Package lexer turns host source text into a token sequence.
//
// The result always ends with an END token and every logical line ends
// with a NEWLINE token. Newlines inside brackets and blank or comment-only
// lines produce no tokens.
package lexer

import (
	"fmt"
	"strings"

	"github.com/rubiojr/scriptgo/token"
)

// Error is a lexical error at a source position.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Pos.Line, e.Pos.Col, e.Msg)
}

// operators in longest-match order.
var operators = []string{
	"**", "//", "==", "!=", "<=", ">=", "+=", "-=", "*=", "->",
	"(", ")", "[", "]", "{", "}", ",", ":", ";", ".", "=",
	"+", "-", "*", "/", "%", "|", "&", "^", "~", "<", ">", "@", "$",
}

type lexer struct {
	src   string
	pos   int
	line  int
	col   int
	depth int
	toks  []token.Token
}

// Lex tokenizes src.
func Lex(src string) ([]token.Token, error) {
	l := &lexer{src: src, line: 1, col: 1}
	if err := l.run(); err != nil {
		return nil, err
	}
	return l.toks, nil
}

func (l *lexer) here() token.Pos { return token.Pos{Line: l.line, Col: l.col} }

func (l *lexer) advance(n int) {
	for i := 0; i < n && l.pos < len(l.src); i++ {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func (l *lexer) emit(kind token.Kind, text string, pos token.Pos) {
	l.toks = append(l.toks, token.Token{Kind: kind, Text: text, Pos: pos})
}

// lineOpen reports whether the current logical line already has tokens.
func (l *lexer) lineOpen() bool {
	return len(l.toks) > 0 && l.toks[len(l.toks)-1].Kind != token.NEWLINE
}

func (l *lexer) run() error {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		switch {
		case ch == '\n':
			if l.depth == 0 && l.lineOpen() {
				l.emit(token.NEWLINE, "\n", l.here())
			}
			l.advance(1)
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\f':
			l.advance(1)
		case ch == '\\' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n':
			// explicit line continuation
			l.advance(2)
		case ch == '#':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance(1)
			}
		case isNameStart(ch):
			if err := l.lexNameOrString(); err != nil {
				return err
			}
		case isDigit(ch) || (ch == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
			l.lexNumber()
		case ch == '"' || ch == '\'':
			if err := l.lexString(l.pos); err != nil {
				return err
			}
		default:
			if err := l.lexOperator(); err != nil {
				return err
			}
		}
	}
	if l.depth > 0 {
		return &Error{Pos: l.here(), Msg: "unexpected EOF: unclosed bracket"}
	}
	if l.lineOpen() {
		l.emit(token.NEWLINE, "\n", l.here())
	}
	l.emit(token.END, "", l.here())
	return nil
}

func (l *lexer) lexNameOrString() error {
	start := l.pos
	end := start
	for end < len(l.src) && isNameChar(l.src[end]) {
		end++
	}
	word := l.src[start:end]
	if end < len(l.src) && (l.src[end] == '\'' || l.src[end] == '"') && isStringPrefix(word) {
		return l.lexString(start)
	}
	pos := l.here()
	l.advance(end - start)
	l.emit(token.NAME, word, pos)
	return nil
}

// lexString scans a string literal whose prefix (if any) starts at start
// and whose opening quote is at the first quote byte after start.
func (l *lexer) lexString(start int) error {
	pos := l.here()
	q := start
	for l.src[q] != '\'' && l.src[q] != '"' {
		q++
	}
	quote := l.src[q : q+1]
	if strings.HasPrefix(l.src[q:], strings.Repeat(quote, 3)) {
		quote = strings.Repeat(quote, 3)
	}
	raw := strings.ContainsAny(strings.ToLower(l.src[start:q]), "r")
	i := q + len(quote)
	for {
		if i >= len(l.src) {
			return &Error{Pos: pos, Msg: "unterminated string literal"}
		}
		c := l.src[i]
		if c == '\\' && !raw {
			i += 2
			continue
		}
		if c == '\n' && len(quote) == 1 {
			return &Error{Pos: pos, Msg: "unterminated string literal"}
		}
		if strings.HasPrefix(l.src[i:], quote) {
			i += len(quote)
			break
		}
		i++
	}
	text := l.src[start:i]
	l.advance(i - start)
	l.emit(token.STRING, text, pos)
	return nil
}

func (l *lexer) lexNumber() {
	pos := l.here()
	i := l.pos
	if strings.HasPrefix(l.src[i:], "0x") || strings.HasPrefix(l.src[i:], "0X") {
		i += 2
		for i < len(l.src) && (isHexDigit(l.src[i]) || l.src[i] == '_') {
			i++
		}
	} else {
		for i < len(l.src) && (isDigit(l.src[i]) || l.src[i] == '_') {
			i++
		}
		if i < len(l.src) && l.src[i] == '.' {
			i++
			for i < len(l.src) && (isDigit(l.src[i]) || l.src[i] == '_') {
				i++
			}
		}
		if i < len(l.src) && (l.src[i] == 'e' || l.src[i] == 'E') {
			j := i + 1
			if j < len(l.src) && (l.src[j] == '+' || l.src[j] == '-') {
				j++
			}
			if j < len(l.src) && isDigit(l.src[j]) {
				i = j
				for i < len(l.src) && isDigit(l.src[i]) {
					i++
				}
			}
		}
	}
	text := l.src[l.pos:i]
	l.advance(i - l.pos)
	l.emit(token.NUMBER, text, pos)
}

func (l *lexer) lexOperator() error {
	pos := l.here()
	for _, op := range operators {
		if strings.HasPrefix(l.src[l.pos:], op) {
			switch op {
			case "(", "[", "{":
				l.depth++
			case ")", "]", "}":
				if l.depth == 0 {
					return &Error{Pos: pos, Msg: fmt.Sprintf("unmatched '%s'", op)}
				}
				l.depth--
			}
			l.advance(len(op))
			l.emit(token.OP, op, pos)
			return nil
		}
	}
	return &Error{Pos: pos, Msg: fmt.Sprintf("invalid character %q", l.src[l.pos])}
}

func isNameStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isNameChar(ch byte) bool { return isNameStart(ch) || isDigit(ch) }

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isStringPrefix(word string) bool {
	switch strings.ToLower(word) {
	case "r", "f", "b", "rf", "fr", "u":
		return true
	}
	return false
}
