// Package token defines the lexical tokens shared by the lexer, the token
// editor and the parser.
package token

import (
	"fmt"
	"strings"
)

// Kind is the lexical class of a token.
type Kind int

const (
	END Kind = iota
	NAME
	NUMBER
	STRING
	OP
	NEWLINE
	ERROR
)

var kindNames = [...]string{
	END:     "END",
	NAME:    "NAME",
	NUMBER:  "NUMBER",
	STRING:  "STRING",
	OP:      "OP",
	NEWLINE: "NEWLINE",
	ERROR:   "ERROR",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Pos is a 1-based line/column position. The zero Pos marks a token that
// was synthesized by a rewrite rather than read from source.
type Pos struct {
	Line int
	Col  int
}

// IsValid reports whether p refers to a real source location.
func (p Pos) IsValid() bool { return p.Line > 0 }

func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Token is an immutable lexical unit. Rewrites replace tokens, they never
// modify one in place.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

// New returns a synthesized token with no source position.
func New(kind Kind, text string) Token {
	return Token{Kind: kind, Text: text}
}

// Is reports whether the token has the given kind and text.
func (t Token) Is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// IsOp reports whether the token is the operator text.
func (t Token) IsOp(text string) bool { return t.Is(OP, text) }

func (t Token) String() string {
	switch t.Kind {
	case NEWLINE, END:
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%q)", t.Kind, t.Text)
}

// Sequence is an ordered token list. Order defines the rendered source.
type Sequence []Token

// Render turns the sequence back into source text. Tokens on the same
// line are separated by one space, NEWLINE renders as a line break and END
// renders as nothing.
func (s Sequence) Render() string {
	var sb strings.Builder
	lineStart := true
	for _, t := range s {
		switch t.Kind {
		case END:
			continue
		case NEWLINE:
			sb.WriteByte('\n')
			lineStart = true
			continue
		}
		if !lineStart {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
		lineStart = false
	}
	return sb.String()
}

// Texts returns the text of every token, mainly for tests and debugging.
func (s Sequence) Texts() []string {
	out := make([]string, len(s))
	for i, t := range s {
		out[i] = t.Text
	}
	return out
}

// Terminated reports whether the sequence ends with an END token.
func (s Sequence) Terminated() bool {
	return len(s) > 0 && s[len(s)-1].Kind == END
}
