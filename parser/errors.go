package parser

import (
	"fmt"
	"strings"

	"github.com/rubiojr/scriptgo/token"
)

// SyntaxError reports source that does not match the host grammar.
type SyntaxError struct {
	Filename string
	Pos      token.Pos
	Msg      string
	Line     string // offending source line, empty when unknown
}

func (e *SyntaxError) Error() string {
	var sb strings.Builder
	if e.Filename != "" {
		sb.WriteString(e.Filename)
		sb.WriteByte(':')
	}
	if e.Pos.IsValid() {
		fmt.Fprintf(&sb, "%d:%d: ", e.Pos.Line, e.Pos.Col)
	} else if e.Filename != "" {
		sb.WriteByte(' ')
	}
	sb.WriteString(e.Msg)
	if e.Line != "" {
		sb.WriteString("\n    ")
		sb.WriteString(strings.TrimRight(e.Line, "\r"))
	}
	return sb.String()
}

// SourceLine returns line n (1-based) of src.
func SourceLine(src string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(src, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}
