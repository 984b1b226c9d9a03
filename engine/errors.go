package engine

import (
	"fmt"
	"strings"

	"github.com/rubiojr/scriptgo/object"
)

// EvalError is a runtime error located in an evaluation's rewritten
// source. It unwraps to the underlying *object.Error, so errors.Is matches
// the kind sentinels.
type EvalError struct {
	Filename string
	Line     string // rewritten source line at Err.Pos
	Err      *object.Error
}

func (e *EvalError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:%s", e.Filename, e.Err)
	if e.Line != "" {
		sb.WriteString("\n    ")
		sb.WriteString(strings.TrimRight(e.Line, "\r"))
	}
	return sb.String()
}

func (e *EvalError) Unwrap() error { return e.Err }
