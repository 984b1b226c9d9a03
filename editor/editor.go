// Package editor implements a cursor-based token editor for multi-pass
// token rewriting.
//
// Each pass reads a read-only input sequence through a cursor and builds a
// fresh append-only output sequence. Commit swaps them: the output becomes
// the next pass's input and the cursor resets to zero. Lookahead (Peek)
// only ever sees the pass input; lookbehind (History) only ever sees
// tokens the pass has already emitted.
package editor

import (
	"errors"
	"fmt"

	"github.com/rubiojr/scriptgo/token"
)

// ErrUncommitted is returned when a pass starts before the previous pass
// was committed.
var ErrUncommitted = errors.New("token pass started without committing the previous pass")

// Editor is a mutable view over a token sequence. It is not safe for
// concurrent use; every evaluation owns its own Editor.
type Editor struct {
	input  []token.Token
	cursor int
	output []token.Token
}

// New returns an editor whose first pass reads toks.
func New(toks []token.Token) *Editor {
	in := make([]token.Token, len(toks))
	copy(in, toks)
	return &Editor{input: in}
}

// HasMore reports whether the cursor has not reached the end of input.
func (e *Editor) HasMore() bool { return e.cursor < len(e.input) }

// Current returns the token under the cursor. ok is false at end of input.
func (e *Editor) Current() (tok token.Token, ok bool) {
	return e.Peek(0)
}

// Peek returns the input token k positions ahead of the cursor without
// changing any state. ok is false when out of range.
func (e *Editor) Peek(k int) (tok token.Token, ok bool) {
	i := e.cursor + k
	if i < 0 || i >= len(e.input) {
		return token.Token{}, false
	}
	return e.input[i], true
}

// PeekIs reports whether the token k positions ahead has kind and text.
func (e *Editor) PeekIs(k int, kind token.Kind, text string) bool {
	tok, ok := e.Peek(k)
	return ok && tok.Is(kind, text)
}

// Append pushes a synthesized token onto the output. The cursor does not
// move.
func (e *Editor) Append(kind token.Kind, text string) {
	e.output = append(e.output, token.New(kind, text))
}

// AppendToken pushes tok onto the output unchanged. The cursor does not
// move.
func (e *Editor) AppendToken(tok token.Token) {
	e.output = append(e.output, tok)
}

// AppendCurrent passes the current token through and advances the cursor.
// It is a no-op at end of input.
func (e *Editor) AppendCurrent() {
	if tok, ok := e.Current(); ok {
		e.output = append(e.output, tok)
		e.cursor++
	}
}

// Skip drops the next n input tokens without emitting them.
func (e *Editor) Skip(n int) {
	if n < 0 {
		return
	}
	e.cursor += n
	if e.cursor > len(e.input) {
		e.cursor = len(e.input)
	}
}

// History returns a copy of the last window tokens emitted by the current
// pass, oldest first.
func (e *Editor) History(window int) []token.Token {
	if window <= 0 {
		return nil
	}
	start := len(e.output) - window
	if start < 0 {
		start = 0
	}
	out := make([]token.Token, len(e.output)-start)
	copy(out, e.output[start:])
	return out
}

// Commit ends the current pass. Unconsumed input tokens are flushed to the
// output, the output becomes the next input, and the cursor resets.
func (e *Editor) Commit() {
	for e.HasMore() {
		e.AppendCurrent()
	}
	e.input = e.output
	e.output = nil
	e.cursor = 0
}

// Pass runs fn as one token pass and commits its output. It fails with
// ErrUncommitted when the editor is in the middle of another pass.
func (e *Editor) Pass(name string, fn func(*Editor) error) error {
	if e.cursor != 0 || len(e.output) != 0 {
		return fmt.Errorf("%s: %w", name, ErrUncommitted)
	}
	if err := fn(e); err != nil {
		return fmt.Errorf("%s token pass: %w", name, err)
	}
	e.Commit()
	return nil
}

// End finalizes the sequence for rendering. When the output is empty (the
// normal state after a Commit) the committed input is moved into it.
// Afterwards the output is a lone END or ends with NEWLINE followed by END.
func (e *Editor) End() {
	if len(e.output) == 0 {
		e.output = e.input
		e.input = nil
		e.cursor = 0
	}
	n := len(e.output)
	if n > 0 && e.output[n-1].Kind == token.END {
		if n == 1 || e.output[n-2].Kind == token.NEWLINE {
			return
		}
		end := e.output[n-1]
		e.output = append(e.output[:n-1], token.New(token.NEWLINE, "\n"), end)
		return
	}
	if n > 0 && e.output[n-1].Kind != token.NEWLINE {
		e.Append(token.NEWLINE, "\n")
	}
	e.Append(token.END, "")
}

// Tokens returns a snapshot of the output sequence.
func (e *Editor) Tokens() token.Sequence {
	out := make(token.Sequence, len(e.output))
	copy(out, e.output)
	return out
}
