package object

import (
	"fmt"

	"github.com/rubiojr/scriptgo/token"
)

// Kind names a host-language exception class.
type Kind string

const (
	TypeErrorKind         Kind = "TypeError"
	ValueErrorKind        Kind = "ValueError"
	IndexErrorKind        Kind = "IndexError"
	KeyErrorKind          Kind = "KeyError"
	NameErrorKind         Kind = "NameError"
	AttributeErrorKind    Kind = "AttributeError"
	ZeroDivisionErrorKind Kind = "ZeroDivisionError"
)

// Error is a host-language exception raised during evaluation.
type Error struct {
	Kind Kind
	Msg  string
	Pos  token.Pos
}

// Sentinels for errors.Is. A sentinel matches any Error of its kind.
var (
	ErrType         = &Error{Kind: TypeErrorKind}
	ErrValue        = &Error{Kind: ValueErrorKind}
	ErrIndex        = &Error{Kind: IndexErrorKind}
	ErrKey          = &Error{Kind: KeyErrorKind}
	ErrName         = &Error{Kind: NameErrorKind}
	ErrAttribute    = &Error{Kind: AttributeErrorKind}
	ErrZeroDivision = &Error{Kind: ZeroDivisionErrorKind}
)

// Errorf builds an Error of the given kind.
func Errorf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is matches sentinels of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Msg == "" && t.Kind == e.Kind
}
