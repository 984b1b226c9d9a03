// Package object defines the runtime values of the host language and the
// capability interfaces the evaluator dispatches on.
package object

import (
	"iter"
	"math"
	"strconv"
	"strings"

	"github.com/rubiojr/scriptgo/token"
)

// Value is any runtime value. String returns the repr form.
type Value interface {
	Type() string
	String() string
}

// Callable values can be invoked with positional and keyword arguments.
type Callable interface {
	Value
	Call(args []Value, kwargs Kwargs) (Value, error)
}

// Iterable values can be looped over.
type Iterable interface {
	Value
	Iter() iter.Seq[Value]
}

// Sized values report a length.
type Sized interface {
	Value
	Len() int
}

// Indexable values support v[i].
type Indexable interface {
	Value
	Index(i Value) (Value, error)
}

// IndexSetter values support v[i] = x.
type IndexSetter interface {
	Value
	SetIndex(i, x Value) error
}

// HasAttrs values expose attributes and methods.
type HasAttrs interface {
	Value
	Attr(name string) (Value, bool)
}

// AttrSetter values support v.name = x.
type AttrSetter interface {
	Value
	SetAttr(name string, x Value) error
}

// HasBinary lets a value overload a binary operator. right is true when
// the receiver is the right operand. Implementations return handled=false
// to fall back to the default operator semantics.
type HasBinary interface {
	Value
	Binary(op string, other Value, right bool) (result Value, handled bool, err error)
}

// Truthy values decide their own truth value.
type Truthy interface {
	Value
	Truth() bool
}

// NoneType is the type of None.
type NoneType struct{}

// None is the singleton null value.
var None Value = NoneType{}

func (NoneType) Type() string   { return "NoneType" }
func (NoneType) String() string { return "None" }
func (NoneType) Truth() bool    { return false }

// Bool is True or False.
type Bool bool

func (Bool) Type() string { return "bool" }
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}
func (b Bool) Truth() bool { return bool(b) }

// Int is a 64-bit integer.
type Int int64

func (Int) Type() string     { return "int" }
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }
func (i Int) Truth() bool    { return i != 0 }

// Float is a 64-bit float.
type Float float64

func (Float) Type() string     { return "float" }
func (f Float) Truth() bool    { return f != 0 }
func (f Float) String() string { return formatFloat(float64(f)) }

func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	abs := math.Abs(f)
	if f == 0 || (abs >= 1e-4 && abs < 1e16) {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	return strconv.FormatFloat(f, 'e', -1, 64)
}

// Str is an immutable string.
type Str string

func (Str) Type() string     { return "str" }
func (s Str) String() string { return token.Quote(string(s)) }
func (s Str) Truth() bool    { return s != "" }
func (s Str) Len() int       { return len([]rune(string(s))) }

func (s Str) Iter() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, r := range string(s) {
			if !yield(Str(string(r))) {
				return
			}
		}
	}
}

func (s Str) Index(i Value) (Value, error) {
	runes := []rune(string(s))
	n, err := normIndex(i, len(runes), "string")
	if err != nil {
		return nil, err
	}
	return Str(string(runes[n])), nil
}

func (s Str) Attr(name string) (Value, bool) {
	fn, ok := strMethods[name]
	if !ok {
		return nil, false
	}
	return &BoundMethod{Self: s, Name: name, Fn: fn}, true
}

// ToStr returns the str() form of v: strings unquoted, everything else
// in repr form.
func ToStr(v Value) string {
	if s, ok := v.(Str); ok {
		return string(s)
	}
	return v.String()
}

// Truth returns the truth value of v.
func Truth(v Value) bool {
	if t, ok := v.(Truthy); ok {
		return t.Truth()
	}
	if s, ok := v.(Sized); ok {
		return s.Len() > 0
	}
	return true
}

// normIndex resolves a possibly negative index against length n.
func normIndex(i Value, n int, what string) (int, error) {
	var idx int
	switch v := i.(type) {
	case Int:
		idx = int(v)
	case Bool:
		if v {
			idx = 1
		}
	default:
		return 0, Errorf(TypeErrorKind, "%s indices must be integers, not %s", what, i.Type())
	}
	if idx < 0 {
		idx += n
	}
	if idx < 0 || idx >= n {
		return 0, Errorf(IndexErrorKind, "%s index out of range", what)
	}
	return idx, nil
}
