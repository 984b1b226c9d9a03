package object

import (
	"iter"
	"slices"
	"strings"
)

// ListLike is implemented by *List and by types embedding it, so list
// semantics (equality, concatenation, slicing) apply to both.
type ListLike interface {
	Value
	AsList() *List
}

// List is a mutable sequence.
type List struct {
	Elems []Value
}

// NewList wraps elems without copying.
func NewList(elems ...Value) *List { return &List{Elems: elems} }

func (l *List) Type() string   { return "list" }
func (l *List) String() string { return "[" + joinRepr(l.Elems) + "]" }
func (l *List) Len() int       { return len(l.Elems) }
func (l *List) AsList() *List  { return l }

func (l *List) Iter() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, v := range l.Elems {
			if !yield(v) {
				return
			}
		}
	}
}

func (l *List) Index(i Value) (Value, error) {
	n, err := normIndex(i, len(l.Elems), "list")
	if err != nil {
		return nil, err
	}
	return l.Elems[n], nil
}

func (l *List) SetIndex(i, x Value) error {
	n, err := normIndex(i, len(l.Elems), "list assignment")
	if err != nil {
		return err
	}
	l.Elems[n] = x
	return nil
}

func (l *List) Attr(name string) (Value, bool) {
	fn, ok := listMethods[name]
	if !ok {
		return nil, false
	}
	return &BoundMethod{Self: l, Name: name, Fn: fn}, true
}

// Tuple is an immutable sequence.
type Tuple []Value

func (t Tuple) Type() string { return "tuple" }
func (t Tuple) Len() int     { return len(t) }

func (t Tuple) String() string {
	if len(t) == 1 {
		return "(" + t[0].String() + ",)"
	}
	return "(" + joinRepr(t) + ")"
}

func (t Tuple) Iter() iter.Seq[Value] { return slices.Values([]Value(t)) }

func (t Tuple) Index(i Value) (Value, error) {
	n, err := normIndex(i, len(t), "tuple")
	if err != nil {
		return nil, err
	}
	return t[n], nil
}

func (t Tuple) Attr(name string) (Value, bool) {
	switch name {
	case "count", "index":
		return &BoundMethod{Self: t, Name: name, Fn: listMethods[name]}, true
	}
	return nil, false
}

// Range is a lazy arithmetic progression.
type Range struct {
	Start, Stop, Step int64
}

func (r *Range) Type() string { return "range" }

func (r *Range) String() string {
	if r.Step == 1 {
		return "range(" + Int(r.Start).String() + ", " + Int(r.Stop).String() + ")"
	}
	return "range(" + Int(r.Start).String() + ", " + Int(r.Stop).String() + ", " + Int(r.Step).String() + ")"
}

func (r *Range) Len() int {
	switch {
	case r.Step > 0 && r.Start < r.Stop:
		return int((r.Stop - r.Start + r.Step - 1) / r.Step)
	case r.Step < 0 && r.Start > r.Stop:
		return int((r.Start - r.Stop - r.Step - 1) / -r.Step)
	}
	return 0
}

func (r *Range) Iter() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		n := r.Len()
		for i := 0; i < n; i++ {
			if !yield(Int(r.Start + int64(i)*r.Step)) {
				return
			}
		}
	}
}

func (r *Range) Index(i Value) (Value, error) {
	n, err := normIndex(i, r.Len(), "range object")
	if err != nil {
		return nil, err
	}
	return Int(r.Start + int64(n)*r.Step), nil
}

func joinRepr(vs []Value) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return strings.Join(parts, ", ")
}

// Elements collects the values of an iterable.
func Elements(v Value) ([]Value, error) {
	switch s := v.(type) {
	case ListLike:
		return slices.Clone(s.AsList().Elems), nil
	case Tuple:
		return slices.Clone([]Value(s)), nil
	case Iterable:
		return slices.Collect(s.Iter()), nil
	}
	return nil, Errorf(TypeErrorKind, "'%s' object is not iterable", v.Type())
}
