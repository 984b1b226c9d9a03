package pipe

import (
	"github.com/rubiojr/scriptgo/eval"
	"github.com/rubiojr/scriptgo/object"
)

// Sequence is a list whose `|` operator maps a callable over its
// elements, producing another Sequence. Everything else behaves like a
// list.
type Sequence struct {
	*object.List
}

// NewSequence wraps elems without copying.
func NewSequence(elems ...object.Value) *Sequence {
	return &Sequence{List: object.NewList(elems...)}
}

// Binary implements `seq | fn`. Other operators, and a Sequence on the
// right-hand side, fall back to list semantics.
func (s *Sequence) Binary(op string, other object.Value, right bool) (object.Value, bool, error) {
	if op != "|" || right {
		return nil, false, nil
	}
	if _, ok := other.(object.Callable); !ok {
		return nil, true, object.Errorf(object.TypeErrorKind, "Right-hand side must be callable")
	}
	out := make([]object.Value, len(s.Elems))
	for i, v := range s.Elems {
		r, err := eval.Call(other, []object.Value{v}, nil)
		if err != nil {
			return nil, true, err
		}
		out[i] = r
	}
	return NewSequence(out...), true, nil
}

// pipeable makes a pipe left operand pipe-capable. Strings and values that
// are already sequences pass through, other iterables are collected into
// a Sequence, and non-iterables are returned unchanged so `|` keeps its
// ordinary meaning for them.
func pipeable(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if len(args) != 1 || len(kw) != 0 {
		return nil, object.Errorf(object.TypeErrorKind, "%s() takes exactly one argument (%d given)", WrapName, len(args)+len(kw))
	}
	switch v := args[0].(type) {
	case object.Str, *Sequence:
		return v, nil
	case object.Iterable:
		elems, err := object.Elements(v)
		if err != nil {
			return nil, err
		}
		return NewSequence(elems...), nil
	default:
		return v, nil
	}
}

// pipeAttr builds the element function for `|.name(args)`: it resolves
// name on each element and calls it with args when it is callable, or
// returns the attribute value itself otherwise.
func pipeAttr(args []object.Value, kw object.Kwargs) (object.Value, error) {
	if len(args) == 0 {
		return nil, object.Errorf(object.TypeErrorKind, "%s() missing required argument: 'name'", AttrName)
	}
	name, ok := args[0].(object.Str)
	if !ok {
		return nil, object.Errorf(object.TypeErrorKind, "%s() attribute name must be str, not '%s'", AttrName, args[0].Type())
	}
	rest := args[1:]
	return object.NewBuiltin("."+string(name), func(in []object.Value, _ object.Kwargs) (object.Value, error) {
		if len(in) != 1 {
			return nil, object.Errorf(object.TypeErrorKind, ".%s takes exactly one argument (%d given)", name, len(in))
		}
		attr, err := eval.GetAttr(in[0], string(name))
		if err != nil {
			return nil, err
		}
		if _, ok := attr.(object.Callable); !ok {
			return attr, nil
		}
		return eval.Call(attr, rest, kw)
	}), nil
}
