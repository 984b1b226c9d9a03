package eval

import (
	"math"
	"slices"
	"strings"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/object"
)

func unsupported(op string, l, r object.Value) error {
	return object.Errorf(object.TypeErrorKind, "unsupported operand type(s) for %s: '%s' and '%s'", op, l.Type(), r.Type())
}

// asInt accepts Int and Bool.
func asInt(v object.Value) (int64, bool) {
	switch n := v.(type) {
	case object.Int:
		return int64(n), true
	case object.Bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asFloat(v object.Value) (float64, bool) {
	if f, ok := v.(object.Float); ok {
		return float64(f), true
	}
	if i, ok := asInt(v); ok {
		return float64(i), true
	}
	return 0, false
}

// BinaryOp applies a binary operator with host semantics. Operands that
// implement object.HasBinary are consulted first, left then right.
func BinaryOp(op string, l, r object.Value) (object.Value, error) { return binaryOp(op, l, r) }

func binaryOp(op string, l, r object.Value) (object.Value, error) {
	if h, ok := l.(object.HasBinary); ok {
		if v, handled, err := h.Binary(op, r, false); handled || err != nil {
			return v, err
		}
	}
	if h, ok := r.(object.HasBinary); ok {
		if v, handled, err := h.Binary(op, l, true); handled || err != nil {
			return v, err
		}
	}

	li, lInt := asInt(l)
	ri, rInt := asInt(r)
	if lInt && rInt {
		return intOp(op, li, ri, l, r)
	}
	lf, lNum := asFloat(l)
	rf, rNum := asFloat(r)
	if lNum && rNum {
		return floatOp(op, lf, rf, l, r)
	}
	return sequenceOp(op, l, r)
}

func intOp(op string, a, b int64, l, r object.Value) (object.Value, error) {
	switch op {
	case "+":
		return object.Int(a + b), nil
	case "-":
		return object.Int(a - b), nil
	case "*":
		return object.Int(a * b), nil
	case "/":
		if b == 0 {
			return nil, object.Errorf(object.ZeroDivisionErrorKind, "division by zero")
		}
		return object.Float(float64(a) / float64(b)), nil
	case "//":
		if b == 0 {
			return nil, object.Errorf(object.ZeroDivisionErrorKind, "integer division or modulo by zero")
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return object.Int(q), nil
	case "%":
		if b == 0 {
			return nil, object.Errorf(object.ZeroDivisionErrorKind, "integer division or modulo by zero")
		}
		m := a % b
		if m != 0 && ((m < 0) != (b < 0)) {
			m += b
		}
		return object.Int(m), nil
	case "**":
		if b < 0 {
			return object.Float(math.Pow(float64(a), float64(b))), nil
		}
		result := int64(1)
		for base, e := a, b; e > 0; e >>= 1 {
			if e&1 == 1 {
				result *= base
			}
			base *= base
		}
		return object.Int(result), nil
	case "&":
		return bitResult(l, r, a&b), nil
	case "|":
		return bitResult(l, r, a|b), nil
	case "^":
		return bitResult(l, r, a^b), nil
	}
	return nil, unsupported(op, l, r)
}

// bitResult keeps bool & bool a bool.
func bitResult(l, r object.Value, v int64) object.Value {
	_, lb := l.(object.Bool)
	_, rb := r.(object.Bool)
	if lb && rb {
		return object.Bool(v != 0)
	}
	return object.Int(v)
}

func floatOp(op string, a, b float64, l, r object.Value) (object.Value, error) {
	switch op {
	case "+":
		return object.Float(a + b), nil
	case "-":
		return object.Float(a - b), nil
	case "*":
		return object.Float(a * b), nil
	case "/":
		if b == 0 {
			return nil, object.Errorf(object.ZeroDivisionErrorKind, "float division by zero")
		}
		return object.Float(a / b), nil
	case "//":
		if b == 0 {
			return nil, object.Errorf(object.ZeroDivisionErrorKind, "float floor division by zero")
		}
		return object.Float(math.Floor(a / b)), nil
	case "%":
		if b == 0 {
			return nil, object.Errorf(object.ZeroDivisionErrorKind, "float modulo")
		}
		m := math.Mod(a, b)
		if m != 0 && ((m < 0) != (b < 0)) {
			m += b
		}
		return object.Float(m), nil
	case "**":
		return object.Float(math.Pow(a, b)), nil
	}
	return nil, unsupported(op, l, r)
}

func sequenceOp(op string, l, r object.Value) (object.Value, error) {
	switch op {
	case "+":
		switch a := l.(type) {
		case object.Str:
			if b, ok := r.(object.Str); ok {
				return a + b, nil
			}
			return nil, object.Errorf(object.TypeErrorKind, "can only concatenate str (not \"%s\") to str", r.Type())
		case object.ListLike:
			if b, ok := r.(object.ListLike); ok {
				return object.NewList(slices.Concat(a.AsList().Elems, b.AsList().Elems)...), nil
			}
			return nil, object.Errorf(object.TypeErrorKind, "can only concatenate list (not \"%s\") to list", r.Type())
		case object.Tuple:
			if b, ok := r.(object.Tuple); ok {
				return object.Tuple(slices.Concat(a, b)), nil
			}
		}
	case "*":
		if n, ok := asInt(r); ok {
			return repeat(l, n, op, r)
		}
		if n, ok := asInt(l); ok {
			return repeat(r, n, op, l)
		}
	case "|":
		a, aok := l.(*object.Dict)
		b, bok := r.(*object.Dict)
		if aok && bok {
			out := object.NewDict()
			for _, d := range []*object.Dict{a, b} {
				for k, v := range d.Items() {
					if err := out.Set(k, v); err != nil {
						return nil, err
					}
				}
			}
			return out, nil
		}
	}
	return nil, unsupported(op, l, r)
}

func repeat(seq object.Value, n int64, op string, other object.Value) (object.Value, error) {
	if n < 0 {
		n = 0
	}
	switch s := seq.(type) {
	case object.Str:
		return object.Str(strings.Repeat(string(s), int(n))), nil
	case object.ListLike:
		var out []object.Value
		for range n {
			out = append(out, s.AsList().Elems...)
		}
		return object.NewList(out...), nil
	case object.Tuple:
		var out object.Tuple
		for range n {
			out = append(out, s...)
		}
		return out, nil
	}
	return nil, unsupported(op, seq, other)
}

func unaryOp(op string, v object.Value) (object.Value, error) {
	if op == "not" {
		return object.Bool(!object.Truth(v)), nil
	}
	if i, ok := asInt(v); ok {
		switch op {
		case "-":
			return object.Int(-i), nil
		case "+":
			return object.Int(i), nil
		case "~":
			return object.Int(^i), nil
		}
	}
	if f, ok := v.(object.Float); ok {
		switch op {
		case "-":
			return -f, nil
		case "+":
			return f, nil
		}
	}
	return nil, object.Errorf(object.TypeErrorKind, "bad operand type for unary %s: '%s'", op, v.Type())
}

func compareOp(op string, l, r object.Value) (bool, error) {
	switch op {
	case "==":
		return object.Equal(l, r), nil
	case "!=":
		return !object.Equal(l, r), nil
	case "in":
		return contains(r, l)
	case "not in":
		ok, err := contains(r, l)
		return !ok, err
	case "is":
		return identical(l, r), nil
	case "is not":
		return !identical(l, r), nil
	}
	c, err := object.Compare(l, r)
	if err != nil {
		return false, object.Errorf(object.TypeErrorKind, "'%s' not supported between instances of '%s' and '%s'", op, l.Type(), r.Type())
	}
	switch op {
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	case ">=":
		return c >= 0, nil
	}
	return false, object.Errorf(object.TypeErrorKind, "unknown comparison %s", op)
}

func contains(container, item object.Value) (bool, error) {
	switch c := container.(type) {
	case object.Str:
		s, ok := item.(object.Str)
		if !ok {
			return false, object.Errorf(object.TypeErrorKind, "'in <string>' requires string as left operand, not %s", item.Type())
		}
		return strings.Contains(string(c), string(s)), nil
	case *object.Dict:
		_, ok, err := c.Get(item)
		return ok, err
	}
	elems, err := object.Elements(container)
	if err != nil {
		return false, object.Errorf(object.TypeErrorKind, "argument of type '%s' is not iterable", container.Type())
	}
	for _, e := range elems {
		if object.Equal(e, item) {
			return true, nil
		}
	}
	return false, nil
}

func identical(a, b object.Value) bool {
	switch x := a.(type) {
	case object.NoneType, object.Bool, object.Int, object.Float, object.Str:
		return a == b
	case object.Tuple:
		y, ok := b.(object.Tuple)
		return ok && len(x) == 0 && len(y) == 0
	}
	if _, ok := b.(object.Tuple); ok {
		return false
	}
	return a == b
}

func (m *machine) slice(s *ast.SliceExpr, sc *scope) (object.Value, error) {
	obj, err := m.expr(s.Object, sc)
	if err != nil {
		return nil, err
	}
	bound := func(e ast.Expr) (*int64, error) {
		if e == nil {
			return nil, nil
		}
		v, err := m.expr(e, sc)
		if err != nil {
			return nil, err
		}
		if v == object.None {
			return nil, nil
		}
		n, ok := asInt(v)
		if !ok {
			return nil, object.Errorf(object.TypeErrorKind, "slice indices must be integers or None")
		}
		return &n, nil
	}
	lo, err := bound(s.Lo)
	if err != nil {
		return nil, err
	}
	hi, err := bound(s.Hi)
	if err != nil {
		return nil, err
	}
	step, err := bound(s.Step)
	if err != nil {
		return nil, err
	}
	return SliceValue(obj, lo, hi, step)
}

// SliceValue implements obj[lo:hi:step] for strings, lists, tuples and
// ranges. Nil bounds take their defaults.
func SliceValue(obj object.Value, lo, hi, step *int64) (object.Value, error) {
	st := int64(1)
	if step != nil {
		st = *step
	}
	if st == 0 {
		return nil, object.Errorf(object.ValueErrorKind, "slice step cannot be zero")
	}
	var elems []object.Value
	switch o := obj.(type) {
	case object.Str:
		for _, r := range string(o) {
			elems = append(elems, object.Str(string(r)))
		}
	case object.ListLike:
		elems = o.AsList().Elems
	case object.Tuple:
		elems = o
	case *object.Range:
		elems, _ = object.Elements(o)
	default:
		return nil, object.Errorf(object.TypeErrorKind, "'%s' object is not subscriptable", obj.Type())
	}
	idx := sliceIndices(int64(len(elems)), lo, hi, st)
	out := make([]object.Value, 0, len(idx))
	for _, i := range idx {
		out = append(out, elems[i])
	}
	switch obj.(type) {
	case object.Str:
		var sb strings.Builder
		for _, v := range out {
			sb.WriteString(string(v.(object.Str)))
		}
		return object.Str(sb.String()), nil
	case object.Tuple:
		return object.Tuple(out), nil
	}
	return object.NewList(out...), nil
}

func sliceIndices(n int64, lo, hi *int64, step int64) []int64 {
	clamp := func(p *int64, def, min, max int64) int64 {
		if p == nil {
			return def
		}
		v := *p
		if v < 0 {
			v += n
		}
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	}
	var out []int64
	if step > 0 {
		start := clamp(lo, 0, 0, n)
		stop := clamp(hi, n, 0, n)
		for i := start; i < stop; i += step {
			out = append(out, i)
		}
		return out
	}
	start := clamp(lo, n-1, -1, n-1)
	stop := clamp(hi, -1, -1, n-1)
	for i := start; i > stop; i += step {
		out = append(out, i)
	}
	return out
}
