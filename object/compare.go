package object

import "cmp"

// numeric returns v as a float and whether it is a number; isInt reports
// an exact integer representation.
func numeric(v Value) (f float64, i int64, isInt, ok bool) {
	switch n := v.(type) {
	case Int:
		return float64(n), int64(n), true, true
	case Bool:
		if n {
			return 1, 1, true, true
		}
		return 0, 0, true, true
	case Float:
		return float64(n), 0, false, true
	}
	return 0, 0, false, false
}

// Equal reports host-language equality (==).
func Equal(a, b Value) bool {
	if af, ai, aInt, ok := numeric(a); ok {
		bf, bi, bInt, ok := numeric(b)
		if !ok {
			return false
		}
		if aInt && bInt {
			return ai == bi
		}
		return af == bf
	}
	switch x := a.(type) {
	case NoneType:
		_, ok := b.(NoneType)
		return ok
	case Str:
		y, ok := b.(Str)
		return ok && x == y
	case ListLike:
		y, ok := b.(ListLike)
		return ok && equalSlices(x.AsList().Elems, y.AsList().Elems)
	case Tuple:
		y, ok := b.(Tuple)
		return ok && equalSlices(x, y)
	case *Range:
		y, ok := b.(*Range)
		return ok && x.Len() == y.Len() && (x.Len() == 0 || (x.Start == y.Start && (x.Len() == 1 || x.Step == y.Step)))
	case *Dict:
		y, ok := b.(*Dict)
		if !ok || x.Len() != y.Len() {
			return false
		}
		for k, v := range x.Items() {
			w, found, err := y.Get(k)
			if err != nil || !found || !Equal(v, w) {
				return false
			}
		}
		return true
	}
	return a == b
}

func equalSlices(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Compare orders a and b for <, <=, >, >= and sorting. Numbers compare
// numerically, strings lexically and lists/tuples element-wise.
func Compare(a, b Value) (int, error) {
	if af, ai, aInt, ok := numeric(a); ok {
		if bf, bi, bInt, ok := numeric(b); ok {
			if aInt && bInt {
				return cmp.Compare(ai, bi), nil
			}
			return cmp.Compare(af, bf), nil
		}
	}
	switch x := a.(type) {
	case Str:
		if y, ok := b.(Str); ok {
			return cmp.Compare(x, y), nil
		}
	case ListLike:
		if y, ok := b.(ListLike); ok {
			return compareSlices(x.AsList().Elems, y.AsList().Elems)
		}
	case Tuple:
		if y, ok := b.(Tuple); ok {
			return compareSlices(x, y)
		}
	}
	return 0, Errorf(TypeErrorKind, "'<' not supported between instances of '%s' and '%s'", a.Type(), b.Type())
}

func compareSlices(a, b []Value) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		if Equal(a[i], b[i]) {
			continue
		}
		return Compare(a[i], b[i])
	}
	return cmp.Compare(len(a), len(b)), nil
}
