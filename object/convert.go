package object

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// FromGo converts a Go value to a host value. Values that already
// implement Value are returned as is.
func FromGo(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return None, nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case float64:
		return Float(x), nil
	case float32:
		return Float(x), nil
	case string:
		return Str(x), nil
	case []string:
		out := make([]Value, len(x))
		for i, s := range x {
			out[i] = Str(s)
		}
		return NewList(out...), nil
	case BuiltinFunc:
		return NewBuiltin("<go>", x), nil
	case func(args []Value, kwargs Kwargs) (Value, error):
		return NewBuiltin("<go>", x), nil
	case map[string]any:
		d := NewDict()
		for _, k := range slices.Sorted(maps.Keys(x)) {
			val, err := FromGo(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			_ = d.Set(Str(k), val)
		}
		return d, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]Value, rv.Len())
		for i := range out {
			val, err := FromGo(rv.Index(i).Interface())
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			out[i] = val
		}
		return NewList(out...), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return Int(rv.Convert(reflect.TypeOf(int64(0))).Int()), nil
	}
	return nil, fmt.Errorf("cannot convert %T to a script value", v)
}

// ToGo converts a host value to plain Go data: nil, bool, int64,
// float64, string, []any and map[string]any. Other values (callables,
// namespaces) are returned unchanged.
func ToGo(v Value) any {
	switch x := v.(type) {
	case NoneType:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case Str:
		return string(x)
	case ListLike:
		return toGoSlice(x.AsList().Elems)
	case Tuple:
		return toGoSlice(x)
	case *Range:
		return toGoSlice(slices.Collect(x.Iter()))
	case *Dict:
		out := make(map[string]any, x.Len())
		for k, val := range x.Items() {
			out[ToStr(k)] = ToGo(val)
		}
		return out
	}
	return v
}

func toGoSlice(vs []Value) []any {
	out := make([]any, len(vs))
	for i, e := range vs {
		out[i] = ToGo(e)
	}
	return out
}
