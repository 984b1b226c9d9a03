package object

import (
	"iter"
	"strconv"
	"strings"
)

// Dict is an insertion-ordered hash map.
type Dict struct {
	keys   []Value
	values []Value
	index  map[string]int
}

// NewDict returns an empty dict.
func NewDict() *Dict { return &Dict{index: map[string]int{}} }

func (d *Dict) Type() string { return "dict" }
func (d *Dict) Len() int     { return len(d.keys) }

func (d *Dict) String() string {
	parts := make([]string, len(d.keys))
	for i := range d.keys {
		parts[i] = d.keys[i].String() + ": " + d.values[i].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// Iter yields the keys.
func (d *Dict) Iter() iter.Seq[Value] {
	return func(yield func(Value) bool) {
		for _, k := range d.keys {
			if !yield(k) {
				return
			}
		}
	}
}

// Items yields key/value pairs in insertion order.
func (d *Dict) Items() iter.Seq2[Value, Value] {
	return func(yield func(Value, Value) bool) {
		for i, k := range d.keys {
			if !yield(k, d.values[i]) {
				return
			}
		}
	}
}

// Get looks up key.
func (d *Dict) Get(key Value) (Value, bool, error) {
	h, err := hashKey(key)
	if err != nil {
		return nil, false, err
	}
	i, ok := d.index[h]
	if !ok {
		return nil, false, nil
	}
	return d.values[i], true, nil
}

// Set inserts or replaces key.
func (d *Dict) Set(key, value Value) error {
	h, err := hashKey(key)
	if err != nil {
		return err
	}
	if i, ok := d.index[h]; ok {
		d.values[i] = value
		return nil
	}
	d.index[h] = len(d.keys)
	d.keys = append(d.keys, key)
	d.values = append(d.values, value)
	return nil
}

// Delete removes key and reports whether it was present.
func (d *Dict) Delete(key Value) (bool, error) {
	h, err := hashKey(key)
	if err != nil {
		return false, err
	}
	i, ok := d.index[h]
	if !ok {
		return false, nil
	}
	d.keys = append(d.keys[:i], d.keys[i+1:]...)
	d.values = append(d.values[:i], d.values[i+1:]...)
	delete(d.index, h)
	for k, j := range d.index {
		if j > i {
			d.index[k] = j - 1
		}
	}
	return true, nil
}

func (d *Dict) Index(key Value) (Value, error) {
	v, ok, err := d.Get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, Errorf(KeyErrorKind, "%s", key.String())
	}
	return v, nil
}

func (d *Dict) SetIndex(key, x Value) error { return d.Set(key, x) }

func (d *Dict) Attr(name string) (Value, bool) {
	fn, ok := dictMethods[name]
	if !ok {
		return nil, false
	}
	return &BoundMethod{Self: d, Name: name, Fn: fn}, true
}

// hashKey maps hashable values to a map key. Numbers that compare equal
// hash equal, so 1, 1.0 and True share a slot.
func hashKey(v Value) (string, error) {
	switch k := v.(type) {
	case NoneType:
		return "none", nil
	case Bool:
		if k {
			return "n:1", nil
		}
		return "n:0", nil
	case Int:
		return "n:" + strconv.FormatInt(int64(k), 10), nil
	case Float:
		if f := float64(k); f == float64(int64(f)) {
			return "n:" + strconv.FormatInt(int64(f), 10), nil
		}
		return "f:" + strconv.FormatFloat(float64(k), 'g', -1, 64), nil
	case Str:
		return "s:" + string(k), nil
	case Tuple:
		var sb strings.Builder
		sb.WriteString("t:")
		for _, e := range k {
			h, err := hashKey(e)
			if err != nil {
				return "", err
			}
			sb.WriteString(strconv.Itoa(len(h)))
			sb.WriteByte(':')
			sb.WriteString(h)
		}
		return sb.String(), nil
	}
	return "", Errorf(TypeErrorKind, "unhashable type: '%s'", v.Type())
}
