package object

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, v Value, method string, args ...Value) Value {
	t.Helper()
	attrs, ok := v.(HasAttrs)
	require.True(t, ok, "%s has no attributes", v.Type())
	m, ok := attrs.Attr(method)
	require.True(t, ok, "%s has no method %s", v.Type(), method)
	out, err := m.(Callable).Call(args, nil)
	require.NoError(t, err)
	return out
}

func TestRepr(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{None, "None"},
		{Bool(true), "True"},
		{Int(-3), "-3"},
		{Float(1), "1.0"},
		{Float(0.1), "0.1"},
		{Float(1e16), "1e+16"},
		{Float(123456789), "123456789.0"},
		{Float(1e-5), "1e-05"},
		{Str("it's"), `"it's"`},
		{Str("a\nb"), `'a\nb'`},
		{NewList(Int(1), Str("x")), "[1, 'x']"},
		{Tuple{Int(1)}, "(1,)"},
		{Tuple{}, "()"},
		{&Range{Start: 0, Stop: 4, Step: 1}, "range(0, 4)"},
		{NewNamespace(map[string]Value{"b": Int(2), "a": Int(1)}), "namespace(a=1, b=2)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.v.String())
	}
}

func TestDictOrderAndNumericKeys(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set(Str("b"), Int(1)))
	require.NoError(t, d.Set(Str("a"), Int(2)))
	require.NoError(t, d.Set(Int(1), Str("int")))
	require.NoError(t, d.Set(Float(1.0), Str("float")))
	assert.Equal(t, "{'b': 1, 'a': 2, 1: 'float'}", d.String())

	_, err := d.Index(Str("missing"))
	assert.ErrorIs(t, err, ErrKey)

	err = d.Set(NewList(), Int(1))
	assert.ErrorIs(t, err, ErrType)

	ok, err := d.Delete(Str("b"))
	require.NoError(t, err)
	assert.True(t, ok)
	v, err := d.Index(Int(1))
	require.NoError(t, err)
	assert.Equal(t, Str("float"), v)
}

func TestStringMethods(t *testing.T) {
	assert.Equal(t, Str("HELLO"), call(t, Str("hello"), "upper"))
	assert.Equal(t, Str("bbb"), call(t, Str("aba"), "replace", Str("a"), Str("b")))
	assert.Equal(t, Str("05"), call(t, Str("5"), "zfill", Int(2)))
	assert.Equal(t, Str("-05"), call(t, Str("-5"), "zfill", Int(3)))
	assert.Equal(t, Str("Hello World"), call(t, Str("hello wORLD"), "title"))
	assert.Equal(t, Str("Hello world"), call(t, Str("hELLO WORLD"), "capitalize"))
	assert.Equal(t, Str("x"), call(t, Str("  x\n"), "strip"))
	assert.Equal(t, Str("x"), call(t, Str("--x--"), "strip", Str("-")))
	assert.Equal(t, Str("a-b"), call(t, Str("-"), "join", NewList(Str("a"), Str("b"))))
	assert.Equal(t, Bool(true), call(t, Str("abc"), "startswith", Tuple{Str("x"), Str("ab")}))
	assert.Equal(t, Int(2), call(t, Str("banana"), "find", Str("n")))
	assert.Equal(t, Int(3), call(t, Str("banana"), "count", Str("a")))
	assert.Equal(t, Bool(true), call(t, Str("123"), "isdigit"))
	assert.Equal(t, Bool(false), call(t, Str(""), "isalpha"))

	split := call(t, Str("  a  b c "), "split")
	assert.Equal(t, []any{"a", "b", "c"}, ToGo(split))
	split = call(t, Str("a b  c"), "split", None, Int(1))
	assert.Equal(t, []any{"a", "b  c"}, ToGo(split))
	split = call(t, Str("a,b,,c"), "split", Str(","))
	assert.Equal(t, []any{"a", "b", "", "c"}, ToGo(split))
	lines := call(t, Str("one\ntwo\n"), "splitlines")
	assert.Equal(t, []any{"one", "two"}, ToGo(lines))
}

func TestListMethods(t *testing.T) {
	l := NewList(Int(1), Int(2))
	call(t, l, "append", Int(3))
	call(t, l, "extend", Tuple{Int(4), Int(2)})
	assert.Equal(t, "[1, 2, 3, 4, 2]", l.String())
	assert.Equal(t, Int(2), call(t, l, "count", Int(2)))
	assert.Equal(t, Int(3), call(t, l, "index", Int(4)))
	assert.Equal(t, Int(2), call(t, l, "pop"))
	assert.Equal(t, Int(1), call(t, l, "pop", Int(0)))
	assert.Equal(t, "[2, 3, 4]", l.String())

	m, _ := l.Attr("index")
	_, err := m.(Callable).Call([]Value{Int(99)}, nil)
	assert.ErrorIs(t, err, ErrValue)
}

func TestIndexing(t *testing.T) {
	l := NewList(Int(1), Int(2), Int(3))
	v, err := l.Index(Int(-1))
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)
	_, err = l.Index(Int(3))
	assert.ErrorIs(t, err, ErrIndex)
	_, err = l.Index(Str("x"))
	assert.ErrorIs(t, err, ErrType)

	r := &Range{Start: 10, Stop: 0, Step: -3}
	assert.Equal(t, 4, r.Len())
	assert.Equal(t, []any{int64(10), int64(7), int64(4), int64(1)}, ToGo(r))

	s, err := Str("héllo").Index(Int(1))
	require.NoError(t, err)
	assert.Equal(t, Str("é"), s)
}

func TestEqualAndCompare(t *testing.T) {
	assert.True(t, Equal(Int(1), Float(1.0)))
	assert.True(t, Equal(Bool(true), Int(1)))
	assert.True(t, Equal(NewList(Str("a")), NewList(Str("a"))))
	assert.False(t, Equal(NewList(Int(1)), Tuple{Int(1)}))
	assert.False(t, Equal(Str("1"), Int(1)))
	assert.True(t, Equal(None, None))

	c, err := Compare(Str("a"), Str("b"))
	require.NoError(t, err)
	assert.Equal(t, -1, c)
	c, err = Compare(Tuple{Int(1), Int(2)}, Tuple{Int(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, c)
	_, err = Compare(Str("a"), Int(1))
	assert.ErrorIs(t, err, ErrType)
}

func TestTruth(t *testing.T) {
	assert.False(t, Truth(None))
	assert.False(t, Truth(Str("")))
	assert.False(t, Truth(NewList()))
	assert.False(t, Truth(&Range{Start: 0, Stop: 0, Step: 1}))
	assert.True(t, Truth(Tuple{None}))
	assert.True(t, Truth(NewBuiltin("f", nil)))
}

func TestFromGoToGo(t *testing.T) {
	v, err := FromGo(map[string]any{"n": 1, "xs": []int{1, 2}, "s": "x", "none": nil})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"n": int64(1), "xs": []any{int64(1), int64(2)}, "s": "x", "none": nil}, ToGo(v))

	_, err = FromGo(struct{}{})
	assert.Error(t, err)

	fn, err := FromGo(func(args []Value, kw Kwargs) (Value, error) { return Int(len(args)), nil })
	require.NoError(t, err)
	out, err := fn.(Callable).Call([]Value{None, None}, nil)
	require.NoError(t, err)
	assert.Equal(t, Int(2), out)
}

func TestClassUnboundMethods(t *testing.T) {
	str := &Class{Name: "str", Methods: MethodsOf("str")}
	upper, ok := str.Attr("upper")
	require.True(t, ok)
	out, err := upper.(Callable).Call([]Value{Str("abc")}, nil)
	require.NoError(t, err)
	assert.Equal(t, Str("ABC"), out)

	_, err = upper.(Callable).Call([]Value{Int(1)}, nil)
	assert.ErrorIs(t, err, ErrType)
}

func TestErrorFormatting(t *testing.T) {
	err := Errorf(TypeErrorKind, "Right-hand side must be callable")
	assert.Equal(t, "TypeError: Right-hand side must be callable", err.Error())
	assert.True(t, errors.Is(err, ErrType))
	assert.False(t, errors.Is(err, ErrValue))
}

func TestMerge(t *testing.T) {
	env := Merge(Env{"a": Int(1), "b": Int(1)}, Env{"b": Int(2)}, nil)
	assert.Equal(t, Env{"a": Int(1), "b": Int(2)}, env)
}
