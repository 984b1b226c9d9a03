package eval

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/parser"
	"github.com/rubiojr/scriptgo/token"
)

func run(t *testing.T, src string, env object.Env) (object.Value, error) {
	t.Helper()
	prog, err := parser.ParseSource("<test>", src)
	require.NoError(t, err)
	return New().Run(context.Background(), prog, env)
}

func value(t *testing.T, src string) any {
	t.Helper()
	v, err := run(t, src, nil)
	require.NoError(t, err, src)
	return object.ToGo(v)
}

func TestRunReturnsLastExpression(t *testing.T) {
	assert.Equal(t, int64(3), value(t, "x = 1\nx + 2"))
	assert.Nil(t, value(t, "x = 1"))
	assert.Nil(t, value(t, ""))
}

func TestAssignmentWritesEnv(t *testing.T) {
	env := object.Env{"n": object.Int(1)}
	_, err := run(t, "n += 1; a, (b, c) = 1, [2, 3]; xs = [0]; xs[0] = n", env)
	require.NoError(t, err)
	assert.Equal(t, object.Int(2), env["n"])
	assert.Equal(t, object.Int(3), env["c"])
	assert.Equal(t, "[2]", env["xs"].String())
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"7 // 2, -7 // 2, 7 % -3, 2 ** 10, 2 ** -1", []any{int64(3), int64(-4), int64(-2), int64(1024), 0.5}},
		{"1 / 2", 0.5},
		{"'ab' * 2 + 'c'", "ababc"},
		{"[1] + [2] * 2", []any{int64(1), int64(2), int64(2)}},
		{"1 < 2 < 3, 1 < 3 < 2", []any{true, false}},
		{"'b' in 'abc', 2 not in [1, 2], 'k' in {'k': 1}", []any{true, false, true}},
		{"None is None, [] is not None", []any{true, true}},
		{"0 or 'x', 1 and 0, not []", []any{"x", int64(0), true}},
		{"'yes' if 1 else 'no'", "yes"},
		{"(lambda a, b: a * b)(3, b=4)", int64(12)},
		{"f = lambda x, y=2: x ** y; f(3), f(3, 3), f(y=1, x=4)", []any{int64(9), int64(27), int64(4)}},
		{"n = 1; f = lambda x=n: x; n = 2; f(), f(5)", []any{int64(1), int64(5)}},
		{"[x * x for x in range(5) if x % 2 == 0]", []any{int64(0), int64(4), int64(16)}},
		{"[(a, b) for a in 'xy' for b in [1]]", []any{[]any{"x", int64(1)}, []any{"y", int64(1)}}},
		{"'hello'[1:4], [1, 2, 3][::-1], (1, 2, 3)[-1]", []any{"ell", []any{int64(3), int64(2), int64(1)}, int64(3)}},
		{"{'a': 1} | {'b': 2}", map[string]any{"a": int64(1), "b": int64(2)}},
		{"d = {'a': [1]}; d['a'].append(2); d", map[string]any{"a": []any{int64(1), int64(2)}}},
		{"True + True, True & False, ~5", []any{int64(2), false, int64(-6)}},
		{"ns = namespace(a=1); ns.b = 2; ns.a + ns.b", int64(3)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, value(t, tt.src))
		})
	}
}

func TestBuiltins(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"len('héllo'), len([1, 2]), len({})", []any{int64(5), int64(2), int64(0)}},
		{"str(1.5), str([1]), repr('x')", []any{"1.5", "[1]", "'x'"}},
		{"int('42'), int('ff', 16), int(3.9), float('1.5')", []any{int64(42), int64(255), int64(3), 1.5}},
		{"list(range(2, 8, 3)), tuple('ab')", []any{[]any{int64(2), int64(5)}, []any{"a", "b"}}},
		{"abs(-3), abs(-1.5), sum([1, 2, 3]), sum([[1]], [])", []any{int64(3), 1.5, int64(6), []any{int64(1)}}},
		{"min([3, 1, 2]), max(3, 1, 2), max(['aa', 'b'], key=len)", []any{int64(1), int64(3), "aa"}},
		{"sorted([3, 1, 2], reverse=True)", []any{int64(3), int64(2), int64(1)}},
		{"sorted(['bb', 'a', 'ccc'], key=len)", []any{"a", "bb", "ccc"}},
		{"list(reversed([1, 2])), enumerate('ab', 1)", []any{[]any{int64(2), int64(1)}, []any{[]any{int64(1), "a"}, []any{int64(2), "b"}}}},
		{"zip([1, 2, 3], 'ab')", []any{[]any{int64(1), "a"}, []any{int64(2), "b"}}},
		{"map(abs, [-1, 2]), filter(None, [0, 1, ''])", []any{[]any{int64(1), int64(2)}, []any{int64(1)}}},
		{"any([0, 1]), all([]), all([1, 0])", []any{true, true, false}},
		{"dict(a=1), dict([('k', 'v')])", []any{map[string]any{"a": int64(1)}, map[string]any{"k": "v"}}},
		{"round(2.5), round(3.14159, 2)", []any{int64(2), 3.14}},
		{"str.upper('abc'), list(map(str.strip, [' a ']))", []any{"ABC", []any{"a"}}},
		{"type(1) is int, type('') == str, callable(len), callable(1)", []any{true, true, true, false}},
		{"format(3.14159, '.2f'), format(42, '>5')", []any{"3.14", "   42"}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, value(t, tt.src))
		})
	}
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	prog, err := parser.ParseSource("<test>", "print('a', 1, None, sep='-'); print([1, 'b'], end='!')")
	require.NoError(t, err)
	_, err = New(WithStdout(&buf)).Run(context.Background(), prog, nil)
	require.NoError(t, err)
	assert.Equal(t, "a-1-None\n[1, 'b']!", buf.String())
}

func TestFStrings(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`n = 3; f'{n} items'`, "3 items"},
		{`f'{{literal}} {1 + 1}'`, "{literal} 2"},
		{`s = 'x'; f'{s!r} {s}'`, "'x' x"},
		{`f'{3.14159:.2f}|{7:03d}|{"ab":>4}|{"ab":-^6}'`, "3.14|007|  ab|--ab--"},
		{`f'{1234567:,}|{0.25:.0%}|{255:x}|{-5:+}'`, "1,234,567|25%|ff|-5"},
		{`d = {'k': 'v'}; f"{d['k']}"`, "v"},
		{`f'{[1, 2][0] != 2}'`, "True"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, value(t, tt.src))
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
		msg  string
	}{
		{"undefined_name", object.ErrName, "name 'undefined_name' is not defined"},
		{"lenn([1])", object.ErrName, "Did you mean: 'len'?"},
		{"1 + 'a'", object.ErrType, "unsupported operand type(s) for +: 'int' and 'str'"},
		{"1 / 0", object.ErrZeroDivision, "division by zero"},
		{"[1][5]", object.ErrIndex, "list index out of range"},
		{"{}['k']", object.ErrKey, "'k'"},
		{"int('x')", object.ErrValue, "invalid literal for int()"},
		{"a, b = [1]", object.ErrValue, "not enough values to unpack (expected 2, got 1)"},
		{"(1).nope", object.ErrAttribute, "'int' object has no attribute 'nope'"},
		{"5()", object.ErrType, "'int' object is not callable"},
		{"'a' < 1", object.ErrType, "'<' not supported between instances of 'str' and 'int'"},
		{"[3, 'a'] | sorted", object.ErrType, "unsupported operand type(s) for |"},
		{"(lambda x, y=1: x)()", object.ErrType, "<lambda>() missing required argument: 'x'"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := run(t, tt.src, nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestErrorsCarryPosition(t *testing.T) {
	_, err := run(t, "x = 1\ny = x + missing", nil)
	var oe *object.Error
	require.ErrorAs(t, err, &oe)
	assert.Equal(t, token.Pos{Line: 2, Col: 9}, oe.Pos)
	assert.Equal(t, "2:9: NameError: name 'missing' is not defined", oe.Error())
}

func TestGoCallableErrorsPassThrough(t *testing.T) {
	type custom struct{ error }
	boom := custom{assert.AnError}
	env := object.Env{"fail": object.NewBuiltin("fail", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		return nil, boom
	})}
	_, err := run(t, "fail()", env)
	assert.Equal(t, boom, err)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	prog, err := parser.ParseSource("<test>", "1")
	require.NoError(t, err)
	_, err = New().Run(ctx, prog, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBindingsShadowBuiltins(t *testing.T) {
	env := object.Env{"len": object.NewBuiltin("len", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		return object.Int(-1), nil
	})}
	v, err := run(t, "len([1, 2])", env)
	require.NoError(t, err)
	assert.Equal(t, object.Int(-1), v)
}
