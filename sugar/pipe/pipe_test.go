package pipe

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/editor"
	"github.com/rubiojr/scriptgo/eval"
	"github.com/rubiojr/scriptgo/lexer"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/parser"
)

func rewriteTokens(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	ed := editor.New(toks)
	require.NoError(t, ed.Pass("pipe", New().TokenPass))
	ed.End()
	return ed.Tokens().Render()
}

func rewrite(t *testing.T, src string) *ast.Program {
	t.Helper()
	prog, err := parser.ParseSource("<test>", rewriteTokens(t, src))
	require.NoError(t, err)
	out, err := New().TreePass(prog)
	require.NoError(t, err)
	return out
}

func run(t *testing.T, src string) (object.Value, error) {
	t.Helper()
	ctx := context.Background()
	return eval.New().Run(ctx, rewrite(t, src), New().Environment(ctx))
}

func TestTokenPass(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"x |.upper", "x | __pipe_attr__ ( 'upper' )\n"},
		{"x | .strip()", "x | __pipe_attr__ ( 'strip' )\n"},
		{"x |.zfill(2)", "x | __pipe_attr__ ( 'zfill' , 2 )\n"},
		{"x |.replace('a', f(1, [2]))", "x | __pipe_attr__ ( 'replace' , 'a' , f ( 1 , [ 2 ] ) )\n"},
		{"x |.a |.b", "x | __pipe_attr__ ( 'a' ) | __pipe_attr__ ( 'b' )\n"},
		{"x | f", "x | f\n"},
		{"a.b | c.d", "a . b | c . d\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteTokens(t, tt.src))
		})
	}
}

func TestTokenPassKeepsNamePosition(t *testing.T) {
	toks, err := lexer.Lex("x |.upper")
	require.NoError(t, err)
	ed := editor.New(toks)
	require.NoError(t, ed.Pass("pipe", New().TokenPass))
	ed.End()
	out := ed.Tokens()
	require.GreaterOrEqual(t, len(out), 3)
	assert.Equal(t, AttrName, out[2].Text)
	assert.Equal(t, 5, out[2].Pos.Col)
}

func TestTreePassWrapsLeftOperands(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"a | f", "__pipeable__(a) | f\n"},
		{"a | f | g", "__pipeable__(__pipeable__(a) | f) | g\n"},
		{"y = [a | f]", "y = [__pipeable__(a) | f]\n"},
		{"a + b", "a + b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, ast.Print(rewrite(t, tt.src)))
		})
	}
}

func TestTreePassDoesNotMutateInput(t *testing.T) {
	prog, err := parser.ParseSource("<test>", "a | f\n")
	require.NoError(t, err)
	before := ast.Print(prog)
	_, err = New().TreePass(prog)
	require.NoError(t, err)
	assert.Equal(t, before, ast.Print(prog))
}

func TestPipes(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"[-1, 2, -3] | abs", []any{int64(1), int64(2), int64(3)}},
		{"['hello', 'world'] |.upper", []any{"HELLO", "WORLD"}},
		{"['aba', 'bad' , 'ade'] | str.upper | str.lower", []any{"aba", "bad", "ade"}},
		{"range(4) | str |.zfill(2)", []any{"00", "01", "02", "03"}},
		{"(1, 2) | (lambda x: x * 10)", []any{int64(10), int64(20)}},
		{"{'a': 1, 'b': 2} | str.upper", []any{"A", "B"}},
		{"[] | abs", []any{}},
		{"3 | 4", int64(7)},
		{"len(['ab', 'c'] | len)", int64(2)},
		{"(['a'] | str.upper) + ['b']", []any{"A", "b"}},
		{"[' a ', 'b '] |.strip() | len", []any{int64(1), int64(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := run(t, tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, object.ToGo(v))
		})
	}
}

func TestPipeResultIsSequence(t *testing.T) {
	v, err := run(t, "[1, 2] | str")
	require.NoError(t, err)
	seq, ok := v.(*Sequence)
	require.True(t, ok)
	assert.Equal(t, "['1', '2']", seq.String())
	assert.Equal(t, "list", seq.Type())
}

func TestPipeErrors(t *testing.T) {
	tests := []struct {
		src  string
		want error
		msg  string
	}{
		{"[1, 2] | 5", object.ErrType, "Right-hand side must be callable"},
		{"[1, 2] |.nope", object.ErrAttribute, "'int' object has no attribute 'nope'"},
		{"['a', 1] |.upper", object.ErrAttribute, "'int' object has no attribute 'upper'"},
		{"'abc' | len", object.ErrType, "unsupported operand type(s) for |"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := run(t, tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestPipeable(t *testing.T) {
	seq := NewSequence(object.Int(1))
	v, err := pipeable([]object.Value{seq}, nil)
	require.NoError(t, err)
	assert.Same(t, seq, v)

	v, err = pipeable([]object.Value{object.Str("ab")}, nil)
	require.NoError(t, err)
	assert.Equal(t, object.Str("ab"), v)

	v, err = pipeable([]object.Value{object.Int(3)}, nil)
	require.NoError(t, err)
	assert.Equal(t, object.Int(3), v)

	list := object.NewList(object.Int(1))
	v, err = pipeable([]object.Value{list}, nil)
	require.NoError(t, err)
	list.Elems[0] = object.Int(9)
	assert.Equal(t, "[1]", v.String(), "the wrapped sequence is a copy")

	_, err = pipeable(nil, nil)
	assert.ErrorIs(t, err, object.ErrType)
}

func TestPipeAttrNonCallable(t *testing.T) {
	ns := object.NewNamespace(map[string]object.Value{"size": object.Int(4)})
	fn, err := pipeAttr([]object.Value{object.Str("size")}, nil)
	require.NoError(t, err)
	v, err := eval.Call(fn, []object.Value{ns}, nil)
	require.NoError(t, err)
	assert.Equal(t, object.Int(4), v)
}
