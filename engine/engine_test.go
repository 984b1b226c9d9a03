package engine

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/command"
	"github.com/rubiojr/scriptgo/lexer"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/parser"
	"github.com/rubiojr/scriptgo/sugar/pipe"
	"github.com/rubiojr/scriptgo/sugar/shell"
	"github.com/rubiojr/scriptgo/token"
)

func evaluate(t *testing.T, e *Engine, src string) any {
	t.Helper()
	v, err := e.Evaluate(context.Background(), src, nil)
	require.NoError(t, err, src)
	return object.ToGo(v)
}

func TestEvaluate(t *testing.T) {
	e := New(WithStdout(&bytes.Buffer{}))
	tests := []struct {
		src  string
		want any
	}{
		{"[-1, 2, -3] | abs", []any{int64(1), int64(2), int64(3)}},
		{"['abc', 'bcd', 'cde'] |.replace('c', 'a') |.replace('c', 'd')", []any{"aba", "bad", "ade"}},
		{"range(4) | str |.zfill(2)", []any{"00", "01", "02", "03"}},
		{"$('echo hi')", "hi"},
		{"a, b, c = $('printf x; exit 4'); (a, b, c)", []any{"x", "", int64(4)}},
		{"files = $('printf \"a\\nb\\n\"').splitlines() | len; sum(files)", int64(2)},
		{"x = 1", nil},
		{"7 | 8", int64(15)},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, evaluate(t, e, tt.src))
		})
	}
}

func TestMultiResultClassification(t *testing.T) {
	var reqs []command.Request
	runner := command.FuncRunner(func(ctx context.Context, req command.Request) (command.Result, error) {
		reqs = append(reqs, req)
		return command.Result{Stdout: "o", Stderr: "e", ExitCode: 0}, nil
	})
	e := New(WithRunner(runner))

	assert.Equal(t, []any{"o", "e", int64(0)}, evaluate(t, e, "a,b,c = $('cmd'); (a,b,c)"))
	assert.Equal(t, "o", evaluate(t, e, "a = $('cmd'); a"))
	require.Len(t, reqs, 2)
	assert.False(t, reqs[0].CheckExit)
	assert.True(t, reqs[1].CheckExit)
	assert.True(t, reqs[1].MergeStderr)
}

func TestEvaluateErrors(t *testing.T) {
	e := New()

	_, err := e.Evaluate(context.Background(), "[1, 2] | 5", nil)
	assert.ErrorIs(t, err, object.ErrType)
	assert.Contains(t, err.Error(), "Right-hand side must be callable")

	_, err = e.Evaluate(context.Background(), "$('exit 7')", nil)
	var ee *command.ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 7, ee.Result.ExitCode)

	_, err = e.Evaluate(context.Background(), "x = $(cmd)", nil)
	var se *parser.SyntaxError
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "shell tree pass: ")
	assert.Equal(t, "Expected string literal in shell command", se.Msg)

	_, err = e.Evaluate(context.Background(), "1 +", nil)
	require.ErrorAs(t, err, &se)
	assert.True(t, strings.HasPrefix(err.Error(), "parse: <main:"), err.Error())

	_, err = e.Evaluate(context.Background(), "len([1, 2", nil)
	require.ErrorAs(t, err, &se)
	assert.Contains(t, err.Error(), "lex: ")
}

func TestEvaluateErrorsNameTheSource(t *testing.T) {
	src := "x = 1\ny = x + missing\n"
	_, err := Evaluate(context.Background(), src, nil)
	var ev *EvalError
	require.ErrorAs(t, err, &ev)
	assert.Equal(t, Filename(src), ev.Filename)
	assert.ErrorIs(t, err, object.ErrName)
	assert.Equal(t, Filename(src)+":2:9: NameError: name 'missing' is not defined\n    y = x + missing", err.Error())

	_, err = Evaluate(context.Background(), "[1, 2] | 5", nil)
	require.ErrorAs(t, err, &ev)
	assert.True(t, strings.HasSuffix(err.Error(), "\n    [ 1 , 2 ] | 5"), err.Error())
}

func TestBalanceFix(t *testing.T) {
	e := New(WithBalanceFix())
	assert.Equal(t, int64(2), evaluate(t, e, "len([1, 2"))
}

func TestBindings(t *testing.T) {
	e := New()
	v, err := e.Evaluate(context.Background(), "xs | str", map[string]any{"xs": []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, []any{"1", "2"}, object.ToGo(v))

	v, err = e.Evaluate(context.Background(), "name.upper()", map[string]any{"name": "go"})
	require.NoError(t, err)
	assert.Equal(t, object.Str("GO"), v)
}

func TestBindingsShadowRuntime(t *testing.T) {
	fakeShell := object.NewBuiltin("fake", func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		return object.Str("faked " + args[0].String()), nil
	})
	v, err := New().Evaluate(context.Background(), "$('ls')", map[string]any{shell.ExecName: fakeShell})
	require.NoError(t, err)
	assert.Equal(t, object.Str("faked 'ls'"), v)
}

func TestPrintGoesToStdout(t *testing.T) {
	var out bytes.Buffer
	e := New(WithStdout(&out))
	_, err := e.Evaluate(context.Background(), "print(['a', 'b'] |.upper)", nil)
	require.NoError(t, err)
	assert.Equal(t, "['A', 'B']\n", out.String())
}

func TestDebugOutput(t *testing.T) {
	var dbg bytes.Buffer
	e := New(WithDebug(&dbg))
	_, err := e.Evaluate(context.Background(), "[1] | abs", nil)
	require.NoError(t, err)
	assert.Equal(t, "[DEBUG] Transformed code:\n__pipeable__([1]) | abs\n", dbg.String())
}

func TestRewriteUnit(t *testing.T) {
	u, err := New().Rewrite("x = $('ls') |.strip\n")
	require.NoError(t, err)
	assert.Equal(t, Filename("x = $('ls') |.strip\n"), u.Filename)
	assert.Equal(t, "x = __shell__ ( 'ls' ) | __pipe_attr__ ( 'strip' )\n", u.Rewritten)
	assert.True(t, u.Tokens.Terminated())
	assert.Equal(t, "x = __pipeable__(__shell__('ls')) | __pipe_attr__('strip')\n", ast.Print(u.Program))
	assert.Equal(t, u.Filename, u.Program.SourceFile)
}

func TestRewriteNormalizesPositions(t *testing.T) {
	u, err := New().Rewrite("a = 1\nb = [a] | str\n")
	require.NoError(t, err)
	ast.Walk(u.Program, func(n ast.Node) bool {
		assert.True(t, n.Pos().IsValid(), "%T has no position", n)
		return true
	})
}

func TestFilename(t *testing.T) {
	assert.Equal(t, Filename("x"), Filename("x"))
	assert.NotEqual(t, Filename("x"), Filename("y"))
	assert.Regexp(t, `^<main:[0-9a-f]+>$`, Filename(""))
}

func TestCustomTransformers(t *testing.T) {
	e := New(WithTransformers(pipe.New()))
	assert.Equal(t, []string{"pipe"}, e.transformers().Names())

	_, err := e.Evaluate(context.Background(), "$('ls')", nil)
	var se *parser.SyntaxError
	require.ErrorAs(t, err, &se)

	e = New(WithTransformers())
	_, err = e.Evaluate(context.Background(), "[1] | abs", nil)
	assert.ErrorIs(t, err, object.ErrType, "without the pipe runtime | is bitwise or")
}

// Token passes with nothing to rewrite leave every token's kind, text and
// order intact, and the rendered text parses to the same tree.
func TestPassThroughRoundTrip(t *testing.T) {
	sources := []string{
		"x = 1\ny = x + 2 * 3\n",
		"print('a', sep='')\n",
		"d = {'k': [1, 2]}; d['k'][0]\n",
		"f'{1 + 1} is {\"two\"}'\n",
		"[a for a in range(3) if a]\n",
		"(lambda x, y=2: x ** y)(3)\n",
	}
	for _, src := range sources {
		t.Run(src, func(t *testing.T) {
			u, err := New().Rewrite(src)
			require.NoError(t, err)

			toks, err := lexer.Lex(src)
			require.NoError(t, err)
			assert.Equal(t, kindsAndTexts(toks), kindsAndTexts(u.Tokens))

			direct, err := parser.ParseSource("direct", src)
			require.NoError(t, err)
			if diff := cmp.Diff(direct.Statements, u.Program.Statements, cmpopts.IgnoreTypes(ast.Base{})); diff != "" {
				t.Errorf("tree mismatch (-direct +rewritten):\n%s", diff)
			}
		})
	}
}

func kindsAndTexts(toks []token.Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Kind.String() + ":" + t.Text
	}
	return out
}

func TestConcurrentEvaluations(t *testing.T) {
	e := New(WithStdout(&bytes.Buffer{}))
	var wg sync.WaitGroup
	results := make([]any, 16)
	errs := make([]error, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := e.Evaluate(context.Background(), fmt.Sprintf("n = %d\n[n] | str", i), nil)
			errs[i] = err
			results[i] = object.ToGo(v)
		}()
	}
	wg.Wait()
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, []any{fmt.Sprint(i)}, results[i])
	}
}

func TestPackageEvaluate(t *testing.T) {
	v, err := Evaluate(context.Background(), "sum([1, 2, 3] | abs)", nil)
	require.NoError(t, err)
	assert.Equal(t, object.Int(6), v)
}
