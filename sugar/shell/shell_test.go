package shell

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/scriptgo/command"
	"github.com/rubiojr/scriptgo/editor"
	"github.com/rubiojr/scriptgo/eval"
	"github.com/rubiojr/scriptgo/lexer"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/parser"
	"github.com/rubiojr/scriptgo/token"
)

func rewriteTokens(t *testing.T, src string) string {
	t.Helper()
	toks, err := lexer.Lex(src)
	require.NoError(t, err)
	ed := editor.New(toks)
	require.NoError(t, ed.Pass("shell", New(nil).TokenPass))
	ed.End()
	return ed.Tokens().Render()
}

func run(t *testing.T, tr *Transformer, src string) (object.Value, error) {
	t.Helper()
	prog, err := parser.ParseSource("<test>", rewriteTokens(t, src))
	require.NoError(t, err)
	prog, err = tr.TreePass(prog)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	return eval.New().Run(ctx, prog, tr.Environment(ctx))
}

// fake records every request and answers with res.
func fake(res command.Result, reqs *[]command.Request) command.Runner {
	return command.FuncRunner(func(ctx context.Context, req command.Request) (command.Result, error) {
		*reqs = append(*reqs, req)
		return res, nil
	})
}

func TestTokenPass(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"$('echo hi')", "__shell__ ( 'echo hi' )\n"},
		{"a = $('cmd')", "a = __shell__ ( 'cmd' )\n"},
		{"a, b, c = $('cmd')", "a , b , c = __shell_multi__ ( 'cmd' )\n"},
		{"out, err, code = $(f'echo {n}')", "out , err , code = __shell_multi__ ( f'echo {n}' )\n"},
		{"xs = [1, $('x')]", "xs = [ 1 , __shell__ ( 'x' ) ]\n"},
		{"a, b = 1, 2\nx = $('c')", "a , b = 1 , 2\nx = __shell__ ( 'c' )\n"},
		{"a, b = 1, 2\nprint($('c'))", "a , b = 1 , 2\nprint ( __shell__ ( 'c' ) )\n"},
		{"a, b = 1, 2; print($('c'))", "a , b = 1 , 2 ; print ( __shell__ ( 'c' ) )\n"},
		{"$(cmd)", "__shell__ ( cmd )\n"},
		{"$('a' + b)", "__shell__ ( 'a' + b )\n"},
		{"x | y", "x | y\n"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			assert.Equal(t, tt.want, rewriteTokens(t, tt.src))
		})
	}
}

func TestTokenPassLookbackWindow(t *testing.T) {
	inside := "a, b = " + strings.Repeat("0 + ", 8) + "$('x')"
	assert.Contains(t, rewriteTokens(t, inside), MultiName)

	outside := "a, b = " + strings.Repeat("0 + ", 10) + "$('x')"
	assert.Contains(t, rewriteTokens(t, outside), ExecName+" (")
	assert.NotContains(t, rewriteTokens(t, outside), MultiName)
}

func TestTokenPassKeepsDollarPosition(t *testing.T) {
	toks, err := lexer.Lex("x = $('ls')")
	require.NoError(t, err)
	ed := editor.New(toks)
	require.NoError(t, ed.Pass("shell", New(nil).TokenPass))
	ed.End()
	out := ed.Tokens()
	require.GreaterOrEqual(t, len(out), 3)
	assert.Equal(t, token.Token{Kind: token.NAME, Text: ExecName, Pos: token.Pos{Line: 1, Col: 5}}, out[2])
}

func TestMultiResult(t *testing.T) {
	op := func(s string) token.Token { return token.New(token.OP, s) }
	name := func(s string) token.Token { return token.New(token.NAME, s) }
	nl := token.New(token.NEWLINE, "\n")

	assert.False(t, multiResult(nil))
	assert.False(t, multiResult([]token.Token{name("a"), op("=")}))
	assert.True(t, multiResult([]token.Token{name("a"), op(","), name("b"), op("=")}))
	assert.False(t, multiResult([]token.Token{name("a"), op(","), nl, name("b"), op("=")}))
	assert.False(t, multiResult([]token.Token{name("a"), op(","), name("b"), op("="), nl}))
	assert.False(t, multiResult([]token.Token{name("a"), op(","), name("b")}))
}

func TestTreePassRejectsNonLiterals(t *testing.T) {
	for _, src := range []string{
		"$(cmd)",
		"$('a' + b)",
		"$('a', 'b')",
		"$()",
		"x = [__shell_multi__(cmd='ls')]",
	} {
		t.Run(src, func(t *testing.T) {
			_, err := run(t, New(nil), src)
			var se *parser.SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "Expected string literal in shell command", se.Msg)
			assert.Equal(t, "<test>", se.Filename)
			assert.True(t, se.Pos.IsValid())
		})
	}
}

func TestTreePassAcceptsLiterals(t *testing.T) {
	prog, err := parser.ParseSource("<test>", "__shell__('ls')\n__shell__(f'ls {d}')\n")
	require.NoError(t, err)
	out, err := New(nil).TreePass(prog)
	require.NoError(t, err)
	assert.Same(t, prog, out)
}

func TestSingleResult(t *testing.T) {
	var reqs []command.Request
	tr := New(fake(command.Result{Stdout: "hi\n\n"}, &reqs))
	v, err := run(t, tr, "$('echo hi')")
	require.NoError(t, err)
	assert.Equal(t, object.Str("hi"), v)
	assert.Equal(t, []command.Request{{Command: "echo hi", MergeStderr: true, CheckExit: true}}, reqs)
}

func TestMultiResultRuntime(t *testing.T) {
	var reqs []command.Request
	tr := New(fake(command.Result{Stdout: "out\n", Stderr: "err\n", ExitCode: 2}, &reqs))
	v, err := run(t, tr, "a, b, c = $('cmd'); (a, b, c)")
	require.NoError(t, err)
	assert.Equal(t, []any{"out", "err", int64(2)}, object.ToGo(v))
	assert.Equal(t, []command.Request{{Command: "cmd"}}, reqs)
}

func TestFStringCommand(t *testing.T) {
	var reqs []command.Request
	tr := New(fake(command.Result{Stdout: "ok"}, &reqs))
	_, err := run(t, tr, "n = 3\n$(f'seq {n}')")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "seq 3", reqs[0].Command)
}

func TestSingleResultFailsOnExitStatus(t *testing.T) {
	var reqs []command.Request
	tr := New(fake(command.Result{Stdout: "boom", ExitCode: 1}, &reqs))
	_, err := run(t, tr, "x = $('false')\nprint('unreachable')")
	var ee *command.ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 1, ee.Result.ExitCode)
}

func TestRealShell(t *testing.T) {
	tr := New(&command.ExecRunner{})

	v, err := run(t, tr, "$('echo hi; echo there >&2')")
	require.NoError(t, err)
	assert.Equal(t, object.Str("hi\nthere"), v)

	v, err = run(t, tr, "o, e, c = $('printf OUT; printf ERR >&2; exit 5'); [o, e, c]")
	require.NoError(t, err)
	assert.Equal(t, []any{"OUT", "ERR", int64(5)}, object.ToGo(v))

	_, err = run(t, tr, "$('exit 3')")
	var ee *command.ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.Result.ExitCode)
}

func TestRuntimeArgumentErrors(t *testing.T) {
	env := New(nil).Environment(context.Background())
	_, err := eval.Call(env[ExecName], []object.Value{object.Int(1)}, nil)
	assert.ErrorIs(t, err, object.ErrType)
	_, err = eval.Call(env[MultiName], nil, nil)
	assert.ErrorIs(t, err, object.ErrType)
}
