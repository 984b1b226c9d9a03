// Package shell adds inline shell substitution to host programs.
//
//	branch = $('git rev-parse --abbrev-ref HEAD')
//	out, err, code = $('make test')
//
// A substitution assigned to a comma-separated target list yields a
// (stdout, stderr, exit_code) tuple and never fails on the exit status.
// Every other substitution yields stdout and fails when the command exits
// non-zero.
package shell

import (
	"context"
	"strings"
	"unicode"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/command"
	"github.com/rubiojr/scriptgo/editor"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/parser"
	"github.com/rubiojr/scriptgo/token"
)

const (
	// ExecName is the runtime function for single-result substitutions.
	ExecName = "__shell__"
	// MultiName is the runtime function for multi-result substitutions.
	MultiName = "__shell_multi__"
)

// lookback is how many emitted tokens the multi-result check inspects.
const lookback = 20

// Transformer implements the shell sugar.
type Transformer struct {
	runner command.Runner
}

// New returns a shell transformer running commands with runner. A nil
// runner uses command.ExecRunner.
func New(runner command.Runner) *Transformer {
	if runner == nil {
		runner = &command.ExecRunner{}
	}
	return &Transformer{runner: runner}
}

func (*Transformer) Name() string { return "shell" }

// TokenPass rewrites `$ ( STRING )` into a call to the single- or
// multi-result marker. A `$ (` with any other argument only has its `$`
// replaced, leaving the tree pass to reject it.
func (*Transformer) TokenPass(ed *editor.Editor) error {
	for ed.HasMore() {
		cur, _ := ed.Current()
		if !cur.IsOp("$") || !ed.PeekIs(1, token.OP, "(") {
			ed.AppendCurrent()
			continue
		}
		marker := ExecName
		if multiResult(ed.History(lookback)) {
			marker = MultiName
		}
		ed.AppendToken(token.Token{Kind: token.NAME, Text: marker, Pos: cur.Pos})

		arg, ok := ed.Peek(2)
		if ok && arg.Kind == token.STRING && ed.PeekIs(3, token.OP, ")") {
			ed.Append(token.OP, "(")
			ed.AppendToken(arg)
			ed.Append(token.OP, ")")
			ed.Skip(4)
			continue
		}
		ed.Skip(1)
	}
	return nil
}

// multiResult reports whether the tokens emitted so far end in an
// assignment to a comma-separated target list: the nearest `=` in the
// current statement is preceded by a `,` in the same statement.
//
// This is a heuristic. Calls like f(a, b=$('x')) are misread as
// multi-result, and targets split across more than the window are missed.
func multiResult(hist []token.Token) bool {
	eq := -1
	for i := len(hist) - 1; i >= 0; i-- {
		if boundary(hist[i]) {
			return false
		}
		if hist[i].IsOp("=") {
			eq = i
			break
		}
	}
	for i := eq - 1; i >= 0; i-- {
		if boundary(hist[i]) {
			return false
		}
		if hist[i].IsOp(",") {
			return true
		}
	}
	return false
}

func boundary(t token.Token) bool {
	return t.Kind == token.NEWLINE || t.IsOp(";")
}

// TreePass checks that every marker call has exactly one string literal
// argument. f-strings are accepted. The program is returned unchanged.
func (*Transformer) TreePass(prog *ast.Program) (*ast.Program, error) {
	var bad *ast.CallExpr
	ast.Walk(prog, func(n ast.Node) bool {
		if bad != nil {
			return false
		}
		if c, ok := n.(*ast.CallExpr); ok && isMarker(c) && !literalArg(c) {
			bad = c
			return false
		}
		return true
	})
	if bad != nil {
		return nil, &parser.SyntaxError{
			Filename: prog.SourceFile,
			Pos:      bad.Func.Pos(),
			Msg:      "Expected string literal in shell command",
		}
	}
	return prog, nil
}

func isMarker(c *ast.CallExpr) bool {
	name, ok := ast.CalleeName(c)
	return ok && (name == ExecName || name == MultiName)
}

func literalArg(c *ast.CallExpr) bool {
	if len(c.Args) != 1 || len(c.Kwargs) != 0 {
		return false
	}
	_, ok := c.Args[0].(*ast.StringLit)
	return ok
}

// Environment returns the shell runtime fragment. Commands run under ctx.
func (t *Transformer) Environment(ctx context.Context) object.Env {
	return object.Env{
		ExecName:  object.NewBuiltin(ExecName, t.exec(ctx)),
		MultiName: object.NewBuiltin(MultiName, t.multi(ctx)),
	}
}

func (t *Transformer) exec(ctx context.Context) object.BuiltinFunc {
	return func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		cmd, err := commandArg(ExecName, args, kw)
		if err != nil {
			return nil, err
		}
		res, err := t.runner.Run(ctx, command.Request{Command: cmd, MergeStderr: true, CheckExit: true})
		if err != nil {
			return nil, err
		}
		return object.Str(trim(res.Stdout)), nil
	}
}

func (t *Transformer) multi(ctx context.Context) object.BuiltinFunc {
	return func(args []object.Value, kw object.Kwargs) (object.Value, error) {
		cmd, err := commandArg(MultiName, args, kw)
		if err != nil {
			return nil, err
		}
		res, err := t.runner.Run(ctx, command.Request{Command: cmd})
		if err != nil {
			return nil, err
		}
		return object.Tuple{
			object.Str(trim(res.Stdout)),
			object.Str(trim(res.Stderr)),
			object.Int(res.ExitCode),
		}, nil
	}
}

func commandArg(fn string, args []object.Value, kw object.Kwargs) (string, error) {
	if len(args) != 1 || len(kw) != 0 {
		return "", object.Errorf(object.TypeErrorKind, "%s() takes exactly one argument (%d given)", fn, len(args)+len(kw))
	}
	s, ok := args[0].(object.Str)
	if !ok {
		return "", object.Errorf(object.TypeErrorKind, "%s() argument must be str, not '%s'", fn, args[0].Type())
	}
	return string(s), nil
}

func trim(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) }
