// Package pipe adds the `|` pipe operator to host programs.
//
//	[-1, 2, -3] | abs             # [1, 2, 3]
//	['a', 'b'] |.upper            # ['A', 'B']
//	range(4) | str |.zfill(2)     # ['00', '01', '02', '03']
//
// The token pass turns `| .name(args)` into `| __pipe_attr__('name', args)`.
// The tree pass wraps the left operand of every `|` in `__pipeable__(...)`,
// which turns iterables into a Sequence whose `|` maps the right-hand
// callable over each element.
package pipe

import (
	"context"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/editor"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/token"
)

const (
	// WrapName is the runtime function wrapping pipe left operands.
	WrapName = "__pipeable__"
	// AttrName is the runtime function behind `|.name` shorthand.
	AttrName = "__pipe_attr__"
)

// Transformer implements the pipe sugar.
type Transformer struct{}

// New returns the pipe transformer.
func New() *Transformer { return &Transformer{} }

func (*Transformer) Name() string { return "pipe" }

// TokenPass rewrites attribute shorthand after a pipe:
//
//	| . NAME            ->  | __pipe_attr__ ( 'NAME' )
//	| . NAME ( ARGS )   ->  | __pipe_attr__ ( 'NAME' , ARGS )
//
// ARGS is copied verbatim up to the balancing parenthesis.
func (*Transformer) TokenPass(ed *editor.Editor) error {
	for ed.HasMore() {
		cur, _ := ed.Current()
		name, ok := ed.Peek(2)
		if !cur.IsOp("|") || !ed.PeekIs(1, token.OP, ".") || !ok || name.Kind != token.NAME {
			ed.AppendCurrent()
			continue
		}
		args, consumed := callArgs(ed, 3)

		ed.AppendCurrent() // |
		ed.AppendToken(token.Token{Kind: token.NAME, Text: AttrName, Pos: name.Pos})
		ed.Append(token.OP, "(")
		ed.Append(token.STRING, token.Quote(name.Text))
		if len(args) > 0 {
			ed.Append(token.OP, ",")
			for _, t := range args {
				ed.AppendToken(t)
			}
		}
		ed.Append(token.OP, ")")
		ed.Skip(2 + consumed)
	}
	return nil
}

// callArgs reads a parenthesized argument list starting k tokens ahead.
// It returns the tokens between the parentheses and the number of input
// tokens the list spans, or nothing when there is no balanced list.
func callArgs(ed *editor.Editor, k int) ([]token.Token, int) {
	if !ed.PeekIs(k, token.OP, "(") {
		return nil, 0
	}
	var args []token.Token
	depth := 0
	for i := k; ; i++ {
		t, ok := ed.Peek(i)
		if !ok || t.Kind == token.END {
			return nil, 0
		}
		switch {
		case t.IsOp("(") || t.IsOp("[") || t.IsOp("{"):
			depth++
		case t.IsOp(")") || t.IsOp("]") || t.IsOp("}"):
			depth--
		}
		if depth == 0 {
			return args, i - k + 1
		}
		if i > k {
			args = append(args, t)
		}
	}
}

// TreePass wraps the left operand of every `|` in a __pipeable__ call.
// Nested pipes are wrapped innermost first, so `a | f | g` becomes
// `__pipeable__(__pipeable__(a) | f) | g`.
func (*Transformer) TreePass(prog *ast.Program) (*ast.Program, error) {
	f := ast.NewFactory()
	return ast.Rewrite(prog, func(e ast.Expr) (ast.Expr, error) {
		bin, ok := e.(*ast.BinaryExpr)
		if !ok || bin.Op != "|" {
			return e, nil
		}
		wrapped := f.CallName(WrapName, bin.Left.Pos(), bin.Left)
		return f.BinaryWithOperands(bin, wrapped, bin.Right), nil
	})
}

// Environment returns the pipe runtime fragment.
func (*Transformer) Environment(context.Context) object.Env {
	return object.Env{
		WrapName: object.NewBuiltin(WrapName, pipeable),
		AttrName: object.NewBuiltin(AttrName, pipeAttr),
	}
}
