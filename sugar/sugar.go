// Package sugar defines the syntax-extension transformer contract and the
// default registration order.
package sugar

import (
	"context"
	"fmt"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/command"
	"github.com/rubiojr/scriptgo/editor"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/sugar/pipe"
	"github.com/rubiojr/scriptgo/sugar/shell"
)

// Transformer is one syntax extension. Implementations hold no state
// between evaluations.
type Transformer interface {
	// Name identifies the transformer in errors and debug output.
	Name() string
	// TokenPass rewrites the token stream. The driver commits the editor
	// after it returns.
	TokenPass(ed *editor.Editor) error
	// TreePass rewrites the parsed program. It must not mutate prog.
	TreePass(prog *ast.Program) (*ast.Program, error)
	// Environment returns the runtime fragment the rewritten program
	// calls into. ctx bounds blocking work done by those callables.
	Environment(ctx context.Context) object.Env
}

// List holds transformers in registration order.
type List []Transformer

// Names returns the transformer names in order.
func (l List) Names() []string {
	names := make([]string, len(l))
	for i, t := range l {
		names[i] = t.Name()
	}
	return names
}

// Environment merges the fragments of every transformer; later
// transformers shadow earlier ones.
func (l List) Environment(ctx context.Context) object.Env {
	envs := make([]object.Env, len(l))
	for i, t := range l {
		envs[i] = t.Environment(ctx)
	}
	return object.Merge(envs...)
}

// TreePasses chains the tree passes in order. Errors are prefixed with
// the failing transformer's name.
func (l List) TreePasses() ast.Transform {
	ts := make([]ast.Transform, len(l))
	for i, t := range l {
		ts[i] = ast.TransformFunc{N: t.Name(), F: func(prog *ast.Program) (*ast.Program, error) {
			out, err := t.TreePass(prog)
			if err != nil {
				return nil, fmt.Errorf("%s tree pass: %w", t.Name(), err)
			}
			return out, nil
		}}
	}
	return ast.Chain(ts...)
}

// Default returns the pipe and shell transformers, in that order. A nil
// runner executes commands with command.ExecRunner.
func Default(runner command.Runner) List {
	return List{pipe.New(), shell.New(runner)}
}
