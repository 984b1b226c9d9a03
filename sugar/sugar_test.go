package sugar

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/editor"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/parser"
	"github.com/rubiojr/scriptgo/sugar/pipe"
	"github.com/rubiojr/scriptgo/sugar/shell"
)

type stub struct {
	name string
	env  object.Env
	err  error
	seen *[]string
}

func (s stub) Name() string                           { return s.name }
func (s stub) TokenPass(*editor.Editor) error         { return nil }
func (s stub) Environment(context.Context) object.Env { return s.env }

func (s stub) TreePass(prog *ast.Program) (*ast.Program, error) {
	if s.seen != nil {
		*s.seen = append(*s.seen, s.name)
	}
	return prog, s.err
}

func TestDefaultOrder(t *testing.T) {
	l := Default(nil)
	assert.Equal(t, []string{"pipe", "shell"}, l.Names())
}

func TestEnvironmentMergesInOrder(t *testing.T) {
	env := Default(nil).Environment(context.Background())
	for _, name := range []string{pipe.WrapName, pipe.AttrName, shell.ExecName, shell.MultiName} {
		assert.Contains(t, env, name)
	}

	l := List{
		stub{name: "a", env: object.Env{"x": object.Int(1), "y": object.Int(1)}},
		stub{name: "b", env: object.Env{"y": object.Int(2)}},
	}
	env = l.Environment(context.Background())
	assert.Equal(t, object.Int(1), env["x"])
	assert.Equal(t, object.Int(2), env["y"])
}

func TestTreePassesRunInOrder(t *testing.T) {
	prog, err := parser.ParseSource("<test>", "1\n")
	require.NoError(t, err)

	var seen []string
	l := List{stub{name: "a", seen: &seen}, stub{name: "b", seen: &seen}}
	out, err := l.TreePasses().Transform(prog)
	require.NoError(t, err)
	assert.Same(t, prog, out)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestTreePassesStopAtFirstError(t *testing.T) {
	prog, err := parser.ParseSource("<test>", "1\n")
	require.NoError(t, err)

	boom := errors.New("boom")
	var seen []string
	l := List{stub{name: "a", seen: &seen, err: boom}, stub{name: "b", seen: &seen}}
	_, err = l.TreePasses().Transform(prog)
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "a tree pass: boom")
	assert.Equal(t, []string{"a"}, seen)
}
