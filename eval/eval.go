// Package eval is a tree-walking evaluator for host programs.
package eval

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/token"
)

// Interpreter evaluates programs. It is safe to reuse across runs; each
// Run gets its own scope chain.
type Interpreter struct {
	stdout   io.Writer
	builtins object.Env
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithStdout redirects print output.
func WithStdout(w io.Writer) Option {
	return func(in *Interpreter) { in.stdout = w }
}

// New returns an Interpreter with the default builtins.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{stdout: os.Stdout}
	for _, o := range opts {
		o(in)
	}
	in.builtins = in.newBuiltins()
	return in
}

// Builtins returns a copy of the builtin namespace.
func (in *Interpreter) Builtins() object.Env { return object.Merge(in.builtins) }

// Run executes prog with env as the module scope and returns the value
// of the final statement when it is an expression, None otherwise.
// Assignments are written to env. Builtins are visible beneath env.
func (in *Interpreter) Run(ctx context.Context, prog *ast.Program, env object.Env) (object.Value, error) {
	if env == nil {
		env = object.Env{}
	}
	m := &machine{ctx: ctx, in: in, file: prog.SourceFile}
	sc := &scope{vars: env, builtins: in.builtins}
	var last object.Value = object.None
	for _, st := range prog.Statements {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := m.stmt(st, sc)
		if err != nil {
			return nil, err
		}
		last = v
	}
	return last, nil
}

// machine holds the state of one Run.
type machine struct {
	ctx  context.Context
	in   *Interpreter
	file string
}

type scope struct {
	vars     object.Env
	parent   *scope
	builtins object.Env
}

func (s *scope) child() *scope {
	return &scope{vars: object.Env{}, parent: s, builtins: s.builtins}
}

func (s *scope) lookup(name string) (object.Value, bool) {
	for sc := s; sc != nil; sc = sc.parent {
		if v, ok := sc.vars[name]; ok {
			return v, true
		}
	}
	v, ok := s.builtins[name]
	return v, ok
}

func (s *scope) names() []string {
	seen := map[string]bool{}
	var out []string
	add := func(env object.Env) {
		for k := range env {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	for sc := s; sc != nil; sc = sc.parent {
		add(sc.vars)
	}
	add(s.builtins)
	return out
}

// locate attaches pos to host exceptions that do not carry one yet.
// Other errors pass through untouched.
func locate(err error, pos token.Pos) error {
	var oe *object.Error
	if errors.As(err, &oe) && !oe.Pos.IsValid() {
		oe.Pos = pos
	}
	return err
}

func (m *machine) stmt(st ast.Statement, sc *scope) (object.Value, error) {
	switch s := st.(type) {
	case *ast.ExprStmt:
		return m.expr(s.X, sc)
	case *ast.AssignStmt:
		v, err := m.expr(s.Value, sc)
		if err != nil {
			return nil, err
		}
		for _, t := range s.Targets {
			if err := m.assign(t, v, sc); err != nil {
				return nil, locate(err, t.Pos())
			}
		}
		return object.None, nil
	case *ast.AugAssignStmt:
		cur, err := m.expr(s.Target, sc)
		if err != nil {
			return nil, err
		}
		rhs, err := m.expr(s.Value, sc)
		if err != nil {
			return nil, err
		}
		if l, ok := cur.(*object.List); ok && s.Op == "+" {
			more, err := object.Elements(rhs)
			if err != nil {
				return nil, locate(err, s.Pos())
			}
			l.Elems = append(l.Elems, more...)
			return object.None, nil
		}
		v, err := binaryOp(s.Op, cur, rhs)
		if err != nil {
			return nil, locate(err, s.Pos())
		}
		return object.None, locate(m.assign(s.Target, v, sc), s.Pos())
	}
	return nil, fmt.Errorf("%s: unsupported statement %T", st.Pos(), st)
}

func (m *machine) assign(target ast.Expr, v object.Value, sc *scope) error {
	switch t := target.(type) {
	case *ast.Ident:
		sc.vars[t.Name] = v
		return nil
	case *ast.AttrExpr:
		obj, err := m.expr(t.Object, sc)
		if err != nil {
			return err
		}
		setter, ok := obj.(object.AttrSetter)
		if !ok {
			return object.Errorf(object.AttributeErrorKind, "'%s' object attribute '%s' is read-only", obj.Type(), t.Name)
		}
		return setter.SetAttr(t.Name, v)
	case *ast.IndexExpr:
		obj, err := m.expr(t.Object, sc)
		if err != nil {
			return err
		}
		idx, err := m.expr(t.Index, sc)
		if err != nil {
			return err
		}
		setter, ok := obj.(object.IndexSetter)
		if !ok {
			return object.Errorf(object.TypeErrorKind, "'%s' object does not support item assignment", obj.Type())
		}
		return setter.SetIndex(idx, v)
	case *ast.TupleLit:
		return m.unpack(t.Elems, v, sc)
	case *ast.ListLit:
		return m.unpack(t.Elems, v, sc)
	}
	return object.Errorf(object.TypeErrorKind, "cannot assign to %T", target)
}

func (m *machine) unpack(targets []ast.Expr, v object.Value, sc *scope) error {
	elems, err := object.Elements(v)
	if err != nil {
		return object.Errorf(object.TypeErrorKind, "cannot unpack non-iterable %s object", v.Type())
	}
	switch {
	case len(elems) < len(targets):
		return object.Errorf(object.ValueErrorKind, "not enough values to unpack (expected %d, got %d)", len(targets), len(elems))
	case len(elems) > len(targets):
		return object.Errorf(object.ValueErrorKind, "too many values to unpack (expected %d)", len(targets))
	}
	for i, t := range targets {
		if err := m.assign(t, elems[i], sc); err != nil {
			return err
		}
	}
	return nil
}

func (m *machine) expr(e ast.Expr, sc *scope) (object.Value, error) {
	v, err := m.eval(e, sc)
	if err != nil {
		return nil, locate(err, e.Pos())
	}
	return v, nil
}

func (m *machine) exprs(es []ast.Expr, sc *scope) ([]object.Value, error) {
	out := make([]object.Value, len(es))
	for i, e := range es {
		v, err := m.expr(e, sc)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *machine) eval(e ast.Expr, sc *scope) (object.Value, error) {
	switch ex := e.(type) {
	case *ast.Ident:
		v, ok := sc.lookup(ex.Name)
		if !ok {
			return nil, nameError(ex.Name, sc.names())
		}
		return v, nil
	case *ast.IntLit:
		return object.Int(ex.Value), nil
	case *ast.FloatLit:
		return object.Float(ex.Value), nil
	case *ast.StringLit:
		if ex.Format {
			return m.fstring(ex, sc)
		}
		return object.Str(ex.Value), nil
	case *ast.BoolLit:
		return object.Bool(ex.Value), nil
	case *ast.NoneLit:
		return object.None, nil
	case *ast.ListLit:
		elems, err := m.exprs(ex.Elems, sc)
		if err != nil {
			return nil, err
		}
		return object.NewList(elems...), nil
	case *ast.TupleLit:
		elems, err := m.exprs(ex.Elems, sc)
		if err != nil {
			return nil, err
		}
		return object.Tuple(elems), nil
	case *ast.DictLit:
		d := object.NewDict()
		for i := range ex.Keys {
			k, err := m.expr(ex.Keys[i], sc)
			if err != nil {
				return nil, err
			}
			v, err := m.expr(ex.Values[i], sc)
			if err != nil {
				return nil, err
			}
			if err := d.Set(k, v); err != nil {
				return nil, locate(err, ex.Keys[i].Pos())
			}
		}
		return d, nil
	case *ast.BinaryExpr:
		l, err := m.expr(ex.Left, sc)
		if err != nil {
			return nil, err
		}
		r, err := m.expr(ex.Right, sc)
		if err != nil {
			return nil, err
		}
		return binaryOp(ex.Op, l, r)
	case *ast.BoolExpr:
		l, err := m.expr(ex.Left, sc)
		if err != nil {
			return nil, err
		}
		if object.Truth(l) == (ex.Op == "or") {
			return l, nil
		}
		return m.expr(ex.Right, sc)
	case *ast.UnaryExpr:
		v, err := m.expr(ex.Operand, sc)
		if err != nil {
			return nil, err
		}
		return unaryOp(ex.Op, v)
	case *ast.CompareExpr:
		return m.compare(ex, sc)
	case *ast.CallExpr:
		return m.call(ex, sc)
	case *ast.AttrExpr:
		obj, err := m.expr(ex.Object, sc)
		if err != nil {
			return nil, err
		}
		return getAttr(obj, ex.Name)
	case *ast.IndexExpr:
		obj, err := m.expr(ex.Object, sc)
		if err != nil {
			return nil, err
		}
		idx, err := m.expr(ex.Index, sc)
		if err != nil {
			return nil, err
		}
		ix, ok := obj.(object.Indexable)
		if !ok {
			return nil, object.Errorf(object.TypeErrorKind, "'%s' object is not subscriptable", obj.Type())
		}
		return ix.Index(idx)
	case *ast.SliceExpr:
		return m.slice(ex, sc)
	case *ast.CondExpr:
		c, err := m.expr(ex.Cond, sc)
		if err != nil {
			return nil, err
		}
		if object.Truth(c) {
			return m.expr(ex.Then, sc)
		}
		return m.expr(ex.Else, sc)
	case *ast.LambdaExpr:
		defaults, err := m.exprs(ex.Defaults, sc)
		if err != nil {
			return nil, err
		}
		return &Function{Params: ex.Params, defaults: defaults, body: ex.Body, scope: sc, m: m}, nil
	case *ast.ListComp:
		var out []object.Value
		if err := m.comprehension(ex, 0, sc.child(), &out); err != nil {
			return nil, err
		}
		return object.NewList(out...), nil
	}
	return nil, fmt.Errorf("%s: unsupported expression %T", e.Pos(), e)
}

func getAttr(obj object.Value, name string) (object.Value, error) {
	if h, ok := obj.(object.HasAttrs); ok {
		if v, ok := h.Attr(name); ok {
			return v, nil
		}
	}
	return nil, object.Errorf(object.AttributeErrorKind, "'%s' object has no attribute '%s'", obj.Type(), name)
}

// GetAttr resolves obj.name with host semantics.
func GetAttr(obj object.Value, name string) (object.Value, error) { return getAttr(obj, name) }

func (m *machine) call(c *ast.CallExpr, sc *scope) (object.Value, error) {
	fn, err := m.expr(c.Func, sc)
	if err != nil {
		return nil, err
	}
	args, err := m.exprs(c.Args, sc)
	if err != nil {
		return nil, err
	}
	var kwargs object.Kwargs
	for _, k := range c.Kwargs {
		v, err := m.expr(k.Value, sc)
		if err != nil {
			return nil, err
		}
		kwargs = append(kwargs, object.Kwarg{Name: k.Name, Value: v})
	}
	if err := m.ctx.Err(); err != nil {
		return nil, err
	}
	return Call(fn, args, kwargs)
}

// Call invokes fn, reporting a TypeError when it is not callable.
func Call(fn object.Value, args []object.Value, kwargs object.Kwargs) (object.Value, error) {
	callable, ok := fn.(object.Callable)
	if !ok {
		return nil, object.Errorf(object.TypeErrorKind, "'%s' object is not callable", fn.Type())
	}
	return callable.Call(args, kwargs)
}

func (m *machine) compare(c *ast.CompareExpr, sc *scope) (object.Value, error) {
	left, err := m.expr(c.Left, sc)
	if err != nil {
		return nil, err
	}
	for i, op := range c.Ops {
		right, err := m.expr(c.Rights[i], sc)
		if err != nil {
			return nil, err
		}
		ok, err := compareOp(op, left, right)
		if err != nil {
			return nil, err
		}
		if !ok {
			return object.Bool(false), nil
		}
		left = right
	}
	return object.Bool(true), nil
}

func (m *machine) comprehension(lc *ast.ListComp, i int, sc *scope, out *[]object.Value) error {
	if i == len(lc.Clauses) {
		v, err := m.expr(lc.Elem, sc)
		if err != nil {
			return err
		}
		*out = append(*out, v)
		return nil
	}
	clause := lc.Clauses[i]
	it, err := m.expr(clause.Iter, sc)
	if err != nil {
		return err
	}
	elems, err := object.Elements(it)
	if err != nil {
		return locate(err, clause.Iter.Pos())
	}
next:
	for _, el := range elems {
		if err := m.ctx.Err(); err != nil {
			return err
		}
		if len(clause.Targets) == 1 {
			sc.vars[clause.Targets[0]] = el
		} else if err := m.bindNames(clause.Targets, el, sc); err != nil {
			return locate(err, lc.Pos())
		}
		for _, cond := range clause.Ifs {
			c, err := m.expr(cond, sc)
			if err != nil {
				return err
			}
			if !object.Truth(c) {
				continue next
			}
		}
		if err := m.comprehension(lc, i+1, sc, out); err != nil {
			return err
		}
	}
	return nil
}

func (m *machine) bindNames(names []string, v object.Value, sc *scope) error {
	targets := make([]ast.Expr, len(names))
	for i, n := range names {
		targets[i] = &ast.Ident{Name: n}
	}
	return m.unpack(targets, v, sc)
}
