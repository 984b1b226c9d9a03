package eval

import (
	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/object"
)

// Function is a lambda closed over its defining scope.
type Function struct {
	Params   []string
	defaults []object.Value // for the trailing params, evaluated at definition
	body     ast.Expr
	scope    *scope
	m        *machine
}

func (f *Function) Type() string   { return "function" }
func (f *Function) String() string { return "<function <lambda>>" }

func (f *Function) Call(args []object.Value, kwargs object.Kwargs) (object.Value, error) {
	if len(args) > len(f.Params) {
		return nil, object.Errorf(object.TypeErrorKind, "<lambda>() takes %d positional argument(s) but %d were given", len(f.Params), len(args))
	}
	sc := f.scope.child()
	for i, a := range args {
		sc.vars[f.Params[i]] = a
	}
	for _, k := range kwargs {
		if !isParam(f.Params, k.Name) {
			return nil, object.Errorf(object.TypeErrorKind, "<lambda>() got an unexpected keyword argument '%s'", k.Name)
		}
		if _, dup := sc.vars[k.Name]; dup {
			return nil, object.Errorf(object.TypeErrorKind, "<lambda>() got multiple values for argument '%s'", k.Name)
		}
		sc.vars[k.Name] = k.Value
	}
	first := len(f.Params) - len(f.defaults)
	for i, p := range f.Params {
		if _, ok := sc.vars[p]; !ok && i >= first {
			sc.vars[p] = f.defaults[i-first]
		} else if !ok {
			return nil, object.Errorf(object.TypeErrorKind, "<lambda>() missing required argument: '%s'", p)
		}
	}
	if err := f.m.ctx.Err(); err != nil {
		return nil, err
	}
	return f.m.expr(f.body, sc)
}

func isParam(params []string, name string) bool {
	for _, p := range params {
		if p == name {
			return true
		}
	}
	return false
}
