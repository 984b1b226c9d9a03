package ast

import "github.com/rubiojr/scriptgo/token"

// RewriteFunc is called on every expression after its children have been
// rewritten. It returns the expression unchanged or a replacement.
type RewriteFunc func(Expr) (Expr, error)

// Rewrite is the visitor contract shared by all tree passes: a post-order,
// copy-on-write walk over every expression in prog. Nodes whose subtree is
// unchanged are reused; the input program is never mutated. The original
// program is returned when nothing changed.
func Rewrite(prog *Program, fn RewriteFunc) (*Program, error) {
	r := &rewriter{fn: fn}
	stmts, changed, err := mapSlice(prog.Statements, r.stmt)
	if err != nil {
		return nil, err
	}
	if !changed {
		return prog, nil
	}
	return NewFactory().ProgramFrom(prog, stmts), nil
}

// RewriteExpr applies fn to a single expression tree.
func RewriteExpr(e Expr, fn RewriteFunc) (Expr, error) {
	r := &rewriter{fn: fn}
	return r.expr(e)
}

type rewriter struct {
	fn RewriteFunc
}

func (r *rewriter) stmt(s Statement) (Statement, error) {
	switch st := s.(type) {
	case *ExprStmt:
		x, err := r.expr(st.X)
		if err != nil {
			return nil, err
		}
		if x == st.X {
			return s, nil
		}
		cp := *st
		cp.X = x
		return &cp, nil
	case *AssignStmt:
		targets, tc, err := mapSlice(st.Targets, r.expr)
		if err != nil {
			return nil, err
		}
		v, err := r.expr(st.Value)
		if err != nil {
			return nil, err
		}
		if !tc && v == st.Value {
			return s, nil
		}
		cp := *st
		cp.Targets = targets
		cp.Value = v
		return &cp, nil
	case *AugAssignStmt:
		target, err := r.expr(st.Target)
		if err != nil {
			return nil, err
		}
		v, err := r.expr(st.Value)
		if err != nil {
			return nil, err
		}
		if target == st.Target && v == st.Value {
			return s, nil
		}
		cp := *st
		cp.Target = target
		cp.Value = v
		return &cp, nil
	}
	return s, nil
}

func (r *rewriter) expr(e Expr) (Expr, error) {
	if e == nil {
		return nil, nil
	}
	out, err := r.children(e)
	if err != nil {
		return nil, err
	}
	return r.fn(out)
}

func (r *rewriter) kwarg(k Keyword) (Keyword, error) {
	v, err := r.expr(k.Value)
	if err != nil {
		return k, err
	}
	return Keyword{Name: k.Name, Value: v}, nil
}

// pair rewrites two child expressions and reports whether either changed.
func (r *rewriter) pair(a, b Expr) (Expr, Expr, bool, error) {
	na, err := r.expr(a)
	if err != nil {
		return nil, nil, false, err
	}
	nb, err := r.expr(b)
	if err != nil {
		return nil, nil, false, err
	}
	return na, nb, na != a || nb != b, nil
}

func (r *rewriter) children(e Expr) (Expr, error) {
	switch ex := e.(type) {
	case *ListLit:
		elems, changed, err := mapSlice(ex.Elems, r.expr)
		if err != nil || !changed {
			return e, err
		}
		cp := *ex
		cp.Elems = elems
		return &cp, nil
	case *TupleLit:
		elems, changed, err := mapSlice(ex.Elems, r.expr)
		if err != nil || !changed {
			return e, err
		}
		cp := *ex
		cp.Elems = elems
		return &cp, nil
	case *DictLit:
		keys, kc, err := mapSlice(ex.Keys, r.expr)
		if err != nil {
			return nil, err
		}
		values, vc, err := mapSlice(ex.Values, r.expr)
		if err != nil {
			return nil, err
		}
		if !kc && !vc {
			return e, nil
		}
		cp := *ex
		cp.Keys, cp.Values = keys, values
		return &cp, nil
	case *BinaryExpr:
		l, rt, changed, err := r.pair(ex.Left, ex.Right)
		if err != nil || !changed {
			return e, err
		}
		cp := *ex
		cp.Left, cp.Right = l, rt
		return &cp, nil
	case *BoolExpr:
		l, rt, changed, err := r.pair(ex.Left, ex.Right)
		if err != nil || !changed {
			return e, err
		}
		cp := *ex
		cp.Left, cp.Right = l, rt
		return &cp, nil
	case *UnaryExpr:
		x, err := r.expr(ex.Operand)
		if err != nil || x == ex.Operand {
			return e, err
		}
		cp := *ex
		cp.Operand = x
		return &cp, nil
	case *CompareExpr:
		left, err := r.expr(ex.Left)
		if err != nil {
			return nil, err
		}
		rights, rc, err := mapSlice(ex.Rights, r.expr)
		if err != nil {
			return nil, err
		}
		if left == ex.Left && !rc {
			return e, nil
		}
		cp := *ex
		cp.Left, cp.Rights = left, rights
		return &cp, nil
	case *CallExpr:
		fn, err := r.expr(ex.Func)
		if err != nil {
			return nil, err
		}
		args, ac, err := mapSlice(ex.Args, r.expr)
		if err != nil {
			return nil, err
		}
		kwargs, kc, err := mapSlice(ex.Kwargs, r.kwarg)
		if err != nil {
			return nil, err
		}
		if fn == ex.Func && !ac && !kc {
			return e, nil
		}
		cp := *ex
		cp.Func, cp.Args, cp.Kwargs = fn, args, kwargs
		return &cp, nil
	case *AttrExpr:
		obj, err := r.expr(ex.Object)
		if err != nil || obj == ex.Object {
			return e, err
		}
		cp := *ex
		cp.Object = obj
		return &cp, nil
	case *IndexExpr:
		obj, idx, changed, err := r.pair(ex.Object, ex.Index)
		if err != nil || !changed {
			return e, err
		}
		cp := *ex
		cp.Object, cp.Index = obj, idx
		return &cp, nil
	case *SliceExpr:
		obj, lo, c1, err := r.pair(ex.Object, ex.Lo)
		if err != nil {
			return nil, err
		}
		hi, step, c2, err := r.pair(ex.Hi, ex.Step)
		if err != nil {
			return nil, err
		}
		if !c1 && !c2 {
			return e, nil
		}
		cp := *ex
		cp.Object, cp.Lo, cp.Hi, cp.Step = obj, lo, hi, step
		return &cp, nil
	case *CondExpr:
		cond, then, c1, err := r.pair(ex.Cond, ex.Then)
		if err != nil {
			return nil, err
		}
		els, err := r.expr(ex.Else)
		if err != nil {
			return nil, err
		}
		if !c1 && els == ex.Else {
			return e, nil
		}
		cp := *ex
		cp.Cond, cp.Then, cp.Else = cond, then, els
		return &cp, nil
	case *LambdaExpr:
		defaults, dc, err := mapSlice(ex.Defaults, r.expr)
		if err != nil {
			return nil, err
		}
		body, err := r.expr(ex.Body)
		if err != nil {
			return nil, err
		}
		if !dc && body == ex.Body {
			return e, nil
		}
		cp := *ex
		cp.Defaults, cp.Body = defaults, body
		return &cp, nil
	case *ListComp:
		elem, err := r.expr(ex.Elem)
		if err != nil {
			return nil, err
		}
		changed := elem != ex.Elem
		clauses := make([]CompFor, len(ex.Clauses))
		for i, c := range ex.Clauses {
			iter, err := r.expr(c.Iter)
			if err != nil {
				return nil, err
			}
			ifs, ic, err := mapSlice(c.Ifs, r.expr)
			if err != nil {
				return nil, err
			}
			changed = changed || iter != c.Iter || ic
			clauses[i] = CompFor{Targets: c.Targets, Iter: iter, Ifs: ifs}
		}
		if !changed {
			return e, nil
		}
		cp := *ex
		cp.Elem, cp.Clauses = elem, clauses
		return &cp, nil
	}
	return e, nil
}

// Children returns the direct child nodes of n in source order.
func Children(n Node) []Node {
	var out []Node
	add := func(es ...Expr) {
		for _, e := range es {
			if e != nil {
				out = append(out, e)
			}
		}
	}
	switch x := n.(type) {
	case *ExprStmt:
		add(x.X)
	case *AssignStmt:
		add(x.Targets...)
		add(x.Value)
	case *AugAssignStmt:
		add(x.Target, x.Value)
	case *ListLit:
		add(x.Elems...)
	case *TupleLit:
		add(x.Elems...)
	case *DictLit:
		for i := range x.Keys {
			add(x.Keys[i], x.Values[i])
		}
	case *BinaryExpr:
		add(x.Left, x.Right)
	case *BoolExpr:
		add(x.Left, x.Right)
	case *UnaryExpr:
		add(x.Operand)
	case *CompareExpr:
		add(x.Left)
		add(x.Rights...)
	case *CallExpr:
		add(x.Func)
		add(x.Args...)
		for _, k := range x.Kwargs {
			add(k.Value)
		}
	case *AttrExpr:
		add(x.Object)
	case *IndexExpr:
		add(x.Object, x.Index)
	case *SliceExpr:
		add(x.Object, x.Lo, x.Hi, x.Step)
	case *CondExpr:
		add(x.Cond, x.Then, x.Else)
	case *LambdaExpr:
		add(x.Defaults...)
		add(x.Body)
	case *ListComp:
		add(x.Elem)
		for _, c := range x.Clauses {
			add(c.Iter)
			add(c.Ifs...)
		}
	}
	return out
}

// Walk calls fn on every node of prog in pre-order. Returning false from
// fn skips that node's children.
func Walk(prog *Program, fn func(Node) bool) {
	for _, s := range prog.Statements {
		walkNode(s, fn)
	}
}

func walkNode(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		walkNode(c, fn)
	}
}

// FixPositions gives every node without a source position the position of
// its nearest positioned ancestor. Nodes synthesized by tree passes start
// with a zero position; this is the normalization step run after all
// passes. It updates nodes in place.
func FixPositions(prog *Program) {
	first := token.Pos{Line: 1, Col: 1}
	for _, s := range prog.Statements {
		fixPos(s, first)
		if p := s.Pos(); p.IsValid() {
			first = p
		}
	}
}

func fixPos(n Node, parent token.Pos) {
	b := n.base()
	if !b.At.IsValid() {
		b.At = parent
	}
	for _, c := range Children(n) {
		fixPos(c, b.At)
	}
}
