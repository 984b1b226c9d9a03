package ast

import "github.com/rubiojr/scriptgo/token"

// Factory centralizes AST node creation for transform passes.
// Nodes it builds carry the position they are given, or a zero position
// that FixPositions fills in later.
type Factory struct{}

// NewFactory returns a new Factory.
func NewFactory() *Factory { return &Factory{} }

// Ident creates a name reference.
func (f *Factory) Ident(name string, pos token.Pos) *Ident {
	return &Ident{Base: Base{At: pos}, Name: name}
}

// String creates a plain string literal.
func (f *Factory) String(value string, pos token.Pos) *StringLit {
	return &StringLit{Base: Base{At: pos}, Value: value}
}

// CallName creates a call to a bare name: name(args...).
func (f *Factory) CallName(name string, pos token.Pos, args ...Expr) *CallExpr {
	return &CallExpr{Base: Base{At: pos}, Func: f.Ident(name, pos), Args: args}
}

// BinaryWithOperands creates a shallow copy of a BinaryExpr with new
// operands.
func (f *Factory) BinaryWithOperands(src *BinaryExpr, left, right Expr) *BinaryExpr {
	cp := *src
	cp.Left = left
	cp.Right = right
	return &cp
}

// ProgramFrom creates a new Program copying metadata from src with new
// statements.
func (f *Factory) ProgramFrom(src *Program, stmts []Statement) *Program {
	return &Program{
		Statements: stmts,
		SourceFile: src.SourceFile,
	}
}

// CalleeName returns the name of a call's callee when it is a bare
// identifier.
func CalleeName(c *CallExpr) (string, bool) {
	id, ok := c.Func.(*Ident)
	if !ok {
		return "", false
	}
	return id.Name, true
}
