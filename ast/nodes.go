// Package ast defines the host language syntax tree and the rewrite
// machinery shared by all tree passes.
package ast

import "github.com/rubiojr/scriptgo/token"

// Node is the interface for all AST nodes.
type Node interface {
	Pos() token.Pos
	base() *Base
}

// Statement is the interface for statement nodes.
type Statement interface {
	Node
	stmt()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	expr()
}

// Base carries the source position shared by every node. Nodes built by a
// rewrite start with a zero position until FixPositions fills it in.
type Base struct {
	At token.Pos
}

func (b *Base) Pos() token.Pos { return b.At }
func (b *Base) base() *Base    { return b }

// Program is the root node.
type Program struct {
	Statements []Statement
	SourceFile string // pseudo-filename used in diagnostics
}

// --- Statements ---

// ExprStmt is a statement that is just an expression.
type ExprStmt struct {
	Base
	X Expr
}

func (*ExprStmt) stmt() {}

// AssignStmt represents t1 = t2 = ... = value. A target is an Ident,
// AttrExpr, IndexExpr or a TupleLit of targets for destructuring.
type AssignStmt struct {
	Base
	Targets []Expr
	Value   Expr
}

func (*AssignStmt) stmt() {}

// AugAssignStmt represents target op= value.
type AugAssignStmt struct {
	Base
	Target Expr
	Op     string // "+", "-" or "*"
	Value  Expr
}

func (*AugAssignStmt) stmt() {}

// --- Expressions ---

// Ident is a name reference.
type Ident struct {
	Base
	Name string
}

// IntLit is an integer literal.
type IntLit struct {
	Base
	Value int64
}

// FloatLit is a floating point literal.
type FloatLit struct {
	Base
	Value float64
}

// StringLit is a string literal with escapes already decoded. Format is
// true for f-strings, whose {expr} segments are evaluated at run time.
type StringLit struct {
	Base
	Value  string
	Format bool
}

// BoolLit is True or False.
type BoolLit struct {
	Base
	Value bool
}

// NoneLit is None.
type NoneLit struct{ Base }

// ListLit is [elem, ...].
type ListLit struct {
	Base
	Elems []Expr
}

// TupleLit is (elem, ...) or a bare comma list.
type TupleLit struct {
	Base
	Elems []Expr
}

// DictLit is {key: value, ...}.
type DictLit struct {
	Base
	Keys   []Expr
	Values []Expr
}

// BinaryExpr is left op right for arithmetic and bitwise operators,
// including the pipe operator "|".
type BinaryExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

// BoolExpr is a short-circuit "and" / "or".
type BoolExpr struct {
	Base
	Op    string
	Left  Expr
	Right Expr
}

// UnaryExpr is op operand for "-", "+", "~" and "not".
type UnaryExpr struct {
	Base
	Op      string
	Operand Expr
}

// CompareExpr is a (possibly chained) comparison: a < b <= c.
type CompareExpr struct {
	Base
	Left   Expr
	Ops    []string
	Rights []Expr
}

// Keyword is a name=value call argument.
type Keyword struct {
	Name  string
	Value Expr
}

// CallExpr is func(args..., name=value...).
type CallExpr struct {
	Base
	Func   Expr
	Args   []Expr
	Kwargs []Keyword
}

// AttrExpr is object.name.
type AttrExpr struct {
	Base
	Object Expr
	Name   string
}

// IndexExpr is object[index].
type IndexExpr struct {
	Base
	Object Expr
	Index  Expr
}

// SliceExpr is object[lo:hi:step]; any bound may be nil.
type SliceExpr struct {
	Base
	Object Expr
	Lo     Expr
	Hi     Expr
	Step   Expr
}

// CondExpr is then if cond else otherwise.
type CondExpr struct {
	Base
	Cond Expr
	Then Expr
	Else Expr
}

// LambdaExpr is lambda params: body. Defaults holds the values of the
// last len(Defaults) params.
type LambdaExpr struct {
	Base
	Params   []string
	Defaults []Expr
	Body     Expr
}

// CompFor is one "for targets in iter if cond..." clause.
type CompFor struct {
	Targets []string
	Iter    Expr
	Ifs     []Expr
}

// ListComp is [elem for ... in ... if ...].
type ListComp struct {
	Base
	Elem    Expr
	Clauses []CompFor
}

func (*Ident) expr()       {}
func (*IntLit) expr()      {}
func (*FloatLit) expr()    {}
func (*StringLit) expr()   {}
func (*BoolLit) expr()     {}
func (*NoneLit) expr()     {}
func (*ListLit) expr()     {}
func (*TupleLit) expr()    {}
func (*DictLit) expr()     {}
func (*BinaryExpr) expr()  {}
func (*BoolExpr) expr()    {}
func (*UnaryExpr) expr()   {}
func (*CompareExpr) expr() {}
func (*CallExpr) expr()    {}
func (*AttrExpr) expr()    {}
func (*IndexExpr) expr()   {}
func (*SliceExpr) expr()   {}
func (*CondExpr) expr()    {}
func (*LambdaExpr) expr()  {}
func (*ListComp) expr()    {}
