package ast

import (
	"strconv"
	"strings"

	"github.com/rubiojr/scriptgo/token"
)

// Print renders prog as host source, one statement per line. The output
// parses back to an equivalent tree; parentheses are only added where
// precedence requires them.
func Print(prog *Program) string {
	var sb strings.Builder
	for _, s := range prog.Statements {
		sb.WriteString(StmtString(s))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// StmtString renders a single statement.
func StmtString(s Statement) string {
	switch st := s.(type) {
	case *ExprStmt:
		return exprString(st.X, 0)
	case *AssignStmt:
		parts := make([]string, 0, len(st.Targets)+1)
		for _, t := range st.Targets {
			if tup, ok := t.(*TupleLit); ok && len(tup.Elems) > 1 {
				parts = append(parts, joinExprs(tup.Elems, precLambda))
				continue
			}
			parts = append(parts, exprString(t, precLambda))
		}
		parts = append(parts, exprString(st.Value, 0))
		return strings.Join(parts, " = ")
	case *AugAssignStmt:
		return exprString(st.Target, precLambda) + " " + st.Op + "= " + exprString(st.Value, 0)
	}
	return "<?>"
}

// ExprString renders a single expression.
func ExprString(e Expr) string { return exprString(e, 0) }

const (
	precLambda = iota + 1
	precCond
	precOr
	precAnd
	precNot
	precCompare
	precBitOr
	precBitXor
	precBitAnd
	precAdd
	precMul
	precUnary
	precPower
	precPrimary
)

var binaryPrec = map[string]int{
	"|": precBitOr, "^": precBitXor, "&": precBitAnd,
	"+": precAdd, "-": precAdd,
	"*": precMul, "/": precMul, "//": precMul, "%": precMul, "@": precMul,
	"**": precPower,
}

func exprPrec(e Expr) int {
	switch ex := e.(type) {
	case *LambdaExpr:
		return precLambda
	case *CondExpr:
		return precCond
	case *BoolExpr:
		if ex.Op == "or" {
			return precOr
		}
		return precAnd
	case *UnaryExpr:
		if ex.Op == "not" {
			return precNot
		}
		return precUnary
	case *CompareExpr:
		return precCompare
	case *BinaryExpr:
		return binaryPrec[ex.Op]
	}
	return precPrimary
}

func exprString(e Expr, min int) string {
	s := rawExprString(e)
	if exprPrec(e) < min {
		return "(" + s + ")"
	}
	return s
}

func joinExprs(es []Expr, min int) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = exprString(e, min)
	}
	return strings.Join(parts, ", ")
}

func rawExprString(e Expr) string {
	switch ex := e.(type) {
	case *Ident:
		return ex.Name
	case *IntLit:
		return strconv.FormatInt(ex.Value, 10)
	case *FloatLit:
		s := strconv.FormatFloat(ex.Value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eIN") {
			s += ".0"
		}
		return s
	case *StringLit:
		if ex.Format {
			return "f" + token.Quote(ex.Value)
		}
		return token.Quote(ex.Value)
	case *BoolLit:
		if ex.Value {
			return "True"
		}
		return "False"
	case *NoneLit:
		return "None"
	case *ListLit:
		return "[" + joinExprs(ex.Elems, precLambda) + "]"
	case *TupleLit:
		if len(ex.Elems) == 1 {
			return "(" + exprString(ex.Elems[0], precLambda) + ",)"
		}
		return "(" + joinExprs(ex.Elems, precLambda) + ")"
	case *DictLit:
		parts := make([]string, len(ex.Keys))
		for i := range ex.Keys {
			parts[i] = exprString(ex.Keys[i], precLambda) + ": " + exprString(ex.Values[i], precLambda)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *BinaryExpr:
		p := binaryPrec[ex.Op]
		if ex.Op == "**" {
			return exprString(ex.Left, p+1) + " ** " + exprString(ex.Right, precUnary)
		}
		return exprString(ex.Left, p) + " " + ex.Op + " " + exprString(ex.Right, p+1)
	case *BoolExpr:
		p := exprPrec(ex)
		return exprString(ex.Left, p) + " " + ex.Op + " " + exprString(ex.Right, p+1)
	case *UnaryExpr:
		if ex.Op == "not" {
			return "not " + exprString(ex.Operand, precNot)
		}
		return ex.Op + exprString(ex.Operand, precUnary)
	case *CompareExpr:
		var sb strings.Builder
		sb.WriteString(exprString(ex.Left, precBitOr))
		for i, op := range ex.Ops {
			sb.WriteString(" " + op + " ")
			sb.WriteString(exprString(ex.Rights[i], precBitOr))
		}
		return sb.String()
	case *CallExpr:
		args := make([]string, 0, len(ex.Args)+len(ex.Kwargs))
		for _, a := range ex.Args {
			args = append(args, exprString(a, precLambda))
		}
		for _, k := range ex.Kwargs {
			args = append(args, k.Name+"="+exprString(k.Value, precLambda))
		}
		return exprString(ex.Func, precPrimary) + "(" + strings.Join(args, ", ") + ")"
	case *AttrExpr:
		obj := exprString(ex.Object, precPrimary)
		if _, isInt := ex.Object.(*IntLit); isInt {
			obj = "(" + obj + ")"
		}
		return obj + "." + ex.Name
	case *IndexExpr:
		return exprString(ex.Object, precPrimary) + "[" + exprString(ex.Index, precLambda) + "]"
	case *SliceExpr:
		var sb strings.Builder
		sb.WriteString(exprString(ex.Object, precPrimary) + "[")
		if ex.Lo != nil {
			sb.WriteString(exprString(ex.Lo, precLambda))
		}
		sb.WriteByte(':')
		if ex.Hi != nil {
			sb.WriteString(exprString(ex.Hi, precLambda))
		}
		if ex.Step != nil {
			sb.WriteByte(':')
			sb.WriteString(exprString(ex.Step, precLambda))
		}
		sb.WriteByte(']')
		return sb.String()
	case *CondExpr:
		return exprString(ex.Then, precOr) + " if " + exprString(ex.Cond, precOr) + " else " + exprString(ex.Else, precCond)
	case *LambdaExpr:
		if len(ex.Params) == 0 {
			return "lambda: " + exprString(ex.Body, precLambda)
		}
		params := make([]string, len(ex.Params))
		first := len(ex.Params) - len(ex.Defaults)
		for i, p := range ex.Params {
			params[i] = p
			if i >= first {
				params[i] += "=" + exprString(ex.Defaults[i-first], precLambda)
			}
		}
		return "lambda " + strings.Join(params, ", ") + ": " + exprString(ex.Body, precLambda)
	case *ListComp:
		var sb strings.Builder
		sb.WriteString("[" + exprString(ex.Elem, precLambda))
		for _, c := range ex.Clauses {
			sb.WriteString(" for " + strings.Join(c.Targets, ", ") + " in " + exprString(c.Iter, precOr))
			for _, cond := range c.Ifs {
				sb.WriteString(" if " + exprString(cond, precOr))
			}
		}
		sb.WriteByte(']')
		return sb.String()
	}
	return "<?>"
}
