// Package parser builds an ast.Program from host-language tokens.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/lexer"
	"github.com/rubiojr/scriptgo/token"
)

var keywords = map[string]bool{
	"and": true, "or": true, "not": true, "in": true, "is": true,
	"if": true, "else": true, "for": true, "lambda": true,
	"True": true, "False": true, "None": true,
}

// IsKeyword reports whether name is reserved by the host grammar.
func IsKeyword(name string) bool { return keywords[name] }

// ParseSource lexes and parses src. Lexical errors are reported as
// *SyntaxError.
func ParseSource(filename, src string) (*ast.Program, error) {
	toks, err := Tokenize(filename, src)
	if err != nil {
		return nil, err
	}
	prog, err := Parse(filename, toks)
	if se, ok := err.(*SyntaxError); ok {
		se.Line = SourceLine(src, se.Pos.Line)
	}
	return prog, err
}

// Tokenize lexes src, reporting lexical errors as *SyntaxError.
func Tokenize(filename, src string) ([]token.Token, error) {
	toks, err := lexer.Lex(src)
	if le, ok := err.(*lexer.Error); ok {
		return nil, &SyntaxError{Filename: filename, Pos: le.Pos, Msg: le.Msg, Line: SourceLine(src, le.Pos.Line)}
	}
	return toks, err
}

// Parse parses a token sequence produced by the lexer or the token
// editor. The sequence must end with END.
func Parse(filename string, toks []token.Token) (prog *ast.Program, err error) {
	p := &parser{filename: filename, toks: toks}
	if len(toks) == 0 || toks[len(toks)-1].Kind != token.END {
		p.toks = append(append([]token.Token(nil), toks...), token.New(token.END, ""))
	}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			prog, err = nil, b.err
		}
	}()
	return p.program(), nil
}

// ParseExpr parses a single expression, as used for f-string segments.
func ParseExpr(filename, src string) (expr ast.Expr, err error) {
	toks, err := lexer.Lex(src)
	if err != nil {
		if le, ok := err.(*lexer.Error); ok {
			return nil, &SyntaxError{Filename: filename, Pos: le.Pos, Msg: le.Msg}
		}
		return nil, err
	}
	p := &parser{filename: filename, toks: toks}
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bailout)
			if !ok {
				panic(r)
			}
			expr, err = nil, b.err
		}
	}()
	e := p.testList()
	p.skipNewlines()
	if !p.at(token.END, "") {
		p.fail(p.cur(), "invalid syntax")
	}
	return e, nil
}

type bailout struct{ err *SyntaxError }

type parser struct {
	filename string
	toks     []token.Token
	pos      int
}

func (p *parser) cur() token.Token { return p.toks[p.pos] }

func (p *parser) peek(k int) token.Token {
	if p.pos+k < len(p.toks) {
		return p.toks[p.pos+k]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token.Token {
	t := p.toks[p.pos]
	if t.Kind != token.END {
		p.pos++
	}
	return t
}

func (p *parser) at(kind token.Kind, text string) bool { return p.cur().Is(kind, text) }
func (p *parser) atOp(text string) bool                { return p.cur().IsOp(text) }
func (p *parser) atKeyword(kw string) bool             { return p.at(token.NAME, kw) }

func (p *parser) accept(kind token.Kind, text string) bool {
	if p.at(kind, text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expectOp(text string) token.Token {
	if !p.atOp(text) {
		p.fail(p.cur(), fmt.Sprintf("expected '%s'", text))
	}
	return p.next()
}

func (p *parser) fail(at token.Token, msg string) {
	if at.Kind == token.END && msg == "invalid syntax" {
		msg = "unexpected end of input"
	}
	panic(bailout{&SyntaxError{Filename: p.filename, Pos: at.Pos, Msg: msg}})
}

func (p *parser) failAt(pos token.Pos, msg string) {
	panic(bailout{&SyntaxError{Filename: p.filename, Pos: pos, Msg: msg}})
}

func (p *parser) skipNewlines() {
	for p.cur().Kind == token.NEWLINE {
		p.next()
	}
}

func (p *parser) program() *ast.Program {
	prog := &ast.Program{SourceFile: p.filename}
	for {
		for p.cur().Kind == token.NEWLINE || p.atOp(";") {
			p.next()
		}
		if p.cur().Kind == token.END {
			return prog
		}
		prog.Statements = append(prog.Statements, p.statement())
		switch {
		case p.cur().Kind == token.NEWLINE || p.cur().Kind == token.END:
		case p.atOp(";"):
			p.next()
		default:
			p.fail(p.cur(), "invalid syntax")
		}
	}
}

var augOps = map[string]string{"+=": "+", "-=": "-", "*=": "*"}

func (p *parser) statement() ast.Statement {
	start := p.cur()
	first := p.testList()
	if op, ok := augOps[p.cur().Text]; ok && p.cur().Kind == token.OP {
		p.next()
		p.checkTarget(first, false)
		return &ast.AugAssignStmt{Base: ast.Base{At: start.Pos}, Target: first, Op: op, Value: p.testList()}
	}
	if !p.atOp("=") {
		return &ast.ExprStmt{Base: ast.Base{At: start.Pos}, X: first}
	}
	exprs := []ast.Expr{first}
	for p.accept(token.OP, "=") {
		exprs = append(exprs, p.testList())
	}
	targets := exprs[:len(exprs)-1]
	for _, t := range targets {
		p.checkTarget(t, true)
	}
	return &ast.AssignStmt{Base: ast.Base{At: start.Pos}, Targets: targets, Value: exprs[len(exprs)-1]}
}

func (p *parser) checkTarget(e ast.Expr, allowTuple bool) {
	switch t := e.(type) {
	case *ast.Ident, *ast.AttrExpr, *ast.IndexExpr:
		return
	case *ast.TupleLit:
		if allowTuple {
			for _, el := range t.Elems {
				p.checkTarget(el, true)
			}
			return
		}
	case *ast.ListLit:
		if allowTuple {
			for _, el := range t.Elems {
				p.checkTarget(el, true)
			}
			return
		}
	}
	p.failAt(e.Pos(), "cannot assign to "+describe(e))
}

func describe(e ast.Expr) string {
	switch e.(type) {
	case *ast.CallExpr:
		return "function call"
	case *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BoolLit, *ast.NoneLit:
		return "literal"
	case *ast.TupleLit:
		return "tuple"
	}
	return "expression"
}

// endsTestList reports whether the current token closes a bare comma
// list, allowing a trailing comma.
func (p *parser) endsTestList() bool {
	t := p.cur()
	switch t.Kind {
	case token.NEWLINE, token.END:
		return true
	case token.OP:
		switch t.Text {
		case ";", "=", ")", "]", "}", "+=", "-=", "*=":
			return true
		}
	}
	return false
}

func (p *parser) testList() ast.Expr {
	start := p.cur()
	first := p.test()
	if !p.atOp(",") {
		return first
	}
	tup := &ast.TupleLit{Base: ast.Base{At: start.Pos}, Elems: []ast.Expr{first}}
	for p.accept(token.OP, ",") {
		if p.endsTestList() {
			break
		}
		tup.Elems = append(tup.Elems, p.test())
	}
	return tup
}

func (p *parser) test() ast.Expr {
	if p.atKeyword("lambda") {
		return p.lambda()
	}
	e := p.or()
	if p.atKeyword("if") {
		t := p.next()
		cond := p.or()
		if !p.accept(token.NAME, "else") {
			p.fail(p.cur(), "expected 'else' after conditional expression")
		}
		return &ast.CondExpr{Base: ast.Base{At: t.Pos}, Cond: cond, Then: e, Else: p.test()}
	}
	return e
}

func (p *parser) lambda() ast.Expr {
	kw := p.next()
	lam := &ast.LambdaExpr{Base: ast.Base{At: kw.Pos}}
	for !p.atOp(":") {
		name := p.cur()
		if name.Kind != token.NAME || IsKeyword(name.Text) {
			p.fail(name, "invalid lambda parameter")
		}
		p.next()
		lam.Params = append(lam.Params, name.Text)
		if p.accept(token.OP, "=") {
			lam.Defaults = append(lam.Defaults, p.test())
		} else if len(lam.Defaults) > 0 {
			p.fail(name, "non-default argument follows default argument")
		}
		if !p.accept(token.OP, ",") {
			break
		}
	}
	p.expectOp(":")
	lam.Body = p.test()
	return lam
}

func (p *parser) or() ast.Expr {
	left := p.and()
	for p.atKeyword("or") {
		t := p.next()
		left = &ast.BoolExpr{Base: ast.Base{At: t.Pos}, Op: "or", Left: left, Right: p.and()}
	}
	return left
}

func (p *parser) and() ast.Expr {
	left := p.not()
	for p.atKeyword("and") {
		t := p.next()
		left = &ast.BoolExpr{Base: ast.Base{At: t.Pos}, Op: "and", Left: left, Right: p.not()}
	}
	return left
}

func (p *parser) not() ast.Expr {
	if p.atKeyword("not") {
		t := p.next()
		return &ast.UnaryExpr{Base: ast.Base{At: t.Pos}, Op: "not", Operand: p.not()}
	}
	return p.comparison()
}

var compareOps = map[string]bool{"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true}

// compareOp consumes a comparison operator and returns it, or "".
func (p *parser) compareOp() string {
	t := p.cur()
	switch {
	case t.Kind == token.OP && compareOps[t.Text]:
		p.next()
		return t.Text
	case t.Is(token.NAME, "in"):
		p.next()
		return "in"
	case t.Is(token.NAME, "not") && p.peek(1).Is(token.NAME, "in"):
		p.next()
		p.next()
		return "not in"
	case t.Is(token.NAME, "is"):
		p.next()
		if p.accept(token.NAME, "not") {
			return "is not"
		}
		return "is"
	}
	return ""
}

func (p *parser) comparison() ast.Expr {
	left := p.binary(0)
	var cmp *ast.CompareExpr
	for {
		at := p.cur().Pos
		op := p.compareOp()
		if op == "" {
			break
		}
		if cmp == nil {
			cmp = &ast.CompareExpr{Base: ast.Base{At: at}, Left: left}
		}
		cmp.Ops = append(cmp.Ops, op)
		cmp.Rights = append(cmp.Rights, p.binary(0))
	}
	if cmp == nil {
		return left
	}
	return cmp
}

// binaryLevels lists the left-associative binary operators from lowest
// to highest precedence.
var binaryLevels = [][]string{
	{"|"},
	{"^"},
	{"&"},
	{"+", "-"},
	{"*", "/", "//", "%", "@"},
}

func (p *parser) binary(level int) ast.Expr {
	if level == len(binaryLevels) {
		return p.factor()
	}
	left := p.binary(level + 1)
	for {
		t := p.cur()
		if t.Kind != token.OP || !contains(binaryLevels[level], t.Text) {
			return left
		}
		p.next()
		left = &ast.BinaryExpr{Base: ast.Base{At: t.Pos}, Op: t.Text, Left: left, Right: p.binary(level + 1)}
	}
}

func contains(ops []string, s string) bool {
	for _, o := range ops {
		if o == s {
			return true
		}
	}
	return false
}

func (p *parser) factor() ast.Expr {
	t := p.cur()
	if t.Kind == token.OP && (t.Text == "-" || t.Text == "+" || t.Text == "~") {
		p.next()
		return &ast.UnaryExpr{Base: ast.Base{At: t.Pos}, Op: t.Text, Operand: p.factor()}
	}
	return p.power()
}

func (p *parser) power() ast.Expr {
	base := p.primary()
	if p.atOp("**") {
		t := p.next()
		return &ast.BinaryExpr{Base: ast.Base{At: t.Pos}, Op: "**", Left: base, Right: p.factor()}
	}
	return base
}

func (p *parser) primary() ast.Expr {
	e := p.atom()
	for {
		t := p.cur()
		switch {
		case t.IsOp("("):
			p.next()
			e = p.call(e, t.Pos)
		case t.IsOp("."):
			p.next()
			name := p.cur()
			if name.Kind != token.NAME {
				p.fail(name, "expected attribute name after '.'")
			}
			p.next()
			e = &ast.AttrExpr{Base: ast.Base{At: t.Pos}, Object: e, Name: name.Text}
		case t.IsOp("["):
			p.next()
			e = p.subscript(e, t.Pos)
		default:
			return e
		}
	}
}

func (p *parser) call(fn ast.Expr, at token.Pos) ast.Expr {
	c := &ast.CallExpr{Base: ast.Base{At: at}, Func: fn}
	for !p.atOp(")") {
		if p.cur().Kind == token.NAME && p.peek(1).IsOp("=") && !IsKeyword(p.cur().Text) {
			name := p.next()
			p.next()
			for _, k := range c.Kwargs {
				if k.Name == name.Text {
					p.fail(name, "keyword argument repeated: "+name.Text)
				}
			}
			c.Kwargs = append(c.Kwargs, ast.Keyword{Name: name.Text, Value: p.test()})
		} else {
			if len(c.Kwargs) > 0 {
				p.fail(p.cur(), "positional argument follows keyword argument")
			}
			start := p.cur()
			arg := p.test()
			if p.atKeyword("for") {
				// f(x for x in xs) is evaluated eagerly as a list
				arg = p.comprehension(arg, start.Pos)
			}
			c.Args = append(c.Args, arg)
		}
		if !p.accept(token.OP, ",") {
			break
		}
	}
	p.expectOp(")")
	return c
}

func (p *parser) subscript(obj ast.Expr, at token.Pos) ast.Expr {
	var lo ast.Expr
	if !p.atOp(":") {
		lo = p.testList()
		if p.accept(token.OP, "]") {
			return &ast.IndexExpr{Base: ast.Base{At: at}, Object: obj, Index: lo}
		}
	}
	s := &ast.SliceExpr{Base: ast.Base{At: at}, Object: obj, Lo: lo}
	p.expectOp(":")
	if !p.atOp("]") && !p.atOp(":") {
		s.Hi = p.test()
	}
	if p.accept(token.OP, ":") && !p.atOp("]") {
		s.Step = p.test()
	}
	p.expectOp("]")
	return s
}

func (p *parser) comprehension(elem ast.Expr, at token.Pos) *ast.ListComp {
	lc := &ast.ListComp{Base: ast.Base{At: at}, Elem: elem}
	for p.atKeyword("for") {
		p.next()
		var clause ast.CompFor
		for {
			name := p.cur()
			if name.Kind != token.NAME || IsKeyword(name.Text) {
				p.fail(name, "invalid comprehension target")
			}
			p.next()
			clause.Targets = append(clause.Targets, name.Text)
			if !p.accept(token.OP, ",") {
				break
			}
		}
		if !p.accept(token.NAME, "in") {
			p.fail(p.cur(), "expected 'in' in comprehension")
		}
		clause.Iter = p.or()
		for p.atKeyword("if") {
			p.next()
			clause.Ifs = append(clause.Ifs, p.or())
		}
		lc.Clauses = append(lc.Clauses, clause)
	}
	return lc
}

func (p *parser) atom() ast.Expr {
	t := p.cur()
	base := ast.Base{At: t.Pos}
	switch t.Kind {
	case token.NAME:
		switch t.Text {
		case "True", "False":
			p.next()
			return &ast.BoolLit{Base: base, Value: t.Text == "True"}
		case "None":
			p.next()
			return &ast.NoneLit{Base: base}
		}
		if IsKeyword(t.Text) {
			p.fail(t, "invalid syntax")
		}
		p.next()
		return &ast.Ident{Base: base, Name: t.Text}
	case token.NUMBER:
		p.next()
		return p.number(t)
	case token.STRING:
		return p.stringLit()
	case token.OP:
		switch t.Text {
		case "(":
			p.next()
			return p.paren(base)
		case "[":
			p.next()
			return p.list(base)
		case "{":
			p.next()
			return p.dict(base)
		}
	}
	p.fail(t, "invalid syntax")
	return nil
}

func (p *parser) number(t token.Token) ast.Expr {
	text := strings.ReplaceAll(t.Text, "_", "")
	base := ast.Base{At: t.Pos}
	lower := strings.ToLower(text)
	isHex := strings.HasPrefix(lower, "0x")
	if !isHex && strings.ContainsAny(lower, ".e") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.fail(t, "invalid number literal "+t.Text)
		}
		return &ast.FloatLit{Base: base, Value: f}
	}
	n, err := strconv.ParseInt(text, 0, 64)
	if err != nil {
		p.fail(t, "invalid number literal "+t.Text)
	}
	return &ast.IntLit{Base: base, Value: n}
}

// stringLit parses one or more adjacent STRING tokens into a single literal.
func (p *parser) stringLit() ast.Expr {
	first := p.cur()
	var parts []literal
	format := false
	for p.cur().Kind == token.STRING {
		t := p.next()
		lit, err := decodeString(t.Text)
		if err != nil {
			p.fail(t, err.Error())
		}
		format = format || lit.format
		parts = append(parts, lit)
	}
	var sb strings.Builder
	for _, lit := range parts {
		v := lit.value
		if format && !lit.format {
			v = strings.NewReplacer("{", "{{", "}", "}}").Replace(v)
		}
		sb.WriteString(v)
	}
	return &ast.StringLit{Base: ast.Base{At: first.Pos}, Value: sb.String(), Format: format}
}

func (p *parser) paren(base ast.Base) ast.Expr {
	if p.accept(token.OP, ")") {
		return &ast.TupleLit{Base: base}
	}
	start := p.cur()
	first := p.test()
	if p.atKeyword("for") {
		lc := p.comprehension(first, start.Pos)
		p.expectOp(")")
		return lc
	}
	if p.accept(token.OP, ")") {
		return first
	}
	tup := &ast.TupleLit{Base: base, Elems: []ast.Expr{first}}
	for p.accept(token.OP, ",") {
		if p.atOp(")") {
			break
		}
		tup.Elems = append(tup.Elems, p.test())
	}
	p.expectOp(")")
	return tup
}

func (p *parser) list(base ast.Base) ast.Expr {
	if p.accept(token.OP, "]") {
		return &ast.ListLit{Base: base}
	}
	first := p.test()
	if p.atKeyword("for") {
		lc := p.comprehension(first, base.At)
		p.expectOp("]")
		return lc
	}
	l := &ast.ListLit{Base: base, Elems: []ast.Expr{first}}
	for p.accept(token.OP, ",") {
		if p.atOp("]") {
			break
		}
		l.Elems = append(l.Elems, p.test())
	}
	p.expectOp("]")
	return l
}

func (p *parser) dict(base ast.Base) ast.Expr {
	d := &ast.DictLit{Base: base}
	for !p.atOp("}") {
		d.Keys = append(d.Keys, p.test())
		p.expectOp(":")
		d.Values = append(d.Values, p.test())
		if !p.accept(token.OP, ",") {
			break
		}
	}
	p.expectOp("}")
	return d
}
