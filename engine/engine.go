// Package engine drives a program through the syntax-extension pipeline:
// lex, token passes, render, parse, tree passes, normalize, evaluate.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/command"
	"github.com/rubiojr/scriptgo/editor"
	"github.com/rubiojr/scriptgo/eval"
	"github.com/rubiojr/scriptgo/object"
	"github.com/rubiojr/scriptgo/parser"
	"github.com/rubiojr/scriptgo/scanner"
	"github.com/rubiojr/scriptgo/sugar"
	"github.com/rubiojr/scriptgo/token"
)

// Engine holds the transformer configuration. It keeps no per-evaluation
// state, so one Engine may serve concurrent evaluations.
type Engine struct {
	// Transformers run in order. Nil means sugar.Default(Runner).
	Transformers sugar.List
	// Runner executes shell substitutions for the default transformers.
	Runner command.Runner
	// Debug, when set, receives the transformed program of every
	// evaluation.
	Debug io.Writer
	// Stdout receives print output. Nil means os.Stdout.
	Stdout io.Writer
	// BalanceFix closes brackets the source leaves open before lexing.
	BalanceFix bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithTransformers replaces the default transformer list. With no
// arguments the program runs without any syntax extension.
func WithTransformers(ts ...sugar.Transformer) Option {
	return func(e *Engine) { e.Transformers = append(sugar.List{}, ts...) }
}

// WithRunner sets the command runner used by the default shell
// transformer.
func WithRunner(r command.Runner) Option {
	return func(e *Engine) { e.Runner = r }
}

// WithDebug writes each transformed program to w.
func WithDebug(w io.Writer) Option {
	return func(e *Engine) { e.Debug = w }
}

// WithStdout redirects print output.
func WithStdout(w io.Writer) Option {
	return func(e *Engine) { e.Stdout = w }
}

// WithBalanceFix enables closing of unbalanced brackets.
func WithBalanceFix() Option {
	return func(e *Engine) { e.BalanceFix = true }
}

// New returns an Engine with the default transformers unless overridden.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Unit is the record of one evaluation's rewrite. It replaces any shared
// cache keyed by file name; diagnostics format against it.
type Unit struct {
	Filename  string         // pseudo-filename unique to Source
	Source    string         // input as given
	Rewritten string         // rendered output of the token passes
	Tokens    token.Sequence // token-pass output, END-terminated
	Program   *ast.Program   // tree after all tree passes
}

// Filename returns the pseudo-filename for src. Distinct sources get
// distinct names, so concurrent evaluations never share a diagnostic key.
func Filename(src string) string {
	return "<main:" + strconv.FormatUint(fnv1a.HashString64(src), 16) + ">"
}

func (e *Engine) transformers() sugar.List {
	if e.Transformers != nil {
		return e.Transformers
	}
	return sugar.Default(e.Runner)
}

// Rewrite runs every stage up to and including normalization.
func (e *Engine) Rewrite(src string) (*Unit, error) {
	return e.rewrite(e.transformers(), src)
}

func (e *Engine) rewrite(ts sugar.List, src string) (*Unit, error) {
	u := &Unit{Filename: Filename(src), Source: src}
	if e.BalanceFix {
		src = scanner.BalanceFix(src)
	}

	toks, err := parser.Tokenize(u.Filename, src)
	if err != nil {
		return nil, fmt.Errorf("lex: %w", err)
	}
	ed := editor.New(toks)
	for _, t := range ts {
		if err := ed.Pass(t.Name(), t.TokenPass); err != nil {
			return nil, err
		}
	}
	ed.End()
	u.Tokens = ed.Tokens()
	u.Rewritten = u.Tokens.Render()

	prog, err := parser.ParseSource(u.Filename, u.Rewritten)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if prog, err = ts.TreePasses().Transform(prog); err != nil {
		return nil, err
	}
	ast.FixPositions(prog)
	u.Program = prog
	return u, nil
}

// Evaluate rewrites src and evaluates it. bindings are converted with
// object.FromGo and shadow the transformer runtime, which shadows the
// builtins. The value of the last expression statement is returned.
func (e *Engine) Evaluate(ctx context.Context, src string, bindings map[string]any) (object.Value, error) {
	ts := e.transformers()
	u, err := e.rewrite(ts, src)
	if err != nil {
		return nil, err
	}
	if e.Debug != nil {
		fmt.Fprintf(e.Debug, "[DEBUG] Transformed code:\n%s", ast.Print(u.Program))
	}
	return e.run(ctx, ts, u, bindings)
}

// run evaluates an already rewritten unit with the runtime of ts.
func (e *Engine) run(ctx context.Context, ts sugar.List, u *Unit, bindings map[string]any) (object.Value, error) {
	vars := make(object.Env, len(bindings))
	for name, v := range bindings {
		ov, err := object.FromGo(v)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", name, err)
		}
		vars[name] = ov
	}
	env := object.Merge(ts.Environment(ctx), vars)

	stdout := e.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	v, err := eval.New(eval.WithStdout(stdout)).Run(ctx, u.Program, env)
	var oe *object.Error
	if errors.As(err, &oe) && oe.Pos.IsValid() {
		return nil, &EvalError{Filename: u.Filename, Line: parser.SourceLine(u.Rewritten, oe.Pos.Line), Err: oe}
	}
	return v, err
}

// Evaluate runs src through a default Engine.
func Evaluate(ctx context.Context, src string, bindings map[string]any) (object.Value, error) {
	return New().Evaluate(ctx, src, bindings)
}
