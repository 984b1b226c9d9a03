package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/rubiojr/scriptgo/ast"
	"github.com/rubiojr/scriptgo/command"
	"github.com/rubiojr/scriptgo/engine"
	"github.com/rubiojr/scriptgo/object"
)

// Execute runs the scriptgo CLI with the given version string.
func Execute(version string) {
	app := newApp(version, os.Stdout, os.Stderr)
	if err := app.Run(context.Background(), os.Args); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp(version string, stdout, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:                   "scriptgo",
		Usage:                  "Evaluate scripts with pipe and shell syntax extensions",
		ArgsUsage:              "[file]",
		Version:                version,
		UseShortOptionHandling: true,
		Writer:                 stdout,
		ErrWriter:              stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "code",
				Aliases: []string{"c"},
				Usage:   "Program passed in as a string",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Print the transformed program to stderr",
				Sources: cli.EnvVars("SCRIPTGO_DEBUG"),
			},
			&cli.StringFlag{
				Name:    "shell",
				Usage:   "Shell used for $(...) substitutions",
				Value:   "sh",
				Sources: cli.EnvVars("SCRIPTGO_SHELL"),
			},
			&cli.BoolFlag{
				Name:    "watch",
				Aliases: []string{"w"},
				Usage:   "Re-evaluate FILE every time it changes",
			},
			&cli.BoolFlag{
				Name:  "balance-fix",
				Usage: "Close brackets the program leaves open",
			},
			&cli.BoolFlag{
				Name:    "no-color",
				Aliases: []string{"C"},
				Usage:   "Disable ANSI color output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			setupColor(cmd.Bool("no-color"))
			return ctx, nil
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:      "emit",
				Usage:     "Output the rewritten program",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "tree",
						Usage: "Print the program after tree passes instead of the token-pass text",
					},
				},
				Action: emitAction,
			},
			{
				Name:      "tokens",
				Usage:     "Output the rewritten token stream",
				ArgsUsage: "[file]",
				Action:    tokensAction,
			},
			{
				Name:      "check",
				Usage:     "Rewrite files and report syntax errors without running them",
				ArgsUsage: "<file>...",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "jobs",
						Aliases: []string{"j"},
						Usage:   "Files checked in parallel",
						Value:   4,
					},
				},
				Action: checkAction,
			},
		},
	}
}

// setupColor disables color when asked to, when NO_COLOR is set or when
// stderr is not a terminal.
func setupColor(disable bool) {
	if disable || os.Getenv("NO_COLOR") != "" || !term.IsTerminal(int(os.Stderr.Fd())) {
		color.NoColor = true
	}
}

func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("error:"), err)
}

// newEngine builds an engine from the global flags.
func newEngine(cmd *cli.Command) *engine.Engine {
	opts := []engine.Option{
		engine.WithRunner(&command.ExecRunner{Shell: cmd.String("shell")}),
		engine.WithStdout(cmd.Root().Writer),
	}
	if cmd.Bool("debug") {
		opts = append(opts, engine.WithDebug(debugWriter{cmd.Root().ErrWriter}))
	}
	if cmd.Bool("balance-fix") {
		opts = append(opts, engine.WithBalanceFix())
	}
	return engine.New(opts...)
}

// debugWriter colors the [DEBUG] banner lines.
type debugWriter struct{ w io.Writer }

func (d debugWriter) Write(p []byte) (int, error) {
	text := string(p)
	if banner, rest, ok := strings.Cut(text, "\n"); ok && strings.HasPrefix(banner, "[DEBUG]") {
		if _, err := fmt.Fprintf(d.w, "%s\n%s", color.CyanString(banner), rest); err != nil {
			return 0, err
		}
		return len(p), nil
	}
	return d.w.Write(p)
}

var errUsage = errors.New("usage: scriptgo [--code CODE | FILE]")

// source resolves the program from --code or the first argument.
func source(cmd *cli.Command) (name, src string, err error) {
	if code := cmd.String("code"); code != "" {
		return "<string>", code, nil
	}
	if cmd.NArg() < 1 {
		return "", "", errUsage
	}
	name = cmd.Args().First()
	data, err := os.ReadFile(name)
	if err != nil {
		return "", "", fmt.Errorf("reading %s: %w", name, err)
	}
	return name, string(data), nil
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.String("code") == "" && cmd.NArg() == 0 {
		return cli.DefaultShowRootCommandHelp(cmd)
	}
	if cmd.Bool("watch") {
		if cmd.NArg() < 1 {
			return fmt.Errorf("usage: scriptgo --watch FILE")
		}
		return watch(ctx, cmd, cmd.Args().First())
	}
	_, src, err := source(cmd)
	if err != nil {
		return err
	}
	return evaluate(ctx, cmd, newEngine(cmd), src)
}

// evaluate runs src and prints its result the way print() would.
func evaluate(ctx context.Context, cmd *cli.Command, e *engine.Engine, src string) error {
	v, err := e.Evaluate(ctx, src, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.Root().Writer, object.ToStr(v))
	return nil
}

func emitAction(ctx context.Context, cmd *cli.Command) error {
	_, src, err := source(cmd)
	if err != nil {
		return err
	}
	u, err := newEngine(cmd).Rewrite(src)
	if err != nil {
		return err
	}
	out := u.Rewritten
	if cmd.Bool("tree") {
		out = ast.Print(u.Program)
	}
	fmt.Fprint(cmd.Root().Writer, out)
	return nil
}

func tokensAction(ctx context.Context, cmd *cli.Command) error {
	_, src, err := source(cmd)
	if err != nil {
		return err
	}
	u, err := newEngine(cmd).Rewrite(src)
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	for _, t := range u.Tokens {
		fmt.Fprintf(w, "%-7s %-7s %q\n", t.Pos, t.Kind, t.Text)
	}
	return nil
}
