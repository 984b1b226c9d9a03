// Package command runs external shell commands for the shell sugar.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Request describes one command invocation.
type Request struct {
	Command string
	// MergeStderr sends stderr into the Stdout capture.
	MergeStderr bool
	// CheckExit turns a non-zero exit status into an *ExitError.
	CheckExit bool
}

// Result is the fully buffered outcome of a command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes shell commands.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// ExitError reports a command that exited with a non-zero status while
// the caller required success.
type ExitError struct {
	Command string
	Result  Result
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("command %q exited with status %d", e.Command, e.Result.ExitCode)
	out := e.Result.Stderr
	if out == "" {
		out = e.Result.Stdout
	}
	if line, _, _ := strings.Cut(strings.TrimSpace(out), "\n"); line != "" {
		msg += ": " + line
	}
	return msg
}

// ExecRunner runs commands through a POSIX shell with os/exec.
type ExecRunner struct {
	Shell string   // defaults to "sh"
	Dir   string   // working directory, empty for the current one
	Env   []string // extra KEY=VALUE entries appended to the process environment
}

// Run executes req.Command as `shell -c command`, buffering all output.
func (r *ExecRunner) Run(ctx context.Context, req Request) (Result, error) {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}
	cmd := exec.CommandContext(ctx, shell, "-c", req.Command)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	if len(r.Env) > 0 {
		cmd.Env = append(os.Environ(), r.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if req.MergeStderr {
		cmd.Stderr = &stdout
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, fmt.Errorf("command %q: %w", req.Command, ctxErr)
		}
		var ee *exec.ExitError
		if !errors.As(err, &ee) {
			return res, fmt.Errorf("command %q: %w", req.Command, err)
		}
		res.ExitCode = ee.ExitCode()
	}
	return checked(req, res)
}

// FuncRunner adapts a function to Runner. CheckExit is enforced on the
// returned Result, so fakes only need to report the exit code.
type FuncRunner func(ctx context.Context, req Request) (Result, error)

func (f FuncRunner) Run(ctx context.Context, req Request) (Result, error) {
	res, err := f(ctx, req)
	if err != nil {
		return res, err
	}
	return checked(req, res)
}

func checked(req Request, res Result) (Result, error) {
	if req.CheckExit && res.ExitCode != 0 {
		return res, &ExitError{Command: req.Command, Result: res}
	}
	return res, nil
}
