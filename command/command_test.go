package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerSeparatesStreams(t *testing.T) {
	r := &ExecRunner{}
	res, err := r.Run(context.Background(), Request{Command: "printf OUT; printf ERR >&2; exit 5"})
	require.NoError(t, err)
	assert.Equal(t, Result{Stdout: "OUT", Stderr: "ERR", ExitCode: 5}, res)
}

func TestExecRunnerMergesStderr(t *testing.T) {
	r := &ExecRunner{}
	res, err := r.Run(context.Background(), Request{Command: "echo a; echo b >&2", MergeStderr: true})
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", res.Stdout)
	assert.Empty(t, res.Stderr)
}

func TestExecRunnerCheckExit(t *testing.T) {
	r := &ExecRunner{}
	_, err := r.Run(context.Background(), Request{Command: "echo failing >&2; exit 3", CheckExit: true})
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, 3, ee.Result.ExitCode)
	assert.Equal(t, `command "echo failing >&2; exit 3" exited with status 3: failing`, ee.Error())
}

func TestExecRunnerDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	r := &ExecRunner{Dir: dir, Env: []string{"SCRIPTGO_TEST_VAR=hello"}}
	res, err := r.Run(context.Background(), Request{Command: `printf "%s %s" "$SCRIPTGO_TEST_VAR" "$(basename "$PWD")"`, CheckExit: true})
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "hello ")
}

func TestExecRunnerMissingShell(t *testing.T) {
	r := &ExecRunner{Shell: "/nonexistent/shell"}
	_, err := r.Run(context.Background(), Request{Command: "true"})
	require.Error(t, err)
	var ee *ExitError
	assert.False(t, errors.As(err, &ee))
}

func TestExecRunnerCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&ExecRunner{}).Run(ctx, Request{Command: "sleep 5"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFuncRunner(t *testing.T) {
	var got Request
	r := FuncRunner(func(ctx context.Context, req Request) (Result, error) {
		got = req
		return Result{Stdout: "x", ExitCode: 1}, nil
	})
	res, err := r.Run(context.Background(), Request{Command: "cmd"})
	require.NoError(t, err)
	assert.Equal(t, "x", res.Stdout)
	assert.Equal(t, "cmd", got.Command)

	_, err = r.Run(context.Background(), Request{Command: "cmd", CheckExit: true})
	var ee *ExitError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, `command "cmd" exited with status 1: x`, ee.Error())
}
