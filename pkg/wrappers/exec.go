package wrappers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
)

// Command describes one invocation of an external tool.
type Command struct {
	Name string
	Args []string
	Dir  string
	// Env entries are appended to the current process environment.
	Env []string
}

// Output is what a finished command produced. A non-zero ExitCode is not
// an error at this layer; callers decide what the tool's exit code means.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes external tools.
type Runner interface {
	Run(ctx context.Context, c Command) (Output, error)
}

// ExecRunner runs commands with os/exec. When Stream is set, stderr is
// mirrored to it so long scans show progress.
type ExecRunner struct {
	Stream io.Writer
}

func (r ExecRunner) Run(ctx context.Context, c Command) (Output, error) {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if r.Stream != nil {
		cmd.Stderr = io.MultiWriter(&stderr, r.Stream)
	}

	err := cmd.Run()
	out := Output{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return out, err
}
