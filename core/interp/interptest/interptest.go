// Package interptest runs command lines against scratch runners inside
// tests: in-memory filesystem, empty deterministic environment, buffer
// streams. Nothing touches the host process.
package interptest

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/andreeapeiu/Mini-Shell/core/env"
	"github.com/andreeapeiu/Mini-Shell/core/interp"
	"github.com/andreeapeiu/Mini-Shell/core/syntax"
)

// Cmd is similar to exec.Cmd, but the "process" is a Mini-Shell
// command line evaluated in-process.
type Cmd struct {
	// Line is the command line to parse and run.
	Line string
	// Dir is the working directory; it is created on the in-memory
	// filesystem before the line runs. Defaults to "/".
	Dir string
	// Env gives the environment in the form returned by Environ.
	// A nil Env means an empty environment.
	Env []string

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ExitStatus is the evaluated line's outcome, set by Run.
	ExitStatus int

	// Runner is the runner the line was evaluated on, set by Run and
	// kept for inspecting directory, environment and exit state.
	Runner *interp.Runner

	// Setup prepares the runner (usually its filesystem) before the
	// line runs.
	Setup func(r *interp.Runner) error
}

// Command builds a Cmd for one line.
func Command(line string) *Cmd {
	return &Cmd{Line: line}
}

// CombinedOutput runs the line and returns its combined stdout and
// stderr.
func (c *Cmd) CombinedOutput() ([]byte, error) {
	buf := &bytes.Buffer{}
	c.Stdout = buf
	c.Stderr = buf

	if err := c.Run(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Run parses the line and evaluates it, filling ExitStatus. The error
// reports parse or setup problems, never command failures.
func (c *Cmd) Run() error {
	dir := c.Dir
	if dir == "" {
		dir = "/"
	}

	stdin := c.Stdin
	if stdin == nil {
		stdin = strings.NewReader("")
	}
	stdout := c.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := c.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := afero.NewMemMapFs()
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return err
	}

	c.Runner = &interp.Runner{
		Env:    env.NewMapEnvFromEnvList(c.Env),
		Dir:    dir,
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
		FS:     fs,
	}

	if c.Setup != nil {
		if err := c.Setup(c.Runner); err != nil {
			return err
		}
	}

	node, err := syntax.Parse(c.Line)
	if err != nil {
		return err
	}

	c.ExitStatus = c.Runner.Run(context.Background(), node)
	return nil
}
