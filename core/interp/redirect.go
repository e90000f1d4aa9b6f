package interp

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/andreeapeiu/Mini-Shell/core/syntax"
)

// streams holds the effective standard streams for one command plus
// the files opened to build them.
type streams struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	closers []io.Closer
}

// Close closes every file opened for the command's redirections.
func (s *streams) Close() {
	for _, c := range s.closers {
		c.Close()
	}
	s.closers = nil
}

// absPath resolves a path against the runner's working directory.
func (r *Runner) absPath(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(r.Dir, path)
}

// writeFlags returns the open flags for an output redirection target.
func writeFlags(appendMode bool) int {
	if appendMode {
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	return os.O_WRONLY | os.O_CREATE | os.O_TRUNC
}

// openRedirects computes the streams a command runs with, starting
// from the runner's current ones. Targets are expanded and resolved
// against the runner's directory. Order matters: input first, then the
// combined case, then independent output and error targets.
//
// When the output and error targets expand to the same string the file
// is opened exactly once and shared by both streams. Two independent
// opens would truncate each other's writes.
func (r *Runner) openRedirects(cmd *syntax.SimpleCommand) (*streams, error) {
	s := &streams{stdin: r.Stdin, stdout: r.Stdout, stderr: r.Stderr}

	open := func(path string, flag int) (afero.File, error) {
		f, err := r.FS.OpenFile(r.absPath(path), flag, 0644)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, f)
		return f, nil
	}

	if cmd.In != "" {
		f, err := open(r.Env.ExpandEnv(cmd.In), os.O_RDONLY)
		if err != nil {
			return nil, err
		}
		s.stdin = f
	}

	out := r.Env.ExpandEnv(cmd.Out)
	errTarget := r.Env.ExpandEnv(cmd.Err)

	if cmd.Out != "" && cmd.Err != "" && out == errTarget {
		f, err := open(out, writeFlags(cmd.AppendOut))
		if err != nil {
			return nil, err
		}
		s.stdout = f
		s.stderr = f
		return s, nil
	}

	if cmd.Out != "" {
		f, err := open(out, writeFlags(cmd.AppendOut))
		if err != nil {
			return nil, err
		}
		s.stdout = f
	}
	if cmd.Err != "" {
		f, err := open(errTarget, writeFlags(cmd.AppendErr))
		if err != nil {
			return nil, err
		}
		s.stderr = f
	}

	return s, nil
}
