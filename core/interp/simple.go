package interp

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"syscall"

	"github.com/andreeapeiu/Mini-Shell/core/expand"
	"github.com/andreeapeiu/Mini-Shell/core/syntax"
)

// normalize applies the word transformations every command sees:
// dollar expansion first, then quote stripping.
func (r *Runner) normalize(word string) string {
	return expand.StripQuotes(expand.Expand(r.Env.Getenv, word))
}

// runSimple dispatches one simple command. In order: an empty verb is
// an evaluator error, a verb containing '=' is an assignment, a
// registered name is a builtin, anything else is an external command.
func (r *Runner) runSimple(ctx context.Context, cmd *syntax.SimpleCommand) int {
	if r.exiting {
		return r.exitCode
	}
	if cmd == nil {
		r.diag("cannot execute empty command")
		return EvalFailure
	}

	verb := r.normalize(cmd.Verb)
	if verb == "" {
		r.diag("cannot execute empty command")
		return EvalFailure
	}

	if strings.Contains(verb, "=") {
		return r.runAssignment(verb)
	}

	args := make([]string, 0, len(cmd.Args))
	for _, a := range cmd.Args {
		args = append(args, r.normalize(a))
	}

	if b, ok := Builtins[verb]; ok {
		return r.runBuiltin(b, verb, args, cmd)
	}

	return r.runExternal(ctx, verb, args, cmd)
}

// runAssignment splits NAME=VALUE on the first '=' and sets NAME in
// the runner's environment. The remainder, further '=' included, is
// the value, so A=B=C sets A to "B=C".
func (r *Runner) runAssignment(word string) int {
	name, value, _ := strings.Cut(word, "=")
	if err := r.Env.Setenv(name, value); err != nil {
		r.diag("%s: %v", word, err)
		return 1
	}
	return 0
}

// runBuiltin runs a builtin in the shell process itself. The runner's
// stream fields are saved, swapped for the command's redirected ones,
// and restored afterwards, so a builtin's redirection never outlives
// the call.
func (r *Runner) runBuiltin(b Builtin, verb string, args []string, cmd *syntax.SimpleCommand) int {
	stdin, stdout, stderr := r.Stdin, r.Stdout, r.Stderr

	s, err := r.openRedirects(cmd)
	if err != nil {
		r.diag("%v", err)
		return 1
	}
	r.Stdin, r.Stdout, r.Stderr = s.stdin, s.stdout, s.stderr

	status := b.Main(r, append([]string{verb}, args...))

	r.Stdin, r.Stdout, r.Stderr = stdin, stdout, stderr
	s.Close()

	return status
}

// runExternal resolves the verb against the runner environment's PATH
// and runs it as a real child process carrying the runner's
// environment, directory and (possibly redirected) streams.
func (r *Runner) runExternal(ctx context.Context, name string, args []string, cmd *syntax.SimpleCommand) int {
	s, err := r.openRedirects(cmd)
	if err != nil {
		r.diag("%v", err)
		return 1
	}
	defer s.Close()

	path, err := r.lookPath(name)
	if err != nil {
		fmt.Fprintf(s.stderr, "Execution failed for '%s'\n", name)
		return 1
	}

	child := exec.CommandContext(ctx, r.absPath(path))
	child.Args = append([]string{name}, args...)
	child.Dir = r.Dir
	child.Env = r.Env.Environ()
	child.Stdin = s.stdin
	child.Stdout = s.stdout
	child.Stderr = s.stderr

	if err := child.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// A child killed by a signal did not exit normally;
			// collapse that to a generic failure.
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				return 1
			}
			return exitErr.ExitCode()
		}

		// Start failures land here, the analog of a failed fork.
		fmt.Fprintf(s.stderr, "Execution failed for '%s'\n", name)
		return 1
	}

	return 0
}
