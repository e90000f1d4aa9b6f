// Package interp evaluates Mini-Shell command trees.
//
// A Runner is the in-process analog of one shell process: it owns an
// environment, a working directory, three standard streams and a
// filesystem. Sequential and logical operators evaluate in the runner
// itself; pipe and parallel operators evaluate each branch in a clone
// holding a snapshot of the environment, which gives the classical
// fork semantics (children inherit, never leak back) without fork.
// External commands are the only real child processes.
package interp

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/spf13/afero"

	"github.com/andreeapeiu/Mini-Shell/core/env"
	"github.com/andreeapeiu/Mini-Shell/core/syntax"
)

// EvalFailure is the outcome reserved for failures of the evaluator
// itself: malformed trees, empty verbs, pipe setup errors. Commands
// that ran and failed report their own nonzero status instead.
const EvalFailure = -1

// Runner is the context a command tree evaluates in.
type Runner struct {
	// Env is the mutable environment commands expand from and assign
	// into. It is seeded once at startup and never re-read from the
	// host process.
	Env env.Env

	// Dir is the working directory. Only cd changes it.
	Dir string

	// Standard streams commands inherit unless redirected.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// FS performs every file open and stat: redirection targets, cd
	// validation and the PATH search. Tests inject an afero.MemMapFs.
	FS afero.Fs

	// Exit is invoked when the exit or quit builtin runs, after the
	// runner latches into its exiting state. A nil Exit just stops
	// evaluation; the interactive loop and served sessions watch
	// Exiting instead so they can unwind and release the terminal or
	// connection cleanly.
	Exit func(code int)

	exiting  bool
	exitCode int
}

// New returns a Runner bound to the calling process: its environment,
// working directory, standard streams and filesystem.
func New() *Runner {
	dir, err := os.Getwd()
	if err != nil {
		dir = "/"
	}

	return &Runner{
		Env:    env.NewMapEnvFromEnvList(os.Environ()),
		Dir:    dir,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		FS:     afero.NewOsFs(),
	}
}

// subshell clones the runner for one branch of a concurrent operator.
// The clone gets its own copy of the environment and no Exit hook, so
// an exit inside the branch terminates the branch alone.
func (r *Runner) subshell() *Runner {
	return &Runner{
		Env:    env.NewMapEnvFrom(r.Env),
		Dir:    r.Dir,
		Stdin:  r.Stdin,
		Stdout: r.Stdout,
		Stderr: r.Stderr,
		FS:     r.FS,
	}
}

// exit latches the runner into its exiting state and fires the hook.
// If the hook returns (os.Exit never does), evaluation unwinds without
// running further nodes.
func (r *Runner) exit(code int) {
	r.exiting = true
	r.exitCode = code
	if r.Exit != nil {
		r.Exit(code)
	}
}

// Exiting reports whether an exit or quit builtin ran.
func (r *Runner) Exiting() bool { return r.exiting }

// ExitCode returns the status exit was invoked with.
func (r *Runner) ExitCode() int { return r.exitCode }

// diag prints an evaluator diagnostic to the runner's stderr.
func (r *Runner) diag(format string, args ...interface{}) {
	fmt.Fprintf(r.Stderr, "minish: "+format+"\n", args...)
}

// Run evaluates a command tree and returns its outcome: 0 for success,
// a failed command's exit status, or EvalFailure when the evaluator
// could not run the tree at all. Run never terminates the shell on a
// failing tree; only the exit and quit builtins do that.
func (r *Runner) Run(ctx context.Context, node syntax.Node) int {
	if r.exiting {
		return r.exitCode
	}

	switch n := node.(type) {
	case *syntax.SimpleCommand:
		return r.runSimple(ctx, n)
	case *syntax.BinaryCommand:
		return r.runBinary(ctx, n)
	default:
		r.diag("cannot execute command of type %T", node)
		return EvalFailure
	}
}

func (r *Runner) runBinary(ctx context.Context, n *syntax.BinaryCommand) int {
	switch n.Op {
	case syntax.Sequential:
		// The left status is deliberately discarded.
		r.Run(ctx, n.Left)
		return r.Run(ctx, n.Right)

	case syntax.And:
		status := r.Run(ctx, n.Left)
		if status == 0 && !r.exiting {
			return r.Run(ctx, n.Right)
		}
		return status

	case syntax.Or:
		status := r.Run(ctx, n.Left)
		if status != 0 && !r.exiting {
			return r.Run(ctx, n.Right)
		}
		return status

	case syntax.Pipe:
		return r.runPipe(ctx, n)

	case syntax.Parallel:
		return r.runParallel(ctx, n)

	default:
		r.diag("unknown operator %q", n.Op.String())
		return EvalFailure
	}
}

// runPipe connects the left branch's stdout to the right branch's
// stdin through an OS pipe and runs both concurrently. Each branch
// closes its own pipe end when it finishes, so a consumer that stops
// reading breaks the producer's writes and a finished producer hands
// the consumer EOF. The pipe's status is the last stage's status.
func (r *Runner) runPipe(ctx context.Context, n *syntax.BinaryCommand) int {
	pr, pw, err := os.Pipe()
	if err != nil {
		r.diag("pipe: %v", err)
		return EvalFailure
	}

	mu := new(sync.Mutex)
	left := r.subshell()
	left.Stdout = pw
	left.Stderr = &lockedWriter{mu: mu, w: left.Stderr}
	right := r.subshell()
	right.Stdin = pr
	right.Stdout = &lockedWriter{mu: mu, w: right.Stdout}
	right.Stderr = &lockedWriter{mu: mu, w: right.Stderr}

	var wg sync.WaitGroup
	var status int

	wg.Add(2)
	go func() {
		defer wg.Done()
		left.Run(ctx, n.Left)
		pw.Close()
	}()
	go func() {
		defer wg.Done()
		status = right.Run(ctx, n.Right)
		pr.Close()
	}()
	wg.Wait()

	return status
}

// runParallel evaluates both branches concurrently and waits for both.
// The operator reports only whether both sides ran to completion; the
// branches' own statuses are discarded.
func (r *Runner) runParallel(ctx context.Context, n *syntax.BinaryCommand) int {
	mu := new(sync.Mutex)
	left := r.subshell()
	right := r.subshell()
	for _, branch := range []*Runner{left, right} {
		branch.Stdout = &lockedWriter{mu: mu, w: branch.Stdout}
		branch.Stderr = &lockedWriter{mu: mu, w: branch.Stderr}
	}

	var wg sync.WaitGroup
	var leftStatus, rightStatus int

	wg.Add(2)
	go func() {
		defer wg.Done()
		leftStatus = left.Run(ctx, n.Left)
	}()
	go func() {
		defer wg.Done()
		rightStatus = right.Run(ctx, n.Right)
	}()
	wg.Wait()

	if leftStatus == EvalFailure || rightStatus == EvalFailure {
		return EvalFailure
	}
	return 0
}

// lockedWriter serializes writes from concurrently evaluated branches
// that share a destination. Without it two branches writing to one
// in-memory buffer would race; files tolerate it, buffers do not.
type lockedWriter struct {
	mu *sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
