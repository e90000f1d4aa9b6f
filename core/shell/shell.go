// Package shell is the interactive front end of the Mini-Shell: a
// line editor, a prompt and the loop that feeds lines to the
// evaluator. It knows nothing about where its streams come from, so
// the same loop serves a local terminal and an SSH session.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/abiosoft/readline"

	"github.com/andreeapeiu/Mini-Shell/core/interp"
	"github.com/andreeapeiu/Mini-Shell/core/logger"
	"github.com/andreeapeiu/Mini-Shell/core/syntax"
)

const (
	EnvHome     = "HOME"
	EnvPath     = "PATH"
	EnvPrompt   = "PS1"
	EnvHostname = "HOSTNAME"
	EnvUser     = "USER"

	DefaultPrompt = `\u@\h:\w\$ `
	DefaultPath   = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"
)

// Options configure the line editor around the runner's streams.
type Options struct {
	// WindowWidth reports the terminal width for line editing. nil
	// queries the process's own terminal.
	WindowWidth func() int

	// IsTerminal reports whether the input supports editing and
	// echoing. nil checks the process's own stdin.
	IsTerminal func() bool

	// Audit receives one event per evaluated line. nil disables
	// auditing.
	Audit *logger.SessionLogger
}

// Shell runs the read-eval loop over a Runner. The zero value with
// just Runner set can Eval lines; Run additionally needs the Readline
// instance New provides.
type Shell struct {
	Runner   *interp.Runner
	Readline *readline.Instance
	Audit    *logger.SessionLogger

	// LastStatus is the outcome of the most recently evaluated line.
	LastStatus int
}

// New builds an interactive shell over the runner's streams.
func New(runner *interp.Runner, opts *Options) (*Shell, error) {
	if opts == nil {
		opts = &Options{}
	}

	cfg := &readline.Config{
		Stdin:          readline.NewCancelableStdin(runner.Stdin),
		Stdout:         runner.Stdout,
		Stderr:         runner.Stderr,
		FuncGetWidth:   opts.WindowWidth,
		FuncIsTerminal: opts.IsTerminal,
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &Shell{
		Runner:   runner,
		Readline: rl,
		Audit:    opts.Audit,
	}, nil
}

// Prompt renders the PS1 pattern: \u is the user, \h the hostname, \w
// the working directory with $HOME shortened to ~, and \$ the prompt
// terminator, # for root and $ for everyone else.
func (s *Shell) Prompt() string {
	prompt := s.Runner.Env.Getenv(EnvPrompt)
	if prompt == "" {
		prompt = DefaultPrompt
	}

	prompt = strings.ReplaceAll(prompt, `\u`, s.Runner.Env.Getenv(EnvUser))
	prompt = strings.ReplaceAll(prompt, `\h`, s.Runner.Env.Getenv(EnvHostname))

	// ~ replaces $HOME only at a path boundary, so a sibling like
	// /home/anamaria is not shortened when HOME=/home/ana.
	pwd := s.Runner.Dir
	if home := s.Runner.Env.Getenv(EnvHome); home != "" {
		if pwd == home {
			pwd = "~"
		} else if strings.HasPrefix(pwd, home+"/") {
			pwd = "~" + strings.TrimPrefix(pwd, home)
		}
	}
	prompt = strings.ReplaceAll(prompt, `\w`, pwd)

	if s.Runner.Env.Getenv(EnvUser) == "root" {
		prompt = strings.ReplaceAll(prompt, `\$`, "#")
	} else {
		prompt = strings.ReplaceAll(prompt, `\$`, "$")
	}

	return prompt
}

// Eval parses and evaluates one line, reporting syntax errors on the
// runner's stderr with status 2. Blank lines keep the previous status.
func (s *Shell) Eval(ctx context.Context, line string) int {
	node, err := syntax.Parse(line)
	switch {
	case errors.Is(err, syntax.ErrEmpty):
		return s.LastStatus

	case err != nil:
		fmt.Fprintf(s.Runner.Stderr, "minish: syntax error: %v\n", err)
		s.Audit.Record(&logger.CommandRun{Line: line, Status: 2, Error: err.Error()})
		s.LastStatus = 2
		return s.LastStatus
	}

	status := s.Runner.Run(ctx, node)
	s.Audit.Record(&logger.CommandRun{Line: line, Status: status})
	s.LastStatus = status
	return status
}

// Run reads and evaluates lines until the input ends or an exit
// builtin runs, and returns the shell's final status.
func (s *Shell) Run(ctx context.Context) int {
	for {
		if s.Runner.Exiting() {
			return s.Runner.ExitCode()
		}

		s.Readline.SetPrompt(s.Prompt())
		line, err := s.Readline.Readline()

		switch {
		case err == io.EOF:
			return s.LastStatus // Input closed, quit.

		case err == readline.ErrInterrupt:
			if len(line) == 0 {
				return s.LastStatus // ^C on an empty line quits, like EOF.
			}
			continue // The interrupted line is dropped.

		case err != nil:
			fmt.Fprintf(s.Runner.Stderr, "minish: %v\n", err)
			return s.LastStatus

		case len(line) == 0:
			continue

		default:
			s.Eval(ctx, line)
		}
	}
}

// Close releases the line editor.
func (s *Shell) Close() error {
	if s.Readline == nil {
		return nil
	}
	return s.Readline.Close()
}
