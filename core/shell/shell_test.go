package shell

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreeapeiu/Mini-Shell/core/env"
	"github.com/andreeapeiu/Mini-Shell/core/interp"
	"github.com/andreeapeiu/Mini-Shell/core/logger"
)

func testRunner(environ ...string) (*interp.Runner, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	r := &interp.Runner{
		Env:    env.NewMapEnvFromEnvList(environ),
		Dir:    "/",
		Stdin:  strings.NewReader(""),
		Stdout: stdout,
		Stderr: stderr,
		FS:     afero.NewMemMapFs(),
	}
	return r, stdout, stderr
}

func TestPrompt(t *testing.T) {
	tests := []struct {
		name string
		env  []string
		dir  string
		want string
	}{
		{
			name: "default prompt",
			env:  []string{"USER=ana", "HOSTNAME=web1", "HOME=/home/ana"},
			dir:  "/home/ana/src",
			want: "ana@web1:~/src$ ",
		},
		{
			name: "home itself becomes tilde",
			env:  []string{"USER=ana", "HOSTNAME=web1", "HOME=/home/ana"},
			dir:  "/home/ana",
			want: "ana@web1:~$ ",
		},
		{
			name: "outside home stays absolute",
			env:  []string{"USER=ana", "HOSTNAME=web1", "HOME=/home/ana"},
			dir:  "/var/log",
			want: "ana@web1:/var/log$ ",
		},
		{
			name: "sibling of home stays absolute",
			env:  []string{"USER=ana", "HOSTNAME=web1", "HOME=/home/ana"},
			dir:  "/home/anamaria",
			want: "ana@web1:/home/anamaria$ ",
		},
		{
			name: "root home abbreviates only itself",
			env:  []string{"USER=guest", "HOSTNAME=web1", "HOME=/"},
			dir:  "/etc",
			want: "guest@web1:/etc$ ",
		},
		{
			name: "custom PS1",
			env:  []string{`PS1=\w> `},
			dir:  "/etc",
			want: "/etc> ",
		},
		{
			name: "root gets a hash terminator",
			env:  []string{"USER=root", "HOSTNAME=web1", "HOME=/root"},
			dir:  "/root",
			want: "root@web1:~# ",
		},
		{
			name: "unset variables expand empty",
			dir:  "/",
			want: "@:/$ ",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r, _, _ := testRunner(tc.env...)
			r.Dir = tc.dir
			s := &Shell{Runner: r}

			assert.Equal(t, tc.want, s.Prompt())
		})
	}
}

func TestEval(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		r, stdout, _ := testRunner()
		s := &Shell{Runner: r}

		assert.Equal(t, 0, s.Eval(ctx, "pwd"))
		assert.Equal(t, "/\n", stdout.String())
		assert.Equal(t, 0, s.LastStatus)
	})

	t.Run("failing command", func(t *testing.T) {
		r, _, _ := testRunner()
		s := &Shell{Runner: r}

		assert.Equal(t, 1, s.Eval(ctx, "cd /missing"))
		assert.Equal(t, 1, s.LastStatus)
	})

	t.Run("syntax error", func(t *testing.T) {
		r, _, stderr := testRunner()
		s := &Shell{Runner: r}

		assert.Equal(t, 2, s.Eval(ctx, "ls &&"))
		assert.Contains(t, stderr.String(), "minish: syntax error:")
		assert.Equal(t, 2, s.LastStatus)
	})

	t.Run("blank line keeps previous status", func(t *testing.T) {
		r, _, stderr := testRunner()
		s := &Shell{Runner: r, LastStatus: 7}

		assert.Equal(t, 7, s.Eval(ctx, "   "))
		assert.Empty(t, stderr.String())
	})
}

func TestEvalAudit(t *testing.T) {
	var entries []*logger.LogEntry
	log := &logger.Logger{Record: func(le *logger.LogEntry) error {
		entries = append(entries, le)
		return nil
	}}

	r, _, _ := testRunner()
	s := &Shell{Runner: r, Audit: log.NewSession()}

	ctx := context.Background()
	s.Eval(ctx, "pwd")
	s.Eval(ctx, "ls &&")
	s.Eval(ctx, "")

	require.Len(t, entries, 2, "blank lines are not audited")

	require.NotNil(t, entries[0].CommandRun)
	assert.Equal(t, "pwd", entries[0].CommandRun.Line)
	assert.Equal(t, 0, entries[0].CommandRun.Status)

	require.NotNil(t, entries[1].CommandRun)
	assert.Equal(t, "ls &&", entries[1].CommandRun.Line)
	assert.Equal(t, 2, entries[1].CommandRun.Status)
	assert.NotEmpty(t, entries[1].CommandRun.Error)
}

func TestRunReturnsOnEOF(t *testing.T) {
	r, _, _ := testRunner()
	s, err := New(r, &Options{
		IsTerminal:  func() bool { return false },
		WindowWidth: func() int { return 80 },
	})
	require.NoError(t, err)
	defer s.Close()

	assert.Equal(t, 0, s.Run(context.Background()))
}

func TestRunInterrupt(t *testing.T) {
	t.Run("empty line ends the loop", func(t *testing.T) {
		r, _, _ := testRunner()
		r.Stdin = strings.NewReader("\x03cd /missing\n")
		s, err := New(r, &Options{
			IsTerminal:  func() bool { return false },
			WindowWidth: func() int { return 80 },
		})
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, 0, s.Run(context.Background()))
		assert.Equal(t, 0, s.LastStatus, "nothing after the interrupt may run")
	})

	t.Run("partial line is dropped", func(t *testing.T) {
		r, stdout, stderr := testRunner()
		r.Stdin = strings.NewReader("cd /missing\x03pwd\n")
		s, err := New(r, &Options{
			IsTerminal:  func() bool { return false },
			WindowWidth: func() int { return 80 },
		})
		require.NoError(t, err)
		defer s.Close()

		assert.Equal(t, 0, s.Run(context.Background()))
		assert.NotContains(t, stderr.String(), "cd:", "the interrupted line may not run")
		assert.Contains(t, stdout.String(), "/\n", "the loop keeps going after a dropped line")
	})
}

func TestRunStopsAfterExit(t *testing.T) {
	r, _, _ := testRunner()
	s, err := New(r, &Options{
		IsTerminal:  func() bool { return false },
		WindowWidth: func() int { return 80 },
	})
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	assert.Equal(t, 0, s.Eval(ctx, "exit"))
	require.True(t, r.Exiting())

	// The loop must notice the latch before reading any input.
	assert.Equal(t, 0, s.Run(ctx))
}
