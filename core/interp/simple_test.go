package interp_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreeapeiu/Mini-Shell/core/interp"
	"github.com/andreeapeiu/Mini-Shell/core/interp/interptest"
)

func TestAssignment(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		env   []string
		key   string
		value string
	}{
		{
			name:  "plain",
			line:  `A=1`,
			key:   "A",
			value: "1",
		},
		{
			name:  "splits on first equals only",
			line:  `A=B=C`,
			key:   "A",
			value: "B=C",
		},
		{
			name:  "empty value",
			line:  `A=`,
			key:   "A",
			value: "",
		},
		{
			name:  "value is expanded",
			line:  `DOCS=$HOME/docs`,
			env:   []string{"HOME=/home/ana"},
			key:   "DOCS",
			value: "/home/ana/docs",
		},
		{
			name:  "quotes are stripped from the value",
			line:  `MSG="hello world"`,
			key:   "MSG",
			value: "hello world",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := interptest.Command(tc.line)
			cmd.Env = tc.env
			require.NoError(t, cmd.Run())

			assert.Equal(t, 0, cmd.ExitStatus)
			assert.Equal(t, tc.value, cmd.Runner.Env.Getenv(tc.key))
		})
	}
}

func TestAssignmentEmptyName(t *testing.T) {
	stderr := &bytes.Buffer{}
	cmd := interptest.Command(`=oops`)
	cmd.Stdout = &bytes.Buffer{}
	cmd.Stderr = stderr
	require.NoError(t, cmd.Run())

	assert.Equal(t, 1, cmd.ExitStatus)
	assert.Contains(t, stderr.String(), "minish:")
}

func TestAssignmentVisibleToLaterCommands(t *testing.T) {
	cmd := interptest.Command(`WHERE=/srv; cd $WHERE && pwd`)
	cmd.Setup = func(r *interp.Runner) error {
		return r.FS.MkdirAll("/srv", 0755)
	}
	out, err := cmd.CombinedOutput()
	require.NoError(t, err)

	assert.Equal(t, 0, cmd.ExitStatus)
	assert.Equal(t, "/srv\n", string(out))
}

func TestEmptyVerbIsEvaluatorFailure(t *testing.T) {
	stderr := &bytes.Buffer{}
	cmd := interptest.Command(`$NO_SUCH_VARIABLE`)
	cmd.Stdout = &bytes.Buffer{}
	cmd.Stderr = stderr
	require.NoError(t, cmd.Run())

	assert.Equal(t, interp.EvalFailure, cmd.ExitStatus)
	assert.Contains(t, stderr.String(), "minish:")
}

func TestVerbIsNormalizedBeforeDispatch(t *testing.T) {
	// A quoted or variable-built verb still reaches the builtin table.
	tests := []struct {
		name string
		line string
		env  []string
	}{
		{name: "quoted builtin", line: `"pwd"`},
		{name: "verb from variable", line: `$CMD`, env: []string{"CMD=pwd"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stdout := &bytes.Buffer{}
			cmd := interptest.Command(tc.line)
			cmd.Env = tc.env
			cmd.Stdout = stdout
			cmd.Stderr = &bytes.Buffer{}
			require.NoError(t, cmd.Run())

			assert.Equal(t, 0, cmd.ExitStatus)
			assert.Equal(t, "/\n", stdout.String())
		})
	}
}

func TestArgumentsAreNormalized(t *testing.T) {
	cmd := interptest.Command(`cd "$TARGET"`)
	cmd.Env = []string{"TARGET=/var/log"}
	cmd.Setup = func(r *interp.Runner) error {
		return r.FS.MkdirAll("/var/log", 0755)
	}
	require.NoError(t, cmd.Run())

	assert.Equal(t, 0, cmd.ExitStatus)
	assert.Equal(t, "/var/log", cmd.Runner.Dir)
}

func TestQuitIsExit(t *testing.T) {
	for _, verb := range []string{"exit", "quit"} {
		t.Run(verb, func(t *testing.T) {
			cmd := interptest.Command(verb)
			require.NoError(t, cmd.Run())

			assert.Equal(t, 0, cmd.ExitStatus)
			assert.True(t, cmd.Runner.Exiting())
			assert.Equal(t, 0, cmd.Runner.ExitCode())
		})
	}
}

func TestUnknownCommandOnVirtualFS(t *testing.T) {
	// No PATH entries exist on the in-memory filesystem, so lookup
	// fails before any process is started.
	stderr := &bytes.Buffer{}
	cmd := interptest.Command(`netstat -t`)
	cmd.Stdout = &bytes.Buffer{}
	cmd.Stderr = stderr
	require.NoError(t, cmd.Run())

	assert.Equal(t, 1, cmd.ExitStatus)
	assert.Equal(t, "Execution failed for 'netstat'\n", stderr.String())
}
