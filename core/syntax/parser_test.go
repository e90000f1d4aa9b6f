package syntax

import (
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
		goldie.WithTestNameForDir(true),
	)

	cases := map[string]string{
		"simple":            `echo hello world`,
		"sequence":          `echo a; echo b`,
		"and_or_chain":      `true && echo yes || echo no`,
		"pipeline":          `cat f.txt | grep x | wc -l`,
		"precedence":        `a | b && c & d; e`,
		"redirections":      `sort <in.txt >out.txt 2>>err.log`,
		"combined_redirect": `make &>> build.log`,
		"quoted_word":       `echo "a; b" 'c|d'`,
		"stderr_vs_word":    `echo a2>f 2>g`,
		"assignment":        `PATH=/usr/bin:/bin`,
		"parallel":          `fetch a & fetch b`,
		"trailing_semi":     `echo done;`,
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			node, err := Parse(line)
			require.NoError(t, err)

			g.Assert(t, name, []byte(Dump(node)))
		})
	}
}

func TestParseErrors(t *testing.T) {
	cases := map[string]struct {
		line    string
		wantErr string
	}{
		"trailing and":        {`a &&`, `missing command after "&&"`},
		"trailing or":         {`a ||`, `missing command after "||"`},
		"trailing amp":        {`a &`, `missing command after "&"`},
		"trailing pipe":       {`a |`, `missing command after "|"`},
		"leading pipe":        {`| a`, "missing command"},
		"double semi":         {`a ; ; b`, "missing command"},
		"missing out target":  {`echo >`, `missing redirection target after ">"`},
		"missing in target":   {`wc < | x`, `missing redirection target after "<"`},
		"missing err target":  {`x 2>> && y`, `missing redirection target after "2>>"`},
		"unterminated quote":  {`echo "unclosed`, ""},
		"only operator":       {`&&`, "missing command"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(tc.line)
			require.Error(t, err)
			if tc.wantErr != "" {
				assert.Contains(t, err.Error(), tc.wantErr)
			}
		})
	}
}

func TestParseEmpty(t *testing.T) {
	for _, line := range []string{"", "   ", "\t"} {
		_, err := Parse(line)
		assert.ErrorIs(t, err, ErrEmpty, "line %q", line)
	}
}

func TestParseCombinedEqualsExplicit(t *testing.T) {
	combined, err := Parse(`x &> f`)
	require.NoError(t, err)
	explicit, err := Parse(`x > f 2> f`)
	require.NoError(t, err)

	assert.Equal(t, Dump(explicit), Dump(combined))
}

func TestParseKeepsQuotes(t *testing.T) {
	node, err := Parse(`echo "$HOME"`)
	require.NoError(t, err)

	cmd, ok := node.(*SimpleCommand)
	require.True(t, ok)
	assert.Equal(t, []string{`"$HOME"`}, cmd.Args)
}
