package cmd

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/andreeapeiu/Mini-Shell/core/config"
	"github.com/andreeapeiu/Mini-Shell/core/interp"
	"github.com/andreeapeiu/Mini-Shell/core/shell"
)

var (
	cfgPath     string
	commandLine string
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return cfg, err
}

// rootCmd represents the base command when called without any subcommands.
// Bare, it is the shell itself; no configuration is needed for that.
var rootCmd = &cobra.Command{
	Use:   "minish",
	Short: "A small POSIX style shell",
	Long: `minish is a small POSIX style shell: pipes, redirections, logical
and sequencing operators, environment expansion and a handful of
builtins. Run it bare for an interactive session, pass -c to evaluate
a single line, or use the serve subcommand to offer sessions over SSH.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		runner := interp.New()
		seedEnv(runner)

		if commandLine != "" {
			// exit/quit in a one-shot line is a hard process exit.
			runner.Exit = func(code int) { os.Exit(exitStatus(code)) }
			sh := &shell.Shell{Runner: runner}
			os.Exit(exitStatus(sh.Eval(cmd.Context(), commandLine)))
		}

		sh, err := shell.New(runner, nil)
		if err != nil {
			return err
		}

		status := sh.Run(cmd.Context())
		sh.Close() // Hands the terminal back before the process ends.
		os.Exit(exitStatus(status))
		return nil
	},
}

// seedEnv fills the gaps a login shell normally inherits: the hostname
// from the kernel, PATH and PS1 from the configuration when the host
// environment lacks them. The local shell runs fine without a config
// directory; the embedded defaults apply then.
func seedEnv(runner *interp.Runner) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		cfg = config.Default()
	}

	if _, ok := runner.Env.LookupEnv(shell.EnvHostname); !ok {
		host, err := os.Hostname()
		if err != nil || host == "" {
			host = cfg.Hostname
		}
		runner.Env.Setenv(shell.EnvHostname, host)
	}
	if _, ok := runner.Env.LookupEnv(shell.EnvPath); !ok {
		runner.Env.Setenv(shell.EnvPath, cfg.DefaultPath)
	}
	if _, ok := runner.Env.LookupEnv(shell.EnvPrompt); !ok && cfg.Prompt != "" {
		runner.Env.Setenv(shell.EnvPrompt, cfg.Prompt)
	}
}

// exitStatus clamps an evaluation outcome to something a process can
// exit with. Evaluator failures are reported as plain failure.
func exitStatus(status int) int {
	if status < 0 {
		return 1
	}
	return status
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "path to the server configuration directory")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "evaluate one line and exit")
}
