package interp

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/pborman/getopt/v2"
	"github.com/spf13/afero"
)

// Builtins holds all registered shell builtins by name. Builtins run
// in the shell process itself; everything else is an external command.
var Builtins = make(map[string]Builtin)

// Builtin is a command that runs inside the shell process.
type Builtin interface {
	Main(r *Runner, args []string) int
}

// BuiltinFunc adapts a function to the Builtin interface.
type BuiltinFunc func(r *Runner, args []string) int

func (f BuiltinFunc) Main(r *Runner, args []string) int {
	return f(r, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// BuiltinNames returns the registered builtin names, sorted.
func BuiltinNames() []string {
	names := make([]string, 0, len(Builtins))
	for name := range Builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EnvHome names the variable cd falls back to when run bare.
const EnvHome = "HOME"

// chdir validates dir against the runner's filesystem and updates Dir.
// On failure Dir is left unchanged.
func (r *Runner) chdir(dir string) error {
	if dir == "" {
		return fmt.Errorf("%s: No such file or directory", dir)
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Clean(filepath.Join(r.Dir, dir))
	}

	stat, err := r.FS.Stat(dir)
	switch {
	case err != nil:
		return fmt.Errorf("%s: No such file or directory", dir)
	case !stat.IsDir():
		return fmt.Errorf("%s: Not a directory", dir)
	default:
		r.Dir = dir
		return nil
	}
}

// Cd is the cd shell builtin. A missing or empty target falls back to
// $HOME.
func Cd(r *Runner, args []string) int {
	if len(args) > 2 {
		fmt.Fprintf(r.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}

	var target string
	if len(args) == 2 && args[1] != "" {
		target = args[1]
	} else {
		home, ok := r.Env.LookupEnv(EnvHome)
		if !ok {
			fmt.Fprintf(r.Stderr, "%s: HOME not set\n", args[0])
			return 1
		}
		target = home
	}

	if err := r.chdir(target); err != nil {
		fmt.Fprintf(r.Stderr, "%s: %v\n", args[0], err)
		return 1
	}
	return 0
}

// Pwd is the pwd shell builtin.
func Pwd(r *Runner, args []string) int {
	opts := getopt.New()
	logical := opts.Bool('L', "print the logical working directory")
	physical := opts.Bool('P', "print the physical directory, resolving symlinks")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := r.Stderr
		if err != nil {
			fmt.Fprintln(w, err)
		}
		fmt.Fprintln(w, "usage: pwd [-LP]")
		fmt.Fprintln(w, "Print the name of the current working directory.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Options:")
		opts.PrintOptions(w)
		return 1
	}

	dir := r.Dir
	if dir == "" {
		fmt.Fprintf(r.Stderr, "%s: current directory is not set\n", args[0])
		return 1
	}

	if *physical && !*logical {
		// EvalSymlinks walks the host filesystem, so its answer only
		// matches a runner that is actually on it.
		if _, ok := r.FS.(*afero.OsFs); ok {
			if resolved, err := filepath.EvalSymlinks(dir); err == nil {
				dir = resolved
			}
		}
	}

	fmt.Fprintln(r.Stdout, dir)
	return 0
}

// Exit terminates the shell with status 0. Both the exit and quit
// verbs dispatch here; the status of whatever ran before is ignored.
func Exit(r *Runner, args []string) int {
	r.exit(0)
	return 0
}

func init() {
	Builtins["cd"] = BuiltinFunc(Cd)
	Builtins["pwd"] = BuiltinFunc(Pwd)
	Builtins["exit"] = BuiltinFunc(Exit)
	Builtins["quit"] = BuiltinFunc(Exit)
}
