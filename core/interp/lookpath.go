package interp

import (
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNotFound is the error resulting if a path search failed to find an
// executable file.
var ErrNotFound = exec.ErrNotFound

func (r *Runner) findExecutable(file string) error {
	d, err := r.FS.Stat(r.absPath(file))
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// lookPath searches for an executable named file in the directories
// named by the RUNNER environment's PATH variable, never the host
// process's. If file contains a slash, it is tried directly and PATH
// is not consulted. Relative results resolve against the runner's
// working directory.
func (r *Runner) lookPath(file string) (string, error) {
	if strings.Contains(file, "/") {
		if err := r.findExecutable(file); err != nil {
			return "", err
		}
		return file, nil
	}

	for _, dir := range filepath.SplitList(r.Env.Getenv("PATH")) {
		if dir == "" {
			// Unix shell semantics: path element "" means "."
			dir = "."
		}
		path := filepath.Join(dir, file)
		if err := r.findExecutable(path); err == nil {
			return path, nil
		}
	}

	return "", ErrNotFound
}
