package tools

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// LookPath searches PATH for the named executable. A missing executable is
// reported as ("", false, nil); any other lookup failure is returned. A match
// reached only through a relative PATH entry such as "." counts as missing.
func LookPath(name string) (string, bool, error) {
	if strings.TrimSpace(name) == "" {
		return "", false, errors.New("executable name must not be empty")
	}
	if strings.ContainsAny(name, `/\`) {
		return "", false, fmt.Errorf("executable name must not contain path separators: %q", name)
	}

	path, err := exec.LookPath(executableName(name))
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, exec.ErrDot) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("search PATH for %s: %w", name, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, fmt.Errorf("resolve %s: %w", path, err)
	}
	return abs, true, nil
}
