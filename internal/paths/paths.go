package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"wasmkit/internal/config"
)

// ProjectPaths captures canonical locations for a wasmkit project.
type ProjectPaths struct {
	Root       string
	ConfigFile string
	OutDir     string
}

// Resolve determines the project root using the optional --project flag or the
// current working directory when the flag is empty.
func Resolve(projectFlag string) (ProjectPaths, error) {
	var (
		root string
		err  error
	)

	if projectFlag != "" {
		root, err = filepath.Abs(projectFlag)
	} else {
		root, err = os.Getwd()
	}
	if err != nil {
		return ProjectPaths{}, fmt.Errorf("resolve project root: %w", err)
	}

	return newProjectPaths(root), nil
}

func newProjectPaths(root string) ProjectPaths {
	return ProjectPaths{
		Root:       root,
		ConfigFile: filepath.Join(root, config.FileName),
		OutDir:     filepath.Join(root, "pkg"),
	}
}

// ApplyConfig points OutDir at the configured output directory.
func ApplyConfig(pp ProjectPaths, cfg config.Config) ProjectPaths {
	if out := strings.TrimSpace(cfg.OutDir); out != "" {
		pp.OutDir = resolveProjectPath(pp.Root, out)
	}
	return pp
}

// Dir resolves a user-supplied directory argument against the project root,
// falling back to OutDir when arg is empty.
func (p ProjectPaths) Dir(arg string) string {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return p.OutDir
	}
	return resolveProjectPath(p.Root, arg)
}

func resolveProjectPath(root, value string) string {
	if filepath.IsAbs(value) {
		return filepath.Clean(value)
	}
	return filepath.Join(root, value)
}

// CacheRoot determines the per-user tool cache directory. A non-empty override
// (from config or WASMKIT_CACHE_DIR) wins.
func CacheRoot(override string) (string, error) {
	if override = strings.TrimSpace(override); override != "" {
		abs, err := filepath.Abs(override)
		if err != nil {
			return "", fmt.Errorf("resolve cache dir: %w", err)
		}
		return abs, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("detect user home: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "wasmkit"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "wasmkit", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "wasmkit", "cache"), nil
	default:
		if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
			return filepath.Join(xdg, "wasmkit"), nil
		}
		return filepath.Join(home, ".cache", "wasmkit"), nil
	}
}

// LogsDir returns the directory run logs are written to under the cache root.
func LogsDir(cacheRoot string) string {
	return filepath.Join(cacheRoot, "logs")
}

// DirExists reports whether a path exists and is a directory.
func DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}
