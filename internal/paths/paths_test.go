package paths

import (
	"path/filepath"
	"runtime"
	"testing"

	"wasmkit/internal/config"
)

func TestResolveUsesFlag(t *testing.T) {
	root := t.TempDir()
	pp, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if pp.Root != root {
		t.Fatalf("expected root %s, got %s", root, pp.Root)
	}
	if pp.ConfigFile != filepath.Join(root, config.FileName) {
		t.Fatalf("unexpected config file %s", pp.ConfigFile)
	}
	if pp.OutDir != filepath.Join(root, "pkg") {
		t.Fatalf("unexpected out dir %s", pp.OutDir)
	}
}

func TestApplyConfigRelative(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root)

	cfg := config.Default()
	cfg.OutDir = "dist/wasm"

	applied := ApplyConfig(pp, cfg)
	expected := filepath.Join(root, "dist/wasm")
	if applied.OutDir != expected {
		t.Fatalf("expected out dir %s, got %s", expected, applied.OutDir)
	}
}

func TestApplyConfigAbsolute(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root)

	outAbs := filepath.Join(t.TempDir(), "out")
	cfg := config.Default()
	cfg.OutDir = outAbs

	applied := ApplyConfig(pp, cfg)
	if applied.OutDir != outAbs {
		t.Fatalf("expected out dir %s, got %s", outAbs, applied.OutDir)
	}
}

func TestDirFallsBackToOutDir(t *testing.T) {
	root := t.TempDir()
	pp := newProjectPaths(root)

	if got := pp.Dir(""); got != pp.OutDir {
		t.Fatalf("expected %s, got %s", pp.OutDir, got)
	}
	if got := pp.Dir("target"); got != filepath.Join(root, "target") {
		t.Fatalf("expected relative dir under root, got %s", got)
	}
}

func TestCacheRootOverride(t *testing.T) {
	dir := t.TempDir()
	got, err := CacheRoot(dir)
	if err != nil {
		t.Fatalf("CacheRoot: %v", err)
	}
	if got != dir {
		t.Fatalf("expected %s, got %s", dir, got)
	}
}

func TestCacheRootXDG(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("XDG_CACHE_HOME only applies on unix-like hosts")
	}
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	got, err := CacheRoot("")
	if err != nil {
		t.Fatalf("CacheRoot: %v", err)
	}
	if got != filepath.Join(xdg, "wasmkit") {
		t.Fatalf("unexpected cache root %s", got)
	}
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := DirExists(dir)
	if err != nil || !ok {
		t.Fatalf("expected dir to exist, got %v %v", ok, err)
	}
	ok, err = DirExists(filepath.Join(dir, "missing"))
	if err != nil || ok {
		t.Fatalf("expected missing dir, got %v %v", ok, err)
	}
}
