package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"wasmkit/internal/tools"
)

const fakeWasmOpt = `#!/bin/sh
if [ "$1" = "--version" ]; then echo "wasm-opt version 78"; exit 0; fi
cat "$1" > "$3" && printf 'optimized' >> "$3"
`

// runCLI executes the root command with fresh flag state and an isolated
// cache directory, returning stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	projectDir, outputJSON, logLevel, noInstall = "", false, "", false
	listCached, installNoTUI, newTemplate = false, false, ""

	t.Setenv("WASMKIT_CACHE_DIR", filepath.Join(t.TempDir(), "cache"))
	t.Setenv("WASMKIT_LOG_LEVEL", "error")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// fakePath points PATH at a fresh directory holding the given scripts.
func fakePath(t *testing.T, scripts map[string]string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes require a POSIX shell")
	}
	dir := t.TempDir()
	for name, body := range scripts {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	sysPath := "/bin:/usr/bin"
	t.Setenv("PATH", dir+string(os.PathListSeparator)+sysPath)
	return dir
}

func TestToolsPathFindsExecutableOnPATH(t *testing.T) {
	dir := fakePath(t, map[string]string{"wasm-opt": fakeWasmOpt})

	out, _, err := runCLI(t, "--project", t.TempDir(), "--no-install", "tools", "path", "wasm-opt")
	if err != nil {
		t.Fatalf("tools path: %v", err)
	}
	if got := strings.TrimSpace(out); got != filepath.Join(dir, "wasm-opt") {
		t.Fatalf("got %q, want %q", got, filepath.Join(dir, "wasm-opt"))
	}
}

func TestToolsPathNoInstallReportsCannotInstall(t *testing.T) {
	fakePath(t, nil)

	out, _, err := runCLI(t, "--project", t.TempDir(), "--no-install", "--json", "tools", "path", "cargo-generate")
	if err != nil {
		t.Fatalf("tools path --json: %v", err)
	}
	var payload struct {
		Outcome string `json:"outcome"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if _, supported := tools.CurrentPlatform(); supported && payload.Outcome != "cannot-install" {
		t.Fatalf("got outcome %q, want cannot-install", payload.Outcome)
	}
	if payload.Path != "" {
		t.Fatalf("expected no path, got %q", payload.Path)
	}
}

func TestToolsPathUnknownTool(t *testing.T) {
	_, _, err := runCLI(t, "tools", "path", "wasm-ld")
	if err == nil || !strings.Contains(err.Error(), "unknown tool") {
		t.Fatalf("expected unknown tool error, got %v", err)
	}
}

func TestToolsListJSON(t *testing.T) {
	fakePath(t, map[string]string{"wasm-opt": fakeWasmOpt})

	out, _, err := runCLI(t, "--project", t.TempDir(), "--json", "tools", "list")
	if err != nil {
		t.Fatalf("tools list: %v", err)
	}
	var statuses []tools.Status
	if err := json.Unmarshal([]byte(out), &statuses); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(statuses) != len(tools.KnownTools()) {
		t.Fatalf("got %d statuses, want %d", len(statuses), len(tools.KnownTools()))
	}
	byName := map[string]tools.Status{}
	for _, st := range statuses {
		byName[st.Tool] = st
	}
	opt := byName["wasm-opt"]
	if opt.Outcome != "found" || opt.Source != tools.SourceSystem || opt.Version != "78" {
		t.Fatalf("unexpected wasm-opt status %+v", opt)
	}
	if byName["cargo-generate"].Outcome == "found" {
		t.Fatalf("cargo-generate should not be found: %+v", byName["cargo-generate"])
	}
}

func TestToolsListCachedEmpty(t *testing.T) {
	fakePath(t, nil)

	out, _, err := runCLI(t, "--project", t.TempDir(), "tools", "list", "--cached")
	if err != nil {
		t.Fatalf("tools list --cached: %v", err)
	}
	if !strings.Contains(out, "No cached tools") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOptRewritesWasmInPlace(t *testing.T) {
	fakePath(t, map[string]string{"wasm-opt": fakeWasmOpt})

	project := t.TempDir()
	out := filepath.Join(project, "pkg")
	if err := os.Mkdir(out, 0o755); err != nil {
		t.Fatal(err)
	}
	wasm := filepath.Join(out, "app_bg.wasm")
	js := filepath.Join(out, "app.js")
	if err := os.WriteFile(wasm, []byte("module:"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(js, []byte("export {}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, stderr, err := runCLI(t, "--project", project, "--no-install", "opt"); err != nil {
		t.Fatalf("opt: %v (stderr %q)", err, stderr)
	}

	data, err := os.ReadFile(wasm)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "module:optimized" {
		t.Fatalf("wasm contents = %q", data)
	}
	jsData, _ := os.ReadFile(js)
	if string(jsData) != "export {}" {
		t.Fatalf("non-wasm file modified: %q", jsData)
	}
	if _, err := os.Stat(filepath.Join(out, "app_bg.wasm-opt.wasm")); !os.IsNotExist(err) {
		t.Fatalf("temp output left behind: %v", err)
	}
}

func TestOptSkipsWhenToolUnavailable(t *testing.T) {
	fakePath(t, nil)

	project := t.TempDir()
	wasm := filepath.Join(project, "app.wasm")
	if err := os.WriteFile(wasm, []byte("module"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, "--project", project, "--no-install", "opt", ".")
	if err != nil {
		t.Fatalf("opt: %v", err)
	}
	if !strings.Contains(stderr, "Skipping wasm-opt") {
		t.Fatalf("expected skip notice, got %q", stderr)
	}
	data, _ := os.ReadFile(wasm)
	if string(data) != "module" {
		t.Fatalf("wasm modified: %q", data)
	}
}

func TestOptMissingDirectory(t *testing.T) {
	fakePath(t, map[string]string{"wasm-opt": fakeWasmOpt})

	_, _, err := runCLI(t, "--project", t.TempDir(), "opt", "missing")
	if err == nil || !strings.Contains(err.Error(), "directory does not exist") {
		t.Fatalf("expected missing dir error, got %v", err)
	}
}

func TestNewRequiresCargoGenerate(t *testing.T) {
	fakePath(t, nil)

	_, _, err := runCLI(t, "--project", t.TempDir(), "--no-install", "new", "hello")
	if err == nil {
		t.Fatal("expected error when cargo-generate is unavailable")
	}
}

func TestSplitDirArgs(t *testing.T) {
	cmd := newOptCmd()
	if err := cmd.ParseFlags([]string{"pkg", "--", "-O3", "--strip-debug"}); err != nil {
		t.Fatal(err)
	}
	dir, extra, err := splitDirArgs(cmd, cmd.Flags().Args())
	if err != nil {
		t.Fatal(err)
	}
	if dir != "pkg" {
		t.Fatalf("dir = %q", dir)
	}
	if strings.Join(extra, " ") != "-O3 --strip-debug" {
		t.Fatalf("extra = %v", extra)
	}

	cmd = newOptCmd()
	if err := cmd.ParseFlags([]string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	if _, _, err := splitDirArgs(cmd, cmd.Flags().Args()); err == nil {
		t.Fatal("expected error for two directories")
	}
}

func TestConfigInitWritesDefaults(t *testing.T) {
	project := t.TempDir()

	out, _, err := runCLI(t, "--project", project, "config", "init")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Created") {
		t.Fatalf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(project, "wasmkit.yaml")); err != nil {
		t.Fatalf("config not written: %v", err)
	}

	out, _, err = runCLI(t, "--project", project, "config", "init")
	if err != nil {
		t.Fatalf("second config init: %v", err)
	}
	if !strings.Contains(out, "already exists") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestConfigShowAppliesNoInstallFlag(t *testing.T) {
	out, _, err := runCLI(t, "--project", t.TempDir(), "--no-install", "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "install: false") {
		t.Fatalf("expected install: false in %q", out)
	}
}

func TestConfigWarningsGoThroughNotifier(t *testing.T) {
	fakePath(t, nil)
	dir := t.TempDir()
	cfg := "generator:\n  template: wasm-pack-template\n"
	if err := os.WriteFile(filepath.Join(dir, "wasmkit.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, "--project", dir, "--no-install", "--json", "tools", "list")
	if err != nil {
		t.Fatalf("tools list: %v", err)
	}
	if !strings.Contains(stderr, `[WARN] generator.template "wasm-pack-template" is not an absolute URL`) {
		t.Fatalf("expected warning line in %q", stderr)
	}
}

func TestToolsInstallStopsWhenWindowExpires(t *testing.T) {
	fakePath(t, nil)
	old := installWindow
	installWindow = 0
	defer func() { installWindow = old }()

	out, _, err := runCLI(t, "--project", t.TempDir(), "tools", "install", "wasm-opt")
	if err == nil || !strings.Contains(err.Error(), "tools install stopped before wasm-opt") {
		t.Fatalf("expected stopped install, got %v", err)
	}
	if !strings.Contains(out, "(no tool statuses)") {
		t.Fatalf("unexpected output %q", out)
	}
}
