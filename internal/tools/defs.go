package tools

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrUnknownTool is returned when a tool name does not match any known tool.
var ErrUnknownTool = errors.New("unknown tool")

var binaryenBinaries = []string{"wasm-opt", "wasm-dis"}

var toolDefinitions = map[Tool]Definition{
	CargoGenerate: {
		Tool:          CargoGenerate,
		Name:          "cargo-generate",
		Host:          "github.com",
		Org:           "cargo-generate",
		Project:       "cargo-generate",
		Version:       "v0.5.0",
		VersionSwitch: "--version",
		Binaries:      []string{"cargo-generate"},
		Tokens: map[Platform]string{
			LinuxX86_64:   "x86_64-unknown-linux-musl",
			DarwinX86_64:  "x86_64-apple-darwin",
			WindowsX86_64: "x86_64-pc-windows-msvc",
		},
	},
	WasmOpt: {
		Tool:          WasmOpt,
		Name:          "wasm-opt",
		Host:          "github.com",
		Org:           "WebAssembly",
		Project:       "binaryen",
		Version:       "version_78",
		VersionSwitch: "--version",
		Binaries:      binaryenBinaries,
	},
	WasmDis: {
		Tool:          WasmDis,
		Name:          "wasm-dis",
		Host:          "github.com",
		Org:           "WebAssembly",
		Project:       "binaryen",
		Version:       "version_78",
		VersionSwitch: "--version",
		Binaries:      binaryenBinaries,
	},
}

// String returns the canonical executable name.
func (t Tool) String() string {
	if def, ok := toolDefinitions[t]; ok {
		return def.Name
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// Definition returns the fixed metadata for t.
func (t Tool) Definition() (Definition, error) {
	def, ok := toolDefinitions[t]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %d", ErrUnknownTool, int(t))
	}
	return def, nil
}

// KnownTools returns every managed tool in declaration order.
func KnownTools() []Tool {
	return []Tool{CargoGenerate, WasmOpt, WasmDis}
}

// ParseTool maps a canonical executable name back to its Tool.
func ParseTool(name string) (Tool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, tool := range KnownTools() {
		if toolDefinitions[tool].Name == name {
			return tool, nil
		}
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownTool, name)
}

func executableName(base string) string {
	if runtime.GOOS == "windows" {
		return base + ".exe"
	}
	return base
}
