package tools

import "runtime"

func installHints(tool Tool, outcome Outcome) []string {
	var hints []string
	if outcome == CannotInstall {
		hints = append(hints, "Re-run without --no-install to download a precompiled release")
	}

	switch tool {
	case CargoGenerate:
		return append(hints, "Install cargo-generate with: cargo install cargo-generate")
	case WasmOpt, WasmDis:
	default:
		return hints
	}

	switch runtime.GOOS {
	case "darwin":
		hints = append(hints, "Install binaryen via Homebrew: brew install binaryen")
	case "linux":
		hints = append(hints, "Install binaryen with your distro package manager, e.g. sudo apt install binaryen")
	case "windows":
		hints = append(hints, "Install binaryen via Chocolatey: choco install binaryen")
	default:
		hints = append(hints, "Build binaryen from source: https://github.com/WebAssembly/binaryen")
	}
	return hints
}
