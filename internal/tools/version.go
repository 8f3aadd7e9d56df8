package tools

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"wasmkit/internal/child"
)

// readVersion runs the tool's version switch under the C locale and parses the
// first line of stdout.
func readVersion(ctx context.Context, runner child.Runner, def Definition, path string) (string, error) {
	if def.VersionSwitch == "" {
		return "", nil
	}
	res, err := runner.Run(ctx, child.Command{
		Path: path,
		Args: []string{def.VersionSwitch},
		Env:  []string{"LC_ALL=C"},
	}, def.Name)
	if err != nil {
		return "", fmt.Errorf("%s version: %w", def.Name, err)
	}
	return normalizeVersionLine(firstLine(strings.TrimSpace(string(res.Stdout)))), nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return text[:idx]
	}
	return text
}

var versionRegex = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)*`)

// normalizeVersionLine extracts the version number from lines such as
// "wasm-opt version 78" or "cargo-generate 0.5.0".
func normalizeVersionLine(line string) string {
	match := versionRegex.FindString(line)
	if match == "" {
		return line
	}
	return match
}
