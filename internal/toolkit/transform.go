package toolkit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wasmkit/internal/tools"
)

const wasmExt = ".wasm"

// Optimize runs wasm-opt over every .wasm file directly inside dir, replacing
// each file in place. If wasm-opt is unavailable by policy or platform the
// step is skipped with a notice.
func (t *Toolkit) Optimize(ctx context.Context, dir string, args []string, installPermitted bool) error {
	bin, ok, err := t.find(ctx, tools.WasmOpt, installPermitted)
	if err != nil || !ok {
		return err
	}

	t.notify.Info("Optimizing wasm binaries with `%s`...", tools.WasmOpt)
	return t.eachWasm(dir, func(path string) error {
		tmp := tempSibling(path, tools.WasmOpt, wasmExt)
		cmdArgs := append([]string{path, "-o", tmp}, args...)
		return t.transform(ctx, tools.WasmOpt, bin, cmdArgs, tmp, path)
	})
}

// Disassemble runs wasm-dis over every .wasm file directly inside dir,
// writing a sibling .wat file for each.
func (t *Toolkit) Disassemble(ctx context.Context, dir string, args []string, installPermitted bool) error {
	bin, ok, err := t.find(ctx, tools.WasmDis, installPermitted)
	if err != nil || !ok {
		return err
	}

	t.notify.Info("Disassembling wasm binaries with `%s`...", tools.WasmDis)
	return t.eachWasm(dir, func(path string) error {
		dest := strings.TrimSuffix(path, wasmExt) + ".wat"
		tmp := tempSibling(path, tools.WasmDis, ".wat")
		cmdArgs := append([]string{path, "-o", tmp}, args...)
		return t.transform(ctx, tools.WasmDis, bin, cmdArgs, tmp, dest)
	})
}

// transform runs the tool writing to tmp and renames tmp over dest only after
// a zero exit status. On failure tmp is removed and dest is left untouched.
func (t *Toolkit) transform(ctx context.Context, tool tools.Tool, bin string, args []string, tmp, dest string) error {
	if err := t.run(ctx, tool, bin, args, ""); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%s: replace %s: %w", tool, dest, err)
	}
	t.log.Debug().Str("tool", tool.String()).Str("file", dest).Msg("transformed")
	return nil
}

// eachWasm calls fn for each regular .wasm file in dir, one at a time.
// Leftover temp outputs from interrupted runs are ignored.
func (t *Toolkit) eachWasm(dir string, fn func(path string) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) != wasmExt || isTempOutput(name) {
			continue
		}
		if err := fn(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// tempSibling returns "<stem>.<tool><ext>", e.g. app.wasm -> app.wasm-opt.wasm.
func tempSibling(path string, tool tools.Tool, ext string) string {
	base := strings.TrimSuffix(path, wasmExt)
	return base + "." + tool.String() + ext
}

// isTempOutput reports whether name is a wasm-opt temp sibling. Only that
// tool writes a temp file ending in .wasm; wasm-dis temps end in .wat.
func isTempOutput(name string) bool {
	return strings.HasSuffix(name, tempSibling("", tools.WasmOpt, wasmExt))
}
