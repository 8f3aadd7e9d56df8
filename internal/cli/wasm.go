package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"wasmkit/internal/paths"
)

func newOptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "opt [dir] [-- wasm-opt args...]",
		Short: "Optimize every .wasm file in a directory in place with wasm-opt",
		Long: "Runs wasm-opt over each .wasm file directly inside dir (default: the configured out_dir).\n" +
			"Arguments after -- replace the optimizer.args from wasmkit.yaml.",
		RunE: runOpt,
	}
}

func newDisCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dis [dir] [-- wasm-dis args...]",
		Short: "Write a .wat disassembly next to every .wasm file in a directory",
		RunE:  runDis,
	}
}

func runOpt(cmd *cobra.Command, args []string) error {
	dirArg, extra, err := splitDirArgs(cmd, args)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if !s.cfg.OptimizerEnabled() && extra == nil {
		s.notifier.Info("Skipping wasm-opt because optimizer.enabled is false")
		return nil
	}

	toolArgs := s.cfg.Optimizer.Args
	if extra != nil {
		toolArgs = extra
	}
	dir, err := existingDir(s.paths, dirArg)
	if err != nil {
		return err
	}
	return s.toolkit.Optimize(cmd.Context(), dir, toolArgs, s.installPermitted())
}

func runDis(cmd *cobra.Command, args []string) error {
	dirArg, extra, err := splitDirArgs(cmd, args)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	toolArgs := s.cfg.Disassembler.Args
	if extra != nil {
		toolArgs = extra
	}
	dir, err := existingDir(s.paths, dirArg)
	if err != nil {
		return err
	}
	return s.toolkit.Disassemble(cmd.Context(), dir, toolArgs, s.installPermitted())
}

// splitDirArgs separates the optional directory from pass-through tool
// arguments following "--". extra is nil when no "--" was given.
func splitDirArgs(cmd *cobra.Command, args []string) (string, []string, error) {
	positional := args
	var extra []string
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		positional = args[:at]
		extra = append([]string{}, args[at:]...)
	}
	if len(positional) > 1 {
		return "", nil, fmt.Errorf("expected at most one directory, got %d", len(positional))
	}
	dir := ""
	if len(positional) == 1 {
		dir = positional[0]
	}
	return dir, extra, nil
}

func existingDir(pp paths.ProjectPaths, arg string) (string, error) {
	dir := pp.Dir(arg)
	exists, err := paths.DirExists(dir)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", dir, err)
	}
	if !exists {
		return "", fmt.Errorf("directory does not exist: %s", dir)
	}
	return dir, nil
}
