package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"wasmkit/internal/config"
	"wasmkit/internal/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or edit wasmkit.yaml",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration, including environment overrides",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a default wasmkit.yaml into the project directory",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "edit",
		Short: "Open wasmkit.yaml in $EDITOR",
		Args:  cobra.NoArgs,
		RunE:  runConfigEdit,
	})
	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	cfg, err := loadEffectiveConfig(ctx, pp)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, cfg)
	}

	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))
	for _, v := range cfg.Validate() {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", v.Level, v.Message)
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	created, err := writeDefaultConfig(pp)
	if err != nil {
		return err
	}
	if !created {
		fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", pp.ConfigFile)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", pp.ConfigFile)
	return nil
}

func runConfigEdit(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}
	if _, err := writeDefaultConfig(pp); err != nil {
		return err
	}

	editor := strings.Fields(os.Getenv("EDITOR"))
	if len(editor) == 0 {
		editor = []string{"vi"}
	}
	editor = append(editor, pp.ConfigFile)

	execCmd := exec.CommandContext(ctx, editor[0], editor[1:]...)
	execCmd.Stdin = cmd.InOrStdin()
	execCmd.Stdout = cmd.OutOrStdout()
	execCmd.Stderr = cmd.ErrOrStderr()
	execCmd.Dir = pp.Root
	if err := execCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	cfg, err := config.Load(pp.ConfigFile)
	if err != nil {
		return err
	}
	return config.Errors(cfg.Validate())
}

// writeDefaultConfig creates wasmkit.yaml when it is missing. It reports
// whether a file was written.
func writeDefaultConfig(pp paths.ProjectPaths) (bool, error) {
	if _, err := os.Stat(pp.ConfigFile); err == nil {
		return false, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("stat config: %w", err)
	}

	exists, err := paths.DirExists(pp.Root)
	if err != nil {
		return false, fmt.Errorf("stat project dir: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("project directory does not exist: %s", pp.Root)
	}

	data, err := config.Default().Marshal()
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(pp.ConfigFile, data, 0o644); err != nil {
		return false, fmt.Errorf("write default config: %w", err)
	}
	return true, nil
}
