package toolkit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wasmkit/internal/tools"
)

// Generate scaffolds a new project named name from a git template by running
// cargo-generate in dir. Unlike the optional wasm steps, a missing
// cargo-generate is an error.
func (t *Toolkit) Generate(ctx context.Context, dir, template, name string, installPermitted bool) error {
	template = strings.TrimSpace(template)
	name = strings.TrimSpace(name)
	if template == "" {
		return errors.New("template must not be empty")
	}
	if name == "" {
		return errors.New("project name must not be empty")
	}

	bin, err := t.require(ctx, tools.CargoGenerate, installPermitted)
	if err != nil {
		return err
	}

	t.notify.Info("Generating a new project with name '%s'...", name)
	args := []string{"generate", "--git", template, "--name", name}
	if err := t.run(ctx, tools.CargoGenerate, bin, args, dir); err != nil {
		return fmt.Errorf("running %s: %w", tools.CargoGenerate, err)
	}
	return nil
}
