package cli

import (
	"strings"

	"github.com/spf13/cobra"
)

var newTemplate string

func newNewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Scaffold a new crate from a template with cargo-generate",
		Args:  cobra.ExactArgs(1),
		RunE:  runNew,
	}
	cmd.Flags().StringVar(&newTemplate, "template", "", "Git URL of the project template (default: generator.template)")
	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	template := strings.TrimSpace(newTemplate)
	if template == "" {
		template = s.cfg.Generator.Template
	}
	return s.toolkit.Generate(cmd.Context(), s.paths.Root, template, args[0], s.installPermitted())
}
