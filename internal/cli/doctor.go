package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"wasmkit/internal/config"
	"wasmkit/internal/paths"
	"wasmkit/internal/tools"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, platform support, and tool availability",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

type healthCheck struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Summary string `json:"summary"`
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	pp, err := paths.Resolve(projectDir)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, cfgErr := loadEffectiveConfig(ctx, pp)
	checks := []healthCheck{checkConfig(cfg, cfgErr)}
	checks = append(checks, checkPlatform(tools.CurrentPlatform()))
	if cfgErr != nil {
		return writeDoctorResult(cmd, pp.Root, checks)
	}

	s, err := openSession(cmd)
	if err != nil {
		checks = append(checks, healthCheck{Name: "Tools", Status: "error", Summary: err.Error()})
		return writeDoctorResult(cmd, pp.Root, checks)
	}
	defer s.Close()

	checks = append(checks, checkTools(tools.Detect(ctx, s.resolver)))

	entries, err := s.cache.Entries()
	if err != nil {
		checks = append(checks, healthCheck{Name: "Cache", Status: "warning", Summary: err.Error()})
	} else {
		checks = append(checks, healthCheck{
			Name:    "Cache",
			Status:  "ok",
			Summary: fmt.Sprintf("%d archives in %s", len(entries), s.cache.Dir()),
		})
	}

	return writeDoctorResult(cmd, pp.Root, checks)
}

// checkConfig reports the effective install policy, after environment and
// flag overrides.
func checkConfig(cfg config.Config, cfgErr error) healthCheck {
	if cfgErr != nil {
		return healthCheck{Name: "Config", Status: "error", Summary: cfgErr.Error()}
	}

	var warnings, errs int
	for _, v := range cfg.Validate() {
		switch v.Level {
		case "warning":
			warnings++
		case "error":
			errs++
		}
	}

	install := "downloads allowed"
	if !cfg.InstallPermitted() {
		install = "downloads disabled"
	}
	if errs > 0 {
		return healthCheck{Name: "Config", Status: "error", Summary: fmt.Sprintf("%s; %d errors", install, errs)}
	}
	if warnings > 0 {
		return healthCheck{Name: "Config", Status: "warning", Summary: fmt.Sprintf("%s; %d warnings", install, warnings)}
	}
	return healthCheck{Name: "Config", Status: "ok", Summary: install}
}

func checkPlatform(p tools.Platform, ok bool) healthCheck {
	if !ok {
		return healthCheck{
			Name:    "Platform",
			Status:  "warning",
			Summary: "no precompiled releases; tools must already be on PATH",
		}
	}
	return healthCheck{Name: "Platform", Status: "ok", Summary: p.Token()}
}

func checkTools(statuses []tools.Status) healthCheck {
	var found, total int
	var labels, missing []string
	for _, st := range statuses {
		total++
		if st.Error != "" {
			return healthCheck{Name: "Tools", Status: "error", Summary: st.Tool + ": " + st.Error}
		}
		if st.Outcome != tools.Found.String() {
			missing = append(missing, st.Tool)
			continue
		}
		found++
		label := st.Tool
		if st.Version != "" {
			label += " " + st.Version
		}
		labels = append(labels, label)
	}

	if found == total {
		return healthCheck{Name: "Tools", Status: "ok", Summary: strings.Join(labels, ", ")}
	}
	return healthCheck{
		Name:    "Tools",
		Status:  "warning",
		Summary: fmt.Sprintf("%d of %d available; missing %s", found, total, strings.Join(missing, ", ")),
	}
}

func writeDoctorResult(cmd *cobra.Command, projectRoot string, checks []healthCheck) error {
	if outputJSON {
		return writeJSON(cmd, checks)
	}

	bold := lipgloss.NewStyle().Bold(true).Inline(true)
	green := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Inline(true)
	yellow := lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Inline(true)
	red := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Inline(true)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, bold.Render("WASMKIT HEALTH:")+" "+projectRoot)

	for _, c := range checks {
		var statusStr string
		switch c.Status {
		case "ok":
			statusStr = green.Render("OK")
		case "warning":
			statusStr = yellow.Render("WARN")
		case "error":
			statusStr = red.Render("ERROR")
		}
		fmt.Fprintf(out, "  %-10s %s    %s\n", c.Name+":", statusStr, c.Summary)
	}
	return nil
}
