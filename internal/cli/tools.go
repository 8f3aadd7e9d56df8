package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"wasmkit/internal/binarycache"
	"wasmkit/internal/tools"
	"wasmkit/internal/tui"
)

var (
	listCached    bool
	installNoTUI  bool
	installWindow = 10 * time.Minute
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage external tools",
	}

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsInstallCmd())
	cmd.AddCommand(newToolsPathCmd())

	return cmd
}

func newToolsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List resolved tool statuses without installing anything",
		Args:  cobra.NoArgs,
		RunE:  runToolsList,
	}
	cmd.Flags().BoolVar(&listCached, "cached", false, "List downloaded release archives instead")
	return cmd
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if listCached {
		entries, err := s.cache.Entries()
		if err != nil {
			return err
		}
		return writeCacheEntries(cmd, s.cache.Dir(), entries)
	}

	statuses := tools.Detect(cmd.Context(), s.resolver)
	return writeStatuses(cmd, statuses)
}

func newToolsInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [tool|all]",
		Short: "Download managed tools that are not already available",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runToolsInstall,
	}
	cmd.Flags().BoolVar(&installNoTUI, "no-progress", false, "Disable the interactive progress table")
	return cmd
}

func runToolsInstall(cmd *cobra.Command, args []string) error {
	target := "all"
	if len(args) == 1 {
		target = strings.ToLower(strings.TrimSpace(args[0]))
	}
	selected, err := selectTools(target)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), installWindow)
	defer cancel()

	permitted := s.installPermitted()
	install := func(report func(tools.Tool, bool), done func(tools.Status)) ([]tools.Status, error) {
		statuses := make([]tools.Status, 0, len(selected))
		for _, tool := range selected {
			if err := ctx.Err(); err != nil {
				return statuses, fmt.Errorf("tools install stopped before %s: %w", tool, err)
			}
			report(tool, permitted)
			st := tools.Inspect(ctx, s.resolver, tool, permitted)
			done(st)
			statuses = append(statuses, st)
		}
		return statuses, nil
	}

	var statuses []tools.Status
	switch tui.DetectMode(cmd.OutOrStdout(), installNoTUI, outputJSON) {
	case tui.ModeTUI:
		// The table owns the terminal; route notices and download progress to
		// the run log instead.
		s.notifier = tui.NewNotifier(io.Discard)
		if s.status != nil {
			s.status.Stop()
			s.status = nil
		}
		model := tui.NewToolModel("Installing tools", selected)
		err = tui.RunWithWork(cmd.OutOrStdout(), model, func(send func(tea.Msg)) {
			reporter := tui.NewToolReporter(send)
			var installErr error
			statuses, installErr = install(reporter.Start, reporter.Complete)
			if installErr != nil {
				reporter.Abort(installErr)
			}
		})
		if err != nil {
			return err
		}
	default:
		var installErr error
		statuses, installErr = install(func(tools.Tool, bool) {}, func(tools.Status) {})
		if err := writeStatuses(cmd, statuses); err != nil {
			return err
		}
		if installErr != nil {
			return installErr
		}
	}

	return statusErrors(statuses)
}

func newToolsPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path <tool>",
		Short: "Print the resolved executable path for a tool",
		Args:  cobra.ExactArgs(1),
		RunE:  runToolsPath,
	}
}

func runToolsPath(cmd *cobra.Command, args []string) error {
	tool, err := tools.ParseTool(args[0])
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	res, err := s.resolver.Resolve(cmd.Context(), tool, s.installPermitted())
	if err != nil {
		return err
	}

	if outputJSON {
		payload := struct {
			Tool    string       `json:"tool"`
			Outcome string       `json:"outcome"`
			Source  tools.Source `json:"source,omitempty"`
			Path    string       `json:"path,omitempty"`
		}{tool.String(), res.Outcome.String(), res.Source, res.Path}
		return writeJSON(cmd, payload)
	}

	switch res.Outcome {
	case tools.Found:
		fmt.Fprintln(cmd.OutOrStdout(), res.Path)
		return nil
	case tools.PlatformNotSupported:
		return fmt.Errorf("%s: no precompiled release for this platform", tool)
	default:
		return fmt.Errorf("%s: not installed (run `wasmkit tools install %s`)", tool, tool)
	}
}

func selectTools(target string) ([]tools.Tool, error) {
	if target == "" || target == "all" {
		return tools.KnownTools(), nil
	}
	tool, err := tools.ParseTool(target)
	if err != nil {
		return nil, err
	}
	return []tools.Tool{tool}, nil
}

func statusErrors(statuses []tools.Status) error {
	var errs []error
	for _, st := range statuses {
		if st.Error != "" {
			errs = append(errs, errors.New(st.Error))
		}
	}
	return errors.Join(errs...)
}

func writeStatuses(cmd *cobra.Command, statuses []tools.Status) error {
	if outputJSON {
		return writeJSON(cmd, statuses)
	}
	printStatusTable(cmd.OutOrStdout(), statuses)
	return nil
}

func printStatusTable(out io.Writer, statuses []tools.Status) {
	if len(statuses) == 0 {
		fmt.Fprintln(out, "(no tool statuses)")
		return
	}

	faint := lipgloss.NewStyle().Faint(true)
	fmt.Fprintf(out, "%-16s %-24s %-10s %-9s %s\n", tui.ColTool, tui.ColStatus, tui.ColVersion, tui.ColSource, tui.ColPath)
	for _, st := range statuses {
		fields := tui.StatusFields(st)
		status := fields[tui.ColStatus]
		fmt.Fprintf(out, "%-16s %s %-10s %-9s %s\n",
			fields[tui.ColTool],
			tui.StatusStyle(status).Render(fmt.Sprintf("%-24s", status)),
			fields[tui.ColVersion],
			fields[tui.ColSource],
			fields[tui.ColPath],
		)
		if st.Error != "" {
			fmt.Fprintf(out, "  error: %s\n", st.Error)
		}
		for _, note := range st.Notes {
			fmt.Fprintln(out, faint.Render("  "+note))
		}
	}
}

func writeCacheEntries(cmd *cobra.Command, root string, entries []binarycache.Entry) error {
	if outputJSON {
		return writeJSON(cmd, entries)
	}
	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No cached tools in %s\n", root)
		return nil
	}
	fmt.Fprintf(out, "Cache: %s\n", root)
	for _, e := range entries {
		fmt.Fprintf(out, "  %-16s %s  %s\n", e.Name, tui.NonEmptyOrDash(e.InstalledAt), e.URL)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
