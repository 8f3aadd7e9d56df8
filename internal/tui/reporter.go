package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"wasmkit/internal/tools"
)

// Tool table column headers.
const (
	ColTool    = "TOOL"
	ColStatus  = "STATUS"
	ColVersion = "VERSION"
	ColSource  = "SOURCE"
	ColPath    = "PATH"
)

// ToolColumns is the column layout used by tool listings.
var ToolColumns = []Column{
	{Header: ColTool, Width: 14},
	{Header: ColStatus, Width: 22},
	{Header: ColVersion, Width: 10},
	{Header: ColSource, Width: 8},
	{Header: ColPath, Width: 48},
}

// NewToolModel builds a progress model with one pending row per tool.
func NewToolModel(title string, tl []tools.Tool) ProgressModel {
	m := NewProgressModel(title, ToolColumns)
	for _, tool := range tl {
		m.AddRow(tool.String(), []string{tool.String(), "pending", "-", "-", "-"})
	}
	return m
}

// ToolReporter turns resolution events into row updates.
type ToolReporter struct {
	send func(tea.Msg)
}

// NewToolReporter wraps a bubbletea send function.
func NewToolReporter(send func(tea.Msg)) *ToolReporter {
	return &ToolReporter{send: send}
}

// Start marks a tool as in progress.
func (r *ToolReporter) Start(tool tools.Tool, installing bool) {
	status := "resolving"
	if installing {
		status = "installing"
	}
	r.send(RowUpdateMsg{
		Key:    tool.String(),
		Fields: map[string]string{ColStatus: status},
	})
}

// Complete records the final status for a tool.
func (r *ToolReporter) Complete(st tools.Status) {
	r.send(RowUpdateMsg{
		Key:    st.Tool,
		Fields: StatusFields(st),
	})
}

// Abort ends the run with err; the table is replaced by the error.
func (r *ToolReporter) Abort(err error) {
	r.send(ErrorMsg{Err: err})
}

// StatusFields maps a tool status onto table columns.
func StatusFields(st tools.Status) map[string]string {
	status := st.Outcome
	if st.Error != "" {
		status = "error"
	}
	return map[string]string{
		ColTool:    st.Tool,
		ColStatus:  NonEmptyOrDash(status),
		ColVersion: NonEmptyOrDash(st.Version),
		ColSource:  NonEmptyOrDash(string(st.Source)),
		ColPath:    NonEmptyOrDash(st.Path),
	}
}
