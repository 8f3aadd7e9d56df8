package tools

import (
	"context"
	"time"
)

// Detect reports the status of every known tool without installing anything.
func Detect(ctx context.Context, r *Resolver) []Status {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	statuses := make([]Status, 0, len(KnownTools()))
	for _, tool := range KnownTools() {
		statuses = append(statuses, Inspect(ctx, r, tool, false))
	}
	return statuses
}

// Inspect resolves a single tool and summarizes the result. Resolution errors
// are recorded on the Status rather than returned.
func Inspect(ctx context.Context, r *Resolver, tool Tool, installPermitted bool) Status {
	def, err := tool.Definition()
	if err != nil {
		return Status{Tool: tool.String(), Error: err.Error()}
	}
	status := Status{Tool: def.Name, Pinned: def.Version}

	res, err := r.Resolve(ctx, tool, installPermitted)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Outcome = res.Outcome.String()
	status.Source = res.Source
	status.Path = res.Path

	if res.Outcome != Found {
		status.Notes = installHints(tool, res.Outcome)
		return status
	}

	version, err := readVersion(ctx, r.runner, def, res.Path)
	if err != nil {
		status.Notes = append(status.Notes, err.Error())
		return status
	}
	status.Version = version
	return status
}
