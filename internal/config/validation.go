package config

import (
	"fmt"
	"net/url"
	"strings"
)

// ValidationResult captures a single validation finding.
type ValidationResult struct {
	Level   string `json:"level"` // "error" or "warning"
	Message string `json:"message"`
}

var knownLogLevels = map[string]struct{}{
	"trace": {}, "debug": {}, "info": {}, "warn": {}, "error": {}, "disabled": {},
}

// Validate checks the config for values wasmkit cannot act on.
func (c Config) Validate() []ValidationResult {
	var results []ValidationResult
	results = append(results, c.validateLogLevel()...)
	results = append(results, c.validateOutputArgs()...)
	results = append(results, c.validateTemplate()...)
	return results
}

// Errors returns only the error-level findings as a single error, or nil.
func Errors(results []ValidationResult) error {
	var msgs []string
	for _, r := range results {
		if r.Level == "error" {
			msgs = append(msgs, r.Message)
		}
	}
	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func (c Config) validateLogLevel() []ValidationResult {
	if _, ok := knownLogLevels[strings.ToLower(c.LogLevel)]; ok {
		return nil
	}
	return []ValidationResult{{
		Level:   "error",
		Message: fmt.Sprintf("log_level %q is not one of trace, debug, info, warn, error, disabled", c.LogLevel),
	}}
}

// validateOutputArgs rejects -o/--output because wasmkit controls where each
// tool writes.
func (c Config) validateOutputArgs() []ValidationResult {
	var results []ValidationResult
	check := func(section string, args []string) {
		for _, arg := range args {
			if arg == "-o" || arg == "--output" || strings.HasPrefix(arg, "--output=") {
				results = append(results, ValidationResult{
					Level:   "error",
					Message: fmt.Sprintf("%s.args must not set the output path (%s)", section, arg),
				})
			}
		}
	}
	check("optimizer", c.Optimizer.Args)
	check("disassembler", c.Disassembler.Args)
	return results
}

func (c Config) validateTemplate() []ValidationResult {
	template := strings.TrimSpace(c.Generator.Template)
	if template == "" {
		return nil
	}
	u, err := url.Parse(template)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return []ValidationResult{{
			Level:   "warning",
			Message: fmt.Sprintf("generator.template %q is not an absolute URL", template),
		}}
	}
	return nil
}
