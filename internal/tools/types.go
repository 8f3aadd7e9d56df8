package tools

import "fmt"

// Tool identifies an external executable wasmkit knows how to locate and install.
type Tool int

const (
	CargoGenerate Tool = iota
	WasmOpt
	WasmDis
)

type Source string

const (
	SourceUnknown  Source = ""
	SourceSystem   Source = "system"
	SourceCache    Source = "cache"
	SourceDownload Source = "download"
)

// Outcome is the informational result of a resolution attempt. Failures are
// reported through the error return, never through an Outcome.
type Outcome int

const (
	// Found means an executable path is available.
	Found Outcome = iota + 1
	// PlatformNotSupported means no precompiled release exists for this host.
	PlatformNotSupported
	// CannotInstall means the tool is absent and installing was not permitted
	// or no release asset was published.
	CannotInstall
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case PlatformNotSupported:
		return "platform-not-supported"
	case CannotInstall:
		return "cannot-install"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Resolution is produced fresh by every Resolve call. Path is only set when
// Outcome is Found.
type Resolution struct {
	Tool    Tool
	Outcome Outcome
	Path    string
	Source  Source
}

func found(tool Tool, path string, source Source) Resolution {
	return Resolution{Tool: tool, Outcome: Found, Path: path, Source: source}
}

func notFound(tool Tool, outcome Outcome) Resolution {
	return Resolution{Tool: tool, Outcome: outcome}
}

// Status captures the resolved state for a managed tool.
type Status struct {
	Tool    string   `json:"tool"`
	Version string   `json:"version,omitempty"`
	Pinned  string   `json:"pinned"`
	Outcome string   `json:"outcome"`
	Source  Source   `json:"source"`
	Path    string   `json:"path,omitempty"`
	Error   string   `json:"error,omitempty"`
	Notes   []string `json:"notes,omitempty"`
}

// Definition contains the fixed metadata required to locate and download a tool.
type Definition struct {
	Tool          Tool
	Name          string
	Host          string
	Org           string
	Project       string
	Version       string
	VersionSwitch string
	// Binaries lists every executable kept from the release archive.
	Binaries []string
	// Tokens overrides the default platform token for projects that publish
	// under a different target naming scheme.
	Tokens map[Platform]string
}

// Token returns the release asset token for p.
func (d Definition) Token(p Platform) string {
	if tok, ok := d.Tokens[p]; ok {
		return tok
	}
	return p.Token()
}
