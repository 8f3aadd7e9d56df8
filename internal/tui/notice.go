package tui

import (
	"fmt"
	"io"
	"sync"
)

// Notifier prints short user-facing lines such as install and skip notices.
type Notifier struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
}

// NewNotifier writes to w, styling the prefix when w is a terminal.
func NewNotifier(w io.Writer) *Notifier {
	return &Notifier{w: w, color: IsTerminal(w)}
}

// Info prints an informational line.
func (n *Notifier) Info(format string, args ...any) {
	n.print(infoStyle.Render("[INFO]"), "[INFO]", format, args...)
}

// Warn prints a warning line.
func (n *Notifier) Warn(format string, args ...any) {
	n.print(warnStyle.Render("[WARN]"), "[WARN]", format, args...)
}

func (n *Notifier) print(styled, plain, format string, args ...any) {
	if n == nil || n.w == nil {
		return
	}
	prefix := plain
	if n.color {
		prefix = styled
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintf(n.w, "%s %s\n", prefix, fmt.Sprintf(format, args...))
}
