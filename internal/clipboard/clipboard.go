// Package clipboard is the single call site for clipboard access. The
// system clipboard is tried first; when unavailable (headless hosts, no
// helper binary), the text is forwarded to the host terminal via OSC 52.
package clipboard

import (
	"sync"

	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
)

// Clipboard serializes all clipboard writes through one mutex.
type Clipboard struct {
	mu     sync.Mutex
	output *termenv.Output
}

// New creates a clipboard backed by the system clipboard with an OSC 52
// fallback through output. output may be nil to disable the fallback.
func New(output *termenv.Output) *Clipboard {
	return &Clipboard{output: output}
}

// WriteClipboard stores text. Errors are swallowed: a failed copy must
// never disturb the session.
func (c *Clipboard) WriteClipboard(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := clipboard.WriteAll(text); err == nil {
		return
	}
	if c.output != nil {
		c.output.Copy(text)
	}
}

// ReadClipboard returns the system clipboard content, or "" when
// unavailable. Used only for paste into wtmux, never on a child's behalf.
func (c *Clipboard) ReadClipboard() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	text, err := clipboard.ReadAll()
	if err != nil {
		return ""
	}
	return text
}
