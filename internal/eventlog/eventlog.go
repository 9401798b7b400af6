// Package eventlog writes structured JSONL entries describing session
// events: spawn failures, pane lifecycle, render errors. All methods are
// safe for concurrent use; a disabled logger is a no-op.
package eventlog

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger appends JSONL entries to a log file.
type Logger struct {
	mu        sync.Mutex
	w         *os.File
	sessionID string
}

// New creates a Logger appending to logPath. If enabled is false or the
// file cannot be opened, the logger is a no-op (safe to call methods on).
func New(enabled bool, logPath string) *Logger {
	if !enabled {
		return &Logger{}
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &Logger{}
	}
	return &Logger{w: f, sessionID: uuid.NewString()}
}

// Nop returns a disabled logger.
func Nop() *Logger {
	return &Logger{}
}

// entry is the common envelope for all log lines.
type entry struct {
	Timestamp string `json:"ts"`
	SessionID string `json:"session_id"`
	Event     string `json:"event"`
}

// SpawnFailure logs a failed child spawn.
func (l *Logger) SpawnFailure(shell string, err error) {
	l.log(struct {
		entry
		Shell string `json:"shell"`
		Error string `json:"error"`
	}{
		entry: l.entry("spawn_failure"),
		Shell: shell,
		Error: err.Error(),
	})
}

// RenderFailure logs a host write error mid-frame.
func (l *Logger) RenderFailure(paneID, cols, rows int, err error) {
	l.log(struct {
		entry
		PaneID int    `json:"pane_id"`
		Cols   int    `json:"cols"`
		Rows   int    `json:"rows"`
		Error  string `json:"error"`
	}{
		entry:  l.entry("render_failure"),
		PaneID: paneID,
		Cols:   cols,
		Rows:   rows,
		Error:  err.Error(),
	})
}

// PaneClosed logs a pane teardown.
func (l *Logger) PaneClosed(paneID int, reason string) {
	l.log(struct {
		entry
		PaneID int    `json:"pane_id"`
		Reason string `json:"reason"`
	}{
		entry:  l.entry("pane_closed"),
		PaneID: paneID,
		Reason: reason,
	})
}

// SessionSummary logs totals at exit.
func (l *Logger) SessionSummary(tabs, panesOpened int) {
	l.log(struct {
		entry
		Tabs        int `json:"tabs"`
		PanesOpened int `json:"panes_opened"`
	}{
		entry:       l.entry("session_summary"),
		Tabs:        tabs,
		PanesOpened: panesOpened,
	})
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	if l.w == nil {
		return nil
	}
	return l.w.Close()
}

func (l *Logger) entry(event string) entry {
	return entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		SessionID: l.sessionID,
		Event:     event,
	}
}

func (l *Logger) log(v any) {
	if l.w == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	data = append(data, '\n')
	l.mu.Lock()
	l.w.Write(data)
	l.mu.Unlock()
}
