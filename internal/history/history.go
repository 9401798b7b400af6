// Package history persists the command log: newline-delimited UTF-8,
// capped at 1000 entries with FIFO eviction. Values that look like secrets
// are scrubbed before they touch disk. Concurrent wtmux processes
// serialize file access through an advisory lock.
package history

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gofrs/flock"
)

// MaxEntries caps the history file.
const MaxEntries = 1000

// scrubbers redact obvious credentials. The replacement keeps the key so
// history stays useful for recall without retaining the secret.
var scrubbers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*\S+`),
	regexp.MustCompile(`(?i)\b(token|secret|api[_-]?key|access[_-]?key)\s*[=:]\s*\S+`),
	regexp.MustCompile(`(?i)\bauthorization:\s*bearer\s+\S+`),
	regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	regexp.MustCompile(`\b[A-Za-z0-9+/]{40,}={0,2}\b`),
}

// Scrub redacts credential-looking spans in line.
func Scrub(line string) string {
	for _, re := range scrubbers {
		line = re.ReplaceAllStringFunc(line, func(m string) string {
			if idx := strings.IndexAny(m, "=:"); idx >= 0 {
				return m[:idx+1] + "[redacted]"
			}
			return "[redacted]"
		})
	}
	return line
}

// History is the persisted command log plus its in-memory view.
type History struct {
	path    string
	entries []string
}

// Load reads the history file from dir, creating dir if needed. A missing
// file yields an empty history.
func Load(dir string) (*History, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	h := &History{path: filepath.Join(dir, "history")}

	lock := flock.New(h.path + ".lock")
	if err := lock.Lock(); err != nil {
		return nil, fmt.Errorf("lock history: %w", err)
	}
	defer lock.Unlock()

	f, err := os.Open(h.path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line != "" {
			h.entries = append(h.entries, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	h.truncate()
	return h, nil
}

// Entries returns the log oldest-first.
func (h *History) Entries() []string {
	return h.entries
}

// Append scrubs and records one command, then rewrites the file under the
// lock. Empty and duplicate-of-last commands are skipped.
func (h *History) Append(command string) error {
	command = Scrub(strings.TrimSpace(command))
	if command == "" {
		return nil
	}
	if n := len(h.entries); n > 0 && h.entries[n-1] == command {
		return nil
	}
	h.entries = append(h.entries, command)
	h.truncate()
	return h.save()
}

// Search returns entries containing the query, newest first.
// Case-insensitive unless the query contains an uppercase letter.
func (h *History) Search(query string) []string {
	fold := !strings.ContainsFunc(query, func(r rune) bool { return r >= 'A' && r <= 'Z' })
	needle := query
	if fold {
		needle = strings.ToLower(query)
	}
	var out []string
	for i := len(h.entries) - 1; i >= 0; i-- {
		hay := h.entries[i]
		if fold {
			hay = strings.ToLower(hay)
		}
		if strings.Contains(hay, needle) {
			out = append(out, h.entries[i])
		}
	}
	return out
}

func (h *History) truncate() {
	if len(h.entries) > MaxEntries {
		over := len(h.entries) - MaxEntries
		h.entries = append(h.entries[:0], h.entries[over:]...)
	}
}

func (h *History) save() error {
	lock := flock.New(h.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	defer lock.Unlock()

	tmp := h.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, e := range h.entries {
		fmt.Fprintln(w, e)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, h.path)
}
