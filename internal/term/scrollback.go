package term

// Scrollback is a bounded FIFO of rows evicted off the top of the primary
// grid. Newest rows are at the back; eviction is strictly oldest-first.
// Only the primary grid has scrollback.
type Scrollback struct {
	lines [][]Cell
	max   int
}

// DefaultScrollbackLines is the default scrollback cap.
const DefaultScrollbackLines = 10000

// NewScrollback returns a scrollback capped at max lines. A max <= 0
// disables storage.
func NewScrollback(max int) *Scrollback {
	return &Scrollback{max: max}
}

// Push appends a row, evicting the oldest row when the cap is exceeded.
// The row is copied; callers may reuse the slice.
func (s *Scrollback) Push(row []Cell) {
	if s.max <= 0 {
		return
	}
	cp := make([]Cell, len(row))
	copy(cp, row)
	s.lines = append(s.lines, cp)
	if len(s.lines) > s.max {
		over := len(s.lines) - s.max
		s.lines = append(s.lines[:0], s.lines[over:]...)
	}
}

// Len returns the number of stored rows.
func (s *Scrollback) Len() int { return len(s.lines) }

// Line returns the stored row at index, where 0 is the oldest row.
// Returns nil when out of range.
func (s *Scrollback) Line(index int) []Cell {
	if index < 0 || index >= len(s.lines) {
		return nil
	}
	return s.lines[index]
}

// Max returns the configured cap.
func (s *Scrollback) Max() int { return s.max }

// SetMax changes the cap, evicting oldest rows if the new cap is smaller.
func (s *Scrollback) SetMax(max int) {
	s.max = max
	if max <= 0 {
		s.lines = nil
		return
	}
	if len(s.lines) > max {
		over := len(s.lines) - max
		s.lines = append(s.lines[:0], s.lines[over:]...)
	}
}

// Clear drops all stored rows.
func (s *Scrollback) Clear() { s.lines = s.lines[:0] }
