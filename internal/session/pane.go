package session

import (
	"time"

	"wtmux/internal/copymode"
	"wtmux/internal/layout"
	"wtmux/internal/pty"
	"wtmux/internal/term"
	"wtmux/internal/textwidth"
	"wtmux/internal/vt"
)

// paneByteBudget caps how many output bytes one pane may feed through its
// parser per event-loop pass, so a flooding child cannot starve the others.
const paneByteBudget = 64 * 1024

// ptyWriteTimeout bounds writes to a child that stopped reading.
const ptyWriteTimeout = 3 * time.Second

// Pane exclusively owns one PTY session and one terminal state. A pane
// whose child exited is retained, frozen, until explicitly closed.
type Pane struct {
	ID     layout.PaneID
	PTY    *pty.Session
	Term   *term.Terminal
	Parser *vt.Parser
	Copy   *copymode.Mode
	Rect   layout.Rect
	Title  string

	Dead    bool
	DeadErr error
}

// feed drains up to the per-frame byte budget from the pane's output queue
// into the parser. Returns the number of bytes consumed.
func (p *Pane) feed() int {
	if p.PTY == nil || p.Dead {
		return 0
	}
	consumed := 0
	for consumed < paneByteBudget {
		chunk := p.PTY.TryRead()
		if chunk == nil {
			break
		}
		p.Parser.Parse(chunk)
		consumed += len(chunk)
	}
	return consumed
}

// write sends bytes to the child. A timed-out write marks the pane dead.
func (p *Pane) write(data []byte) {
	if p.PTY == nil || p.Dead {
		return
	}
	if _, err := p.PTY.WriteTimeout(data, ptyWriteTimeout); err != nil {
		p.Dead = true
		p.DeadErr = err
		p.PTY.Kill()
	}
}

// resize adjusts terminal state and PTY to the pane's rectangle.
func (p *Pane) resize(rect layout.Rect) {
	changed := rect.W != p.Rect.W || rect.H != p.Rect.H
	p.Rect = rect
	if !changed {
		return
	}
	p.Term.Resize(rect.H, rect.W)
	if p.Copy.Active() {
		p.Copy.Resize(rect.W, rect.H)
	}
	if p.PTY != nil && !p.Dead {
		p.PTY.Resize(rect.H, rect.W)
	}
}

// checkExit transitions the pane to dead when its child has gone away.
// The terminal state stays readable for inspection until the pane is
// closed. Returns true on the transition.
func (p *Pane) checkExit() bool {
	if p.Dead || p.PTY == nil {
		return false
	}
	exited, err := p.PTY.Exited()
	if !exited {
		return false
	}
	p.Dead = true
	p.DeadErr = err
	return true
}

// showMessage prints a line into the pane's grid, used to surface spawn
// failures inside the pane itself.
func (p *Pane) showMessage(msg string) {
	for _, r := range msg {
		p.Term.Print(r, textwidth.Rune(r))
	}
	p.Term.Execute('\n')
}
