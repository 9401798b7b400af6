package input

import (
	"strings"
	"time"

	"wtmux/internal/layout"
)

// RouterState is the outer prefix FSM state.
type RouterState int

const (
	// StateNormal forwards input to the focused child.
	StateNormal RouterState = iota
	// StateAwaitingPrefix waits for the command key after the prefix.
	StateAwaitingPrefix
	// StateNumberSelect waits up to two seconds for a pane digit.
	StateNumberSelect
	// StateRenameTab routes keystrokes into the tab-name editor.
	StateRenameTab
	// StateThemePicker cycles the built-in color schemes live.
	StateThemePicker
	// StateHistorySearch filters the persisted command history.
	StateHistorySearch
)

// CommandKind enumerates the actions the router can request.
type CommandKind int

const (
	CmdForward CommandKind = iota // raw bytes to the focused child
	CmdLiteralPrefix              // send one prefix byte to the child
	CmdSplitHorizontal            // `"`: stack top/bottom
	CmdSplitVertical              // `%`: side by side
	CmdNewTab
	CmdKillTab
	CmdNextTab
	CmdPrevTab
	CmdLastTab
	CmdSelectTab // N = tab index
	CmdKillPane
	CmdZoom
	CmdCopyMode
	CmdCopySearch
	CmdPaste
	CmdFocusDir   // Dir
	CmdFocusNext
	CmdResizeDir  // Dir, by one cell
	CmdSwapNext
	CmdSwapPrev
	CmdNextPreset
	CmdSelectPane // N = pane ordinal
	CmdRenameTab  // Data = new name
	CmdThemePreview // Data = scheme name
	CmdThemeCommit  // Data = scheme name
	CmdThemeRevert
	CmdHistoryQuery  // Data = current query
	CmdHistoryMove   // N = selection delta
	CmdHistoryAccept // accept the selected entry
	CmdRedraw
)

// Command is one routed action.
type Command struct {
	Kind CommandKind
	Raw  []byte
	Data string
	N    int
	Dir  layout.Direction
}

// numberSelectTimeout bounds the digit wait in NUMBER_SELECT.
const numberSelectTimeout = 2 * time.Second

// Router is the two-layer input FSM's outer layer. Mouse demultiplexing
// needs pane geometry and child modes, so it lives with the window
// manager; the router owns everything key-driven.
type Router struct {
	prefix byte
	state  RouterState

	deadline time.Time

	// rename editor
	rename []rune

	// theme picker
	themes     []string
	themeIdx   int
	themeOrig  string

	// history search
	query []rune
}

// NewRouter creates a router with the given prefix control byte (0x02 for
// C-b) and theme list for the picker overlay.
func NewRouter(prefix byte, themes []string) *Router {
	return &Router{prefix: prefix, state: StateNormal, themes: themes}
}

// State returns the FSM state for status rendering.
func (r *Router) State() RouterState { return r.state }

// RenameBuffer returns the rename editor's current content.
func (r *Router) RenameBuffer() string { return string(r.rename) }

// QueryBuffer returns the history search query.
func (r *Router) QueryBuffer() string { return string(r.query) }

// ThemeSelection returns the picker's highlighted scheme.
func (r *Router) ThemeSelection() string {
	if len(r.themes) == 0 {
		return ""
	}
	return r.themes[r.themeIdx]
}

// Expired cancels NUMBER_SELECT after its digit wait runs out. Returns
// true when the state changed.
func (r *Router) Expired(now time.Time) bool {
	if r.state == StateNumberSelect && now.After(r.deadline) {
		r.state = StateNormal
		return true
	}
	return false
}

func (r *Router) isPrefix(k *Key) bool {
	return k.Ctrl && k.Special == KeyNone && byte(k.Rune-'a'+1) == r.prefix
}

// HandleKey advances the FSM with one key and returns the commands to run.
// Copy-mode, overlay, and mouse interception happen before the router sees
// the key.
func (r *Router) HandleKey(k *Key) []Command {
	switch r.state {
	case StateAwaitingPrefix:
		return r.handlePrefixArg(k)
	case StateNumberSelect:
		return r.handleNumberSelect(k)
	case StateRenameTab:
		return r.handleRename(k)
	case StateThemePicker:
		return r.handleThemePicker(k)
	case StateHistorySearch:
		return r.handleHistorySearch(k)
	}

	if r.isPrefix(k) {
		r.state = StateAwaitingPrefix
		return nil
	}
	return []Command{{Kind: CmdForward, Raw: k.Raw}}
}

// handlePrefixArg dispatches the command alphabet. Unrecognized keys
// cancel silently.
func (r *Router) handlePrefixArg(k *Key) []Command {
	r.state = StateNormal

	if r.isPrefix(k) || (k.Rune == rune(r.prefix+'a'-1) && !k.Ctrl) {
		// A doubled prefix, or the prefix letter itself, sends one literal
		// prefix byte to the child.
		return []Command{{Kind: CmdLiteralPrefix}}
	}
	if k.Special == KeyEsc {
		return nil
	}

	switch k.Special {
	case KeyUp:
		return one(Command{Kind: CmdFocusDir, Dir: layout.Up})
	case KeyDown:
		return one(Command{Kind: CmdFocusDir, Dir: layout.Down})
	case KeyLeft:
		return one(Command{Kind: CmdFocusDir, Dir: layout.Left})
	case KeyRight:
		return one(Command{Kind: CmdFocusDir, Dir: layout.Right})
	}

	switch k.Rune {
	case '"':
		return one(Command{Kind: CmdSplitHorizontal})
	case '%':
		return one(Command{Kind: CmdSplitVertical})
	case 'c':
		return one(Command{Kind: CmdNewTab})
	case '&':
		return one(Command{Kind: CmdKillTab})
	case 'n':
		return one(Command{Kind: CmdNextTab})
	case 'p':
		return one(Command{Kind: CmdPrevTab})
	case 'l':
		return one(Command{Kind: CmdLastTab})
	case 'x':
		return one(Command{Kind: CmdKillPane})
	case 'z':
		return one(Command{Kind: CmdZoom})
	case '[':
		return one(Command{Kind: CmdCopyMode})
	case '/':
		return one(Command{Kind: CmdCopySearch})
	case ']':
		return one(Command{Kind: CmdPaste})
	case 'o':
		return one(Command{Kind: CmdFocusNext})
	case '{':
		return one(Command{Kind: CmdSwapPrev})
	case '}':
		return one(Command{Kind: CmdSwapNext})
	case ' ':
		return one(Command{Kind: CmdNextPreset})
	case 'H':
		return one(Command{Kind: CmdResizeDir, Dir: layout.Left})
	case 'J':
		return one(Command{Kind: CmdResizeDir, Dir: layout.Down})
	case 'K':
		return one(Command{Kind: CmdResizeDir, Dir: layout.Up})
	case 'L':
		return one(Command{Kind: CmdResizeDir, Dir: layout.Right})
	case 'q':
		r.state = StateNumberSelect
		r.deadline = time.Now().Add(numberSelectTimeout)
		return nil
	case ',':
		r.state = StateRenameTab
		r.rename = r.rename[:0]
		return nil
	case 'T':
		r.state = StateThemePicker
		r.themeOrig = r.ThemeSelection()
		return nil
	case 'r':
		r.state = StateHistorySearch
		r.query = r.query[:0]
		return []Command{{Kind: CmdHistoryQuery, Data: ""}}
	case 'R':
		return one(Command{Kind: CmdRedraw})
	case '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return one(Command{Kind: CmdSelectTab, N: int(k.Rune - '0')})
	}
	return nil
}

func (r *Router) handleNumberSelect(k *Key) []Command {
	r.state = StateNormal
	if time.Now().After(r.deadline) {
		return nil
	}
	if k.Rune >= '0' && k.Rune <= '9' {
		return one(Command{Kind: CmdSelectPane, N: int(k.Rune - '0')})
	}
	return nil
}

func (r *Router) handleRename(k *Key) []Command {
	switch {
	case k.Special == KeyEnter:
		r.state = StateNormal
		name := strings.TrimSpace(string(r.rename))
		if name == "" {
			return nil
		}
		return one(Command{Kind: CmdRenameTab, Data: name})
	case k.Special == KeyEsc:
		r.state = StateNormal
	case k.Special == KeyBackspace:
		if len(r.rename) > 0 {
			r.rename = r.rename[:len(r.rename)-1]
		}
	case k.Rune != 0 && !k.Ctrl && !k.Alt:
		r.rename = append(r.rename, k.Rune)
	}
	return nil
}

func (r *Router) handleThemePicker(k *Key) []Command {
	switch {
	case k.Special == KeyEnter:
		r.state = StateNormal
		return one(Command{Kind: CmdThemeCommit, Data: r.ThemeSelection()})
	case k.Special == KeyEsc:
		r.state = StateNormal
		return one(Command{Kind: CmdThemeRevert})
	case k.Rune == 'j' || k.Special == KeyDown:
		r.themeIdx = (r.themeIdx + 1) % len(r.themes)
		return one(Command{Kind: CmdThemePreview, Data: r.ThemeSelection()})
	case k.Rune == 'k' || k.Special == KeyUp:
		r.themeIdx = (r.themeIdx - 1 + len(r.themes)) % len(r.themes)
		return one(Command{Kind: CmdThemePreview, Data: r.ThemeSelection()})
	}
	return nil
}

func (r *Router) handleHistorySearch(k *Key) []Command {
	switch {
	case k.Special == KeyEnter:
		r.state = StateNormal
		return one(Command{Kind: CmdHistoryAccept})
	case k.Special == KeyEsc:
		r.state = StateNormal
	case k.Special == KeyUp:
		return one(Command{Kind: CmdHistoryMove, N: -1})
	case k.Special == KeyDown:
		return one(Command{Kind: CmdHistoryMove, N: 1})
	case k.Special == KeyBackspace:
		if len(r.query) > 0 {
			r.query = r.query[:len(r.query)-1]
		}
		return one(Command{Kind: CmdHistoryQuery, Data: string(r.query)})
	case k.Rune != 0 && !k.Ctrl && !k.Alt:
		r.query = append(r.query, k.Rune)
		return one(Command{Kind: CmdHistoryQuery, Data: string(r.query)})
	}
	return nil
}

func one(c Command) []Command { return []Command{c} }

// WrapPaste prepares pasted text for the child. When the child enabled
// bracketed paste (DECSET 2004) the text is framed so it cannot be
// mistaken for typed input; otherwise it is sent raw with embedded
// newlines preserved.
func WrapPaste(text string, bracketed bool) []byte {
	if !bracketed {
		return []byte(text)
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, "\x1b[200~"...)
	out = append(out, text...)
	out = append(out, "\x1b[201~"...)
	return out
}
