package session

import "wtmux/internal/layout"

// Tab owns one split tree, a focused pane, and the previous focus for
// toggling.
type Tab struct {
	Name      string
	Tree      *layout.Tree
	Focus     layout.PaneID
	LastFocus layout.PaneID
}

func newTab(name string, first layout.PaneID) *Tab {
	return &Tab{
		Name:      name,
		Tree:      layout.NewTree(first),
		Focus:     first,
		LastFocus: layout.None,
	}
}

// setFocus moves focus, remembering the previous pane for toggle.
func (t *Tab) setFocus(id layout.PaneID) {
	if id == t.Focus || id == layout.None {
		return
	}
	t.LastFocus = t.Focus
	t.Focus = id
}
