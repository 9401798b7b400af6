package layout

// Preset identifies one of the built-in whole-tab arrangements.
type Preset int

const (
	// EvenHorizontal spreads panes left to right in equal columns.
	EvenHorizontal Preset = iota
	// EvenVertical stacks panes top to bottom in equal rows.
	EvenVertical
	// MainHorizontal places the first pane full-width on top and the rest
	// in a row below it.
	MainHorizontal
	// MainVertical places the first pane full-height on the left and the
	// rest in a column to its right.
	MainVertical
	// Tiled arranges panes in a near-square grid.
	Tiled
)

// NextPreset cycles through the presets in declaration order.
func NextPreset(p Preset) Preset {
	if p == Tiled {
		return EvenHorizontal
	}
	return p + 1
}

// ApplyPreset rebuilds the tree for the given arrangement. PaneIDs are
// preserved; only the split structure changes. The caller must Reflow
// afterwards.
func (t *Tree) ApplyPreset(kind Preset) {
	ids := t.Panes()
	if len(ids) < 2 {
		return
	}
	switch kind {
	case EvenHorizontal:
		t.root = evenChain(ids, Vertical)
	case EvenVertical:
		t.root = evenChain(ids, Horizontal)
	case MainHorizontal:
		t.root = &node{
			pane:   None,
			orient: Horizontal,
			ratio:  0.6,
			a:      leaf(ids[0]),
			b:      evenChain(ids[1:], Vertical),
		}
	case MainVertical:
		t.root = &node{
			pane:   None,
			orient: Vertical,
			ratio:  0.6,
			a:      leaf(ids[0]),
			b:      evenChain(ids[1:], Horizontal),
		}
	case Tiled:
		t.root = tiled(ids)
	}
	if t.zoom != None && t.findLeaf(t.zoom) == nil {
		t.zoom = None
	}
}

// evenChain builds a chain of splits giving every pane an equal share:
// the k-th split of an n-pane chain takes 1/(n-k) of its remaining span.
func evenChain(ids []PaneID, o Orientation) *node {
	if len(ids) == 1 {
		return leaf(ids[0])
	}
	return &node{
		pane:   None,
		orient: o,
		ratio:  1.0 / float64(len(ids)),
		a:      leaf(ids[0]),
		b:      evenChain(ids[1:], o),
	}
}

// tiled splits the panes into even rows of even columns, filling row by
// row with any remainder in the last row.
func tiled(ids []PaneID) *node {
	cols := 1
	for cols*cols < len(ids) {
		cols++
	}
	var rows [][]PaneID
	for len(ids) > 0 {
		n := cols
		if n > len(ids) {
			n = len(ids)
		}
		rows = append(rows, ids[:n])
		ids = ids[n:]
	}
	rowNodes := make([]*node, len(rows))
	for i, row := range rows {
		rowNodes[i] = evenChain(row, Vertical)
	}
	return evenNodeChain(rowNodes, Horizontal)
}

func evenNodeChain(nodes []*node, o Orientation) *node {
	if len(nodes) == 1 {
		return nodes[0]
	}
	return &node{
		pane:   None,
		orient: o,
		ratio:  1.0 / float64(len(nodes)),
		a:      nodes[0],
		b:      evenNodeChain(nodes[1:], o),
	}
}
