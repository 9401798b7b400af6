// Package layout owns the binary split tree that arranges a tab's panes.
// The tree is the sole source of geometry: it holds pane ids, never pane
// objects, and publishes a rectangle per leaf from a single Reflow entry
// point.
package layout

import "fmt"

// PaneID is a stable pane identifier allocated from a monotonically
// increasing counter by the window manager.
type PaneID int

// None marks the absence of a pane.
const None PaneID = -1

// Orientation of a split node.
type Orientation int

const (
	// Horizontal stacks the two children vertically (top / bottom),
	// the layout produced by the `"` key.
	Horizontal Orientation = iota
	// Vertical places the two children side by side (left / right),
	// the layout produced by the `%` key.
	Vertical
)

// Direction is a cardinal movement or resize direction.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

// Rect is a pane's screen-space geometry in cells.
type Rect struct {
	X, Y, W, H int
}

// Contains reports whether the point (x, y) lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// minPaneSize is the smallest width and height a pane may be resized to.
const minPaneSize = 3

// node is either a leaf (Pane != None) or an internal split.
type node struct {
	pane   PaneID
	orient Orientation
	ratio  float64
	a, b   *node
}

func leaf(id PaneID) *node {
	return &node{pane: id}
}

func (n *node) isLeaf() bool { return n.pane != None || (n.a == nil && n.b == nil) }

// Tree is one tab's split layout.
type Tree struct {
	root *node
	zoom PaneID
	// geometry is the result of the last Reflow, keyed by leaf id.
	geometry map[PaneID]Rect
	outer    Rect
}

// NewTree creates a layout holding a single pane.
func NewTree(id PaneID) *Tree {
	return &Tree{root: leaf(id), zoom: None, geometry: map[PaneID]Rect{}}
}

// Panes returns all leaf ids in left-to-right, top-to-bottom tree order.
func (t *Tree) Panes() []PaneID {
	var ids []PaneID
	t.walk(t.root, func(n *node) {
		if n.isLeaf() {
			ids = append(ids, n.pane)
		}
	})
	return ids
}

// Len returns the number of panes.
func (t *Tree) Len() int { return len(t.Panes()) }

func (t *Tree) walk(n *node, fn func(*node)) {
	if n == nil {
		return
	}
	fn(n)
	t.walk(n.a, fn)
	t.walk(n.b, fn)
}

func (t *Tree) findLeaf(id PaneID) *node {
	var found *node
	t.walk(t.root, func(n *node) {
		if n.isLeaf() && n.pane == id {
			found = n
		}
	})
	return found
}

func (t *Tree) findParent(target *node) *node {
	var found *node
	t.walk(t.root, func(n *node) {
		if n.a == target || n.b == target {
			found = n
		}
	})
	return found
}

// Split replaces the target leaf with a split whose children are the
// original leaf and a fresh leaf for newID. The new pane takes the second
// position (below or to the right); the ratio starts at 0.5.
func (t *Tree) Split(target, newID PaneID, o Orientation) error {
	n := t.findLeaf(target)
	if n == nil {
		return fmt.Errorf("split: pane %d not in layout", target)
	}
	n.a = leaf(n.pane)
	n.b = leaf(newID)
	n.pane = None
	n.orient = o
	n.ratio = 0.5
	return nil
}

// Close removes the leaf; its sibling collapses up to replace the parent
// split. Returns true when the tree became empty (the tab should close).
func (t *Tree) Close(id PaneID) (empty bool, err error) {
	n := t.findLeaf(id)
	if n == nil {
		return false, fmt.Errorf("close: pane %d not in layout", id)
	}
	if t.zoom == id {
		t.zoom = None
	}
	delete(t.geometry, id)

	parent := t.findParent(n)
	if parent == nil {
		t.root = nil
		return true, nil
	}
	sibling := parent.a
	if sibling == n {
		sibling = parent.b
	}
	*parent = *sibling
	return false, nil
}

// Swap exchanges two leaf ids in place; geometry is re-derived on the next
// Reflow.
func (t *Tree) Swap(a, b PaneID) error {
	na, nb := t.findLeaf(a), t.findLeaf(b)
	if na == nil || nb == nil {
		return fmt.Errorf("swap: pane not in layout")
	}
	na.pane, nb.pane = nb.pane, na.pane
	return nil
}

// Zoom marks a pane as the rendering override target. The tree itself is
// not mutated.
func (t *Tree) Zoom(id PaneID) error {
	if t.findLeaf(id) == nil {
		return fmt.Errorf("zoom: pane %d not in layout", id)
	}
	t.zoom = id
	return nil
}

// Unzoom clears the zoom target.
func (t *Tree) Unzoom() { t.zoom = None }

// Zoomed returns the zoom target, or None.
func (t *Tree) Zoomed() PaneID { return t.zoom }

// ToggleZoom zooms id, or unzooms if id is already the target.
func (t *Tree) ToggleZoom(id PaneID) {
	if t.zoom == id {
		t.zoom = None
	} else if t.findLeaf(id) != nil {
		t.zoom = id
	}
}

// Geometry returns the rectangle assigned to id by the last Reflow.
func (t *Tree) Geometry(id PaneID) (Rect, bool) {
	r, ok := t.geometry[id]
	return r, ok
}

// Geometries returns the full id-to-rect map from the last Reflow.
func (t *Tree) Geometries() map[PaneID]Rect {
	out := make(map[PaneID]Rect, len(t.geometry))
	for id, r := range t.geometry {
		out[id] = r
	}
	return out
}

// Reflow recomputes every leaf's geometry from the outer rectangle. It is
// the single geometry entry point and must be called exactly once per
// structural change; with no intervening mutation it is a no-op returning
// identical geometry.
func (t *Tree) Reflow(outer Rect) map[PaneID]Rect {
	t.outer = outer
	t.geometry = map[PaneID]Rect{}
	t.reflow(t.root, outer)
	return t.Geometries()
}

func (t *Tree) reflow(n *node, r Rect) {
	if n == nil {
		return
	}
	if n.isLeaf() {
		t.geometry[n.pane] = r
		return
	}

	// One row or column between the children is reserved for the border.
	if n.orient == Horizontal {
		inner := r.H - 1
		if inner < 0 {
			inner = 0
		}
		first := int(float64(inner)*n.ratio + 0.5)
		first = clampSpan(first, inner)
		t.reflow(n.a, Rect{X: r.X, Y: r.Y, W: r.W, H: first})
		t.reflow(n.b, Rect{X: r.X, Y: r.Y + first + 1, W: r.W, H: inner - first})
	} else {
		inner := r.W - 1
		if inner < 0 {
			inner = 0
		}
		first := int(float64(inner)*n.ratio + 0.5)
		first = clampSpan(first, inner)
		t.reflow(n.a, Rect{X: r.X, Y: r.Y, W: first, H: r.H})
		t.reflow(n.b, Rect{X: r.X + first + 1, Y: r.Y, W: inner - first, H: r.H})
	}
}

func clampSpan(first, inner int) int {
	if inner <= 0 {
		return 0
	}
	if first < 1 {
		first = 1
	}
	if first > inner-1 {
		first = inner - 1
	}
	if first < 0 {
		first = 0
	}
	return first
}

// ResizeBy adjusts the nearest ancestor split whose orientation matches the
// direction, moving the shared border by delta cells. The resize is
// rejected (not clamped) when either side would drop below 3 rows or
// columns.
func (t *Tree) ResizeBy(id PaneID, dir Direction, delta int) error {
	n := t.findLeaf(id)
	if n == nil {
		return fmt.Errorf("resize: pane %d not in layout", id)
	}
	want := Horizontal
	if dir == Left || dir == Right {
		want = Vertical
	}

	// Walk up until a split with the wanted orientation is found.
	child := n
	parent := t.findParent(child)
	for parent != nil && parent.orient != want {
		child = parent
		parent = t.findParent(child)
	}
	if parent == nil {
		return fmt.Errorf("resize: no %v split above pane %d", dir, id)
	}

	span := parent.spanWithin(t, want)
	inner := span - 1
	if inner < 2*minPaneSize {
		return fmt.Errorf("resize: split too small")
	}

	// Right/Down grow the pane's own side of the split and Left/Up shrink
	// it, whichever child of the split holds the pane.
	sign := delta
	if dir == Left || dir == Up {
		sign = -delta
	}
	if !parent.contains(child) {
		return fmt.Errorf("resize: internal tree inconsistency")
	}
	if !subtreeHas(parent.a, child) {
		sign = -sign
	}

	first := int(float64(inner)*parent.ratio+0.5) + sign
	if first < minPaneSize || inner-first < minPaneSize {
		return fmt.Errorf("resize: pane would shrink below %dx%d", minPaneSize, minPaneSize)
	}
	parent.ratio = float64(first) / float64(inner)
	return nil
}

// spanWithin returns the split's total span along its orientation, derived
// from the child geometry of the last Reflow.
func (n *node) spanWithin(t *Tree, o Orientation) int {
	var bounds *Rect
	t.walk(n, func(c *node) {
		if !c.isLeaf() {
			return
		}
		r, ok := t.geometry[c.pane]
		if !ok {
			return
		}
		if bounds == nil {
			b := r
			bounds = &b
			return
		}
		if r.X < bounds.X {
			bounds.W += bounds.X - r.X
			bounds.X = r.X
		}
		if r.Y < bounds.Y {
			bounds.H += bounds.Y - r.Y
			bounds.Y = r.Y
		}
		if r.X+r.W > bounds.X+bounds.W {
			bounds.W = r.X + r.W - bounds.X
		}
		if r.Y+r.H > bounds.Y+bounds.H {
			bounds.H = r.Y + r.H - bounds.Y
		}
	})
	if bounds == nil {
		return 0
	}
	if o == Horizontal {
		return bounds.H
	}
	return bounds.W
}

func (n *node) contains(target *node) bool {
	return subtreeHas(n.a, target) || subtreeHas(n.b, target)
}

func subtreeHas(n, target *node) bool {
	if n == nil {
		return false
	}
	if n == target {
		return true
	}
	return subtreeHas(n.a, target) || subtreeHas(n.b, target)
}

// FocusNeighbor returns the geometric nearest neighbor of id in the given
// direction, preferring candidates that overlap id's span on the
// perpendicular axis. Returns None when no pane lies that way.
func (t *Tree) FocusNeighbor(id PaneID, dir Direction) PaneID {
	from, ok := t.geometry[id]
	if !ok {
		return None
	}
	best := None
	bestDist := 0
	bestOverlap := -1

	for other, r := range t.geometry {
		if other == id {
			continue
		}
		var dist, overlap int
		switch dir {
		case Left:
			if r.X+r.W > from.X {
				continue
			}
			dist = from.X - (r.X + r.W)
			overlap = spanOverlap(from.Y, from.H, r.Y, r.H)
		case Right:
			if r.X < from.X+from.W {
				continue
			}
			dist = r.X - (from.X + from.W)
			overlap = spanOverlap(from.Y, from.H, r.Y, r.H)
		case Up:
			if r.Y+r.H > from.Y {
				continue
			}
			dist = from.Y - (r.Y + r.H)
			overlap = spanOverlap(from.X, from.W, r.X, r.W)
		case Down:
			if r.Y < from.Y+from.H {
				continue
			}
			dist = r.Y - (from.Y + from.H)
			overlap = spanOverlap(from.X, from.W, r.X, r.W)
		}
		better := false
		switch {
		case best == None:
			better = true
		case (overlap > 0) != (bestOverlap > 0):
			better = overlap > 0
		case dist != bestDist:
			better = dist < bestDist
		default:
			better = overlap > bestOverlap
		}
		if better {
			best = other
			bestDist = dist
			bestOverlap = overlap
		}
	}
	return best
}

func spanOverlap(a, aLen, b, bLen int) int {
	lo := a
	if b > lo {
		lo = b
	}
	hi := a + aLen
	if b+bLen < hi {
		hi = b + bLen
	}
	if hi < lo {
		return 0
	}
	return hi - lo
}

// PaneAt returns the pane whose last-reflowed geometry contains (x, y),
// or None.
func (t *Tree) PaneAt(x, y int) PaneID {
	for id, r := range t.geometry {
		if r.Contains(x, y) {
			return id
		}
	}
	return None
}
