package layout

import "testing"

func area() Rect { return Rect{X: 0, Y: 1, W: 80, H: 22} }

// --- split / close ---

func TestSplitClose_RoundTrip(t *testing.T) {
	tree := NewTree(1)
	tree.Reflow(area())
	before := tree.Geometries()

	if err := tree.Split(1, 2, Vertical); err != nil {
		t.Fatalf("split: %v", err)
	}
	tree.Reflow(area())
	if tree.Len() != 2 {
		t.Fatalf("expected 2 panes, got %d", tree.Len())
	}

	empty, err := tree.Close(2)
	if err != nil || empty {
		t.Fatalf("close: empty=%v err=%v", empty, err)
	}
	tree.Reflow(area())
	after := tree.Geometries()
	if len(after) != 1 || after[1] != before[1] {
		t.Fatalf("expected pre-split geometry restored: %+v vs %+v", before, after)
	}
}

func TestClose_LastPaneEmptiesTree(t *testing.T) {
	tree := NewTree(7)
	empty, err := tree.Close(7)
	if err != nil || !empty {
		t.Fatalf("expected empty tree, got empty=%v err=%v", empty, err)
	}
}

func TestSplit_OrientationMapping(t *testing.T) {
	// Horizontal stacks top/bottom; vertical is side by side.
	tree := NewTree(1)
	tree.Split(1, 2, Horizontal)
	tree.Reflow(area())
	a, _ := tree.Geometry(1)
	b, _ := tree.Geometry(2)
	if a.W != b.W || b.Y != a.Y+a.H+1 {
		t.Fatalf("horizontal split must stack with one border row: %+v %+v", a, b)
	}

	tree = NewTree(1)
	tree.Split(1, 2, Vertical)
	tree.Reflow(area())
	a, _ = tree.Geometry(1)
	b, _ = tree.Geometry(2)
	if a.H != b.H || b.X <= a.X {
		t.Fatalf("vertical split must sit side by side: %+v %+v", a, b)
	}
}

// --- reflow tiling ---

// TestReflow_TilesExactly checks the leaves cover the area with no overlap
// and exactly one border row/column per split.
func TestReflow_TilesExactly(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	tree.Split(2, 3, Horizontal)
	tree.Split(1, 4, Horizontal)
	rects := tree.Reflow(area())

	covered := map[[2]int]PaneID{}
	for id, r := range rects {
		if r.W <= 0 || r.H <= 0 {
			t.Fatalf("pane %d degenerate rect %+v", id, r)
		}
		for y := r.Y; y < r.Y+r.H; y++ {
			for x := r.X; x < r.X+r.W; x++ {
				if other, dup := covered[[2]int{x, y}]; dup {
					t.Fatalf("cell (%d,%d) covered by panes %d and %d", x, y, other, id)
				}
				covered[[2]int{x, y}] = id
			}
		}
	}
	// 3 splits reserve 1 border line each.
	total := 0
	for _, r := range rects {
		total += r.W * r.H
	}
	borders := area().W*area().H - total
	wantBorders := 1*22 + 40*1 + 39*1 // one vertical + two horizontal halves
	if borders != wantBorders {
		t.Fatalf("expected %d border cells, got %d", wantBorders, borders)
	}
}

func TestReflow_Idempotent(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	first := tree.Reflow(area())
	second := tree.Reflow(area())
	for id, r := range first {
		if second[id] != r {
			t.Fatalf("consecutive reflows diverged for pane %d: %+v vs %+v", id, r, second[id])
		}
	}
}

// --- resize ---

func TestResizeBy_AdjustsMatchingSplit(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	tree.Reflow(area())
	before, _ := tree.Geometry(1)

	if err := tree.ResizeBy(1, Right, 5); err != nil {
		t.Fatalf("resize: %v", err)
	}
	tree.Reflow(area())
	after, _ := tree.Geometry(1)
	if after.W != before.W+5 {
		t.Fatalf("expected width %d, got %d", before.W+5, after.W)
	}
}

func TestResizeBy_RejectsBelowMinimum(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	tree.Reflow(area())
	if err := tree.ResizeBy(1, Right, 70); err == nil {
		t.Fatalf("expected rejection, not clamping")
	}
	// Geometry unchanged after the rejected resize.
	tree.Reflow(area())
	r, _ := tree.Geometry(2)
	if r.W < 3 {
		t.Fatalf("pane shrank below minimum: %+v", r)
	}
}

func TestResizeBy_NoMatchingSplit(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	tree.Reflow(area())
	if err := tree.ResizeBy(1, Down, 1); err == nil {
		t.Fatalf("expected error: no horizontal split exists")
	}
}

// --- zoom ---

func TestZoom_RenderOverrideOnly(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	before := tree.Reflow(area())

	tree.ToggleZoom(2)
	if tree.Zoomed() != 2 {
		t.Fatalf("expected zoom target 2")
	}
	after := tree.Reflow(area())
	for id := range before {
		if before[id] != after[id] {
			t.Fatalf("zoom must not mutate the tree geometry")
		}
	}
	tree.ToggleZoom(2)
	if tree.Zoomed() != None {
		t.Fatalf("expected unzoom")
	}
}

// --- swap ---

func TestSwap_ExchangesLeaves(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	tree.Reflow(area())
	r1, _ := tree.Geometry(1)
	r2, _ := tree.Geometry(2)

	if err := tree.Swap(1, 2); err != nil {
		t.Fatalf("swap: %v", err)
	}
	tree.Reflow(area())
	n1, _ := tree.Geometry(1)
	n2, _ := tree.Geometry(2)
	if n1 != r2 || n2 != r1 {
		t.Fatalf("expected geometries exchanged")
	}
}

// --- focus ---

func TestFocusNeighbor_PrefersOverlap(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)   // 1 left, 2 right
	tree.Split(2, 3, Horizontal) // 2 top-right, 3 bottom-right
	tree.Reflow(area())

	if got := tree.FocusNeighbor(1, Right); got != 2 && got != 3 {
		t.Fatalf("expected a right neighbor, got %d", got)
	}
	if got := tree.FocusNeighbor(2, Left); got != 1 {
		t.Fatalf("expected pane 1 left of 2, got %d", got)
	}
	if got := tree.FocusNeighbor(3, Up); got != 2 {
		t.Fatalf("expected pane 2 above 3, got %d", got)
	}
	if got := tree.FocusNeighbor(1, Left); got != None {
		t.Fatalf("expected no pane left of 1, got %d", got)
	}
}

// --- presets ---

func TestApplyPreset_PreservesPaneIDs(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	tree.Split(2, 3, Horizontal)
	tree.Reflow(area())

	for _, preset := range []Preset{EvenHorizontal, EvenVertical, MainHorizontal, MainVertical, Tiled} {
		tree.ApplyPreset(preset)
		rects := tree.Reflow(area())
		if len(rects) != 3 {
			t.Fatalf("preset %d: expected 3 panes, got %d", preset, len(rects))
		}
		for _, id := range []PaneID{1, 2, 3} {
			if _, ok := rects[id]; !ok {
				t.Fatalf("preset %d lost pane %d", preset, id)
			}
		}
	}
}

func TestPaneAt(t *testing.T) {
	tree := NewTree(1)
	tree.Split(1, 2, Vertical)
	tree.Reflow(area())
	r2, _ := tree.Geometry(2)
	if got := tree.PaneAt(r2.X, r2.Y); got != 2 {
		t.Fatalf("expected pane 2 at %d,%d, got %d", r2.X, r2.Y, got)
	}
	if got := tree.PaneAt(-1, -1); got != None {
		t.Fatalf("expected None off-area, got %d", got)
	}
}
