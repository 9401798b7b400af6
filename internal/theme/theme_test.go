package theme

import "testing"

func TestNames_EightBuiltins(t *testing.T) {
	names := Names()
	if len(names) != 8 {
		t.Fatalf("expected 8 built-in schemes, got %d", len(names))
	}
	seen := map[string]bool{}
	for _, n := range names {
		if seen[n] {
			t.Fatalf("duplicate scheme name %q", n)
		}
		seen[n] = true
	}
}

func TestByName(t *testing.T) {
	th, err := ByName("nord")
	if err != nil || th.Name != "nord" {
		t.Fatalf("expected nord, got %+v %v", th, err)
	}
	if _, err := ByName("plasma"); err == nil {
		t.Fatalf("expected error for unknown scheme")
	}
}

func TestNext_CyclesAndWraps(t *testing.T) {
	names := Names()
	th := Next(names[len(names)-1])
	if th.Name != names[0] {
		t.Fatalf("expected wrap to %q, got %q", names[0], th.Name)
	}
	if Next("bogus").Name != names[0] {
		t.Fatalf("unknown name must restart the cycle")
	}
}

func TestRGB_ParsesHex(t *testing.T) {
	r, g, b := RGB("#ff8000")
	if r != 255 || g != 128 || b != 0 {
		t.Fatalf("expected ff8000, got %d %d %d", r, g, b)
	}
	r, g, b = RGB("not-a-color")
	if r != 128 || g != 128 || b != 128 {
		t.Fatalf("malformed hex must degrade to gray, got %d %d %d", r, g, b)
	}
}

func TestDimmed_DarkensTowardBlack(t *testing.T) {
	dim := Dimmed("#ffffff", 0.5)
	r, g, b := RGB(dim)
	if r >= 255 || r != g || g != b {
		t.Fatalf("expected uniform darkening, got %d %d %d", r, g, b)
	}
}

func TestThemes_AllColorsParse(t *testing.T) {
	for _, name := range Names() {
		th, _ := ByName(name)
		for _, hex := range []string{
			th.Foreground, th.Background, th.TabBarBg, th.TabActiveFg,
			th.TabActiveBg, th.TabInactiveFg, th.StatusBg, th.StatusFg,
			th.BorderActive, th.BorderInactive, th.SelectionBg, th.SearchMatchBg,
		} {
			if len(hex) != 7 || hex[0] != '#' {
				t.Fatalf("scheme %q has malformed color %q", name, hex)
			}
		}
	}
}
