package termstyle

import "testing"

func TestWrap_Enabled(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	got := Red("error:")
	want := "\033[31merror:\033[0m"
	if got != want {
		t.Errorf("Red(\"error:\") = %q, want %q", got, want)
	}
}

func TestWrap_Disabled(t *testing.T) {
	SetEnabled(false)

	if got := Bold("hello"); got != "hello" {
		t.Errorf("Bold disabled = %q, want %q", got, "hello")
	}
}

func TestWrap_EmptyString(t *testing.T) {
	SetEnabled(true)
	defer SetEnabled(false)

	if got := Dim(""); got != "" {
		t.Errorf("Dim(\"\") = %q, want empty", got)
	}
}
