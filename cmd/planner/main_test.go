package main

import "testing"

func TestParseWeights(t *testing.T) {
	got, err := parseWeights([]string{"hr=2", " SB = 1.5 "})
	if err != nil {
		t.Fatalf("parseWeights: %v", err)
	}
	if got["HR"] != 2.0 || got["SB"] != 1.5 {
		t.Errorf("got %v", got)
	}

	for _, bad := range []string{"HR", "=2", "HR=lots"} {
		if _, err := parseWeights([]string{bad}); err == nil {
			t.Errorf("parseWeights(%q) should fail", bad)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("Ronald Acuña Jr.", 8); got != "Ronald …" {
		t.Errorf("got %q", got)
	}
	if got := truncate("Soto", 8); got != "Soto" {
		t.Errorf("got %q", got)
	}
}
