package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-additive/additive"
)

func TestVelocityValue(t *testing.T) {
	cases := []struct {
		in   float64
		want float32
	}{
		{0.5, 0.5},
		{1, 1},
		{127, 1},
		{-3, 0},
	}
	for _, c := range cases {
		if got := velocityValue(c.in); got != c.want {
			t.Fatalf("velocityValue(%v)=%v want %v", c.in, got, c.want)
		}
	}
	if got := velocityValue(64); got < 0.5 || got > 0.51 {
		t.Fatalf("velocityValue(64)=%v", got)
	}
}

func TestLoadParamsFilterOverride(t *testing.T) {
	p, err := loadParams("", "bp")
	if err != nil {
		t.Fatalf("loadParams: %v", err)
	}
	if p.Filter.Type != additive.FilterBandpass || p.Filter.Bypass {
		t.Fatalf("filter override not applied: %+v", p.Filter)
	}
	p, err = loadParams("", "off")
	if err != nil || !p.Filter.Bypass {
		t.Fatalf("off should bypass: %+v %v", p.Filter, err)
	}
	if _, err := loadParams("", "comb"); err == nil {
		t.Fatalf("expected error for unknown filter")
	}
}

func TestLoadParamsFromPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	if err := os.WriteFile(path, []byte(`{"active_partials": 7}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := loadParams(path, "")
	if err != nil {
		t.Fatalf("loadParams: %v", err)
	}
	if p.ActivePartials != 7 {
		t.Fatalf("active partials=%d", p.ActivePartials)
	}
	if _, err := loadParams(filepath.Join(t.TempDir(), "nope.json"), ""); err == nil {
		t.Fatalf("expected error for missing preset")
	}
}
