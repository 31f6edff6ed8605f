package preset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-additive/additive"
)

func writePreset(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "preset.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write preset: %v", err)
	}
	return path
}

func TestLoadJSONAppliesOverrides(t *testing.T) {
	path := writePreset(t, `{
  "master_gain": 0.6,
  "active_partials": 3,
  "partials": {
    "1": {"distance": 1.0, "volume": 0.9},
    "3": {"muted": true}
  },
  "envelope": {"attack": 0.02, "release": 1.5},
  "filter": {"cutoff": 5000, "type": "highpass", "bypass": true}
}`)

	p, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if p.MasterGain != 0.6 || p.ActivePartials != 3 {
		t.Fatalf("global fields mismatch: %+v", p)
	}
	if p.Partials[0].Distance != 1.0 || p.Partials[0].Volume != 0.9 {
		t.Fatalf("partial 1 mismatch: %+v", p.Partials[0])
	}
	if p.Partials[1] != (additive.Partial{Distance: additive.DefaultDistance(1), Volume: additive.DefaultPartialVolume}) {
		t.Fatalf("partial 2 should keep defaults: %+v", p.Partials[1])
	}
	if !p.Partials[2].Muted {
		t.Fatalf("partial 3 not muted")
	}
	if p.Envelope.Attack != 0.02 || p.Envelope.Release != 1.5 || p.Envelope.Decay != additive.DefaultDecay {
		t.Fatalf("envelope mismatch: %+v", p.Envelope)
	}
	if p.Filter.Cutoff != 5000 || p.Filter.Type != additive.FilterHighpass || !p.Filter.Bypass {
		t.Fatalf("filter mismatch: %+v", p.Filter)
	}
	if p.Filter.Resonance != additive.DefaultFilterResonance {
		t.Fatalf("resonance should keep default: %v", p.Filter.Resonance)
	}
}

func TestLoadJSONRejectsInvalidPartialKey(t *testing.T) {
	for _, key := range []string{"x", "0", "9"} {
		path := writePreset(t, `{"partials": {"`+key+`": {"volume": 0.5}}}`)
		if _, err := LoadJSON(path); err == nil {
			t.Fatalf("expected error for partial key %q", key)
		}
	}
}

func TestLoadJSONRejectsInvalidRanges(t *testing.T) {
	cases := []string{
		`{"master_gain": 1.5}`,
		`{"active_partials": 9}`,
		`{"partials": {"2": {"volume": -0.1}}}`,
		`{"partials": {"2": {"distance": 40}}}`,
		`{"envelope": {"attack": 0}}`,
		`{"envelope": {"sustain": 1.2}}`,
		`{"filter": {"cutoff": 5}}`,
		`{"filter": {"type": "notch"}}`,
	}
	for _, c := range cases {
		if _, err := LoadJSON(writePreset(t, c)); err == nil {
			t.Fatalf("expected error for %s", c)
		}
	}
}

func TestLoadJSONMissingFile(t *testing.T) {
	_, err := LoadJSON(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	p := additive.NewDefaultParams()
	p.MasterGain = 0.7
	p.ActivePartials = 6
	p.Partials[5] = additive.Partial{Distance: 5, Volume: 0.25, Muted: true}
	p.Envelope.Sustain = 0.3
	p.Filter.Type = additive.FilterBandpass

	path := filepath.Join(t.TempDir(), "out.json")
	if err := WriteJSON(path, p); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	got, err := LoadJSON(path)
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if *got != *p {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
}

func TestApplyFileNilDestination(t *testing.T) {
	if err := ApplyFile(nil, &File{}); err == nil {
		t.Fatalf("expected error for nil destination")
	}
	p := additive.NewDefaultParams()
	if err := ApplyFile(p, nil); err != nil {
		t.Fatalf("nil file: %v", err)
	}
}
