package main

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-additive/analysis"
)

func tone(freqs []float64, amps []float64, n, sampleRate int) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sampleRate)
		for k, f := range freqs {
			out[i] += amps[k] * math.Sin(2*math.Pi*f*t)
		}
	}
	return out
}

func TestWindowSlice(t *testing.T) {
	x := make([]float64, 4800)
	if got := windowSlice(x, 48000, timeWindow{startMs: 0, endMs: 20}); len(got) != 960 {
		t.Fatalf("attack window len=%d", len(got))
	}
	if got := windowSlice(x, 48000, timeWindow{startMs: 50, endMs: 500}); len(got) != 2400 {
		t.Fatalf("clipped window len=%d", len(got))
	}
	if got := windowSlice(x, 48000, timeWindow{startMs: 500, endMs: 2000}); got != nil {
		t.Fatalf("window past end should be nil")
	}
}

func TestBandLevelsCompare(t *testing.T) {
	const sr = 48000
	ref := tone([]float64{500}, []float64{0.5}, sr, sr)
	cand := tone([]float64{500}, []float64{0.05}, sr, sr)
	an, err := analysis.NewAnalyzer(2048)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	levels := bandLevels(an, ref, cand, sr)
	found := false
	for _, l := range levels {
		if l.Window == "sustain (100-500ms)" && l.Band == "low-mid (300-1kHz)" {
			found = true
			if !l.HasCandDB || math.Abs(l.DiffDB+20) > 0.5 {
				t.Fatalf("diff=%v want -20 dB", l.DiffDB)
			}
		}
	}
	if !found {
		t.Fatalf("low-mid sustain band missing")
	}

	for _, l := range bandLevels(an, ref, nil, sr) {
		if l.HasCandDB {
			t.Fatalf("candidate level without candidate")
		}
	}
}

func TestHarmonicLevels(t *testing.T) {
	const sr = 48000
	f0 := 40.0 * sr / 8192
	x := tone([]float64{f0, 2 * f0, 3 * f0}, []float64{0.5, 0.25, 0.05}, 4*8192, sr)
	an, err := analysis.NewAnalyzer(8192)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	h := harmonicLevels(an.Spectrum(x, sr), f0, 3)
	if len(h) < 2 {
		t.Fatalf("got %d harmonics", len(h))
	}
	if h[0].Ratio != 2 || math.Abs(h[0].DB+6.02) > 0.3 {
		t.Fatalf("2nd harmonic %+v want -6 dB", h[0])
	}
	if h[1].Ratio != 3 || math.Abs(h[1].DB+20) > 0.3 {
		t.Fatalf("3rd harmonic %+v want -20 dB", h[1])
	}
}

func TestMarker(t *testing.T) {
	if marker(3) != "" || marker(-16) != " <<<" || marker(30) != " <<< !!!" {
		t.Fatalf("unexpected markers")
	}
}
