package analysis

import (
	"math"
	"testing"
)

func harmonicSignal(sr int, f0 float64, amps []float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		t := float64(i) / float64(sr)
		for h, a := range amps {
			out[i] += a * math.Sin(2*math.Pi*f0*float64(h+1)*t)
		}
	}
	return out
}

func TestNewAnalyzerRejectsBadSizes(t *testing.T) {
	for _, n := range []int{0, 8, 1000} {
		if _, err := NewAnalyzer(n); err == nil {
			t.Fatalf("expected error for size %d", n)
		}
	}
}

func TestSpectrumPeakNear(t *testing.T) {
	const sr = 48000
	a, err := NewAnalyzer(8192)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	s := a.Spectrum(harmonicSignal(sr, 441.3, []float64{0.5}, sr), sr)
	f, mag := s.PeakNear(440, 50)
	if math.Abs(f-441.3) > 1.0 {
		t.Fatalf("peak at %.2f Hz want 441.3", f)
	}
	if math.Abs(mag-0.5) > 0.1 {
		t.Fatalf("peak magnitude %.3f want ~0.5", mag)
	}
	if got := s.Fundamental(100, 1000); math.Abs(got-441.3) > 1.0 {
		t.Fatalf("fundamental %.2f want 441.3", got)
	}
}

func TestSpectrumPartialLevels(t *testing.T) {
	const sr = 48000
	a, err := NewAnalyzer(8192)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	// 40 bins of an 8192 point frame, so every harmonic sits on a bin.
	const f0 = 40 * sr / 8192.0
	amps := []float64{0.6, 0.3, 0.15}
	s := a.Spectrum(harmonicSignal(sr, f0, amps, sr), sr)
	levels := s.PartialLevels(f0, []float64{2, 3, 200})
	if math.Abs(levels[0]-0.5) > 0.05 || math.Abs(levels[1]-0.25) > 0.05 {
		t.Fatalf("partial levels %v want [0.5 0.25 0]", levels)
	}
	if levels[2] != 0 {
		t.Fatalf("partial above Nyquist measured %v", levels[2])
	}
}

func TestSpectrumShortInputIsPadded(t *testing.T) {
	a, err := NewAnalyzer(1024)
	if err != nil {
		t.Fatalf("NewAnalyzer: %v", err)
	}
	s := a.Spectrum([]float64{1, 0, 0}, 48000)
	if len(s.Mag) != 513 {
		t.Fatalf("bins=%d want 513", len(s.Mag))
	}
	if db := s.BandDB(100, 2000); math.IsNaN(db) || math.IsInf(db, 0) {
		t.Fatalf("band level not finite: %v", db)
	}
}
