package main

import (
	"math"

	"github.com/cwbudde/algo-additive/analysis"
)

type band struct {
	name string
	loHz float64
	hiHz float64
}

var bands = []band{
	{"sub-bass (20-100Hz)", 20, 100},
	{"bass (100-300Hz)", 100, 300},
	{"low-mid (300-1kHz)", 300, 1000},
	{"mid (1-3kHz)", 1000, 3000},
	{"hi-mid (3-6kHz)", 3000, 6000},
	{"high (6-12kHz)", 6000, 12000},
	{"air (12-20kHz)", 12000, 20000},
}

type timeWindow struct {
	name    string
	startMs float64
	endMs   float64
}

var windows = []timeWindow{
	{"attack (0-20ms)", 0, 20},
	{"early (20-100ms)", 20, 100},
	{"sustain (100-500ms)", 100, 500},
	{"decay (0.5-2s)", 500, 2000},
	{"late (2-4s)", 2000, 4000},
}

// BandLevel is the level of one band in one time window.
type BandLevel struct {
	Window    string  `json:"window"`
	Band      string  `json:"band"`
	RefDB     float64 `json:"ref_db"`
	CandDB    float64 `json:"cand_db,omitempty"`
	DiffDB    float64 `json:"diff_db,omitempty"`
	HasCandDB bool    `json:"-"`
}

// windowSlice returns x limited to the window, or nil when it is empty.
func windowSlice(x []float64, sampleRate int, w timeWindow) []float64 {
	start := int(w.startMs / 1000.0 * float64(sampleRate))
	end := min(int(w.endMs/1000.0*float64(sampleRate)), len(x))
	if start >= end {
		return nil
	}
	return x[start:end]
}

// bandLevels measures every band in every window of ref, and of cand when it
// is non-nil.
func bandLevels(an *analysis.Analyzer, ref, cand []float64, sampleRate int) []BandLevel {
	var out []BandLevel
	for _, w := range windows {
		r := windowSlice(ref, sampleRate, w)
		if r == nil {
			continue
		}
		rs := an.Spectrum(r, sampleRate)
		var cs *analysis.Spectrum
		if cand != nil {
			if c := windowSlice(cand, sampleRate, w); c != nil {
				cs = an.Spectrum(c, sampleRate)
			}
		}
		for _, b := range bands {
			if b.loHz >= float64(sampleRate)/2 {
				continue
			}
			l := BandLevel{Window: w.name, Band: b.name, RefDB: rs.BandDB(b.loHz, b.hiHz)}
			if cs != nil {
				l.CandDB = cs.BandDB(b.loHz, b.hiHz)
				l.DiffDB = l.CandDB - l.RefDB
				l.HasCandDB = true
			}
			out = append(out, l)
		}
	}
	return out
}

// PartialLevel describes one detected partial relative to the fundamental.
type PartialLevel struct {
	Ratio float64 `json:"ratio"`
	Hz    float64 `json:"hz"`
	DB    float64 `json:"db"`
}

// harmonicLevels reports the levels at integer multiples of f0 up to count.
func harmonicLevels(s *analysis.Spectrum, f0 float64, count int) []PartialLevel {
	ratios := make([]float64, count)
	for i := range ratios {
		ratios[i] = float64(i + 2)
	}
	levels := s.PartialLevels(f0, ratios)
	out := make([]PartialLevel, 0, count)
	for i, l := range levels {
		if l <= 0 {
			continue
		}
		out = append(out, PartialLevel{
			Ratio: ratios[i],
			Hz:    f0 * ratios[i],
			DB:    20 * math.Log10(l),
		})
	}
	return out
}

func marker(diffDB float64) string {
	switch d := math.Abs(diffDB); {
	case d > 25:
		return " <<< !!!"
	case d > 15:
		return " <<<"
	}
	return ""
}
