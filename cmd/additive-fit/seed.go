package main

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/analysis"
)

type spectralPeak struct {
	freq float64
	mag  float64
}

// seedFromSpectrum estimates partial distances and volumes from the strongest
// peaks above the fundamental of ref. The fundamental is searched within a
// semitone of the note's nominal frequency.
func seedFromSpectrum(base *additive.Params, ref []float64, sampleRate, note, partials int) (*additive.Params, float64, error) {
	an, err := analysis.NewAnalyzer(8192)
	if err != nil {
		return nil, 0, err
	}
	spec := an.Spectrum(ref, sampleRate)
	nominal := float64(additive.MIDINoteToFreq(note))
	semitone := math.Pow(2, 1.0/12)
	f0 := spec.Fundamental(nominal/semitone, nominal*semitone)
	_, ref0 := spec.PeakNear(f0, f0/8)

	p := *base
	if f0 <= 0 || ref0 <= 0 {
		return &p, f0, nil
	}

	// Scan harmonic-ish regions up to the highest distance a partial can take.
	var peaks []spectralPeak
	limit := math.Min(f0*(1+float64(additive.PartialDistanceMax)), float64(sampleRate)/2-spec.BinHz)
	for f := f0 * 1.5; f < limit; f += f0 / 2 {
		pf, m := spec.PeakNear(f, f0/4)
		if pf <= f0*(1+float64(additive.PartialDistanceMin)) || m < ref0*1e-3 {
			continue
		}
		if n := len(peaks); n > 0 && math.Abs(peaks[n-1].freq-pf) < spec.BinHz*2 {
			if m > peaks[n-1].mag {
				peaks[n-1] = spectralPeak{pf, m}
			}
			continue
		}
		peaks = append(peaks, spectralPeak{pf, m})
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].mag > peaks[j].mag })
	if len(peaks) > partials {
		peaks = peaks[:partials]
	}
	sort.Slice(peaks, func(i, j int) bool { return peaks[i].freq < peaks[j].freq })

	// The engine scales partial i by 1/sqrt(i+2) relative to the fundamental.
	for i, pk := range peaks {
		vol := pk.mag / ref0 * math.Sqrt(float64(i+2))
		p.Partials[i].Distance = float32(clamp(pk.freq/f0-1, float64(additive.PartialDistanceMin), float64(additive.PartialDistanceMax)))
		p.Partials[i].Volume = float32(clamp(vol, 0, 1))
		p.Partials[i].Muted = false
	}
	p.ActivePartials = max(p.ActivePartials, len(peaks))
	p.Sanitize()
	return &p, f0, nil
}
