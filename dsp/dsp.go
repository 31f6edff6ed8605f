package dsp

import (
	"github.com/cwbudde/algo-additive/additive"
	dspcore "github.com/cwbudde/algo-dsp/dsp/core"
	"github.com/cwbudde/algo-dsp/dsp/filter/biquad"
	"github.com/cwbudde/algo-dsp/dsp/filter/design"
)

// MinQ keeps a zero resonance setting from producing an unstable section.
const MinQ = 0.1

// maxCutoffRatio keeps the designed cutoff below Nyquist.
const maxCutoffRatio = 0.49

// Filter is the post stage after the synth: one RBJ biquad whose response
// follows additive.FilterParams. Coefficient updates keep the section state,
// so cutoff sweeps do not click.
type Filter struct {
	sampleRate float64
	section    biquad.Section
	params     additive.FilterParams
	configured bool
}

// NewFilter creates a filter with default settings.
func NewFilter(sampleRate float64) *Filter {
	f := &Filter{sampleRate: sampleRate}
	f.section = *biquad.NewSection(biquad.Coefficients{B0: 1})
	f.Configure(additive.NewDefaultParams().Filter)
	return f
}

// SetSampleRate changes the rate and clears the filter state.
func (f *Filter) SetSampleRate(sampleRate float64) {
	f.sampleRate = sampleRate
	f.configured = false
	f.Configure(f.params)
	f.section.Reset()
}

// Params returns the settings in use.
func (f *Filter) Params() additive.FilterParams {
	return f.params
}

// Coefficients returns the active biquad coefficients.
func (f *Filter) Coefficients() biquad.Coefficients {
	return f.section.Coefficients
}

// Configure applies p. Unchanged settings are a no-op.
func (f *Filter) Configure(p additive.FilterParams) {
	if f.configured && p == f.params {
		return
	}
	f.params = p
	f.configured = true
	f.section.Coefficients = Design(p, f.sampleRate)
}

// Reset clears the filter history.
func (f *Filter) Reset() {
	f.section.Reset()
}

// ProcessBlock filters buf in place. Bypass leaves it untouched.
func (f *Filter) ProcessBlock(buf []float32) {
	if f.params.Bypass {
		return
	}
	for i, x := range buf {
		y := f.section.ProcessSample(float64(x))
		buf[i] = float32(dspcore.FlushDenormals(y))
	}
}

// Design returns RBJ coefficients for p. Resonance is used as Q. The
// band-pass is scaled to unity gain at the cutoff.
func Design(p additive.FilterParams, sampleRate float64) biquad.Coefficients {
	q := float64(p.Resonance)
	if !(q >= MinQ) {
		q = MinQ
	}
	cutoff := float64(p.Cutoff)
	if limit := maxCutoffRatio * sampleRate; cutoff > limit {
		cutoff = limit
	}
	switch p.Type {
	case additive.FilterHighpass:
		return design.Highpass(cutoff, q, sampleRate)
	case additive.FilterBandpass:
		c := design.Bandpass(cutoff, q, sampleRate)
		if c != biquad.Identity() {
			c.B0 /= q
			c.B2 /= q
		}
		return c
	default:
		return design.Lowpass(cutoff, q, sampleRate)
	}
}
