package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/cwbudde/algo-fft"
)

// Spectrum is the averaged magnitude spectrum of a Hann-windowed signal.
type Spectrum struct {
	SampleRate int
	Size       int
	BinHz      float64
	Mag        []float64
}

// Analyzer owns an FFT plan and scratch buffers for one frame size.
type Analyzer struct {
	size    int
	forward func(dst []complex128, src []float64)
	hann    []float64
	buf     []float64
	spec    []complex128
}

// NewAnalyzer creates an analyzer for frames of size samples (power of two).
func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 16 || size&(size-1) != 0 {
		return nil, fmt.Errorf("fft size %d must be a power of two >= 16", size)
	}
	plan, err := algofft.NewPlanReal64(size)
	if err != nil {
		return nil, fmt.Errorf("fft plan: %w", err)
	}
	a := &Analyzer{
		size: size,
		forward: func(dst []complex128, src []float64) {
			plan.Forward(dst, src)
		},
		hann: make([]float64, size),
		buf:  make([]float64, size),
		spec: make([]complex128, size/2+1),
	}
	for i := range a.hann {
		a.hann[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}
	return a, nil
}

// Size returns the frame size.
func (a *Analyzer) Size() int {
	return a.size
}

// Spectrum averages the magnitude of half-overlapping frames across x. A
// signal shorter than one frame is zero padded.
func (a *Analyzer) Spectrum(x []float64, sampleRate int) *Spectrum {
	s := &Spectrum{
		SampleRate: sampleRate,
		Size:       a.size,
		BinHz:      float64(sampleRate) / float64(a.size),
		Mag:        make([]float64, a.size/2+1),
	}
	hop := a.size / 2
	frames := 0
	for pos := 0; pos == 0 || pos+a.size <= len(x); pos += hop {
		for i := range a.buf {
			v := 0.0
			if pos+i < len(x) {
				v = x[pos+i]
			}
			a.buf[i] = v * a.hann[i]
		}
		a.forward(a.spec, a.buf)
		for k := range s.Mag {
			s.Mag[k] += cmplx.Abs(a.spec[k])
		}
		frames++
	}
	// Hann coherent gain is 0.5, so 4/N maps a full scale sine to 1.
	scale := 4.0 / (float64(a.size) * float64(frames))
	for k := range s.Mag {
		s.Mag[k] *= scale
	}
	return s
}

// PeakNear finds the strongest bin within spanHz of freq and refines it with
// parabolic interpolation. It returns the peak frequency and magnitude.
func (s *Spectrum) PeakNear(freq, spanHz float64) (float64, float64) {
	lo := int(math.Floor((freq - spanHz) / s.BinHz))
	hi := int(math.Ceil((freq + spanHz) / s.BinHz))
	if lo < 1 {
		lo = 1
	}
	if hi > len(s.Mag)-2 {
		hi = len(s.Mag) - 2
	}
	if lo > hi {
		return 0, 0
	}
	best := lo
	for k := lo + 1; k <= hi; k++ {
		if s.Mag[k] > s.Mag[best] {
			best = k
		}
	}
	a, b, c := s.Mag[best-1], s.Mag[best], s.Mag[best+1]
	offset := 0.0
	if den := a - 2*b + c; den != 0 {
		offset = 0.5 * (a - c) / den
	}
	if offset < -0.5 || offset > 0.5 {
		offset = 0
	}
	peak := b - 0.25*(a-c)*offset
	return (float64(best) + offset) * s.BinHz, peak
}

// Fundamental returns the strongest peak between minHz and maxHz.
func (s *Spectrum) Fundamental(minHz, maxHz float64) float64 {
	f, _ := s.PeakNear((minHz+maxHz)/2, (maxHz-minHz)/2)
	return f
}

// PartialLevels measures the peak level at f0*ratio for every ratio, relative
// to the level at f0. Peaks are searched within a quarter of f0.
func (s *Spectrum) PartialLevels(f0 float64, ratios []float64) []float64 {
	out := make([]float64, len(ratios))
	_, ref := s.PeakNear(f0, f0/4)
	if ref <= 0 {
		return out
	}
	nyq := float64(s.SampleRate) / 2
	for i, r := range ratios {
		f := f0 * r
		if f >= nyq {
			continue
		}
		_, m := s.PeakNear(f, f0/4)
		out[i] = m / ref
	}
	return out
}

// BandDB returns the mean level in dB between loHz and hiHz.
func (s *Spectrum) BandDB(loHz, hiHz float64) float64 {
	lo := int(loHz / s.BinHz)
	hi := int(hiHz / s.BinHz)
	if lo < 1 {
		lo = 1
	}
	if hi >= len(s.Mag) {
		hi = len(s.Mag) - 1
	}
	if lo > hi {
		return linToDB(0)
	}
	var pow float64
	for k := lo; k <= hi; k++ {
		pow += s.Mag[k] * s.Mag[k]
	}
	return 10 * math.Log10(math.Max(pow/float64(hi-lo+1), 1e-24))
}
