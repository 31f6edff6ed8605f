package analysis

import (
	"math"

	algofft "github.com/cwbudde/algo-fft"
)

// Metrics contains distance and similarity measurements between two audio signals.
type Metrics struct {
	SampleRate int `json:"sample_rate"`

	ReferenceFrames int `json:"reference_frames"`
	CandidateFrames int `json:"candidate_frames"`
	AlignedFrames   int `json:"aligned_frames"`
	LagSamples      int `json:"lag_samples"`

	TimeRMSE       float64 `json:"time_rmse"`
	EnvelopeRMSEDB float64 `json:"envelope_rmse_db"`
	SpectralRMSEDB float64 `json:"spectral_rmse_db"`

	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
}

const spectralFFTSize = 4096

// Compare returns objective distance metrics and a combined score in [0,1]
// (0 = identical). Both signals are trimmed, RMS normalized and aligned by
// cross-correlation first.
func Compare(reference []float64, candidate []float64, sampleRate int) Metrics {
	m := Metrics{
		SampleRate:      sampleRate,
		ReferenceFrames: len(reference),
		CandidateFrames: len(candidate),
		Score:           1,
	}
	if sampleRate <= 0 {
		return m
	}

	ref := normalizeRMS(trimLeadingSilence(reference, 1e-6), 0.1)
	cand := normalizeRMS(trimLeadingSilence(candidate, 1e-6), 0.1)
	if len(ref) == 0 || len(cand) == 0 {
		return m
	}

	maxLag := sampleRate / 20
	lag := EstimateLag(ref, cand, maxLag)
	m.LagSamples = lag
	ref, cand = alignByLag(ref, cand, lag)
	n := min(len(ref), len(cand))
	if n < 256 {
		return m
	}
	if maxFrames := sampleRate * 12; n > maxFrames {
		n = maxFrames
	}
	ref, cand = ref[:n], cand[:n]
	m.AlignedFrames = n

	m.TimeRMSE = rmse(ref, cand)

	refEnv := rmsEnvelope(ref, 256, 128)
	candEnv := rmsEnvelope(cand, 256, 128)
	if envN := min(len(refEnv), len(candEnv)); envN > 0 {
		var sum float64
		for i := 0; i < envN; i++ {
			d := linToDB(refEnv[i]) - linToDB(candEnv[i])
			sum += d * d
		}
		m.EnvelopeRMSEDB = math.Sqrt(sum / float64(envN))
	}

	m.SpectralRMSEDB = spectralRMSEDB(ref, cand, sampleRate)

	timeNorm := clamp01(m.TimeRMSE / 0.25)
	envNorm := clamp01(m.EnvelopeRMSEDB / 30.0)
	specNorm := clamp01(m.SpectralRMSEDB / 30.0)
	m.Score = clamp01(0.3*timeNorm + 0.3*envNorm + 0.4*specNorm)
	m.Similarity = clamp01(math.Exp(-4.0 * m.Score))
	return m
}

// EstimateLag returns the shift of cand relative to ref within ±maxLag that
// maximizes their cross-correlation. Positive means ref starts later.
func EstimateLag(ref []float64, cand []float64, maxLag int) int {
	if len(ref) == 0 || len(cand) == 0 || maxLag <= 0 {
		return 0
	}
	// Correlate only the onset region; the tail adds cost, not accuracy.
	limit := 4 * maxLag
	if limit < 4096 {
		limit = 4096
	}
	a := toFloat32(ref[:min(len(ref), limit)])
	b := toFloat32(cand[:min(len(cand), limit)])
	rev := make([]float32, len(b))
	for i := range b {
		rev[len(b)-1-i] = b[i]
	}
	xc := make([]float32, len(a)+len(rev)-1)
	if err := algofft.ConvolveReal(xc, a, rev); err != nil {
		return 0
	}

	// xc[len(b)-1+lag] = sum a[i+lag]*b[i]
	zero := len(b) - 1
	best := 0
	bestVal := float32(math.Inf(-1))
	for lag := -maxLag; lag <= maxLag; lag++ {
		idx := zero + lag
		if idx < 0 || idx >= len(xc) {
			continue
		}
		if xc[idx] > bestVal {
			bestVal = xc[idx]
			best = lag
		}
	}
	return best
}

func spectralRMSEDB(a []float64, b []float64, sampleRate int) float64 {
	if min(len(a), len(b)) < 512 {
		return 0
	}
	an, err := NewAnalyzer(spectralFFTSize)
	if err != nil {
		return 0
	}
	sa := an.Spectrum(a, sampleRate)
	sb := an.Spectrum(b, sampleRate)
	var sum float64
	bins := len(sa.Mag) - 1
	for k := 1; k < bins; k++ {
		d := linToDB(sa.Mag[k]) - linToDB(sb.Mag[k])
		sum += d * d
	}
	return math.Sqrt(sum / float64(bins-1))
}

func trimLeadingSilence(x []float64, threshold float64) []float64 {
	for i := 0; i < len(x); i++ {
		if math.Abs(x[i]) > threshold {
			return x[i:]
		}
	}
	return nil
}

func normalizeRMS(x []float64, target float64) []float64 {
	if len(x) == 0 {
		return x
	}
	r := rms1(x)
	out := make([]float64, len(x))
	if r <= 1e-12 {
		copy(out, x)
		return out
	}
	g := target / r
	for i := range x {
		out[i] = x[i] * g
	}
	return out
}

func alignByLag(ref []float64, cand []float64, lag int) ([]float64, []float64) {
	if lag >= 0 {
		if lag >= len(ref) {
			return nil, nil
		}
		return ref[lag:], cand
	}
	o := -lag
	if o >= len(cand) {
		return nil, nil
	}
	return ref, cand[o:]
}

func rmse(a []float64, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum / float64(n))
}

func rms1(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func rmsEnvelope(x []float64, frame int, hop int) []float64 {
	if frame <= 0 || hop <= 0 || len(x) < frame {
		return nil
	}
	n := 1 + (len(x)-frame)/hop
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		start := i * hop
		out[i] = rms1(x[start : start+frame])
	}
	return out
}

func toFloat32(x []float64) []float32 {
	out := make([]float32, len(x))
	for i, v := range x {
		out[i] = float32(v)
	}
	return out
}

func linToDB(x float64) float64 {
	if x < 1e-12 {
		x = 1e-12
	}
	return 20.0 * math.Log10(x)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
