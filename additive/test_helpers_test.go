package additive

import (
	"math"
)

const testSampleRate = 48000

func measureFundamentalFreq(samples []float32, sampleRate float32) float32 {
	startIdx := len(samples) / 10
	crossings := 0
	for i := startIdx + 1; i < len(samples); i++ {
		if (samples[i-1] < 0 && samples[i] >= 0) || (samples[i-1] >= 0 && samples[i] < 0) {
			crossings++
		}
	}
	if crossings == 0 {
		return 0
	}
	duration := float32(len(samples)-startIdx) / sampleRate
	return float32(crossings) / (2.0 * duration)
}

func windowRMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}

func dftBinMagnitude(samples []float32, bin int) float64 {
	n := len(samples)
	var re float64
	var im float64
	for i := 0; i < n; i++ {
		phase := -2.0 * math.Pi * float64(bin*i) / float64(n)
		x := float64(samples[i])
		re += x * math.Cos(phase)
		im += x * math.Sin(phase)
	}
	return math.Hypot(re, im)
}

func maxAbsDiff(a []float32, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	max := 0.0
	for i := 0; i < n; i++ {
		d := math.Abs(float64(a[i] - b[i]))
		if d > max {
			max = d
		}
	}
	return max
}

// maxStep is the largest difference between neighbouring samples.
func maxStep(samples []float32) float64 {
	max := 0.0
	for i := 1; i < len(samples); i++ {
		d := math.Abs(float64(samples[i] - samples[i-1]))
		if d > max {
			max = d
		}
	}
	return max
}

// fastParams is a short, deterministic patch used by most tests.
func fastParams(active int) *Params {
	p := NewDefaultParams()
	p.MasterGain = 1
	p.ActivePartials = active
	p.Envelope = EnvelopeParams{Attack: 0.01, Decay: 0.02, Sustain: 0.5, Release: 0.05}
	for i := range p.Partials {
		p.Partials[i] = Partial{Distance: float32(i + 1), Volume: 0.5}
	}
	return p
}

func newTestVoice(p *Params, maxBlock int) *Voice {
	v := NewVoice(NewWavetable(DefaultTableSize), p)
	v.Prepare(testSampleRate, maxBlock)
	return v
}

// renderVoice renders n samples of v in blocks of block samples.
func renderVoice(v *Voice, n, block int) []float32 {
	out := make([]float32, n)
	for start := 0; start < n; start += block {
		c := block
		if start+c > n {
			c = n - start
		}
		v.RenderBlock(out, start, c)
	}
	return out
}

func renderSynth(s *Synth, n, block int) []float32 {
	out := make([]float32, n)
	for start := 0; start < n; start += block {
		c := block
		if start+c > n {
			c = n - start
		}
		s.RenderBlock(out, start, c)
	}
	return out
}

func secondsToSamples(sec float32) int {
	return int(math.Round(float64(sec) * testSampleRate))
}
