package additive

import "math"

const bankSlots = MaxPartials + 1

// partialWeights[i] is the loudness normalization of slot i; slot 0 is the
// fundamental.
var partialWeights = func() [bankSlots]float64 {
	var w [bankSlots]float64
	for i := range w {
		w[i] = math.Sqrt(float64(i + 1))
	}
	return w
}()

// PartialBank is the oscillator set of one voice: the fundamental in slot 0
// and MaxPartials partials above it. All slots keep advancing while the
// voice plays so a partial that is switched back on resumes without a phase
// jump.
type PartialBank struct {
	tableLen  float64
	freq      [bankSlots]float64
	phase     [bankSlots]float64
	increment [bankSlots]float64
	gain      [bankSlots]float64
	target    [bankSlots]float64
}

// Configure derives frequencies, increments and target gains from the
// fundamental and a parameter snapshot. Phases and current gains are left
// alone.
func (b *PartialBank) Configure(f0, sampleRate float64, tableLen int, p *Params) {
	b.tableLen = float64(tableLen)
	active := p.ActivePartials
	if active < 0 {
		active = 0
	} else if active > MaxPartials {
		active = MaxPartials
	}

	b.freq[0] = f0
	b.target[0] = 1
	for i := 1; i < bankSlots; i++ {
		pt := p.Partials[i-1]
		b.freq[i] = f0 * (1 + float64(pt.Distance))
		if i <= active && !pt.Muted {
			b.target[i] = float64(pt.Volume) / partialWeights[i]
		} else {
			b.target[i] = 0
		}
	}

	for i := range b.increment {
		inc := 0.0
		if sampleRate > 0 && b.tableLen > 0 {
			inc = math.Mod(b.tableLen*b.freq[i]/sampleRate, b.tableLen)
		}
		if inc < 0 || math.IsNaN(inc) {
			inc = 0
		}
		b.increment[i] = inc
	}
}

// Restart zeroes all phases and jumps gains to their targets.
func (b *PartialBank) Restart() {
	for i := range b.phase {
		b.phase[i] = 0
		b.gain[i] = b.target[i]
	}
}

// Frequency returns the frequency of slot i in Hz.
func (b *PartialBank) Frequency(i int) float64 {
	if i < 0 || i >= bankSlots {
		return 0
	}
	return b.freq[i]
}

// Render writes n raw samples scaled by velocity into dst. Gains move
// linearly from their previous values to the configured targets across the
// block.
func (b *PartialBank) Render(dst []float32, n int, table *Wavetable, velocity float32) {
	if n > len(dst) {
		n = len(dst)
	}
	if n <= 0 {
		return
	}

	var delta [bankSlots]float64
	for i := range delta {
		delta[i] = (b.target[i] - b.gain[i]) / float64(n)
	}

	L := b.tableLen
	for s := 0; s < n; s++ {
		k := float64(s + 1)
		sum := float32(0)
		for i := 0; i < bankSlots; i++ {
			g := b.gain[i] + delta[i]*k
			if g != 0 {
				sum += table.Lookup(b.phase[i]) * float32(g)
			}
			b.phase[i] += b.increment[i]
			if b.phase[i] >= L {
				b.phase[i] -= L
			}
		}
		dst[s] = sum * velocity
	}

	b.gain = b.target
}
