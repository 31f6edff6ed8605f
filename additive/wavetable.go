package additive

import "math"

// Wavetable is a single-cycle sine table shared read-only by all voices.
//
// The backing slice carries two guard samples past the cycle:
// table[L] == table[0] and table[L+1] == table[1], so Lookup(L) stays in
// bounds.
type Wavetable struct {
	table []float32
	size  int
}

// NewWavetable builds a sine table of the given length. Lengths below 2 fall
// back to DefaultTableSize.
func NewWavetable(length int) *Wavetable {
	if length < 2 {
		length = DefaultTableSize
	}
	t := make([]float32, length+2)
	for i := 0; i < length; i++ {
		t[i] = float32(math.Sin(2 * math.Pi * float64(i) / float64(length)))
	}
	t[length] = t[0]
	t[length+1] = t[1]
	return &Wavetable{table: t, size: length}
}

// Len returns the cycle length L.
func (w *Wavetable) Len() int {
	return w.size
}

// Lookup linearly interpolates the table at a fractional index.
// The caller guarantees 0 <= index <= Len(); nothing is checked here.
func (w *Wavetable) Lookup(index float64) float32 {
	i := int(index)
	frac := float32(index - float64(i))
	a := w.table[i]
	return a + frac*(w.table[i+1]-a)
}
