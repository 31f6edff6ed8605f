package additive

import "github.com/cwbudde/algo-approx"

// MIDINoteToFreq converts a MIDI note number to its equal tempered
// frequency in Hz (A4 = 440 Hz).
func MIDINoteToFreq(note int) float32 {
	const a4Freq = 440.0
	const a4Note = 69
	exponent := float32(note-a4Note) / 12.0
	return a4Freq * pow2Approx(exponent)
}

func pow2Approx(x float32) float32 {
	const ln2 = 0.69314718055994530942
	return approx.FastExp(x * ln2)
}

func validNote(note int) bool {
	return note >= 0 && note <= 127
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// window clamps a render window to buf. ok is false when nothing is left.
func window(buf []float32, start, n int) (int, int, bool) {
	if start < 0 || n <= 0 || start >= len(buf) {
		return 0, 0, false
	}
	if start+n > len(buf) {
		n = len(buf) - start
	}
	return start, n, true
}
