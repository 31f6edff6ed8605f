package audioio

import "math"

func ToFloat64(in []float32) []float64 {
	out := make([]float64, len(in))
	for i, v := range in {
		out[i] = float64(v)
	}
	return out
}

func ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, v := range in {
		out[i] = float32(v)
	}
	return out
}

// Peak returns the largest absolute sample.
func Peak(x []float32) float32 {
	var p float32
	for _, v := range x {
		if v < 0 {
			v = -v
		}
		if v > p {
			p = v
		}
	}
	return p
}

// NormalizePeak scales x in place so its peak is target. Silent input is
// left alone. It returns the applied gain.
func NormalizePeak(x []float32, target float32) float32 {
	p := Peak(x)
	if p <= 0 {
		return 1
	}
	g := target / p
	for i := range x {
		x[i] *= g
	}
	return g
}

func RMS(x []float32) float64 {
	if len(x) == 0 {
		return 0
	}
	var sum float64
	for _, s := range x {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}
