package render

import (
	"math"

	"github.com/cwbudde/algo-additive/additive"
)

// Options control an offline single-note render.
type Options struct {
	SampleRate   int
	BlockSize    int
	Note         int
	Velocity     float32
	Duration     float64 // seconds; ignored when TailDBFS is set
	ReleaseAfter float64 // seconds until note-off
	TailDBFS     float64 // stop once the release tail is below this level; +Inf disables
	MinDuration  float64 // lower bound in auto-stop mode
	MaxDuration  float64 // upper bound in auto-stop mode
	HoldBlocks   int     // consecutive quiet blocks before stopping
}

// DefaultOptions returns a one second A4 render.
func DefaultOptions() Options {
	return Options{
		SampleRate:   48000,
		BlockSize:    additive.DefaultBlockSize,
		Note:         69,
		Velocity:     1,
		Duration:     1,
		ReleaseAfter: 0.5,
		TailDBFS:     math.Inf(1),
		MinDuration:  0.5,
		MaxDuration:  20,
		HoldBlocks:   4,
	}
}

// Note renders one note through a fresh chain and returns mono samples.
func Note(params *additive.Params, opt Options) []float32 {
	if opt.SampleRate <= 0 {
		opt.SampleRate = 48000
	}
	if opt.BlockSize <= 0 {
		opt.BlockSize = additive.DefaultBlockSize
	}
	if opt.HoldBlocks < 1 {
		opt.HoldBlocks = 1
	}
	sr := float64(opt.SampleRate)
	autoStop := !math.IsInf(opt.TailDBFS, 1) && !math.IsNaN(opt.TailDBFS)

	total := int(sr * opt.Duration)
	if autoStop {
		total = int(sr * opt.MaxDuration)
	}
	if total < 1 {
		total = 1
	}
	minFrames := int(sr * opt.MinDuration)
	releaseAt := int(sr * opt.ReleaseAfter)
	if releaseAt < 0 {
		releaseAt = 0
	}

	c := NewChain(1, params, sr, opt.BlockSize)
	c.NoteOn(opt.Note, opt.Velocity)

	out := make([]float32, 0, total)
	block := make([]float32, opt.BlockSize)
	threshold := math.Pow(10, opt.TailDBFS/20)
	released := false
	quiet := 0
	for len(out) < total {
		n := min(opt.BlockSize, total-len(out))
		if !released && len(out)+n > releaseAt {
			// Split so the note-off lands on its frame.
			if head := releaseAt - len(out); head > 0 {
				n = head
			} else {
				c.NoteOff(opt.Note, 0)
				released = true
			}
		}
		b := block[:n]
		c.Process(b)
		out = append(out, b...)

		if autoStop && released && len(out) >= minFrames {
			if c.ActiveVoices() == 0 || rms(b) < threshold {
				quiet++
				if quiet >= opt.HoldBlocks {
					break
				}
			} else {
				quiet = 0
			}
		}
	}
	return out
}

func rms(x []float32) float64 {
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
