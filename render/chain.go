package render

import (
	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/dsp"
)

// Chain is the complete signal path: the voice pool followed by the post
// filter, driven by the filter settings of the synth's current snapshot.
type Chain struct {
	*additive.Synth
	filter *dsp.Filter
}

// NewChain creates and prepares a chain.
func NewChain(voices int, source additive.ParamSource, sampleRate float64, blockSize int) *Chain {
	s := additive.NewSynth(voices, source)
	s.Prepare(sampleRate, blockSize)
	return &Chain{
		Synth:  s,
		filter: dsp.NewFilter(sampleRate),
	}
}

// Prepare resets sample rate and block size of both stages.
func (c *Chain) Prepare(sampleRate float64, blockSize int) {
	c.Synth.Prepare(sampleRate, blockSize)
	c.filter.SetSampleRate(sampleRate)
}

// Process overwrites out with the next len(out) samples.
func (c *Chain) Process(out []float32) {
	clear(out)
	c.Synth.RenderBlock(out, 0, len(out))
	c.filter.Configure(c.Synth.Params().Filter)
	c.filter.ProcessBlock(out)
}

// Reset silences the voices and clears the filter history.
func (c *Chain) Reset() {
	c.Synth.Reset()
	c.filter.Reset()
}
