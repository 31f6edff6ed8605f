package additive

import (
	"math"
	"testing"
)

func TestEndToEndNoteLifecycle(t *testing.T) {
	const block = 1024
	p := fastParams(DefaultPartials)
	store := NewParamStore(p)
	s := NewSynth(DefaultVoices, store)
	s.Prepare(testSampleRate, block)

	s.NoteOn(60, 0.8)
	buf := make([]float32, block)
	activeBlocks := 0
	for i := 0; i < 2; i++ {
		clear(buf)
		s.RenderBlock(buf, 0, block)
		activeBlocks++
		if windowRMS(buf) == 0 {
			t.Fatalf("block %d silent while note held", i)
		}
	}
	held := s.Voices()[0]
	if held.Envelope().Stage() != StageSustain {
		t.Fatalf("stage after two blocks=%v want sustain", held.Envelope().Stage())
	}

	s.NoteOff(60, 0)
	for s.ActiveVoices() > 0 {
		clear(buf)
		s.RenderBlock(buf, 0, block)
		activeBlocks++
		if activeBlocks > 1000 {
			t.Fatalf("voice never went idle")
		}
	}

	releaseSamples := secondsToSamples(p.Envelope.Release)
	want := 2 + (releaseSamples+block-1)/block
	if activeBlocks != want {
		t.Fatalf("active blocks=%d want %d", activeBlocks, want)
	}
	if held.IsActive() {
		t.Fatalf("voice still active")
	}

	// The voice picks up a new note with no trace of the old one.
	s.NoteOn(64, 0.8)
	if held.Note() != 64 {
		t.Fatalf("idle voice 0 not reused, note=%d", held.Note())
	}
	clear(buf)
	s.RenderBlock(buf, 0, block)

	fresh := NewSynth(DefaultVoices, store)
	fresh.Prepare(testSampleRate, block)
	fresh.NoteOn(64, 0.8)
	want2 := make([]float32, block)
	fresh.RenderBlock(want2, 0, block)
	if d := maxAbsDiff(buf, want2); d > 1e-7 {
		t.Fatalf("reused voice differs from fresh synth by %g", d)
	}
}

func TestEndToEndSpectrumHasConfiguredPartials(t *testing.T) {
	p := fastParams(3)
	p.Partials[0] = Partial{Distance: 1, Volume: 1}
	p.Partials[1] = Partial{Distance: 2, Volume: 1}
	p.Partials[2] = Partial{Distance: 3, Volume: 1, Muted: true}
	s := NewSynth(1, p)
	s.Prepare(testSampleRate, 512)

	s.NoteOn(66, 1)
	out := renderSynth(s, 16384, 512)
	window := out[8192 : 8192+4096]

	f0 := s.Voices()[0].Frequency()
	bin := func(f float64) int { return int(math.Round(f * 4096 / testSampleRate)) }
	m1 := dftBinMagnitude(window, bin(f0))
	m2 := dftBinMagnitude(window, bin(2*f0))
	m3 := dftBinMagnitude(window, bin(3*f0))
	m4 := dftBinMagnitude(window, bin(4*f0))

	if m2 < 0.3*m1 || m3 < 0.3*m1 {
		t.Fatalf("partials missing: m1=%g m2=%g m3=%g", m1, m2, m3)
	}
	if m3 >= m2 {
		t.Fatalf("weighting not applied: m2=%g m3=%g", m2, m3)
	}
	if m4 > 0.05*m1 {
		t.Fatalf("muted partial audible: m1=%g m4=%g", m1, m4)
	}
}
