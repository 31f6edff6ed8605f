package additive

import "testing"

func TestRenderDoesNotAllocate(t *testing.T) {
	s := NewSynth(DefaultVoices, NewParamStore(fastParams(MaxPartials)))
	s.Prepare(testSampleRate, 512)
	for _, n := range []int{48, 52, 55, 60, 64, 67, 71, 76} {
		s.NoteOn(n, 0.7)
	}
	buf := make([]float32, 512)
	allocs := testing.AllocsPerRun(50, func() {
		s.RenderBlock(buf, 0, len(buf))
	})
	if allocs != 0 {
		t.Fatalf("RenderBlock allocated %.1f times per call", allocs)
	}
}

func BenchmarkSynthRenderBlock(b *testing.B) {
	s := NewSynth(DefaultVoices, NewParamStore(fastParams(MaxPartials)))
	s.Prepare(testSampleRate, 512)
	for _, n := range []int{48, 52, 55, 60, 64, 67, 71, 76} {
		s.NoteOn(n, 0.7)
	}
	buf := make([]float32, 512)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.RenderBlock(buf, 0, len(buf))
	}
}

func BenchmarkVoiceRenderBlock(b *testing.B) {
	v := newTestVoice(fastParams(MaxPartials), 512)
	v.StartNote(60, 1)
	buf := make([]float32, 512)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		v.RenderBlock(buf, 0, len(buf))
	}
}
