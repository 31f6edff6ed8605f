package additive

import (
	"math"
	"sync"
	"testing"
)

func TestParamStoreCopiesOnStore(t *testing.T) {
	p := NewDefaultParams()
	s := NewParamStore(p)
	p.MasterGain = 0.1
	if got := s.Snapshot().MasterGain; got != DefaultMasterGain {
		t.Fatalf("store aliased caller params: gain=%v", got)
	}

	s.Store(p)
	if got := s.Snapshot().MasterGain; got != 0.1 {
		t.Fatalf("gain=%v want 0.1", got)
	}
	s.Store(nil)
	if s.Snapshot() == nil {
		t.Fatalf("nil store cleared the snapshot")
	}
}

func TestParamStoreUpdatePublishesNewSnapshot(t *testing.T) {
	s := NewParamStore(nil)
	before := s.Snapshot()
	s.Update(func(p *Params) {
		p.ActivePartials = 2
		p.Partials[1].Muted = true
	})
	after := s.Snapshot()
	if before == after {
		t.Fatalf("update reused the published snapshot")
	}
	if before.ActivePartials != DefaultPartials {
		t.Fatalf("published snapshot mutated: %d", before.ActivePartials)
	}
	if after.ActivePartials != 2 || !after.Partials[1].Muted {
		t.Fatalf("update not applied: %+v", after)
	}
}

func TestParamStoreSanitizes(t *testing.T) {
	s := NewParamStore(nil)
	s.Update(func(p *Params) {
		p.Filter.Cutoff = float32(math.Inf(1))
		p.Partials[0].Volume = 3
		p.Envelope.Sustain = -1
		p.Filter.Type = FilterType(9)
	})
	got := s.Snapshot()
	if got.Filter.Cutoff != DefaultFilterCutoff {
		t.Fatalf("cutoff=%v want default", got.Filter.Cutoff)
	}
	if got.Partials[0].Volume != PartialVolumeMax {
		t.Fatalf("volume=%v want %v", got.Partials[0].Volume, PartialVolumeMax)
	}
	if got.Envelope.Sustain != 0 {
		t.Fatalf("sustain=%v want 0", got.Envelope.Sustain)
	}
	if got.Filter.Type != FilterLowpass {
		t.Fatalf("filter type=%v want lowpass", got.Filter.Type)
	}
}

func TestParamStoreConcurrentReaders(t *testing.T) {
	s := NewParamStore(nil)
	synth := NewSynth(2, s)
	synth.Prepare(testSampleRate, 128)
	synth.NoteOn(60, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			g := float32(i%10) / 10
			s.Update(func(p *Params) {
				p.MasterGain = g
				p.ActivePartials = i % (MaxPartials + 1)
			})
		}
	}()

	buf := make([]float32, 128)
	for i := 0; i < 500; i++ {
		synth.RenderBlock(buf, 0, len(buf))
	}
	wg.Wait()
	for i, v := range buf {
		if math.IsNaN(float64(v)) {
			t.Fatalf("sample %d NaN", i)
		}
	}
}

func TestParamsSnapshotIsItself(t *testing.T) {
	p := NewDefaultParams()
	if p.Snapshot() != p {
		t.Fatalf("Params.Snapshot returned a different value")
	}
}

func TestFilterTypeNames(t *testing.T) {
	for _, ft := range []FilterType{FilterLowpass, FilterBandpass, FilterHighpass} {
		got, ok := ParseFilterType(ft.String())
		if !ok || got != ft {
			t.Fatalf("ParseFilterType(%q)=%v,%v", ft.String(), got, ok)
		}
	}
	if _, ok := ParseFilterType("notch"); ok {
		t.Fatalf("unknown filter type accepted")
	}
}

func TestDefaultPartialsSpreadAcrossRatios(t *testing.T) {
	p := NewDefaultParams()
	seen := make(map[float32]bool, len(p.Partials))
	for i, pt := range p.Partials {
		want := float32(1.5) + float32(i)
		if ratio := 1 + pt.Distance; ratio != want {
			t.Fatalf("partial %d ratio=%v want %v", i+1, ratio, want)
		}
		if seen[pt.Distance] {
			t.Fatalf("partial %d repeats distance %v", i+1, pt.Distance)
		}
		seen[pt.Distance] = true
	}
}

func TestSanitizeRestoresPerPartialDefault(t *testing.T) {
	s := NewParamStore(nil)
	s.Update(func(p *Params) {
		p.Partials[3].Distance = float32(math.NaN())
	})
	if got := s.Snapshot().Partials[3].Distance; got != DefaultPartialDistance+3 {
		t.Fatalf("distance=%v want %v", got, DefaultPartialDistance+3)
	}
}
