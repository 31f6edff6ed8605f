package additive

// Synth is a fixed pool of voices sharing one wavetable and one parameter
// snapshot. All methods run on the audio goroutine; parameters arrive through
// the ParamSource.
type Synth struct {
	table  *Wavetable
	source ParamSource
	params Params
	voices []*Voice

	sampleRate float64
	maxBlock   int
	mix        []float32
	gain       float32
}

// NewSynth creates a synth with numVoices voices (DefaultVoices when <= 0).
// A nil source plays the default patch.
func NewSynth(numVoices int, source ParamSource) *Synth {
	if numVoices <= 0 {
		numVoices = DefaultVoices
	}
	if source == nil {
		source = NewParamStore(nil)
	}
	s := &Synth{
		table:  NewWavetable(DefaultTableSize),
		source: source,
		voices: make([]*Voice, numVoices),
	}
	s.loadParams()
	for i := range s.voices {
		s.voices[i] = NewVoice(s.table, &s.params)
	}
	s.gain = s.params.MasterGain
	return s
}

// Prepare fixes sample rate and maximum block size. Longer render requests
// are split into chunks of maxBlock.
func (s *Synth) Prepare(sampleRate float64, maxBlock int) {
	if maxBlock <= 0 {
		maxBlock = DefaultBlockSize
	}
	if sampleRate < 0 {
		sampleRate = 0
	}
	s.sampleRate = sampleRate
	s.maxBlock = maxBlock
	if cap(s.mix) < maxBlock {
		s.mix = make([]float32, maxBlock)
	}
	s.mix = s.mix[:maxBlock]
	s.loadParams()
	for _, v := range s.voices {
		v.Prepare(sampleRate, maxBlock)
	}
	s.gain = s.params.MasterGain
}

// SampleRate returns the rate set by Prepare.
func (s *Synth) SampleRate() float64 {
	return s.sampleRate
}

// MaxBlock returns the block size set by Prepare.
func (s *Synth) MaxBlock() int {
	return s.maxBlock
}

// Params returns the snapshot used by the last block or note event.
func (s *Synth) Params() Params {
	return s.params
}

// Voices returns the pool.
func (s *Synth) Voices() []*Voice {
	return s.voices
}

func (s *Synth) loadParams() {
	if p := s.source.Snapshot(); p != nil {
		s.params = *p
	}
	s.params.Sanitize()
}

// NoteOn starts note on the lowest idle voice, or on voice 0 when every voice
// is busy. A velocity of zero releases the note instead.
func (s *Synth) NoteOn(note int, velocity float32) {
	if velocity <= 0 {
		s.NoteOff(note, 0)
		return
	}
	if !validNote(note) {
		return
	}
	s.loadParams()
	v := s.voices[0]
	for _, cand := range s.voices {
		if !cand.IsActive() {
			v = cand
			break
		}
	}
	v.StartNote(note, velocity)
}

// NoteOff releases every held voice playing note. Unknown notes are ignored.
func (s *Synth) NoteOff(note int, _ float32) {
	for _, v := range s.voices {
		if v.IsActive() && v.Note() == note && !v.IsReleased() {
			v.StopNote()
		}
	}
}

// AllNotesOff releases every voice.
func (s *Synth) AllNotesOff() {
	for _, v := range s.voices {
		v.StopNote()
	}
}

// Reset silences every voice at once.
func (s *Synth) Reset() {
	for _, v := range s.voices {
		v.Reset()
	}
	s.gain = s.params.MasterGain
}

// ActiveVoices counts sounding voices.
func (s *Synth) ActiveVoices() int {
	n := 0
	for _, v := range s.voices {
		if v.IsActive() {
			n++
		}
	}
	return n
}

// RenderBlock adds n mixed samples into out[start:start+n]. The caller clears
// out first when it wants a clean mix. Master gain changes ramp linearly over
// each chunk.
func (s *Synth) RenderBlock(out []float32, start, n int) {
	if s.sampleRate <= 0 || s.maxBlock <= 0 {
		return
	}
	start, n, ok := window(out, start, n)
	if !ok {
		return
	}
	s.loadParams()
	target := s.params.MasterGain

	for done := 0; done < n; {
		c := n - done
		if c > s.maxBlock {
			c = s.maxBlock
		}
		mix := s.mix[:c]
		clear(mix)
		for _, v := range s.voices {
			if v.IsActive() {
				v.RenderBlock(mix, 0, c)
			}
		}

		g := s.gain
		step := (target - g) / float32(c)
		dst := out[start+done : start+done+c]
		for i := range dst {
			g += step
			dst[i] += mix[i] * g
		}
		s.gain = target
		done += c
	}
}
