package additive

// NoteVoice is anything the Synth can hand a note to.
type NoteVoice interface {
	StartNote(note int, velocity float32)
	StopNote()
	RenderBlock(out []float32, start, n int)
	IsActive() bool
	Note() int
}

var _ NoteVoice = (*Voice)(nil)

// Voice plays one note: a PartialBank shaped by an Envelope. The wavetable
// and the parameter snapshot belong to the caller and must outlive the voice.
type Voice struct {
	table  *Wavetable
	params *Params

	sampleRate float64
	maxBlock   int
	scratch    []float32
	levels     []float32

	bank     PartialBank
	env      Envelope
	note     int
	f0       float64
	velocity float32
	active   bool
}

// NewVoice creates an idle voice reading parameters from params before every
// block.
func NewVoice(table *Wavetable, params *Params) *Voice {
	if table == nil {
		table = NewWavetable(DefaultTableSize)
	}
	if params == nil {
		params = NewDefaultParams()
	}
	v := &Voice{
		table:  table,
		params: params,
		note:   -1,
	}
	v.env.SetParameters(params.Envelope)
	return v
}

// Prepare sets the sample rate and allocates block buffers. It is the only
// allocating call.
func (v *Voice) Prepare(sampleRate float64, maxBlock int) {
	if maxBlock <= 0 {
		maxBlock = DefaultBlockSize
	}
	v.sampleRate = sampleRate
	if cap(v.scratch) < maxBlock {
		v.scratch = make([]float32, maxBlock)
		v.levels = make([]float32, maxBlock)
	}
	v.scratch = v.scratch[:maxBlock]
	v.levels = v.levels[:maxBlock]
	v.maxBlock = maxBlock
	v.env.SetSampleRate(sampleRate)
	v.refresh()
}

func (v *Voice) prepared() bool {
	return v.sampleRate > 0 && v.maxBlock > 0
}

// StartNote begins note at velocity in [0,1]. Notes outside 0..127 and notes
// on an unprepared voice are ignored.
func (v *Voice) StartNote(note int, velocity float32) {
	if !validNote(note) || !v.prepared() {
		return
	}
	if !isFinite(velocity) {
		velocity = 0
	}
	v.note = note
	v.velocity = clampf(velocity, 0, 1)
	v.f0 = float64(MIDINoteToFreq(note))
	v.refresh()
	v.bank.Restart()
	v.env.NoteOn()
	v.active = true
}

// StopNote starts the release; the tail keeps rendering.
func (v *Voice) StopNote() {
	if !v.active {
		return
	}
	v.env.NoteOff()
	if !v.env.IsActive() {
		v.clear()
	}
}

// Reset silences the voice without a release tail.
func (v *Voice) Reset() {
	v.env.Reset()
	v.clear()
}

func (v *Voice) clear() {
	v.active = false
	v.note = -1
}

// IsActive reports whether the voice is sounding, release tail included.
func (v *Voice) IsActive() bool {
	return v.active
}

// IsReleased reports whether the voice is in its release tail.
func (v *Voice) IsReleased() bool {
	return v.active && v.env.Stage() == StageRelease
}

// Note returns the playing note, or -1 when idle.
func (v *Voice) Note() int {
	return v.note
}

// Frequency returns the fundamental of the playing note in Hz.
func (v *Voice) Frequency() float64 {
	return v.f0
}

// Envelope exposes the voice envelope for inspection.
func (v *Voice) Envelope() *Envelope {
	return &v.env
}

func (v *Voice) refresh() {
	v.env.SetParameters(v.params.Envelope)
	v.bank.Configure(v.f0, v.sampleRate, v.table.Len(), v.params)
}

// RenderBlock adds n samples of this voice into out[start:start+n]. Windows
// reaching past out are clipped; idle or unprepared voices add nothing.
func (v *Voice) RenderBlock(out []float32, start, n int) {
	if !v.active || !v.prepared() {
		return
	}
	start, n, ok := window(out, start, n)
	if !ok {
		return
	}
	v.refresh()

	for done := 0; done < n; {
		c := n - done
		if c > v.maxBlock {
			c = v.maxBlock
		}
		raw := v.scratch[:c]
		levels := v.levels[:c]
		v.bank.Render(raw, c, v.table, v.velocity)
		v.env.RenderBlock(levels, c)

		dst := out[start+done : start+done+c]
		for i := range dst {
			dst[i] += raw[i] * levels[i]
		}
		done += c

		if !v.env.IsActive() {
			v.clear()
			return
		}
	}
}
