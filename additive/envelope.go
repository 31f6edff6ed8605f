package additive

import "math"

// EnvelopeStage is the state of an Envelope.
type EnvelopeStage int

const (
	StageIdle EnvelopeStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

func (s EnvelopeStage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageAttack:
		return "attack"
	case StageDecay:
		return "decay"
	case StageSustain:
		return "sustain"
	case StageRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Envelope is a linear ADSR generator. Each rendered sample first advances
// the state and then emits the new level, so a ramp of N samples ends
// exactly on its target at the N-th sample.
type Envelope struct {
	sampleRate float64
	params     EnvelopeParams

	stage        EnvelopeStage
	level        float64
	target       float64
	step         float64
	remaining    int // samples left in the current ramp, -1 holds
	releaseStart float64
}

// NewEnvelope creates an idle envelope with default times.
func NewEnvelope() *Envelope {
	e := &Envelope{}
	e.SetParameters(NewDefaultParams().Envelope)
	return e
}

// SetSampleRate updates the rate used to convert seconds to samples.
func (e *Envelope) SetSampleRate(sampleRate float64) {
	if sampleRate == e.sampleRate {
		return
	}
	e.sampleRate = sampleRate
	e.restartStage()
}

// SetParameters applies new ADSR settings. A running ramp continues from its
// current level with the new slope.
func (e *Envelope) SetParameters(p EnvelopeParams) {
	p.Attack = envelopeTime(p.Attack, DefaultAttack)
	p.Decay = envelopeTime(p.Decay, DefaultDecay)
	p.Release = envelopeTime(p.Release, DefaultRelease)
	p.Sustain = sanitize(p.Sustain, DefaultSustain, 0, 1)
	if p == e.params {
		return
	}
	e.params = p
	e.restartStage()
}

func envelopeTime(t, def float32) float32 {
	if !isFinite(t) {
		return def
	}
	if t < MinEnvelopeTime {
		return MinEnvelopeTime
	}
	return t
}

// Parameters returns the clamped settings in use.
func (e *Envelope) Parameters() EnvelopeParams {
	return e.params
}

// NoteOn starts the attack from whatever level the envelope holds.
func (e *Envelope) NoteOn() {
	e.begin(StageAttack)
}

// NoteOff moves any non-idle stage into release.
func (e *Envelope) NoteOff() {
	if e.stage == StageIdle {
		return
	}
	if e.level <= 0 {
		e.Reset()
		return
	}
	e.releaseStart = e.level
	e.begin(StageRelease)
}

// Reset silences the envelope immediately.
func (e *Envelope) Reset() {
	e.stage = StageIdle
	e.level = 0
	e.target = 0
	e.step = 0
	e.remaining = 0
	e.releaseStart = 0
}

// IsActive reports whether the envelope is anywhere but idle.
func (e *Envelope) IsActive() bool {
	return e.stage != StageIdle
}

// Stage returns the current stage.
func (e *Envelope) Stage() EnvelopeStage {
	return e.stage
}

// Level returns the last emitted gain.
func (e *Envelope) Level() float32 {
	return float32(e.level)
}

// RenderBlock writes count successive gains into levels.
func (e *Envelope) RenderBlock(levels []float32, count int) {
	if count > len(levels) {
		count = len(levels)
	}
	for i := 0; i < count; i++ {
		levels[i] = float32(e.next())
	}
}

func (e *Envelope) next() float64 {
	switch e.stage {
	case StageIdle:
		return 0
	case StageSustain:
		e.level = float64(e.params.Sustain)
		return e.level
	}

	switch {
	case e.remaining > 1:
		e.remaining--
		e.level += e.step
	case e.remaining >= 0:
		e.level = e.target
		e.finishStage()
	}
	return e.level
}

func (e *Envelope) finishStage() {
	switch e.stage {
	case StageAttack:
		e.begin(StageDecay)
	case StageDecay:
		e.stage = StageSustain
		e.remaining = 0
	case StageRelease:
		e.Reset()
	}
}

func (e *Envelope) begin(stage EnvelopeStage) {
	e.stage = stage
	e.restartStage()
}

// restartStage recomputes the ramp of the current stage from the current
// level.
func (e *Envelope) restartStage() {
	p := e.params
	switch e.stage {
	case StageAttack:
		e.ramp(1, p.Attack, 1)
	case StageDecay:
		s := float64(p.Sustain)
		e.ramp(s, p.Decay, 1-s)
	case StageRelease:
		e.ramp(0, p.Release, e.releaseStart)
	}
}

// ramp heads towards target at span/(seconds*sampleRate) per sample. Without
// a sample rate the level holds.
func (e *Envelope) ramp(target float64, seconds float32, span float64) {
	e.target = target
	dist := math.Abs(target - e.level)
	if dist == 0 {
		e.step = 0
		e.remaining = 0
		return
	}
	if e.sampleRate <= 0 {
		e.step = 0
		e.remaining = -1
		return
	}
	if span < dist {
		span = dist
	}
	rate := span / (float64(seconds) * e.sampleRate)
	// float32 times rarely land on whole samples; round away the noise.
	n := int(math.Ceil(dist/rate - 1e-3))
	if n < 1 {
		n = 1
	}
	e.remaining = n
	e.step = (target - e.level) / float64(n)
}
