package additive

import "math"

const (
	// DefaultTableSize is the resolution of the shared sine table.
	DefaultTableSize = 65536
	// MaxPartials is the number of partial slots above the fundamental.
	MaxPartials = 8
	// DefaultPartials is the active partial count of a fresh patch.
	DefaultPartials = 4
	// DefaultVoices is the default polyphony.
	DefaultVoices = 8
	// DefaultBlockSize is the block size used when a host does not announce one.
	DefaultBlockSize = 512
	// MinEnvelopeTime is the shortest attack, decay or release time in seconds.
	MinEnvelopeTime = 0.005
)

// Parameter ranges.
const (
	MasterGainMin = 0.0
	MasterGainMax = 1.0

	// PartialDistanceMax allows harmonic series up to the 16th harmonic.
	PartialDistanceMin = 0.01
	PartialDistanceMax = 15.0

	PartialVolumeMin = 0.0
	PartialVolumeMax = 1.0

	AttackMax  = 5.0
	DecayMax   = 2.0
	ReleaseMax = 5.0

	FilterCutoffMin    = 20.0
	FilterCutoffMax    = 20000.0
	FilterResonanceMin = 0.0
	FilterResonanceMax = 1.0
)

// Defaults of a fresh patch.
const (
	DefaultMasterGain      = 0.8
	DefaultPartialDistance = 0.5 // partial i defaults to DefaultPartialDistance + i
	DefaultPartialVolume   = 0.8
	DefaultAttack          = 0.5
	DefaultDecay           = 0.5
	DefaultSustain         = 0.8
	DefaultRelease         = 0.5
	DefaultFilterCutoff    = 2000.0
	DefaultFilterResonance = 0.707
)

// FilterType selects the response of the post filter.
type FilterType int

const (
	FilterLowpass FilterType = iota
	FilterBandpass
	FilterHighpass
)

func (t FilterType) String() string {
	switch t {
	case FilterLowpass:
		return "lowpass"
	case FilterBandpass:
		return "bandpass"
	case FilterHighpass:
		return "highpass"
	default:
		return "unknown"
	}
}

// ParseFilterType maps a preset or flag string onto a FilterType.
func ParseFilterType(s string) (FilterType, bool) {
	switch s {
	case "lowpass", "lp":
		return FilterLowpass, true
	case "bandpass", "bp":
		return FilterBandpass, true
	case "highpass", "hp":
		return FilterHighpass, true
	}
	return FilterLowpass, false
}

// Partial is one oscillator above the fundamental. Its frequency is
// f0 * (1 + Distance).
type Partial struct {
	Distance float32
	Volume   float32
	Muted    bool
}

// EnvelopeParams are ADSR times in seconds and the sustain level.
type EnvelopeParams struct {
	Attack  float32
	Decay   float32
	Sustain float32
	Release float32
}

// FilterParams configure the post filter. The engine forwards them
// untouched.
type FilterParams struct {
	Cutoff    float32
	Resonance float32
	Bypass    bool
	Type      FilterType
}

// Params is one complete control snapshot. It holds no slices or maps so a
// plain assignment copies it without allocating.
type Params struct {
	MasterGain     float32
	ActivePartials int
	Partials       [MaxPartials]Partial
	Envelope       EnvelopeParams
	Filter         FilterParams
}

// NewDefaultParams creates default parameters.
func NewDefaultParams() *Params {
	p := &Params{
		MasterGain:     DefaultMasterGain,
		ActivePartials: DefaultPartials,
		Envelope: EnvelopeParams{
			Attack:  DefaultAttack,
			Decay:   DefaultDecay,
			Sustain: DefaultSustain,
			Release: DefaultRelease,
		},
		Filter: FilterParams{
			Cutoff:    DefaultFilterCutoff,
			Resonance: DefaultFilterResonance,
			Type:      FilterLowpass,
		},
	}
	for i := range p.Partials {
		p.Partials[i] = Partial{Distance: DefaultDistance(i), Volume: DefaultPartialVolume}
	}
	return p
}

// DefaultDistance is the default distance of partial i (zero based), which
// spreads a fresh patch over the ratios 1.5, 2.5, 3.5 and so on.
func DefaultDistance(i int) float32 {
	return DefaultPartialDistance + float32(i)
}

// Snapshot lets a plain *Params act as a fixed ParamSource.
func (p *Params) Snapshot() *Params {
	return p
}

// Sanitize replaces non-finite values with defaults and clamps everything
// into range. It never allocates.
func (p *Params) Sanitize() {
	p.MasterGain = sanitize(p.MasterGain, DefaultMasterGain, MasterGainMin, MasterGainMax)
	if p.ActivePartials < 0 {
		p.ActivePartials = 0
	} else if p.ActivePartials > MaxPartials {
		p.ActivePartials = MaxPartials
	}
	for i := range p.Partials {
		pt := &p.Partials[i]
		pt.Distance = sanitize(pt.Distance, DefaultDistance(i), PartialDistanceMin, PartialDistanceMax)
		pt.Volume = sanitize(pt.Volume, DefaultPartialVolume, PartialVolumeMin, PartialVolumeMax)
	}

	e := &p.Envelope
	e.Attack = sanitize(e.Attack, DefaultAttack, MinEnvelopeTime, AttackMax)
	e.Decay = sanitize(e.Decay, DefaultDecay, MinEnvelopeTime, DecayMax)
	e.Sustain = sanitize(e.Sustain, DefaultSustain, 0, 1)
	e.Release = sanitize(e.Release, DefaultRelease, MinEnvelopeTime, ReleaseMax)

	f := &p.Filter
	f.Cutoff = sanitize(f.Cutoff, DefaultFilterCutoff, FilterCutoffMin, FilterCutoffMax)
	f.Resonance = sanitize(f.Resonance, DefaultFilterResonance, FilterResonanceMin, FilterResonanceMax)
	if f.Type < FilterLowpass || f.Type > FilterHighpass {
		f.Type = FilterLowpass
	}
}

func sanitize(v, def, lo, hi float32) float32 {
	if !isFinite(v) {
		return def
	}
	return clampf(v, lo, hi)
}

func isFinite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}
