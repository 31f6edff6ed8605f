package preset

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-additive/additive"
)

// File is the JSON schema for additive presets. Absent fields keep the
// defaults.
type File struct {
	MasterGain     *float32                  `json:"master_gain,omitempty"`
	ActivePartials *int                      `json:"active_partials,omitempty"`
	Partials       map[string]PartialSetting `json:"partials,omitempty"`
	Envelope       *EnvelopeSetting          `json:"envelope,omitempty"`
	Filter         *FilterSetting            `json:"filter,omitempty"`
}

// PartialSetting overrides one partial, keyed "1".."8" in File.Partials.
type PartialSetting struct {
	Distance *float32 `json:"distance,omitempty"`
	Volume   *float32 `json:"volume,omitempty"`
	Muted    *bool    `json:"muted,omitempty"`
}

// EnvelopeSetting holds ADSR overrides in seconds.
type EnvelopeSetting struct {
	Attack  *float32 `json:"attack,omitempty"`
	Decay   *float32 `json:"decay,omitempty"`
	Sustain *float32 `json:"sustain,omitempty"`
	Release *float32 `json:"release,omitempty"`
}

// FilterSetting holds post filter overrides.
type FilterSetting struct {
	Cutoff    *float32 `json:"cutoff,omitempty"`
	Resonance *float32 `json:"resonance,omitempty"`
	Bypass    *bool    `json:"bypass,omitempty"`
	Type      string   `json:"type,omitempty"`
}

// LoadJSON loads a preset JSON file and applies it on top of default params.
func LoadJSON(path string) (*additive.Params, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	return Parse(b)
}

// Parse decodes preset JSON and applies it on top of default params.
func Parse(b []byte) (*additive.Params, error) {
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("decode preset: %w", err)
	}

	p := additive.NewDefaultParams()
	if err := ApplyFile(p, &f); err != nil {
		return nil, err
	}
	return p, nil
}

// ApplyFile applies a parsed preset file onto an existing params object.
func ApplyFile(dst *additive.Params, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination params")
	}
	if f == nil {
		return nil
	}

	if f.MasterGain != nil {
		if err := inRange("master_gain", *f.MasterGain, additive.MasterGainMin, additive.MasterGainMax); err != nil {
			return err
		}
		dst.MasterGain = *f.MasterGain
	}
	if f.ActivePartials != nil {
		if *f.ActivePartials < 0 || *f.ActivePartials > additive.MaxPartials {
			return fmt.Errorf("active_partials must be in [0,%d]", additive.MaxPartials)
		}
		dst.ActivePartials = *f.ActivePartials
	}
	if err := applyPartials(dst, f.Partials); err != nil {
		return err
	}
	if e := f.Envelope; e != nil {
		if err := setRange(&dst.Envelope.Attack, e.Attack, "envelope.attack", additive.MinEnvelopeTime, additive.AttackMax); err != nil {
			return err
		}
		if err := setRange(&dst.Envelope.Decay, e.Decay, "envelope.decay", additive.MinEnvelopeTime, additive.DecayMax); err != nil {
			return err
		}
		if err := setRange(&dst.Envelope.Sustain, e.Sustain, "envelope.sustain", 0, 1); err != nil {
			return err
		}
		if err := setRange(&dst.Envelope.Release, e.Release, "envelope.release", additive.MinEnvelopeTime, additive.ReleaseMax); err != nil {
			return err
		}
	}
	if fl := f.Filter; fl != nil {
		if err := setRange(&dst.Filter.Cutoff, fl.Cutoff, "filter.cutoff", additive.FilterCutoffMin, additive.FilterCutoffMax); err != nil {
			return err
		}
		if err := setRange(&dst.Filter.Resonance, fl.Resonance, "filter.resonance", additive.FilterResonanceMin, additive.FilterResonanceMax); err != nil {
			return err
		}
		if fl.Bypass != nil {
			dst.Filter.Bypass = *fl.Bypass
		}
		if fl.Type != "" {
			ft, ok := additive.ParseFilterType(strings.ToLower(strings.TrimSpace(fl.Type)))
			if !ok {
				return fmt.Errorf("invalid filter.type %q (expected lowpass, bandpass or highpass)", fl.Type)
			}
			dst.Filter.Type = ft
		}
	}
	return nil
}

func applyPartials(dst *additive.Params, partials map[string]PartialSetting) error {
	if len(partials) == 0 {
		return nil
	}
	keys := make([]string, 0, len(partials))
	for k := range partials {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		idx, err := strconv.Atoi(k)
		if err != nil || idx < 1 || idx > additive.MaxPartials {
			return fmt.Errorf("invalid partials key %q (expected 1..%d)", k, additive.MaxPartials)
		}
		override := partials[k]
		pt := &dst.Partials[idx-1]
		if err := setRange(&pt.Distance, override.Distance, fmt.Sprintf("partials[%d].distance", idx), additive.PartialDistanceMin, additive.PartialDistanceMax); err != nil {
			return err
		}
		if err := setRange(&pt.Volume, override.Volume, fmt.Sprintf("partials[%d].volume", idx), additive.PartialVolumeMin, additive.PartialVolumeMax); err != nil {
			return err
		}
		if override.Muted != nil {
			pt.Muted = *override.Muted
		}
	}
	return nil
}

func setRange(dst *float32, v *float32, name string, lo, hi float32) error {
	if v == nil {
		return nil
	}
	if err := inRange(name, *v, lo, hi); err != nil {
		return err
	}
	*dst = *v
	return nil
}

func inRange(name string, v, lo, hi float32) error {
	if !(v >= lo && v <= hi) {
		return fmt.Errorf("%s must be in [%g,%g]", name, lo, hi)
	}
	return nil
}

// FromParams builds a complete preset file from p.
func FromParams(p *additive.Params) *File {
	f := &File{
		MasterGain:     ptr(p.MasterGain),
		ActivePartials: ptr(p.ActivePartials),
		Partials:       make(map[string]PartialSetting, additive.MaxPartials),
		Envelope: &EnvelopeSetting{
			Attack:  ptr(p.Envelope.Attack),
			Decay:   ptr(p.Envelope.Decay),
			Sustain: ptr(p.Envelope.Sustain),
			Release: ptr(p.Envelope.Release),
		},
		Filter: &FilterSetting{
			Cutoff:    ptr(p.Filter.Cutoff),
			Resonance: ptr(p.Filter.Resonance),
			Bypass:    ptr(p.Filter.Bypass),
			Type:      p.Filter.Type.String(),
		},
	}
	for i, pt := range p.Partials {
		f.Partials[strconv.Itoa(i+1)] = PartialSetting{
			Distance: ptr(pt.Distance),
			Volume:   ptr(pt.Volume),
			Muted:    ptr(pt.Muted),
		}
	}
	return f
}

// WriteJSON stores p as an indented preset file.
func WriteJSON(path string, p *additive.Params) error {
	if p == nil {
		return fmt.Errorf("nil params")
	}
	b, err := json.MarshalIndent(FromParams(p), "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	b = append(b, '\n')
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
