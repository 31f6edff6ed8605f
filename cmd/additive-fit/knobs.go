package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-additive/additive"
)

type knobDef struct {
	Name string
	Min  float64
	Max  float64
}

type candidate struct {
	Vals []float64
}

// renderSettings are fitted alongside the preset but are not part of it.
type renderSettings struct {
	releaseAfter float64
}

// knobSet builds the search space for the first `partials` partials plus the
// envelope and gain.
func knobSet(base *additive.Params, partials int, fitEnvelope bool) ([]knobDef, candidate) {
	partials = max(0, min(partials, additive.MaxPartials))
	defs := []knobDef{
		{Name: "master_gain", Min: 0.05, Max: float64(additive.MasterGainMax)},
	}
	vals := []float64{float64(base.MasterGain)}

	for i := 0; i < partials; i++ {
		pt := base.Partials[i]
		defs = append(defs,
			knobDef{Name: fmt.Sprintf("partials.%d.distance", i+1), Min: float64(additive.PartialDistanceMin), Max: float64(additive.PartialDistanceMax)},
			knobDef{Name: fmt.Sprintf("partials.%d.volume", i+1), Min: float64(additive.PartialVolumeMin), Max: float64(additive.PartialVolumeMax)},
		)
		vals = append(vals, float64(pt.Distance), float64(pt.Volume))
	}

	if fitEnvelope {
		e := base.Envelope
		defs = append(defs,
			knobDef{Name: "envelope.attack", Min: float64(additive.MinEnvelopeTime), Max: 0.5},
			knobDef{Name: "envelope.decay", Min: float64(additive.MinEnvelopeTime), Max: float64(additive.DecayMax)},
			knobDef{Name: "envelope.sustain", Min: 0, Max: 1},
			knobDef{Name: "envelope.release", Min: float64(additive.MinEnvelopeTime), Max: float64(additive.ReleaseMax)},
			knobDef{Name: "render.release_after", Min: 0.1, Max: 5},
		)
		vals = append(vals, float64(e.Attack), float64(e.Decay), float64(e.Sustain), float64(e.Release), 1.0)
	}

	for i := range vals {
		vals[i] = clamp(vals[i], defs[i].Min, defs[i].Max)
	}
	return defs, candidate{Vals: vals}
}

// applyCandidate returns a copy of base with the knob values written in.
func applyCandidate(base *additive.Params, partials int, defs []knobDef, c candidate) (*additive.Params, renderSettings) {
	p := *base
	if partials > p.ActivePartials {
		p.ActivePartials = min(partials, additive.MaxPartials)
	}
	rs := renderSettings{releaseAfter: 1.0}

	for i, def := range defs {
		v := c.Vals[i]
		switch {
		case def.Name == "master_gain":
			p.MasterGain = float32(v)
		case strings.HasPrefix(def.Name, "partials."):
			idx, field, ok := parsePartialKnob(def.Name)
			if !ok {
				continue
			}
			switch field {
			case "distance":
				p.Partials[idx].Distance = float32(v)
			case "volume":
				p.Partials[idx].Volume = float32(v)
			}
		case def.Name == "envelope.attack":
			p.Envelope.Attack = float32(v)
		case def.Name == "envelope.decay":
			p.Envelope.Decay = float32(v)
		case def.Name == "envelope.sustain":
			p.Envelope.Sustain = float32(v)
		case def.Name == "envelope.release":
			p.Envelope.Release = float32(v)
		case def.Name == "render.release_after":
			rs.releaseAfter = math.Max(v, 0.05)
		}
	}
	p.Sanitize()
	return &p, rs
}

// parsePartialKnob splits "partials.<n>.<field>" into a zero based index.
func parsePartialKnob(name string) (int, string, bool) {
	parts := strings.Split(name, ".")
	if len(parts) != 3 || parts[0] != "partials" {
		return 0, "", false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 1 || n > additive.MaxPartials {
		return 0, "", false
	}
	return n - 1, parts[2], true
}

func fromNormalized(pos []float64, defs []knobDef) candidate {
	vals := make([]float64, len(defs))
	for i := range defs {
		x := 0.0
		if i < len(pos) {
			x = clamp(pos[i], 0, 1)
		}
		vals[i] = defs[i].Min + x*(defs[i].Max-defs[i].Min)
	}
	return candidate{Vals: vals}
}

func cloneCandidate(c candidate) candidate {
	vals := make([]float64, len(c.Vals))
	copy(vals, c.Vals)
	return candidate{Vals: vals}
}
