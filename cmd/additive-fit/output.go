package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/analysis"
	"github.com/cwbudde/algo-additive/internal/audioio"
	"github.com/cwbudde/algo-additive/preset"
	"github.com/cwbudde/algo-additive/render"
)

type runReport struct {
	ReferencePath  string             `json:"reference_path"`
	PresetPath     string             `json:"preset_path,omitempty"`
	OutputPreset   string             `json:"output_preset"`
	SampleRate     int                `json:"sample_rate"`
	Note           int                `json:"note"`
	Fundamental    float64            `json:"fundamental_hz,omitempty"`
	ElapsedSec     float64            `json:"elapsed_seconds"`
	Evaluations    int                `json:"evaluations"`
	MayflyVariant  string             `json:"mayfly_variant"`
	BestScore      float64            `json:"best_score"`
	BestSimilarity float64            `json:"best_similarity"`
	BestMetrics    analysis.Metrics   `json:"best_metrics"`
	BestKnobs      map[string]float64 `json:"best_knobs"`
}

func newReport(defs []knobDef, best candidate, m analysis.Metrics) runReport {
	knobs := make(map[string]float64, len(defs))
	for i, d := range defs {
		knobs[d.Name] = best.Vals[i]
	}
	return runReport{
		BestScore:      m.Score,
		BestSimilarity: m.Similarity,
		BestMetrics:    m,
		BestKnobs:      knobs,
	}
}

// writeOutputs stores the fitted preset and its report next to each other.
func writeOutputs(outputPreset, reportPath string, p *additive.Params, rep runReport) error {
	if dir := filepath.Dir(outputPreset); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := preset.WriteJSON(outputPreset, p); err != nil {
		return err
	}
	if reportPath == "" {
		reportPath = outputPreset + ".report.json"
	}
	return writeJSON(reportPath, rep)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return os.WriteFile(path, b, 0o644)
}

// loadCandidateFromReport restores best_knobs from an earlier run. Knobs the
// report does not mention keep their fallback value.
func loadCandidateFromReport(path string, defs []knobDef, fallback candidate) (candidate, bool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fallback, false, nil
		}
		return fallback, false, err
	}
	var rep runReport
	if err := json.Unmarshal(b, &rep); err != nil {
		return fallback, false, fmt.Errorf("decode report: %w", err)
	}
	if len(rep.BestKnobs) == 0 {
		return fallback, false, nil
	}

	c := cloneCandidate(fallback)
	updated := false
	for i, d := range defs {
		if v, ok := rep.BestKnobs[d.Name]; ok {
			c.Vals[i] = clamp(v, d.Min, d.Max)
			updated = true
		}
	}
	if !updated {
		return fallback, false, nil
	}
	return c, true, nil
}

func writeCandidateWAV(path string, p *additive.Params, opt render.Options) error {
	return audioio.WriteMonoWAV(path, render.Note(p, opt), opt.SampleRate)
}
