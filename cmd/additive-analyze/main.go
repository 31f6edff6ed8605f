package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/analysis"
	"github.com/cwbudde/algo-additive/internal/audioio"
	"github.com/cwbudde/algo-additive/preset"
	"github.com/cwbudde/algo-additive/render"
)

type result struct {
	Reference   string            `json:"reference"`
	SampleRate  int               `json:"sample_rate"`
	Fundamental float64           `json:"fundamental_hz"`
	Harmonics   []PartialLevel    `json:"harmonics"`
	Bands       []BandLevel       `json:"bands"`
	Metrics     *analysis.Metrics `json:"metrics,omitempty"`
}

func main() {
	refPath := flag.String("reference", "reference/a4.wav", "Reference WAV")
	candidatePath := flag.String("candidate", "", "Candidate WAV; if empty and -preset is set, the preset is rendered")
	presetPath := flag.String("preset", "", "Preset to render as candidate")
	note := flag.Int("note", 69, "MIDI note")
	velocity := flag.Float64("velocity", 1, "Velocity (0..1) for the rendered candidate")
	releaseAfter := flag.Float64("release-after", 1.0, "Release after seconds for the rendered candidate")
	sampleRate := flag.Int("sample-rate", 48000, "Analysis sample rate")
	fftSize := flag.Int("fft-size", 4096, "FFT size (power of two)")
	harmonics := flag.Int("harmonics", additive.MaxPartials, "Number of harmonics above f0 to report")
	writeCandidate := flag.String("write-candidate", "", "Optional path to write the rendered candidate WAV")
	jsonOut := flag.Bool("json", false, "Print results as JSON")
	flag.Parse()

	sr := *sampleRate
	ref, refSR, err := audioio.ReadWAVMono(*refPath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	if ref, err = audioio.ResampleIfNeeded(ref, refSR, sr); err != nil {
		die("failed to resample reference: %v", err)
	}

	var cand []float64
	switch {
	case *candidatePath != "":
		c, csr, err := audioio.ReadWAVMono(*candidatePath)
		if err != nil {
			die("failed to read candidate: %v", err)
		}
		if cand, err = audioio.ResampleIfNeeded(c, csr, sr); err != nil {
			die("failed to resample candidate: %v", err)
		}
	case *presetPath != "":
		params, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("preset: %v", err)
		}
		opt := render.DefaultOptions()
		opt.SampleRate = sr
		opt.Note = *note
		opt.Velocity = float32(*velocity)
		opt.ReleaseAfter = *releaseAfter
		opt.TailDBFS = -90
		opt.MinDuration = float64(len(ref)) / float64(sr)
		mono := render.Note(params, opt)
		if *writeCandidate != "" {
			if err := audioio.WriteMonoWAV(*writeCandidate, mono, sr); err != nil {
				die("failed to write candidate wav: %v", err)
			}
		}
		cand = audioio.ToFloat64(mono)
	}

	an, err := analysis.NewAnalyzer(*fftSize)
	if err != nil {
		die("analyzer: %v", err)
	}

	res := result{Reference: *refPath, SampleRate: sr}
	spec := an.Spectrum(ref, sr)
	nominal := float64(additive.MIDINoteToFreq(*note))
	semitone := math.Pow(2, 1.0/12)
	res.Fundamental = spec.Fundamental(nominal/semitone, nominal*semitone)
	if res.Fundamental > 0 {
		res.Harmonics = harmonicLevels(spec, res.Fundamental, *harmonics)
	}
	res.Bands = bandLevels(an, ref, cand, sr)
	if cand != nil {
		m := analysis.Compare(ref, cand, sr)
		res.Metrics = &m
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			die("encode: %v", err)
		}
		return
	}
	printResult(res)
}

func printResult(res result) {
	fmt.Printf("Reference: %s @ %d Hz\n", res.Reference, res.SampleRate)
	fmt.Printf("Fundamental: %.2f Hz\n\n", res.Fundamental)
	for _, h := range res.Harmonics {
		fmt.Printf("  x%-4.0f %8.1f Hz  %6.1f dB\n", h.Ratio, h.Hz, h.DB)
	}
	fmt.Println()

	window := ""
	for _, b := range res.Bands {
		if b.Window != window {
			window = b.Window
			fmt.Printf("--- %s ---\n", window)
		}
		if b.HasCandDB {
			fmt.Printf("  %-22s ref=%6.1fdB  cand=%6.1fdB  diff=%+5.1fdB%s\n", b.Band, b.RefDB, b.CandDB, b.DiffDB, marker(b.DiffDB))
		} else {
			fmt.Printf("  %-22s ref=%6.1fdB\n", b.Band, b.RefDB)
		}
	}

	if m := res.Metrics; m != nil {
		fmt.Println()
		fmt.Printf("Lag:            %d samples\n", m.LagSamples)
		fmt.Printf("Time RMSE:      %.4f\n", m.TimeRMSE)
		fmt.Printf("Envelope RMSE:  %.2f dB\n", m.EnvelopeRMSEDB)
		fmt.Printf("Spectral RMSE:  %.2f dB\n", m.SpectralRMSEDB)
		fmt.Printf("Score:          %.4f (similarity %.2f%%)\n", m.Score, m.Similarity*100)
	}
}

func die(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
