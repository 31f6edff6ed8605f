package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/analysis"
	"github.com/cwbudde/algo-additive/internal/audioio"
	"github.com/cwbudde/algo-additive/preset"
	"github.com/cwbudde/algo-additive/render"
)

func main() {
	referencePath := flag.String("reference", "reference/a4.wav", "Reference WAV path")
	presetPath := flag.String("preset", "", "Base preset JSON path (defaults when empty)")
	outputPreset := flag.String("output-preset", "fitted.json", "Path to write best fitted preset JSON")
	reportPath := flag.String("report", "", "Optional report JSON path (default: <output-preset>.report.json)")
	note := flag.Int("note", 69, "MIDI note of the reference")
	partials := flag.Int("partials", additive.MaxPartials, "Number of partials to fit")
	fitEnvelope := flag.Bool("fit-envelope", true, "Fit ADSR times and the note-off time")
	seedSpectrum := flag.Bool("seed-spectrum", true, "Start from partials estimated from the reference spectrum")
	sampleRate := flag.Int("sample-rate", 48000, "Render/analysis sample rate")
	seed := flag.Int64("seed", 1, "Random seed")
	timeBudget := flag.Duration("time-budget", 2*time.Minute, "Optimization time budget")
	maxEvals := flag.Int("max-evals", 5000, "Maximum objective evaluations")
	reportEvery := flag.Int("report-every", 50, "Print progress every N evaluations")
	decayDBFS := flag.Float64("decay-dbfs", -90.0, "Auto-stop threshold in dBFS")
	maxDuration := flag.Float64("max-duration", 10.0, "Maximum render duration in seconds")
	writeBest := flag.String("write-best-candidate", "", "Optional WAV path to write the best candidate render")
	resume := flag.Bool("resume", true, "Resume from previous best_knobs report when available")

	mayflyVariant := flag.String("mayfly-variant", "desma", "Mayfly variant: ma|desma|olce|eobbma|gsasma|mpma|aoblmoa")
	mayflyPop := flag.Int("mayfly-pop", 10, "Male and female population size per Mayfly run")
	mayflyRoundEvals := flag.Int("mayfly-round-evals", 240, "Target eval budget per Mayfly round")
	flag.Parse()

	if *maxEvals < 1 {
		die("max-evals must be >= 1")
	}
	if *timeBudget <= 0 {
		die("time-budget must be > 0")
	}
	*mayflyPop = max(*mayflyPop, 2)
	*mayflyRoundEvals = max(*mayflyRoundEvals, 2*(*mayflyPop))
	variant := strings.ToLower(*mayflyVariant)

	base := additive.NewDefaultParams()
	if *presetPath != "" {
		p, err := preset.LoadJSON(*presetPath)
		if err != nil {
			die("failed to load preset: %v", err)
		}
		base = p
	}

	ref, refSR, err := audioio.ReadWAVMono(*referencePath)
	if err != nil {
		die("failed to read reference: %v", err)
	}
	ref, err = audioio.ResampleIfNeeded(ref, refSR, *sampleRate)
	if err != nil {
		die("failed to resample reference: %v", err)
	}

	var f0 float64
	if *seedSpectrum {
		seeded, f, err := seedFromSpectrum(base, ref, *sampleRate, *note, *partials)
		if err != nil {
			die("spectral seed failed: %v", err)
		}
		base, f0 = seeded, f
		fmt.Printf("Reference fundamental %.2f Hz (nominal %.2f Hz)\n", f0, additive.MIDINoteToFreq(*note))
	}

	defs, initCand := knobSet(base, *partials, *fitEnvelope)
	if *reportPath == "" {
		*reportPath = *outputPreset + ".report.json"
	}
	if *resume {
		if resumed, ok, err := loadCandidateFromReport(*reportPath, defs, initCand); err != nil {
			fmt.Fprintf(os.Stderr, "resume skipped (%s): %v\n", *reportPath, err)
		} else if ok {
			initCand = resumed
			fmt.Printf("Resumed candidate from %s\n", *reportPath)
		}
	}

	opt := render.DefaultOptions()
	opt.SampleRate = *sampleRate
	opt.Note = *note
	opt.TailDBFS = *decayDBFS
	opt.MinDuration = float64(len(ref)) / float64(*sampleRate)
	opt.MaxDuration = *maxDuration

	report := func(best candidate, m analysis.Metrics, evals int, elapsed time.Duration) error {
		p, _ := applyCandidate(base, *partials, defs, best)
		rep := newReport(defs, best, m)
		rep.ReferencePath = *referencePath
		rep.PresetPath = *presetPath
		rep.OutputPreset = *outputPreset
		rep.SampleRate = *sampleRate
		rep.Note = *note
		rep.Fundamental = f0
		rep.ElapsedSec = elapsed.Seconds()
		rep.Evaluations = evals
		rep.MayflyVariant = variant
		return writeOutputs(*outputPreset, *reportPath, p, rep)
	}
	writeBestWAV := func(best candidate) {
		if *writeBest == "" {
			return
		}
		p, rs := applyCandidate(base, *partials, defs, best)
		o := opt
		o.ReleaseAfter = rs.releaseAfter
		if err := writeCandidateWAV(*writeBest, p, o); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write best candidate wav: %v\n", err)
		}
	}

	start := time.Now()
	cfg := &optimizationConfig{
		reference:     ref,
		baseParams:    base,
		defs:          defs,
		initCandidate: initCand,
		partials:      *partials,
		render:        opt,
		seed:          *seed,
		timeBudget:    *timeBudget,
		maxEvals:      *maxEvals,
		reportEvery:   max(*reportEvery, 1),
		variant:       variant,
		pop:           *mayflyPop,
		roundEvals:    *mayflyRoundEvals,
		onImprove: func(best candidate, m analysis.Metrics, evals int) {
			if err := report(best, m, evals, time.Since(start)); err != nil {
				fmt.Fprintf(os.Stderr, "checkpoint write failed: %v\n", err)
			}
			writeBestWAV(best)
		},
	}

	res, err := runOptimization(cfg)
	if err != nil {
		die("optimization failed: %v", err)
	}
	if err := report(res.best, res.bestMetrics, res.evals, res.elapsed); err != nil {
		die("failed to write outputs: %v", err)
	}
	writeBestWAV(res.best)

	fmt.Printf("Done evals=%d rounds=%d elapsed=%.1fs best_score=%.4f best_similarity=%.2f%% variant=%s\n",
		res.evals, res.rounds, res.elapsed.Seconds(), res.bestMetrics.Score, res.bestMetrics.Similarity*100.0, variant)
}
