package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/analysis"
	"github.com/cwbudde/algo-additive/internal/audioio"
	"github.com/cwbudde/algo-additive/render"
	"github.com/cwbudde/mayfly"
)

type optimizationConfig struct {
	reference     []float64
	baseParams    *additive.Params
	defs          []knobDef
	initCandidate candidate
	partials      int
	render        render.Options
	seed          int64
	timeBudget    time.Duration
	maxEvals      int
	reportEvery   int
	variant       string
	pop           int
	roundEvals    int

	// onImprove is called after every new best candidate.
	onImprove func(best candidate, m analysis.Metrics, evals int)
}

type optimizationResult struct {
	best        candidate
	bestMetrics analysis.Metrics
	evals       int
	rounds      int
	elapsed     time.Duration
}

func (cfg *optimizationConfig) evaluate(c candidate) analysis.Metrics {
	p, rs := applyCandidate(cfg.baseParams, cfg.partials, cfg.defs, c)
	opt := cfg.render
	opt.ReleaseAfter = rs.releaseAfter
	mono := render.Note(p, opt)
	return analysis.Compare(cfg.reference, audioio.ToFloat64(mono), opt.SampleRate)
}

func runOptimization(cfg *optimizationConfig) (*optimizationResult, error) {
	start := time.Now()
	deadline := start.Add(cfg.timeBudget)

	best := cloneCandidate(cfg.initCandidate)
	bestM := cfg.evaluate(best)
	evals := 1
	fmt.Printf("Start score=%.4f similarity=%.2f%%\n", bestM.Score, bestM.Similarity*100.0)

	round := 0
	for evals < cfg.maxEvals && time.Now().Before(deadline) {
		round++
		budget := min(cfg.roundEvals, cfg.maxEvals-evals)
		iters := max(1, budget/(2*cfg.pop))

		mc, err := newMayflyConfig(cfg.variant, cfg.pop, len(cfg.defs), iters)
		if err != nil {
			return nil, err
		}
		mc.Rand = rand.New(rand.NewSource(cfg.seed + int64(round)*7919))
		mc.ObjectiveFunc = func(pos []float64) float64 {
			if evals >= cfg.maxEvals || time.Now().After(deadline) {
				return bestM.Score + 1.0
			}
			cand := fromNormalized(pos, cfg.defs)
			m := cfg.evaluate(cand)
			evals++
			if m.Score < bestM.Score {
				best = cand
				bestM = m
				fmt.Printf("Improved eval=%d score=%.4f sim=%.2f%%\n", evals, bestM.Score, bestM.Similarity*100.0)
				if cfg.onImprove != nil {
					cfg.onImprove(best, bestM, evals)
				}
			}
			if cfg.reportEvery > 0 && evals%cfg.reportEvery == 0 {
				fmt.Printf("Progress round=%d eval=%d elapsed=%.1fs best=%.4f\n", round, evals, time.Since(start).Seconds(), bestM.Score)
			}
			return m.Score
		}

		before := evals
		if _, err := runMayfly(mc); err != nil {
			fmt.Fprintf(os.Stderr, "mayfly round %d failed: %v\n", round, err)
		}
		if evals == before {
			fmt.Fprintf(os.Stderr, "mayfly round %d made no evaluations, stopping\n", round)
			break
		}
	}

	return &optimizationResult{
		best:        best,
		bestMetrics: bestM,
		evals:       evals,
		rounds:      round,
		elapsed:     time.Since(start),
	}, nil
}

func newMayflyConfig(variant string, pop int, dims int, iters int) (*mayfly.Config, error) {
	var cfg *mayfly.Config
	switch variant {
	case "ma":
		cfg = mayfly.NewDefaultConfig()
	case "desma":
		cfg = mayfly.NewDESMAConfig()
	case "olce":
		cfg = mayfly.NewOLCEConfig()
	case "eobbma":
		cfg = mayfly.NewEOBBMAConfig()
	case "gsasma":
		cfg = mayfly.NewGSASMAConfig()
	case "mpma":
		cfg = mayfly.NewMPMAConfig()
	case "aoblmoa":
		cfg = mayfly.NewAOBLMOAConfig()
	default:
		return nil, fmt.Errorf("unsupported mayfly variant %q", variant)
	}
	cfg.ProblemSize = dims
	cfg.LowerBound = 0.0
	cfg.UpperBound = 1.0
	cfg.MaxIterations = iters
	cfg.NPop = pop
	cfg.NPopF = pop
	// NC/2 parent pairs are drawn from both populations.
	cfg.NC = 2 * pop
	cfg.NM = max(1, int(math.Round(0.05*float64(pop))))
	return cfg, nil
}

func runMayfly(cfg *mayfly.Config) (_ *mayfly.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mayfly panic: %v", r)
		}
	}()
	return mayfly.Optimize(cfg)
}
