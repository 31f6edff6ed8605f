package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/internal/audioio"
	"github.com/cwbudde/algo-additive/preset"
	"github.com/cwbudde/algo-additive/render"
)

func main() {
	note := flag.Int("note", 69, "MIDI note number (69 = A4 = 440 Hz)")
	velocity := flag.Float64("velocity", 1.0, "Velocity, 0..1 or MIDI 1..127")
	duration := flag.Float64("duration", 2.0, "Duration in seconds")
	releaseAfter := flag.Float64("release-after", 1.0, "Send NoteOff after this many seconds")
	decayDBFS := flag.Float64("decay-dbfs", math.Inf(1), "Auto-stop when block RMS after release falls below this dBFS (e.g. -90). Disabled by default")
	decayHoldBlocks := flag.Int("decay-hold-blocks", 4, "Consecutive below-threshold blocks required to stop in auto-decay mode")
	minDuration := flag.Float64("min-duration", 0.5, "Minimum render duration in seconds when using -decay-dbfs")
	maxDuration := flag.Float64("max-duration", 20.0, "Maximum render duration in seconds when using -decay-dbfs")
	sampleRate := flag.Int("sample-rate", 48000, "Render sample rate in Hz")
	blockSize := flag.Int("block-size", additive.DefaultBlockSize, "Render block size in samples")
	outputRate := flag.Int("output-rate", 0, "Resample the result to this rate before writing (0 = render rate)")
	presetPath := flag.String("preset", "", "Preset JSON file path (defaults when empty)")
	filterType := flag.String("filter", "", "Override filter type: lowpass, bandpass, highpass or off")
	normalize := flag.Float64("normalize", 0, "Normalize peak to this level (0 = off)")
	output := flag.String("output", "output.wav", "Output WAV file path")
	flag.Parse()

	params, err := loadParams(*presetPath, *filterType)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opt := render.DefaultOptions()
	opt.SampleRate = *sampleRate
	opt.BlockSize = *blockSize
	opt.Note = *note
	opt.Velocity = velocityValue(*velocity)
	opt.Duration = *duration
	opt.ReleaseAfter = *releaseAfter
	opt.TailDBFS = *decayDBFS
	opt.MinDuration = *minDuration
	opt.MaxDuration = *maxDuration
	opt.HoldBlocks = *decayHoldBlocks

	fmt.Printf("Rendering note %d (%.2f Hz), velocity %.3f, at %d Hz with %d partials...\n",
		opt.Note, additive.MIDINoteToFreq(opt.Note), opt.Velocity, opt.SampleRate, params.ActivePartials)

	samples := render.Note(params, opt)
	if !math.IsInf(*decayDBFS, 1) {
		fmt.Printf("Auto-stop at %d frames (%.3fs), threshold %.1f dBFS\n", len(samples), float64(len(samples))/float64(opt.SampleRate), *decayDBFS)
	}

	if *normalize > 0 {
		g := audioio.NormalizePeak(samples, float32(*normalize))
		fmt.Printf("Normalized peak with gain %.3f\n", g)
	}

	rate := opt.SampleRate
	if *outputRate > 0 && *outputRate != rate {
		samples, err = audioio.ResampleFloat32(samples, rate, *outputRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error resampling: %v\n", err)
			os.Exit(1)
		}
		rate = *outputRate
	}

	if err := audioio.WriteMonoWAV(*output, samples, rate); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing WAV file: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Successfully wrote %s (%d frames, peak %.3f)\n", *output, len(samples), audioio.Peak(samples))
}

func loadParams(path, filter string) (*additive.Params, error) {
	params := additive.NewDefaultParams()
	if path != "" {
		p, err := preset.LoadJSON(path)
		if err != nil {
			return nil, fmt.Errorf("loading preset %q: %w", path, err)
		}
		params = p
	}
	switch filter {
	case "":
	case "off", "none":
		params.Filter.Bypass = true
	default:
		ft, ok := additive.ParseFilterType(filter)
		if !ok {
			return nil, fmt.Errorf("unknown filter type %q", filter)
		}
		params.Filter.Type = ft
		params.Filter.Bypass = false
	}
	return params, nil
}

// velocityValue accepts either a normalized velocity or a MIDI velocity.
func velocityValue(v float64) float32 {
	if v > 1 {
		v /= 127
	}
	return float32(math.Max(0, math.Min(1, v)))
}
