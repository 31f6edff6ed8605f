package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/preset"
	"golang.org/x/sync/errgroup"
)

// logger is replaced by initLogger once flags are parsed.
var logger = slog.Default()

func initLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level:     level,
		AddSource: debug,
	})
	logger = slog.New(h)
	slog.SetDefault(logger)
}

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	backendName := flag.String("backend", "oto", "Audio backend: oto or portaudio")
	sampleRate := flag.Int("sample-rate", 48000, "Output sample rate in Hz")
	blockSize := flag.Int("block-size", 256, "Render block size in samples")
	voices := flag.Int("voices", additive.DefaultVoices, "Polyphony")
	presetPath := flag.String("preset", "", "Preset JSON file path, reloaded on change")
	midiIn := flag.String("midi", "", "MIDI input name (substring match); empty disables MIDI")
	listMIDI := flag.Bool("list-midi", false, "List MIDI inputs and exit")
	useKeyboard := flag.Bool("keyboard", true, "Play notes from the computer keyboard")
	velocity := flag.Float64("velocity", 0.8, "Keyboard velocity (0..1)")
	hold := flag.Duration("hold", 400*time.Millisecond, "Keyboard note length")
	flag.Parse()

	initLogger(*debug)

	if *listMIDI {
		names, err := listMIDIInputs()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing MIDI inputs: %v\n", err)
			os.Exit(1)
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return
	}

	if err := run(config{
		backend:    *backendName,
		sampleRate: *sampleRate,
		blockSize:  *blockSize,
		voices:     *voices,
		presetPath: *presetPath,
		midiIn:     *midiIn,
		keyboard:   *useKeyboard,
		velocity:   float32(*velocity),
		hold:       *hold,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type config struct {
	backend    string
	sampleRate int
	blockSize  int
	voices     int
	presetPath string
	midiIn     string
	keyboard   bool
	velocity   float32
	hold       time.Duration
}

func run(cfg config) error {
	params := additive.NewDefaultParams()
	if cfg.presetPath != "" {
		p, err := preset.LoadJSON(cfg.presetPath)
		if err != nil {
			return fmt.Errorf("loading preset %q: %w", cfg.presetPath, err)
		}
		params = p
	}
	store := additive.NewParamStore(params)
	player := NewPlayer(store, cfg.voices, float64(cfg.sampleRate), cfg.blockSize)

	backend, err := newBackend(cfg.backend, player, cfg.sampleRate)
	if err != nil {
		return err
	}
	defer backend.Close()
	if err := backend.Start(); err != nil {
		return fmt.Errorf("start %s backend: %w", cfg.backend, err)
	}
	logger.Info("audio started",
		"backend", cfg.backend,
		"sample_rate", cfg.sampleRate,
		"block_size", cfg.blockSize,
		"voices", cfg.voices,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if cfg.presetPath != "" {
		g.Go(func() error {
			return watchPreset(ctx, cfg.presetPath, store)
		})
	}
	if cfg.midiIn != "" {
		g.Go(func() error {
			return runMIDI(ctx, cfg.midiIn, player)
		})
	}
	if cfg.keyboard {
		g.Go(func() error {
			return runKeyboard(ctx, &keyboard{
				player:   player,
				octave:   4,
				velocity: cfg.velocity,
				hold:     cfg.hold,
			})
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		return nil
	})

	err = g.Wait()
	player.AllNotesOff()
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
