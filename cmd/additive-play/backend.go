package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/gordonklaus/portaudio"
)

// audioBackend streams a Player to an output device.
type audioBackend interface {
	Start() error
	Close() error
}

func newBackend(name string, p *Player, sampleRate int) (audioBackend, error) {
	switch name {
	case "oto":
		return newOtoBackend(p, sampleRate)
	case "portaudio":
		return newPortAudioBackend(p, sampleRate)
	}
	return nil, fmt.Errorf("unknown audio backend %q (expected oto or portaudio)", name)
}

type otoBackend struct {
	ctx    *oto.Context
	player *oto.Player
	src    *pcmReader
}

func newOtoBackend(p *Player, sampleRate int) (*otoBackend, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return nil, fmt.Errorf("oto context: %w", err)
	}
	<-ready
	return &otoBackend{ctx: ctx, src: newPCMReader(p)}, nil
}

func (b *otoBackend) Start() error {
	b.player = b.ctx.NewPlayer(b.src)
	b.player.Play()
	return nil
}

func (b *otoBackend) Close() error {
	if b.player == nil {
		return nil
	}
	err := b.player.Close()
	b.player = nil
	return err
}

// pcmReader adapts a Player to the byte stream oto pulls from.
type pcmReader struct {
	mu      sync.Mutex
	player  *Player
	samples []float32
}

func newPCMReader(p *Player) *pcmReader {
	return &pcmReader{player: p, samples: make([]float32, 4096)}
}

func (r *pcmReader) Read(b []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(b) / 4
	if len(r.samples) < n {
		r.samples = make([]float32, n)
	}
	s := r.samples[:n]
	r.player.Fill(s)
	for i, v := range s {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(v))
	}
	return 4 * n, nil
}

type portAudioBackend struct {
	stream *portaudio.Stream
}

func newPortAudioBackend(p *Player, sampleRate int) (*portAudioBackend, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	// mono out
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(sampleRate), portaudio.FramesPerBufferUnspecified, func(out []float32) {
		p.Fill(out)
	})
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open default stream: %w", err)
	}
	return &portAudioBackend{stream: stream}, nil
}

func (b *portAudioBackend) Start() error {
	return b.stream.Start()
}

func (b *portAudioBackend) Close() error {
	// ignore Stop error, the stream is closed right after
	_ = b.stream.Stop()
	err := b.stream.Close()
	portaudio.Terminate()
	return err
}
