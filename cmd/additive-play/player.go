package main

import (
	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/render"
)

type eventKind uint8

const (
	eventNoteOn eventKind = iota
	eventNoteOff
	eventAllOff
)

type noteEvent struct {
	kind     eventKind
	note     int
	velocity float32
}

// Player owns the render chain on the audio thread. Control goroutines
// post note events; they are applied at the start of the next Fill.
type Player struct {
	chain     *render.Chain
	events    chan noteEvent
	blockSize int
}

// NewPlayer prepares a chain reading parameters from store.
func NewPlayer(store *additive.ParamStore, voices int, sampleRate float64, blockSize int) *Player {
	if blockSize <= 0 {
		blockSize = additive.DefaultBlockSize
	}
	return &Player{
		chain:     render.NewChain(voices, store, sampleRate, blockSize),
		events:    make(chan noteEvent, 256),
		blockSize: blockSize,
	}
}

// NoteOn queues a note start. It reports false when the queue is full.
func (p *Player) NoteOn(note int, velocity float32) bool {
	return p.post(noteEvent{kind: eventNoteOn, note: note, velocity: velocity})
}

// NoteOff queues a note release.
func (p *Player) NoteOff(note int) bool {
	return p.post(noteEvent{kind: eventNoteOff, note: note})
}

// AllNotesOff queues a release of every voice.
func (p *Player) AllNotesOff() bool {
	return p.post(noteEvent{kind: eventAllOff})
}

func (p *Player) post(ev noteEvent) bool {
	select {
	case p.events <- ev:
		return true
	default:
		return false
	}
}

func (p *Player) drain() {
	for {
		select {
		case ev := <-p.events:
			switch ev.kind {
			case eventNoteOn:
				p.chain.NoteOn(ev.note, ev.velocity)
			case eventNoteOff:
				p.chain.NoteOff(ev.note, 0)
			case eventAllOff:
				p.chain.AllNotesOff()
			}
		default:
			return
		}
	}
}

// Fill overwrites out with the next len(out) samples. It is called from the
// audio callback and does not allocate.
func (p *Player) Fill(out []float32) {
	p.drain()
	for len(out) > 0 {
		n := min(len(out), p.blockSize)
		p.chain.Process(out[:n])
		out = out[n:]
	}
}

// ActiveVoices reports the number of sounding voices.
func (p *Player) ActiveVoices() int {
	return p.chain.ActiveVoices()
}
