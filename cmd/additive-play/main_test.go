package main

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cwbudde/algo-additive/additive"
)

func newTestPlayer(t *testing.T) (*Player, *additive.ParamStore) {
	t.Helper()
	p := additive.NewDefaultParams()
	p.Filter.Bypass = true
	p.Envelope = additive.EnvelopeParams{Attack: 0.005, Decay: 0.01, Sustain: 0.5, Release: 0.01}
	store := additive.NewParamStore(p)
	return NewPlayer(store, 4, 48000, 128), store
}

func peak(x []float32) float32 {
	var m float32
	for _, v := range x {
		if v < 0 {
			v = -v
		}
		m = max(m, v)
	}
	return m
}

func TestPlayerAppliesQueuedEvents(t *testing.T) {
	p, _ := newTestPlayer(t)
	out := make([]float32, 1000)
	p.Fill(out)
	if peak(out) != 0 {
		t.Fatalf("silent player produced output")
	}

	if !p.NoteOn(60, 1) {
		t.Fatalf("queue rejected note")
	}
	p.Fill(out)
	if p.ActiveVoices() != 1 || peak(out) == 0 {
		t.Fatalf("note not started: voices=%d peak=%v", p.ActiveVoices(), peak(out))
	}

	p.NoteOff(60)
	tail := make([]float32, 4800)
	p.Fill(tail)
	if p.ActiveVoices() != 0 {
		t.Fatalf("voice still active after release")
	}
}

func TestPlayerQueueFull(t *testing.T) {
	p, _ := newTestPlayer(t)
	for i := 0; i < cap(p.events); i++ {
		if !p.NoteOn(60, 1) {
			t.Fatalf("queue full early at %d", i)
		}
	}
	if p.NoteOn(61, 1) {
		t.Fatalf("expected full queue to reject")
	}
	p.Fill(make([]float32, 64))
	if !p.NoteOn(61, 1) {
		t.Fatalf("queue not drained by Fill")
	}
}

func TestPCMReaderEncodesFloat32LE(t *testing.T) {
	p, _ := newTestPlayer(t)
	p.NoteOn(69, 1)
	r := newPCMReader(p)
	b := make([]byte, 4*300+3)
	n, err := r.Read(b)
	if err != nil || n != 4*300 {
		t.Fatalf("Read n=%d err=%v", n, err)
	}
	var nonZero bool
	for i := 0; i < 300; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
		if v != r.samples[i] {
			t.Fatalf("sample %d encoded as %v want %v", i, v, r.samples[i])
		}
		nonZero = nonZero || v != 0
	}
	if !nonZero {
		t.Fatalf("reader produced silence")
	}
}

func TestKeyboardPress(t *testing.T) {
	p, _ := newTestPlayer(t)
	k := &keyboard{player: p, octave: 4, velocity: 1, hold: time.Hour}

	if err := k.press('a'); err != nil {
		t.Fatalf("press: %v", err)
	}
	ev := <-p.events
	if ev.kind != eventNoteOn || ev.note != 60 {
		t.Fatalf("a should start C4, got %+v", ev)
	}
	k.press('x')
	k.press('h')
	if ev := <-p.events; ev.note != 81 {
		t.Fatalf("h one octave up should be A5, got %d", ev.note)
	}
	k.press('?')
	select {
	case ev := <-p.events:
		t.Fatalf("unmapped key queued %+v", ev)
	default:
	}
	for _, b := range []byte{'q', 27, 3} {
		if err := k.press(b); err != errQuit {
			t.Fatalf("key %d should quit, got %v", b, err)
		}
	}
}

func TestReloadPreset(t *testing.T) {
	_, store := newTestPlayer(t)
	path := filepath.Join(t.TempDir(), "live.json")
	if err := os.WriteFile(path, []byte(`{"active_partials": 2, "master_gain": 0.3}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !reloadPreset(path, store) {
		t.Fatalf("reload failed")
	}
	if got := store.Snapshot(); got.ActivePartials != 2 || got.MasterGain != 0.3 {
		t.Fatalf("store not updated: %+v", got)
	}

	if err := os.WriteFile(path, []byte(`{"active_partials": 99}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if reloadPreset(path, store) {
		t.Fatalf("invalid preset accepted")
	}
	if store.Snapshot().ActivePartials != 2 {
		t.Fatalf("invalid preset replaced live params")
	}
}

func TestNewBackendUnknown(t *testing.T) {
	p, _ := newTestPlayer(t)
	if _, err := newBackend("alsa", p, 48000); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
