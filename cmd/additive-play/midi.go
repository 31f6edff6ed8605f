package main

import (
	"context"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func listMIDIInputs() ([]string, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ins))
	for _, in := range ins {
		names = append(names, in.String())
	}
	return names, nil
}

// findMIDIInput returns the first port whose name contains want
// (case-insensitive). An empty want picks the first port.
func findMIDIInput(want string) (drivers.In, error) {
	ins, err := drivers.Ins()
	if err != nil {
		return nil, fmt.Errorf("list MIDI inputs: %w", err)
	}
	if len(ins) == 0 {
		return nil, fmt.Errorf("no MIDI inputs available")
	}
	if want == "" {
		return ins[0], nil
	}
	for _, in := range ins {
		if strings.Contains(strings.ToLower(in.String()), strings.ToLower(want)) {
			return in, nil
		}
	}
	return nil, fmt.Errorf("MIDI input %q not found", want)
}

// runMIDI forwards note messages from the named port until ctx is done.
func runMIDI(ctx context.Context, name string, p *Player) error {
	in, err := findMIDIInput(name)
	if err != nil {
		return err
	}
	if err := in.Open(); err != nil {
		return fmt.Errorf("open MIDI port %q: %w", in.String(), err)
	}
	defer in.Close()

	listenErr := make(chan error, 1)
	stop, err := midi.ListenTo(in, func(msg midi.Message, _ int32) {
		handleMIDI(msg, p)
	}, midi.HandleError(func(err error) {
		select {
		case listenErr <- err:
		default:
		}
	}))
	if err != nil {
		return fmt.Errorf("listen on %q: %w", in.String(), err)
	}
	defer stop()
	logger.Info("MIDI input connected", "device", in.String())

	select {
	case <-ctx.Done():
		return nil
	case err := <-listenErr:
		p.AllNotesOff()
		return fmt.Errorf("MIDI input %q: %w", in.String(), err)
	}
}

func handleMIDI(msg midi.Message, p *Player) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		logger.Debug("note on", "ch", ch, "key", key, "vel", vel)
		if !p.NoteOn(int(key), float32(vel)/127) {
			logger.Warn("event queue full, dropped note on", "key", key)
		}
	case msg.GetNoteEnd(&ch, &key):
		logger.Debug("note off", "ch", ch, "key", key)
		p.NoteOff(int(key))
	case isAllNotesOff(msg):
		p.AllNotesOff()
	}
}

// isAllNotesOff matches CC 120 (all sound off) and CC 123 (all notes off).
func isAllNotesOff(msg midi.Message) bool {
	var ch, cc, val uint8
	if !msg.GetControlChange(&ch, &cc, &val) {
		return false
	}
	return cc == 120 || cc == 123
}
