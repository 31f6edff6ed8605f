package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
)

var errQuit = errors.New("quit")

// keyRow maps a two-row computer keyboard layout onto one octave and a half
// starting at C.
var keyRow = map[byte]int{
	'a': 0, 'w': 1, 's': 2, 'e': 3, 'd': 4, 'f': 5, 't': 6,
	'g': 7, 'y': 8, 'h': 9, 'u': 10, 'j': 11, 'k': 12, 'o': 13,
	'l': 14, 'p': 15, ';': 16,
}

type keyboard struct {
	player   *Player
	octave   int
	velocity float32
	hold     time.Duration
}

// press handles one key byte. It returns errQuit for q, Esc or Ctrl-C.
func (k *keyboard) press(b byte) error {
	switch b {
	case 'q', 27, 3:
		return errQuit
	case 'z':
		k.octave = max(k.octave-1, -1)
		return nil
	case 'x':
		k.octave = min(k.octave+1, 8)
		return nil
	case ' ':
		k.player.AllNotesOff()
		return nil
	}
	off, ok := keyRow[b]
	if !ok {
		return nil
	}
	note := 12*(k.octave+1) + off
	if note < 0 || note > 127 {
		return nil
	}
	k.player.NoteOn(note, k.velocity)
	// raw terminals report no key release, so notes are held for a fixed time
	time.AfterFunc(k.hold, func() { k.player.NoteOff(note) })
	return nil
}

// runKeyboard reads stdin in raw mode until quit or ctx is done.
func runKeyboard(ctx context.Context, k *keyboard) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdin is not a terminal")
	}
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	defer term.Restore(fd, old)

	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				close(keys)
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()

	fmt.Print("keys a..; play, z/x octave, space all off, q quit\r\n")
	for {
		select {
		case <-ctx.Done():
			return nil
		case b, ok := <-keys:
			if !ok {
				return nil
			}
			if err := k.press(b); err != nil {
				return err
			}
		}
	}
}
