//go:build js && wasm

package main

import (
	"syscall/js"
	"unsafe"

	"github.com/cwbudde/algo-additive/additive"
	"github.com/cwbudde/algo-additive/preset"
	"github.com/cwbudde/algo-additive/render"
)

const maxFrames = 128

var (
	chain        *render.Chain
	store        *additive.ParamStore
	outputBuffer []float32
)

func main() {
	c := make(chan struct{})

	js.Global().Set("wasmInit", js.FuncOf(wasmInit))
	js.Global().Set("wasmNoteOn", js.FuncOf(wasmNoteOn))
	js.Global().Set("wasmNoteOff", js.FuncOf(wasmNoteOff))
	js.Global().Set("wasmAllNotesOff", js.FuncOf(wasmAllNotesOff))
	js.Global().Set("wasmLoadPreset", js.FuncOf(wasmLoadPreset))
	js.Global().Set("wasmSetMasterGain", js.FuncOf(wasmSetMasterGain))
	js.Global().Set("wasmSetActivePartials", js.FuncOf(wasmSetActivePartials))
	js.Global().Set("wasmSetPartial", js.FuncOf(wasmSetPartial))
	js.Global().Set("wasmSetEnvelope", js.FuncOf(wasmSetEnvelope))
	js.Global().Set("wasmSetFilter", js.FuncOf(wasmSetFilter))
	js.Global().Set("wasmProcessBlock", js.FuncOf(wasmProcessBlock))
	js.Global().Set("wasmGetMemoryBuffer", js.FuncOf(wasmGetMemoryBuffer))

	println("WASM additive module loaded")
	<-c
}

// wasmInit(sampleRate, voices?)
func wasmInit(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return nil
	}
	sampleRate := args[0].Float()
	voices := additive.DefaultVoices
	if len(args) > 1 && args[1].Int() > 0 {
		voices = args[1].Int()
	}

	store = additive.NewParamStore(additive.NewDefaultParams())
	chain = render.NewChain(voices, store, sampleRate, maxFrames)
	outputBuffer = make([]float32, maxFrames)

	println("Synth initialized at", int(sampleRate), "Hz with", voices, "voices")
	return nil
}

func wasmNoteOn(this js.Value, args []js.Value) interface{} {
	if len(args) < 2 || chain == nil {
		return nil
	}
	chain.NoteOn(args[0].Int(), float32(args[1].Float()))
	return nil
}

func wasmNoteOff(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || chain == nil {
		return nil
	}
	chain.NoteOff(args[0].Int(), 0)
	return nil
}

func wasmAllNotesOff(this js.Value, args []js.Value) interface{} {
	if chain != nil {
		chain.AllNotesOff()
	}
	return nil
}

// wasmLoadPreset takes preset JSON text and returns an error string or null.
func wasmLoadPreset(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || store == nil {
		return nil
	}
	p, err := preset.Parse([]byte(args[0].String()))
	if err != nil {
		return err.Error()
	}
	store.Store(p)
	return nil
}

func wasmSetMasterGain(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || store == nil {
		return nil
	}
	g := float32(args[0].Float())
	store.Update(func(p *additive.Params) { p.MasterGain = g })
	return nil
}

func wasmSetActivePartials(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || store == nil {
		return nil
	}
	n := args[0].Int()
	store.Update(func(p *additive.Params) { p.ActivePartials = n })
	return nil
}

// wasmSetPartial(index 1..8, distance, volume, muted)
func wasmSetPartial(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 || store == nil {
		return nil
	}
	idx := args[0].Int() - 1
	if idx < 0 || idx >= additive.MaxPartials {
		return nil
	}
	pt := additive.Partial{
		Distance: float32(args[1].Float()),
		Volume:   float32(args[2].Float()),
		Muted:    args[3].Bool(),
	}
	store.Update(func(p *additive.Params) { p.Partials[idx] = pt })
	return nil
}

// wasmSetEnvelope(attack, decay, sustain, release)
func wasmSetEnvelope(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 || store == nil {
		return nil
	}
	e := additive.EnvelopeParams{
		Attack:  float32(args[0].Float()),
		Decay:   float32(args[1].Float()),
		Sustain: float32(args[2].Float()),
		Release: float32(args[3].Float()),
	}
	store.Update(func(p *additive.Params) { p.Envelope = e })
	return nil
}

// wasmSetFilter(cutoff, resonance, type, bypass)
func wasmSetFilter(this js.Value, args []js.Value) interface{} {
	if len(args) < 4 || store == nil {
		return nil
	}
	ft, ok := additive.ParseFilterType(args[2].String())
	if !ok {
		return "unknown filter type " + args[2].String()
	}
	f := additive.FilterParams{
		Cutoff:    float32(args[0].Float()),
		Resonance: float32(args[1].Float()),
		Type:      ft,
		Bypass:    args[3].Bool(),
	}
	store.Update(func(p *additive.Params) { p.Filter = f })
	return nil
}

func wasmProcessBlock(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 || chain == nil {
		return 0
	}
	numFrames := min(args[0].Int(), maxFrames)
	if numFrames <= 0 {
		return 0
	}
	chain.Process(outputBuffer[:numFrames])

	// Pointer into WASM linear memory.
	ptr := &outputBuffer[0]
	return js.ValueOf(uintptr(unsafe.Pointer(ptr)))
}

func wasmGetMemoryBuffer(this js.Value, args []js.Value) interface{} {
	return js.Global().Get("Go").Get("_inst").Get("exports").Get("mem").Get("buffer")
}
