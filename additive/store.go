package additive

import "sync/atomic"

// ParamSource hands out the current parameter snapshot. Implementations must
// be wait-free; the audio goroutine calls Snapshot once per block and never
// mutates the result.
type ParamSource interface {
	Snapshot() *Params
}

// ParamStore publishes parameter snapshots from a single control goroutine
// to the audio goroutine. Every Store swaps in a fresh copy, so readers never
// see a half-written value.
type ParamStore struct {
	current atomic.Pointer[Params]
}

// NewParamStore creates a store holding a sanitized copy of initial, or the
// defaults when initial is nil.
func NewParamStore(initial *Params) *ParamStore {
	s := &ParamStore{}
	if initial == nil {
		initial = NewDefaultParams()
	}
	s.Store(initial)
	return s
}

// Snapshot returns the latest published parameters. Callers must treat the
// result as read-only.
func (s *ParamStore) Snapshot() *Params {
	return s.current.Load()
}

// Store publishes a sanitized copy of p.
func (s *ParamStore) Store(p *Params) {
	if p == nil {
		return
	}
	cp := *p
	cp.Sanitize()
	s.current.Store(&cp)
}

// Update applies fn to a copy of the current parameters and publishes the
// result. Only one goroutine may write.
func (s *ParamStore) Update(fn func(p *Params)) {
	cp := *s.current.Load()
	fn(&cp)
	s.Store(&cp)
}
