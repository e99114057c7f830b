// Package connectivity tracks whether the platform is online and tells
// subscribers when that changes.
package connectivity

import "sync"

// Signal is the platform source of online/offline events.
type Signal interface {
	// Online reports the current state.
	Online() bool
	// Watch registers fn for every event the platform emits. Events may
	// repeat the current state. The returned func detaches fn.
	Watch(fn func(online bool)) (stop func())
}

// watchers is the subscriber list shared by the built-in signals.
type watchers struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(bool)
}

func (w *watchers) add(fn func(bool)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fns == nil {
		w.fns = make(map[int]func(bool))
	}
	id := w.nextID
	w.nextID++
	w.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			delete(w.fns, id)
		})
	}
}

func (w *watchers) emit(online bool) {
	w.mu.Lock()
	fns := make([]func(bool), 0, len(w.fns))
	for _, fn := range w.fns {
		fns = append(fns, fn)
	}
	w.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// ManualSignal is driven programmatically with SetOnline.
type ManualSignal struct {
	mu     sync.RWMutex
	online bool
	w      watchers
}

// NewManualSignal creates a signal with the given initial state.
func NewManualSignal(online bool) *ManualSignal {
	return &ManualSignal{online: online}
}

func (s *ManualSignal) Online() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.online
}

func (s *ManualSignal) Watch(fn func(bool)) func() {
	return s.w.add(fn)
}

// SetOnline records the state and emits it, even when unchanged.
func (s *ManualSignal) SetOnline(online bool) {
	s.mu.Lock()
	s.online = online
	s.mu.Unlock()
	s.w.emit(online)
}
