package panel

import "sync"

// Script is an in-memory Source for tests and mock mode. Events pushed into
// it come out of Events() in order.
type Script struct {
	ch        chan Event
	closeOnce sync.Once
}

var _ Source = (*Script)(nil)

// NewScript returns an empty scripted source.
func NewScript() *Script {
	return &Script{ch: make(chan Event, eventBufferSize)}
}

// Events returns the scripted event stream.
func (s *Script) Events() <-chan Event {
	return s.ch
}

// Push queues one event. It blocks if the buffer is full and panics after
// Close, so feed scripts from a single goroutine.
func (s *Script) Push(e Event) {
	s.ch <- e
}

// Close ends the stream.
func (s *Script) Close() error {
	s.closeOnce.Do(func() { close(s.ch) })
	return nil
}
