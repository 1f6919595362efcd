package syspower

import "sync"

// Mock records power requests instead of issuing them. Used in tests and
// when the daemon runs with mock hardware.
type Mock struct {
	mu       sync.Mutex
	requests []string
}

// NewMock returns an empty Mock.
func NewMock() *Mock {
	return &Mock{}
}

// PowerOff records the request and returns nil.
func (m *Mock) PowerOff(reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, reason)
	return nil
}

// Requests returns the reasons passed to PowerOff, oldest first.
func (m *Mock) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.requests))
	copy(out, m.requests)
	return out
}
