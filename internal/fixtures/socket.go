package fixtures

import (
	"sync"
)

// CapturingSocket is a transport.Socket which records every payload. Safe for concurrent use.
type CapturingSocket struct {
	mu       sync.Mutex
	payloads []string
	closed   bool

	// Err, when set, is returned from every Send. The payload is still recorded as attempted.
	Err error
	// OnSend, when set, is called with each payload before it is recorded.
	OnSend func(payload string)
}

func (cs *CapturingSocket) Send(payload []byte) error {
	p := string(payload)
	if cs.OnSend != nil {
		cs.OnSend(p)
	}
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.payloads = append(cs.payloads, p)
	return cs.Err
}

func (cs *CapturingSocket) Close() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.closed = true
	return nil
}

// Payloads returns a copy of the payloads sent so far.
func (cs *CapturingSocket) Payloads() []string {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	p := make([]string, len(cs.payloads))
	copy(p, cs.payloads)
	return p
}

// Len returns the number of payloads sent so far.
func (cs *CapturingSocket) Len() int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return len(cs.payloads)
}

// Closed reports whether Close was called.
func (cs *CapturingSocket) Closed() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.closed
}
