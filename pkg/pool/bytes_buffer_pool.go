package pool

import (
	"bytes"
	"sync"
)

// BytesBuffer is a strongly typed wrapper around a sync.Pool for *bytes.Buffer used to assemble
// datagram payloads.
type BytesBuffer struct {
	p           sync.Pool
	maxRetained int
}

// NewBytesBuffer returns a pool handing out buffers with at least initialSize bytes of capacity.
// Buffers which grew beyond maxRetained bytes are dropped on Put instead of being pooled; zero
// keeps everything.
func NewBytesBuffer(initialSize, maxRetained int) *BytesBuffer {
	return &BytesBuffer{
		maxRetained: maxRetained,
		p: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, initialSize))
			},
		},
	}
}

func (p *BytesBuffer) Get() *bytes.Buffer {
	buffer := p.p.Get().(*bytes.Buffer)
	buffer.Reset()
	return buffer
}

func (p *BytesBuffer) Put(b *bytes.Buffer) {
	if p.maxRetained > 0 && b.Cap() > p.maxRetained {
		return
	}
	p.p.Put(b)
}
