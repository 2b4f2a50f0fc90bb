package fixtures

import (
	"net"
	"sync"
	"time"
)

// FakeAddr is the source address of every datagram read from a ScriptedPacketConn.
var FakeAddr = &net.UDPAddr{
	IP:   net.IPv4(127, 0, 0, 1),
	Port: 8181,
}

// PacketRead is one scripted result of ReadFrom, either a datagram or an error.
type PacketRead struct {
	Payload string
	Err     error
}

// ScriptedPacketConn is a net.PacketConn replaying its reads in order. Once they are exhausted
// ReadFrom blocks until Close and then fails with net.ErrClosed, like a real socket.
type ScriptedPacketConn struct {
	mu     sync.Mutex
	reads  []PacketRead
	next   int
	once   sync.Once
	closed chan struct{}
}

var _ net.PacketConn = (*ScriptedPacketConn)(nil)

func NewScriptedPacketConn(reads ...PacketRead) *ScriptedPacketConn {
	return &ScriptedPacketConn{
		reads:  reads,
		closed: make(chan struct{}),
	}
}

func (spc *ScriptedPacketConn) ReadFrom(b []byte) (int, net.Addr, error) {
	select {
	case <-spc.closed:
		return 0, nil, spc.closedErr()
	default:
	}
	spc.mu.Lock()
	if spc.next < len(spc.reads) {
		r := spc.reads[spc.next]
		spc.next++
		spc.mu.Unlock()
		if r.Err != nil {
			return 0, nil, r.Err
		}
		return copy(b, r.Payload), FakeAddr, nil
	}
	spc.mu.Unlock()
	<-spc.closed
	return 0, nil, spc.closedErr()
}

func (spc *ScriptedPacketConn) closedErr() error {
	return &net.OpError{Op: "read", Net: "udp", Addr: FakeAddr, Err: net.ErrClosed}
}

// Drained reports whether every scripted read was consumed.
func (spc *ScriptedPacketConn) Drained() bool {
	spc.mu.Lock()
	defer spc.mu.Unlock()
	return spc.next == len(spc.reads)
}

// WriteTo discards b.
func (spc *ScriptedPacketConn) WriteTo(b []byte, addr net.Addr) (int, error) {
	return len(b), nil
}

// Close unblocks pending reads. It is safe to call more than once.
func (spc *ScriptedPacketConn) Close() error {
	spc.once.Do(func() {
		close(spc.closed)
	})
	return nil
}

func (spc *ScriptedPacketConn) LocalAddr() net.Addr                { return FakeAddr }
func (spc *ScriptedPacketConn) SetDeadline(t time.Time) error      { return nil }
func (spc *ScriptedPacketConn) SetReadDeadline(t time.Time) error  { return nil }
func (spc *ScriptedPacketConn) SetWriteDeadline(t time.Time) error { return nil }
