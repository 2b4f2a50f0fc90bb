package sink

import (
	"net"

	reuseport "github.com/libp2p/go-reuseport"
)

// Listen opens a UDP socket on address. With reusePort several processes, or several sockets in
// one process, can bind the same address and the kernel spreads datagrams between them.
func Listen(address string, reusePort bool) (net.PacketConn, error) {
	if reusePort {
		return reuseport.ListenPacket("udp", address)
	}
	return net.ListenPacket("udp", address)
}
