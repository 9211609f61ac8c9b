package transport

import (
	"errors"
	"net/netip"

	"github.com/sarchlab/trafficsim/sim"
)

// Errors returned by sockets.
var (
	ErrBufferFull       = errors.New("transport: send buffer full")
	ErrNotConnected     = errors.New("transport: socket not connected")
	ErrClosed           = errors.New("transport: socket closed")
	ErrAddressInUse     = errors.New("transport: address in use")
	ErrInvalidState     = errors.New("transport: invalid socket state")
	ErrUnknownNode      = errors.New("transport: unknown node")
	ErrEmptySend        = errors.New("transport: nothing to send")
	ErrNotBound         = errors.New("transport: socket not bound")
	ErrProtocolMismatch = errors.New("transport: operation not supported by protocol")
)

// A Socket is an endpoint of the simulated transport. All the callbacks run
// inside the engine's event loop.
type Socket interface {
	Protocol() Protocol
	LocalAddress() Address
	PeerAddress() Address

	// Bind assigns the local address. Port 0 picks an ephemeral port.
	Bind(local Address) error

	// Listen makes a bound stream socket accept connections.
	Listen() error

	// Connect starts connecting to the peer. The outcome is reported
	// through the connect callbacks, never synchronously.
	Connect(peer Address) error

	// Send queues data for transmission. It fails with ErrBufferFull if
	// the send buffer cannot take all the data.
	Send(data []byte) error

	// Recv takes at most maxSize bytes of received data. Datagrams are
	// always returned whole.
	Recv(maxSize int) (data []byte, from Address, ok bool)

	// RxAvailable returns the number of received bytes not yet taken.
	RxAvailable() int

	// Close releases the socket. Data received afterwards is dropped.
	Close() error

	SetConnectCallback(succeeded, failed func(s Socket))
	SetAcceptCallback(accepted func(s Socket, from Address))
	SetRecvCallback(dataArrived func(s Socket))
	SetCloseCallback(peerClosed func(s Socket))
}

// A SocketFactory creates sockets on simulated nodes.
type SocketFactory interface {
	NewSocket(node netip.Addr, proto Protocol) (Socket, error)
}

// A Segment is a unit of data in flight on the network.
type Segment struct {
	ID       string
	Protocol Protocol
	Src, Dst Address
	Data     []byte
	SendTime sim.VTimeInSec
	RecvTime sim.VTimeInSec
}

// Len returns the number of bytes carried by the segment.
func (s *Segment) Len() int {
	return len(s.Data)
}
