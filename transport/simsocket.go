package transport

import (
	"fmt"

	"github.com/sarchlab/trafficsim/sim"
)

type socketState int

const (
	stateOpen socketState = iota
	stateBound
	stateListening
	stateConnecting
	stateConnected
	stateClosed
)

func (s socketState) String() string {
	switch s {
	case stateOpen:
		return "open"
	case stateBound:
		return "bound"
	case stateListening:
		return "listening"
	case stateConnecting:
		return "connecting"
	case stateConnected:
		return "connected"
	case stateClosed:
		return "closed"
	default:
		return fmt.Sprintf("socketState(%d)", int(s))
	}
}

type rxEntry struct {
	seg    *Segment
	offset int
}

type simSocket struct {
	net   *Network
	node  *node
	proto Protocol
	state socketState

	local, peer Address
	peerClosed  bool

	sendBuf     sim.Buffer
	rx          []rxEntry
	rxAvailable int

	onConnected     func(Socket)
	onConnectFailed func(Socket)
	onAccept        func(Socket, Address)
	onRecv          func(Socket)
	onPeerClose     func(Socket)
}

func (s *simSocket) Protocol() Protocol {
	return s.proto
}

func (s *simSocket) LocalAddress() Address {
	return s.local
}

func (s *simSocket) PeerAddress() Address {
	return s.peer
}

func (s *simSocket) Bind(local Address) error {
	if s.state != stateOpen {
		return fmt.Errorf("bind on %s socket: %w", s.state, ErrInvalidState)
	}

	if err := s.net.bind(s, local); err != nil {
		return err
	}

	s.state = stateBound

	return nil
}

func (s *simSocket) Listen() error {
	if !s.proto.IsConnectionOriented() {
		return fmt.Errorf("listen on %s socket: %w", s.proto, ErrProtocolMismatch)
	}

	switch s.state {
	case stateBound:
		s.state = stateListening
		return nil
	case stateOpen:
		return ErrNotBound
	default:
		return fmt.Errorf("listen on %s socket: %w", s.state, ErrInvalidState)
	}
}

func (s *simSocket) Connect(peer Address) error {
	switch s.state {
	case stateOpen:
		if err := s.Bind(Address{}); err != nil {
			return err
		}
	case stateBound:
	case stateClosed:
		return ErrClosed
	default:
		return fmt.Errorf("connect on %s socket: %w", s.state, ErrInvalidState)
	}

	if !peer.IsValid() {
		return fmt.Errorf("connect to invalid address %s: %w",
			peer, ErrInvalidState)
	}

	s.peer = peer
	s.state = stateConnecting
	s.net.startConnect(s)

	return nil
}

func (s *simSocket) Send(data []byte) error {
	switch s.state {
	case stateConnected:
	case stateClosed:
		return ErrClosed
	default:
		return ErrNotConnected
	}

	if len(data) == 0 {
		return ErrEmptySend
	}

	chunks := s.segment(data)
	if len(chunks) > s.sendBuf.Free() {
		return ErrBufferFull
	}

	for _, c := range chunks {
		s.net.transmit(s, c)
	}

	return nil
}

func (s *simSocket) segment(data []byte) [][]byte {
	if s.proto == Datagram || len(data) <= s.net.mss {
		return [][]byte{data}
	}

	chunks := make([][]byte, 0, (len(data)+s.net.mss-1)/s.net.mss)
	for len(data) > 0 {
		n := min(len(data), s.net.mss)
		chunks = append(chunks, data[:n])
		data = data[n:]
	}

	return chunks
}

func (s *simSocket) Recv(maxSize int) ([]byte, Address, bool) {
	if len(s.rx) == 0 {
		return nil, Address{}, false
	}

	if s.proto == Datagram {
		return s.recvDatagram()
	}

	return s.recvStream(maxSize)
}

func (s *simSocket) recvDatagram() ([]byte, Address, bool) {
	e := s.rx[0]
	s.rx[0] = rxEntry{}
	s.rx = s.rx[1:]
	s.rxAvailable -= e.seg.Len()

	return e.seg.Data, e.seg.Src, true
}

func (s *simSocket) recvStream(maxSize int) ([]byte, Address, bool) {
	if maxSize <= 0 || maxSize > s.rxAvailable {
		maxSize = s.rxAvailable
	}

	from := s.rx[0].seg.Src
	out := make([]byte, 0, maxSize)

	for len(out) < maxSize {
		e := &s.rx[0]
		n := min(maxSize-len(out), e.seg.Len()-e.offset)
		out = append(out, e.seg.Data[e.offset:e.offset+n]...)
		e.offset += n

		if e.offset == e.seg.Len() {
			s.rx[0] = rxEntry{}
			s.rx = s.rx[1:]
		}
	}

	s.rxAvailable -= len(out)

	return out, from, true
}

func (s *simSocket) RxAvailable() int {
	return s.rxAvailable
}

func (s *simSocket) Close() error {
	prev := s.state
	if prev == stateClosed {
		return ErrClosed
	}

	s.state = stateClosed
	s.rx = nil
	s.rxAvailable = 0
	s.net.unbind(s)

	if prev == stateConnected && s.proto == Stream {
		s.net.closeConnection(s)
	}

	return nil
}

func (s *simSocket) enqueueRx(seg *Segment) {
	s.rx = append(s.rx, rxEntry{seg: seg})
	s.rxAvailable += seg.Len()

	if s.onRecv != nil {
		s.onRecv(s)
	}
}

func (s *simSocket) SetConnectCallback(succeeded, failed func(Socket)) {
	s.onConnected = succeeded
	s.onConnectFailed = failed
}

func (s *simSocket) SetAcceptCallback(accepted func(Socket, Address)) {
	s.onAccept = accepted
}

func (s *simSocket) SetRecvCallback(dataArrived func(Socket)) {
	s.onRecv = dataArrived
}

func (s *simSocket) SetCloseCallback(peerClosed func(Socket)) {
	s.onPeerClose = peerClosed
}
