// Package packetsink provides an application that accepts traffic from
// packet sources and accounts what each sender delivered.
package packetsink

import (
	"errors"
	"fmt"
	"log"
	"reflect"
	"slices"

	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/packet"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/tracing"
	"github.com/sarchlab/trafficsim/transport"
)

// State is the state of a Sink.
type State int

// The states of a Sink. Stopped is terminal.
const (
	Idle State = iota
	Listening
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Listening:
		return "Listening"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// SenderStats is what a sink knows about one sender.
type SenderStats struct {
	BytesReceived   uint64
	PacketsReceived uint64
	LastSeq         uint32
	Pseudonym       uint32
	FirstRecvTime   sim.VTimeInSec
	LastRecvTime    sim.VTimeInSec
}

// A Sink receives packets.
type Sink struct {
	*apps.Base

	network      transport.SocketFactory
	local        transport.Address
	protocol     transport.Protocol
	rxBufferSize int
	maxFrameSize int

	state        State
	listenSocket transport.Socket
	accepted     []transport.Socket
	reassemblers map[transport.Socket]*packet.Reassembler

	stats           map[transport.Address]*SenderStats
	totalBytes      uint64
	totalPackets    uint64
	malformedFrames uint64
}

// Handle processes the events of the sink.
func (s *Sink) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *apps.StartEvent:
		s.Start()
	case *apps.StopEvent:
		s.Stop()
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

// Start opens the socket and waits for traffic. It has no effect unless the
// sink is idle.
func (s *Sink) Start() {
	if s.state != Idle {
		return
	}

	socket, err := s.openListenSocket()
	if err != nil {
		log.Printf("%s: cannot listen on %s: %v", s.Name(), s.local, err)
		s.state = Stopped

		return
	}

	s.listenSocket = socket
	s.state = Listening
}

func (s *Sink) openListenSocket() (transport.Socket, error) {
	socket, err := s.network.NewSocket(s.local.IP, s.protocol)
	if err != nil {
		return nil, err
	}

	err = socket.Bind(s.local)
	if err != nil {
		return nil, err
	}

	if !s.protocol.IsConnectionOriented() {
		socket.SetRecvCallback(s.handleRead)
		return socket, nil
	}

	err = socket.Listen()
	if err != nil {
		socket.Close()
		return nil, err
	}

	socket.SetAcceptCallback(s.handleAccept)

	return socket, nil
}

func (s *Sink) handleAccept(socket transport.Socket, _ transport.Address) {
	if s.state != Listening {
		socket.Close()
		return
	}

	s.accepted = append(s.accepted, socket)
	s.reassemblers[socket] = packet.NewReassembler(s.maxFrameSize)
	socket.SetRecvCallback(s.handleRead)
	socket.SetCloseCallback(s.handlePeerClose)
}

func (s *Sink) handlePeerClose(socket transport.Socket) {
	s.handleRead(socket)
	s.release(socket)
}

func (s *Sink) release(socket transport.Socket) {
	err := socket.Close()
	if err != nil && !errors.Is(err, transport.ErrClosed) {
		log.Printf("%s: cannot close socket: %v", s.Name(), err)
	}

	delete(s.reassemblers, socket)
	s.accepted = slices.DeleteFunc(s.accepted, func(a transport.Socket) bool {
		return a == socket
	})
}

func (s *Sink) handleRead(socket transport.Socket) {
	if s.state != Listening {
		return
	}

	for {
		data, from, ok := socket.Recv(s.rxBufferSize)
		if !ok {
			return
		}

		r, isStream := s.reassemblers[socket]
		if !isStream {
			s.consume(data, from)
			continue
		}

		r.Write(data)
		s.drain(r, socket.PeerAddress())
	}
}

func (s *Sink) drain(r *packet.Reassembler, from transport.Address) {
	for {
		frame, err := r.Next()
		if err != nil {
			s.malformedFrames++
			log.Printf("%s: dropping stream data from %s: %v",
				s.Name(), from, err)

			return
		}

		if frame == nil {
			return
		}

		s.consume(frame, from)
	}
}

func (s *Sink) consume(frame []byte, from transport.Address) {
	h, _, err := packet.Parse(frame)
	if err != nil {
		s.malformedFrames++
		return
	}

	now := s.Now()
	size := len(frame)

	st, found := s.stats[from]
	if !found {
		st = &SenderStats{FirstRecvTime: now}
		s.stats[from] = st
	}

	st.BytesReceived += uint64(size)
	st.PacketsReceived++
	st.LastSeq = h.Seq
	st.Pseudonym = h.Pseudonym
	st.LastRecvTime = now

	s.totalBytes += uint64(size)
	s.totalPackets++

	s.recordRx(h, from, size)
}

func (s *Sink) recordRx(h packet.Header, from transport.Address, size int) {
	if s.NumHooks() == 0 {
		return
	}

	now := s.Now()

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    apps.HookPosPacketRx,
		Item: apps.RxRecord{
			App:    s.Name(),
			Time:   now,
			From:   from,
			Header: h,
			Size:   size,
			Delay:  now - h.SentAt(),
		},
	})

	tracing.EndTask(s, apps.PacketTaskID(from, h.Seq))
}

// Stop closes all the sockets. Data arriving afterwards is dropped.
func (s *Sink) Stop() {
	if s.state == Stopped {
		return
	}

	s.state = Stopped

	for _, socket := range slices.Clone(s.accepted) {
		s.release(socket)
	}

	if s.listenSocket != nil {
		s.release(s.listenSocket)
	}
}

// State returns the state of the sink.
func (s *Sink) State() State {
	return s.state
}

// LocalAddress returns the address the sink listens on.
func (s *Sink) LocalAddress() transport.Address {
	return s.local
}

// Protocol returns the transport protocol.
func (s *Sink) Protocol() transport.Protocol {
	return s.protocol
}

// Stats returns a copy of the per-sender statistics.
func (s *Sink) Stats() map[transport.Address]SenderStats {
	out := make(map[transport.Address]SenderStats, len(s.stats))
	for addr, st := range s.stats {
		out[addr] = *st
	}

	return out
}

// TotalBytesReceived returns the bytes of all the well-formed packets
// received.
func (s *Sink) TotalBytesReceived() uint64 {
	return s.totalBytes
}

// TotalPacketsReceived returns the number of well-formed packets received.
func (s *Sink) TotalPacketsReceived() uint64 {
	return s.totalPackets
}

// MalformedFrames returns the number of frames that could not be parsed.
func (s *Sink) MalformedFrames() uint64 {
	return s.malformedFrames
}

// AcceptedConnections returns the number of open stream connections.
func (s *Sink) AcceptedConnections() int {
	return len(s.accepted)
}
