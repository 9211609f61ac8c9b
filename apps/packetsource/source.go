// Package packetsource provides an application that connects to a peer and
// sends fixed size packets at a fixed cadence.
package packetsource

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"net/netip"
	"reflect"

	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/packet"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/tracing"
	"github.com/sarchlab/trafficsim/transport"
)

// State is the connection state of a Source.
type State int

// The states of a Source. Stopped is terminal.
const (
	Idle State = iota
	Connecting
	Connected
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Connecting:
		return "Connecting"
	case Connected:
		return "Connected"
	case Stopped:
		return "Stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type sendEvent struct {
	*sim.EventBase
}

// A Source sends packets to a peer.
type Source struct {
	*apps.Base

	network          transport.SocketFactory
	node             netip.Addr
	peer             transport.Address
	protocol         transport.Protocol
	packetSize       int
	maxBytes         uint64
	firstSendingTime sim.VTimeInSec
	interval         sim.VTimeInSec
	jitter           sim.VTimeInSec
	metadata         Metadata
	rng              *rand.Rand
	stream           int64

	socket      transport.Socket
	state       State
	sending     bool
	capped      bool
	startTime   sim.VTimeInSec
	lastNominal sim.VTimeInSec
	pendingSend sim.EventHandle

	seq            uint32
	totalBytesSent uint64
	packetsSent    uint64
	sendFailures   uint64
}

// Handle processes the events of the source.
func (s *Source) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *apps.StartEvent:
		s.Start()
	case *apps.StopEvent:
		s.Stop()
	case *sendEvent:
		s.sendPacket()
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

// SetMaxBytes sets the byte budget. 0 means unbounded. Once the budget has
// stopped the source, raising it does not resume sending.
func (s *Source) SetMaxBytes(n uint64) {
	s.maxBytes = n
}

// AssignStreams seeds the random stream used for jitter and returns the
// number of streams used.
func (s *Source) AssignStreams(stream int64) int64 {
	s.stream = stream
	s.rng = rand.New(rand.NewPCG(uint64(stream), uint64(stream)))

	return 1
}

// Stream returns the random stream assigned to the source.
func (s *Source) Stream() int64 {
	return s.stream
}

// Start opens a socket and connects to the peer. It has no effect unless the
// source is idle.
func (s *Source) Start() {
	if s.state != Idle {
		return
	}

	s.startTime = s.Now()

	socket, err := s.network.NewSocket(s.node, s.protocol)
	if err != nil {
		log.Printf("%s: cannot open socket: %v", s.Name(), err)
		s.state = Stopped

		return
	}

	s.socket = socket
	socket.SetConnectCallback(s.connectionSucceeded, s.connectionFailed)
	s.state = Connecting

	err = socket.Connect(s.peer)
	if err != nil {
		log.Printf("%s: cannot connect to %s: %v", s.Name(), s.peer, err)
		s.connectionFailed(socket)
	}
}

func (s *Source) connectionSucceeded(_ transport.Socket) {
	if s.state != Connecting {
		return
	}

	s.state = Connected
	s.sending = true

	first := s.startTime + s.firstSendingTime
	if now := s.Now(); first < now {
		first = now
	}

	s.lastNominal = first
	s.schedule(first)
}

func (s *Source) connectionFailed(socket transport.Socket) {
	if s.state != Connecting {
		return
	}

	log.Printf("%.10f, %s: connection to %s failed",
		s.Now(), s.Name(), s.peer)

	s.state = Stopped
	s.closeSocket(socket)
}

func (s *Source) sendPacket() {
	if !s.sending || s.state != Connected {
		return
	}

	s.pendingSend = sim.EventHandle{}

	if s.nextPacketExceedsCap() {
		s.reachCap()
		return
	}

	now := s.Now()
	h := packet.Header{
		Seq:            s.seq,
		Timestamp:      now.Nanoseconds(),
		Length:         uint32(s.packetSize),
		Pseudonym:      s.metadata.Pseudonym,
		OperationID:    s.metadata.OperationID,
		QosID:          s.metadata.QosID,
		Privacy:        s.metadata.Privacy,
		ConnectionType: s.metadata.ConnectionType,
	}

	frame, err := packet.Build(h, s.packetSize)
	if err != nil {
		log.Panicf("%s: cannot build packet: %v", s.Name(), err)
	}

	err = s.socket.Send(frame)
	if err != nil {
		s.sendFailures++
		log.Printf("%.10f, %s: send of packet %d failed: %v",
			now, s.Name(), s.seq, err)
	} else {
		s.recordTx(h, len(frame))
		s.seq++
		s.totalBytesSent += uint64(len(frame))
		s.packetsSent++
	}

	if s.nextPacketExceedsCap() {
		s.reachCap()
		return
	}

	s.scheduleNextTx()
}

func (s *Source) recordTx(h packet.Header, size int) {
	if s.NumHooks() == 0 {
		return
	}

	record := apps.TxRecord{
		App:    s.Name(),
		Time:   s.Now(),
		From:   s.socket.LocalAddress(),
		To:     s.peer,
		Header: h,
		Size:   size,
	}

	tracing.StartTask(s, tracing.Task{
		ID:     apps.PacketTaskID(record.From, h.Seq),
		Kind:   apps.TaskKindPacket,
		What:   "tx",
		Detail: record,
	})

	s.InvokeHook(sim.HookCtx{
		Domain: s,
		Pos:    apps.HookPosPacketTx,
		Item:   record,
	})
}

func (s *Source) nextPacketExceedsCap() bool {
	return s.maxBytes > 0 &&
		s.totalBytesSent+uint64(s.packetSize) > s.maxBytes
}

func (s *Source) reachCap() {
	s.capped = true
	s.sending = false
}

func (s *Source) scheduleNextTx() {
	s.lastNominal += s.interval

	next := s.lastNominal + s.jitterSample()
	if now := s.Now(); next < now {
		next = now
	}

	s.schedule(next)
}

func (s *Source) jitterSample() sim.VTimeInSec {
	if s.jitter == 0 {
		return 0
	}

	return sim.VTimeInSec(s.rng.Float64()) * s.jitter
}

func (s *Source) schedule(t sim.VTimeInSec) {
	s.pendingSend = s.Engine().Schedule(
		&sendEvent{EventBase: sim.NewEventBase(t, s)})
}

func (s *Source) cancelEvents() {
	if s.pendingSend.IsArmed() {
		s.Engine().Cancel(s.pendingSend)
	}

	s.pendingSend = sim.EventHandle{}
}

// Stop cancels the pending send and closes the socket. Stopping a stopped
// source has no effect.
func (s *Source) Stop() {
	if s.state == Stopped {
		return
	}

	s.sending = false
	s.cancelEvents()
	s.state = Stopped

	if s.socket != nil {
		s.closeSocket(s.socket)
	}
}

func (s *Source) closeSocket(socket transport.Socket) {
	err := socket.Close()
	if err != nil && !errors.Is(err, transport.ErrClosed) {
		log.Printf("%s: cannot close socket: %v", s.Name(), err)
	}
}

// State returns the connection state.
func (s *Source) State() State {
	return s.state
}

// IsSending returns true while packets are being scheduled.
func (s *Source) IsSending() bool {
	return s.sending
}

// Capped returns true once the byte budget has stopped the source.
func (s *Source) Capped() bool {
	return s.capped
}

// NextSendTime returns the time of the pending send, or -1 if none is
// pending.
func (s *Source) NextSendTime() sim.VTimeInSec {
	if !s.pendingSend.IsArmed() {
		return -1
	}

	return s.pendingSend.Time()
}

// TotalBytesSent returns the number of bytes accepted by the transport.
func (s *Source) TotalBytesSent() uint64 {
	return s.totalBytesSent
}

// PacketsSent returns the number of packets accepted by the transport.
func (s *Source) PacketsSent() uint64 {
	return s.packetsSent
}

// SendFailures returns the number of sends rejected by the transport.
func (s *Source) SendFailures() uint64 {
	return s.sendFailures
}

// MaxBytes returns the byte budget.
func (s *Source) MaxBytes() uint64 {
	return s.maxBytes
}

// Socket returns the socket, or nil before Start.
func (s *Source) Socket() transport.Socket {
	return s.socket
}

// Peer returns the address the source sends to.
func (s *Source) Peer() transport.Address {
	return s.peer
}

// Protocol returns the transport protocol.
func (s *Source) Protocol() transport.Protocol {
	return s.protocol
}
