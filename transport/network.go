package transport

import (
	"fmt"
	"log"
	"math/rand/v2"
	"net/netip"
	"reflect"
	"sort"

	"github.com/sarchlab/trafficsim/sim"
)

// HookPosNetSend marks a segment entering a node's send queue.
var HookPosNetSend = &sim.HookPos{Name: "Net Send"}

// HookPosNetDeliver marks a segment delivered to a socket.
var HookPosNetDeliver = &sim.HookPos{Name: "Net Deliver"}

// HookPosNetDrop marks a segment that never reaches a socket. The hook
// detail is a string describing the reason.
var HookPosNetDrop = &sim.HookPos{Name: "Net Drop"}

const firstEphemeralPort = 49152

type node struct {
	ip            netip.Addr
	nextEphemeral uint16
	busyUntil     sim.VTimeInSec
}

type connKey struct {
	local, remote Address
}

// Network is a simulated packet network. Every node reaches every other
// node through a link with the same latency, and each node serializes its
// outgoing segments at the configured bandwidth.
type Network struct {
	sim.HookableBase

	name   string
	engine sim.Engine

	latency        sim.VTimeInSec
	bandwidth      float64
	sendBufferSize int
	mss            int
	lossRate       float64
	rng            *rand.Rand

	nodes        map[netip.Addr]*node
	bound        map[Address]*simSocket
	conns        map[connKey]*simSocket
	nextSocketID int
	bufferHooks  []sim.Hook

	segmentsSent      uint64
	segmentsDelivered uint64
	segmentsDropped   uint64
}

// Name returns the name of the network.
func (n *Network) Name() string {
	return n.name
}

// Latency returns the one-way delay between nodes.
func (n *Network) Latency() sim.VTimeInSec {
	return n.latency
}

// AddNode registers a node. Adding a node twice is a no-op.
func (n *Network) AddNode(ip netip.Addr) {
	if !ip.IsValid() {
		log.Panic("cannot add a node without an IP address")
	}

	if _, found := n.nodes[ip]; found {
		return
	}

	n.nodes[ip] = &node{ip: ip, nextEphemeral: firstEphemeralPort}
}

// HasNode checks if a node has been registered.
func (n *Network) HasNode(ip netip.Addr) bool {
	_, found := n.nodes[ip]
	return found
}

// AssignStreams reseeds the loss random stream and returns the number of
// streams used.
func (n *Network) AssignStreams(stream int64) int64 {
	n.rng = rand.New(rand.NewPCG(uint64(stream), uint64(stream)))
	return 1
}

// SegmentsSent returns the number of segments handed to the network.
func (n *Network) SegmentsSent() uint64 {
	return n.segmentsSent
}

// SegmentsDelivered returns the number of segments delivered to sockets.
func (n *Network) SegmentsDelivered() uint64 {
	return n.segmentsDelivered
}

// SegmentsDropped returns the number of segments lost or refused.
func (n *Network) SegmentsDropped() uint64 {
	return n.segmentsDropped
}

// SendBuffers returns the send buffers of all the sockets that are bound
// or connected, sorted by name.
func (n *Network) SendBuffers() []sim.Buffer {
	seen := make(map[*simSocket]bool)
	buffers := make([]sim.Buffer, 0, len(n.bound)+len(n.conns))

	collect := func(s *simSocket) {
		if seen[s] {
			return
		}

		seen[s] = true
		buffers = append(buffers, s.sendBuf)
	}

	for _, s := range n.bound {
		collect(s)
	}

	for _, s := range n.conns {
		collect(s)
	}

	sort.Slice(buffers, func(i, j int) bool {
		return buffers[i].Name() < buffers[j].Name()
	})

	return buffers
}

// AcceptBufferHook attaches a hook to the send buffers of the sockets that
// exist and of those created later.
func (n *Network) AcceptBufferHook(hook sim.Hook) {
	n.bufferHooks = append(n.bufferHooks, hook)

	for _, buf := range n.SendBuffers() {
		buf.AcceptHook(hook)
	}
}

// NewSocket creates an unbound socket on the given node.
func (n *Network) NewSocket(ip netip.Addr, proto Protocol) (Socket, error) {
	nd, found := n.nodes[ip]
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, ip)
	}

	return n.newSocket(nd, proto), nil
}

func (n *Network) newSocket(nd *node, proto Protocol) *simSocket {
	id := n.nextSocketID
	n.nextSocketID++

	sendBuf := sim.NewBuffer(
		fmt.Sprintf("%s.Socket[%d].SendBuf", n.name, id),
		n.sendBufferSize)
	for _, hook := range n.bufferHooks {
		sendBuf.AcceptHook(hook)
	}

	return &simSocket{
		net:     n,
		node:    nd,
		proto:   proto,
		sendBuf: sendBuf,
	}
}

func (n *Network) bind(s *simSocket, local Address) error {
	if !local.IP.IsValid() || local.IP.IsUnspecified() {
		local.IP = s.node.ip
	}

	if local.IP != s.node.ip {
		return fmt.Errorf("cannot bind %s on node %s: %w",
			local, s.node.ip, ErrInvalidState)
	}

	if local.Port == 0 {
		port, err := n.ephemeralPort(s.node)
		if err != nil {
			return err
		}

		local.Port = port
	}

	if _, inUse := n.bound[local]; inUse {
		return fmt.Errorf("%w: %s", ErrAddressInUse, local)
	}

	n.bound[local] = s
	s.local = local

	return nil
}

func (n *Network) ephemeralPort(nd *node) (uint16, error) {
	for i := 0; i < 65536-firstEphemeralPort; i++ {
		port := nd.nextEphemeral

		nd.nextEphemeral++
		if nd.nextEphemeral == 0 {
			nd.nextEphemeral = firstEphemeralPort
		}

		if _, inUse := n.bound[Address{IP: nd.ip, Port: port}]; !inUse {
			return port, nil
		}
	}

	return 0, fmt.Errorf("%w: no ephemeral port left on %s",
		ErrAddressInUse, nd.ip)
}

func (n *Network) unbind(s *simSocket) {
	if n.bound[s.local] == s {
		delete(n.bound, s.local)
	}
}

func (n *Network) startConnect(s *simSocket) {
	now := n.engine.CurrentTime()

	if !s.proto.IsConnectionOriented() {
		n.engine.Schedule(&connectReplyEvent{
			EventBase: sim.NewEventBase(now, n),
			client:    s,
			accepted:  true,
		})

		return
	}

	n.engine.Schedule(&connectRequestEvent{
		EventBase: sim.NewEventBase(now+n.latency, n),
		client:    s,
		src:       s.local,
		dst:       s.peer,
	})
}

func (n *Network) transmit(s *simSocket, data []byte) {
	now := n.engine.CurrentTime()

	seg := &Segment{
		ID:       sim.GetIDGenerator().Generate(),
		Protocol: s.proto,
		Src:      s.local,
		Dst:      s.peer,
		Data:     append([]byte(nil), data...),
		SendTime: now,
	}

	s.sendBuf.Push(seg)
	n.segmentsSent++

	start := now
	if s.node.busyUntil > start {
		start = s.node.busyUntil
	}

	done := start + n.serializationDelay(len(data))
	s.node.busyUntil = done

	n.engine.Schedule(&txDoneEvent{
		EventBase: sim.NewEventBase(done, n),
		sock:      s,
	})

	n.invokeSegmentHook(HookPosNetSend, seg, nil)
}

func (n *Network) serializationDelay(bytes int) sim.VTimeInSec {
	if n.bandwidth == 0 {
		return 0
	}

	return sim.VTimeInSec(float64(bytes*8) / n.bandwidth)
}

func (n *Network) closeConnection(s *simSocket) {
	key := connKey{local: s.local, remote: s.peer}
	if n.conns[key] == s {
		delete(n.conns, key)
	}

	n.scheduleFin(s)
}

// scheduleFin makes the fin arrive after the segments that the socket's node
// has already queued.
func (n *Network) scheduleFin(s *simSocket) {
	t := n.engine.CurrentTime()
	if s.node.busyUntil > t {
		t = s.node.busyUntil
	}

	n.engine.Schedule(&finEvent{
		EventBase: sim.NewSecondaryEventBase(t+n.latency, n),
		src:       s.local,
		dst:       s.peer,
	})
}

// Handle processes the network events.
func (n *Network) Handle(e sim.Event) error {
	switch e := e.(type) {
	case *connectRequestEvent:
		n.handleConnectRequest(e)
	case *connectReplyEvent:
		n.handleConnectReply(e)
	case *txDoneEvent:
		n.handleTxDone(e)
	case *deliverEvent:
		n.handleDeliver(e)
	case *finEvent:
		n.handleFin(e)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (n *Network) handleConnectRequest(e *connectRequestEvent) {
	now := n.engine.CurrentTime()
	reply := &connectReplyEvent{
		EventBase: sim.NewEventBase(now+n.latency, n),
		client:    e.client,
	}

	listener := n.bound[e.dst]
	if listener != nil &&
		listener.proto == Stream &&
		listener.state == stateListening {
		reply.accepted = true
		n.accept(listener, e.src)
	}

	n.engine.Schedule(reply)
}

func (n *Network) accept(listener *simSocket, from Address) {
	s := n.newSocket(listener.node, Stream)
	s.state = stateConnected
	s.local = listener.local
	s.peer = from
	n.conns[connKey{local: s.local, remote: from}] = s

	if listener.onAccept != nil {
		listener.onAccept(s, from)
	}
}

func (n *Network) handleConnectReply(e *connectReplyEvent) {
	s := e.client

	if s.state != stateConnecting {
		if e.accepted && s.proto == Stream {
			n.scheduleFin(s)
		}

		return
	}

	if !e.accepted {
		s.state = stateClosed
		n.unbind(s)

		if s.onConnectFailed != nil {
			s.onConnectFailed(s)
		}

		return
	}

	s.state = stateConnected
	if s.proto == Stream {
		n.conns[connKey{local: s.local, remote: s.peer}] = s
	}

	if s.onConnected != nil {
		s.onConnected(s)
	}
}

func (n *Network) handleTxDone(e *txDoneEvent) {
	item := e.sock.sendBuf.Pop()
	if item == nil {
		return
	}

	seg := item.(*Segment)

	if seg.Protocol == Datagram &&
		n.lossRate > 0 &&
		n.rng.Float64() < n.lossRate {
		n.drop(seg, "lost")
		return
	}

	now := n.engine.CurrentTime()
	n.engine.Schedule(&deliverEvent{
		EventBase: sim.NewEventBase(now+n.latency, n),
		seg:       seg,
	})
}

func (n *Network) handleDeliver(e *deliverEvent) {
	seg := e.seg
	seg.RecvTime = n.engine.CurrentTime()

	dst := n.receiverOf(seg)
	if dst == nil || dst.state == stateClosed {
		n.drop(seg, "no receiver")
		return
	}

	n.segmentsDelivered++
	n.invokeSegmentHook(HookPosNetDeliver, seg, nil)

	dst.enqueueRx(seg)
}

func (n *Network) receiverOf(seg *Segment) *simSocket {
	if seg.Protocol == Stream {
		return n.conns[connKey{local: seg.Dst, remote: seg.Src}]
	}

	s := n.bound[seg.Dst]
	if s == nil || s.proto != Datagram {
		return nil
	}

	return s
}

func (n *Network) handleFin(e *finEvent) {
	peer := n.conns[connKey{local: e.dst, remote: e.src}]
	if peer == nil || peer.state == stateClosed {
		return
	}

	peer.peerClosed = true
	if peer.onPeerClose != nil {
		peer.onPeerClose(peer)
	}
}

func (n *Network) drop(seg *Segment, reason string) {
	n.segmentsDropped++
	n.invokeSegmentHook(HookPosNetDrop, seg, reason)
}

func (n *Network) invokeSegmentHook(
	pos *sim.HookPos,
	seg *Segment,
	detail interface{},
) {
	if n.NumHooks() == 0 {
		return
	}

	n.InvokeHook(sim.HookCtx{
		Domain: n,
		Pos:    pos,
		Item:   seg,
		Detail: detail,
	})
}
