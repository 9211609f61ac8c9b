package packetsource

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/netip"

	"github.com/hashicorp/go-multierror"
	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/packet"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/transport"
)

// Metadata is carried in the header of every packet. The source never
// interprets it.
type Metadata struct {
	Pseudonym      uint32
	OperationID    uint32
	QosID          uint8
	Privacy        uint8
	ConnectionType uint8
}

// Builder can build packet sources.
type Builder struct {
	engine           sim.Engine
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
}

// MakeBuilder returns a Builder with the default cadence: 1024-byte packets,
// the first one 2 seconds after start, then one every 5 seconds.
func MakeBuilder() Builder {
	return Builder{
		protocol:         transport.Stream,
		packetSize:       1024,
		firstSendingTime: 2.0,
		interval:         5.0,
	}
}

// WithEngine sets the engine that the source runs on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithNetwork sets where the source opens its socket.
func (b Builder) WithNetwork(network transport.SocketFactory) Builder {
	b.network = network
	return b
}

// WithNode sets the node that the source is installed on.
func (b Builder) WithNode(node netip.Addr) Builder {
	b.node = node
	return b
}

// WithPeer sets the address the source sends to.
func (b Builder) WithPeer(peer transport.Address) Builder {
	b.peer = peer
	return b
}

// WithProtocol sets the transport protocol.
func (b Builder) WithProtocol(protocol transport.Protocol) Builder {
	b.protocol = protocol
	return b
}

// WithPacketSize sets the number of bytes in each packet, header included.
func (b Builder) WithPacketSize(size int) Builder {
	b.packetSize = size
	return b
}

// WithMaxBytes sets the byte budget. 0 means unbounded.
func (b Builder) WithMaxBytes(n uint64) Builder {
	b.maxBytes = n
	return b
}

// WithFirstSendingTime sets the delay between the start and the first send.
func (b Builder) WithFirstSendingTime(t sim.VTimeInSec) Builder {
	b.firstSendingTime = t
	return b
}

// WithInterval sets the time between two sends.
func (b Builder) WithInterval(interval sim.VTimeInSec) Builder {
	b.interval = interval
	return b
}

// WithJitter delays every send after the first by a random amount drawn
// uniformly from [0, jitter).
func (b Builder) WithJitter(jitter sim.VTimeInSec) Builder {
	b.jitter = jitter
	return b
}

// WithMetadata sets the opaque header fields.
func (b Builder) WithMetadata(m Metadata) Builder {
	b.metadata = m
	return b
}

func (b Builder) parametersMustBeValid() error {
	var errs *multierror.Error

	if b.engine == nil {
		errs = multierror.Append(errs, errors.New("engine is not set"))
	}

	if b.network == nil {
		errs = multierror.Append(errs, errors.New("network is not set"))
	}

	if !b.node.IsValid() {
		errs = multierror.Append(errs, errors.New("node is not set"))
	}

	if !b.peer.IsValid() || b.peer.Port == 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("peer address %s is not valid", b.peer))
	}

	if b.packetSize < packet.HeaderSize {
		errs = multierror.Append(errs,
			fmt.Errorf("packet size %d must be at least %d bytes",
				b.packetSize, packet.HeaderSize))
	}

	if b.firstSendingTime < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("first sending time %v must not be negative",
				b.firstSendingTime))
	}

	if b.interval <= 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("interval %v must be positive", b.interval))
	}

	if b.jitter < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("jitter %v must not be negative", b.jitter))
	}

	return errs.ErrorOrNil()
}

// Build creates a new Source.
func (b Builder) Build(name string) (*Source, error) {
	sim.NameMustBeValid(name)

	err := b.parametersMustBeValid()
	if err != nil {
		return nil, fmt.Errorf("packet source %s: %w", name, err)
	}

	s := &Source{
		network:          b.network,
		node:             b.node,
		peer:             b.peer,
		protocol:         b.protocol,
		packetSize:       b.packetSize,
		maxBytes:         b.maxBytes,
		firstSendingTime: b.firstSendingTime,
		interval:         b.interval,
		jitter:           b.jitter,
		metadata:         b.metadata,
		rng:              rand.New(rand.NewPCG(0, 0)),
	}
	s.Base = apps.NewBase(name, b.engine, s)

	return s, nil
}
