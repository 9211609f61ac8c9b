package packetsink

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sarchlab/trafficsim/apps"
	"github.com/sarchlab/trafficsim/packet"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/transport"
)

// Builder can build packet sinks.
type Builder struct {
	engine       sim.Engine
	network      transport.SocketFactory
	local        transport.Address
	protocol     transport.Protocol
	rxBufferSize int
	maxFrameSize int
}

// MakeBuilder returns a Builder that reads in 1024-byte chunks.
func MakeBuilder() Builder {
	return Builder{
		protocol:     transport.Stream,
		rxBufferSize: 1024,
		maxFrameSize: 1 << 20,
	}
}

// WithEngine sets the engine that the sink runs on.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithNetwork sets where the sink opens its socket.
func (b Builder) WithNetwork(network transport.SocketFactory) Builder {
	b.network = network
	return b
}

// WithLocalAddress sets the address the sink listens on.
func (b Builder) WithLocalAddress(local transport.Address) Builder {
	b.local = local
	return b
}

// WithProtocol sets the transport protocol.
func (b Builder) WithProtocol(protocol transport.Protocol) Builder {
	b.protocol = protocol
	return b
}

// WithRxBufferSize sets how many bytes are read from a socket at a time.
func (b Builder) WithRxBufferSize(size int) Builder {
	b.rxBufferSize = size
	return b
}

// WithMaxFrameSize sets the largest frame a stream connection may carry.
// Larger length fields are treated as corruption.
func (b Builder) WithMaxFrameSize(size int) Builder {
	b.maxFrameSize = size
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

	if !b.local.IsValid() || b.local.Port == 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("local address %s is not valid", b.local))
	}

	if b.rxBufferSize <= 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("rx buffer size %d must be positive", b.rxBufferSize))
	}

	if b.maxFrameSize < packet.HeaderSize {
		errs = multierror.Append(errs,
			fmt.Errorf("max frame size %d must be at least %d bytes",
				b.maxFrameSize, packet.HeaderSize))
	}

	return errs.ErrorOrNil()
}

// Build creates a new Sink.
func (b Builder) Build(name string) (*Sink, error) {
	sim.NameMustBeValid(name)

	err := b.parametersMustBeValid()
	if err != nil {
		return nil, fmt.Errorf("packet sink %s: %w", name, err)
	}

	s := &Sink{
		network:      b.network,
		local:        b.local,
		protocol:     b.protocol,
		rxBufferSize: b.rxBufferSize,
		maxFrameSize: b.maxFrameSize,
		reassemblers: make(map[transport.Socket]*packet.Reassembler),
		stats:        make(map[transport.Address]*SenderStats),
	}
	s.Base = apps.NewBase(name, b.engine, s)

	return s, nil
}
