package transport

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"net/netip"

	"github.com/hashicorp/go-multierror"
	"github.com/sarchlab/trafficsim/sim"
)

// Builder can build simulated networks.
type Builder struct {
	engine         sim.Engine
	latency        sim.VTimeInSec
	bandwidth      float64
	sendBufferSize int
	mss            int
	lossRate       float64
	seed           uint64
	nodes          []netip.Addr
}

// MakeBuilder returns a Builder with a 1 ms one-way latency, infinite
// bandwidth, no loss, 1460-byte stream segments and 128-segment send buffers.
func MakeBuilder() Builder {
	return Builder{
		latency:        0.001,
		sendBufferSize: 128,
		mss:            1460,
		seed:           1,
	}
}

// WithEngine sets the engine that delivers the network events.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithLatency sets the one-way propagation delay between any two nodes.
func (b Builder) WithLatency(latency sim.VTimeInSec) Builder {
	b.latency = latency
	return b
}

// WithBandwidth sets the egress rate of every node in bits per second. Zero
// means segments leave a node without serialization delay.
func (b Builder) WithBandwidth(bitsPerSecond float64) Builder {
	b.bandwidth = bitsPerSecond
	return b
}

// WithSendBufferSize sets how many segments a socket can hold before sends
// fail.
func (b Builder) WithSendBufferSize(segments int) Builder {
	b.sendBufferSize = segments
	return b
}

// WithMSS sets the maximum stream segment size.
func (b Builder) WithMSS(bytes int) Builder {
	b.mss = bytes
	return b
}

// WithLossRate sets the probability that a datagram is lost. Stream traffic
// is never lost.
func (b Builder) WithLossRate(rate float64) Builder {
	b.lossRate = rate
	return b
}

// WithSeed sets the seed of the loss random stream.
func (b Builder) WithSeed(seed uint64) Builder {
	b.seed = seed
	return b
}

// WithNodes registers the nodes that can open sockets.
func (b Builder) WithNodes(nodes ...netip.Addr) Builder {
	b.nodes = append(append([]netip.Addr{}, b.nodes...), nodes...)
	return b
}

func (b Builder) parametersMustBeValid() error {
	var errs *multierror.Error

	if b.engine == nil {
		errs = multierror.Append(errs, errors.New("engine is not set"))
	}

	if b.latency < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("latency %v must not be negative", b.latency))
	}

	if b.bandwidth < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("bandwidth %v must not be negative", b.bandwidth))
	}

	if b.sendBufferSize <= 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("send buffer size %d must be positive", b.sendBufferSize))
	}

	if b.mss <= 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("MSS %d must be positive", b.mss))
	}

	if b.lossRate < 0 || b.lossRate >= 1 {
		errs = multierror.Append(errs,
			fmt.Errorf("loss rate %v must be in [0, 1)", b.lossRate))
	}

	return errs.ErrorOrNil()
}

// Build creates a new Network.
func (b Builder) Build(name string) (*Network, error) {
	sim.NameMustBeValid(name)

	err := b.parametersMustBeValid()
	if err != nil {
		return nil, fmt.Errorf("network %s: %w", name, err)
	}

	n := &Network{
		name:           name,
		engine:         b.engine,
		latency:        b.latency,
		bandwidth:      b.bandwidth,
		sendBufferSize: b.sendBufferSize,
		mss:            b.mss,
		lossRate:       b.lossRate,
		rng:            rand.New(rand.NewPCG(b.seed, b.seed)),
		nodes:          make(map[netip.Addr]*node),
		bound:          make(map[Address]*simSocket),
		conns:          make(map[connKey]*simSocket),
	}

	for _, ip := range b.nodes {
		n.AddNode(ip)
	}

	return n, nil
}
