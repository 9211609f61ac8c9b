package scenario

import (
	"fmt"
	"net/netip"

	"github.com/sarchlab/trafficsim/apps/packetsink"
	"github.com/sarchlab/trafficsim/apps/packetsource"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/simulation"
	"github.com/sarchlab/trafficsim/transport"
)

// An Installation holds the applications that a scenario installed.
type Installation struct {
	Sinks   []*packetsink.Sink
	Sources []*packetsource.Source
}

// Nodes returns the simulated nodes the scenario uses, in order of first
// appearance.
func (sc *Scenario) Nodes() []netip.Addr {
	var nodes []netip.Addr

	seen := make(map[netip.Addr]bool)
	add := func(ip netip.Addr) {
		if ip.IsValid() && !seen[ip] {
			seen[ip] = true
			nodes = append(nodes, ip)
		}
	}

	for _, s := range sc.Sinks {
		add(s.Address.IP)
	}

	for _, s := range sc.Sources {
		add(s.Node)
	}

	return nodes
}

// NetworkBuilder returns a builder of the network the scenario describes.
func (sc *Scenario) NetworkBuilder() transport.Builder {
	return transport.MakeBuilder().
		WithLatency(sim.VTimeInSec(sc.Network.Latency)).
		WithBandwidth(sc.Network.Bandwidth).
		WithMSS(sc.Network.MSS).
		WithSendBufferSize(sc.Network.SendBufferSize).
		WithLossRate(sc.Network.LossRate).
		WithSeed(uint64(sc.Seed)).
		WithNodes(sc.Nodes()...)
}

// Install creates the sinks and the sources, registers them with the
// simulation and schedules their start and stop times. The network loss
// stream takes the scenario seed and the sources take the streams after it.
func (sc *Scenario) Install(s *simulation.Simulation) (*Installation, error) {
	err := sc.Validate()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}

	inst := &Installation{}

	for _, cfg := range sc.Sinks {
		sink, err := packetsink.MakeBuilder().
			WithEngine(s.GetEngine()).
			WithNetwork(s.GetNetwork()).
			WithLocalAddress(cfg.Address).
			WithProtocol(cfg.Protocol).
			WithRxBufferSize(cfg.RxBufferSize).
			Build(cfg.Name)
		if err != nil {
			return nil, err
		}

		s.RegisterApp(sink)
		sink.StartAt(sim.VTimeInSec(cfg.Start))

		if cfg.Stop != nil {
			sink.StopAt(sim.VTimeInSec(*cfg.Stop))
		}

		inst.Sinks = append(inst.Sinks, sink)
	}

	stream := sc.Seed
	stream += s.GetNetwork().AssignStreams(stream)

	for _, cfg := range sc.Sources {
		source, err := packetsource.MakeBuilder().
			WithEngine(s.GetEngine()).
			WithNetwork(s.GetNetwork()).
			WithNode(cfg.Node).
			WithPeer(cfg.Peer).
			WithProtocol(cfg.Protocol).
			WithPacketSize(cfg.PacketSize).
			WithMaxBytes(cfg.MaxBytes).
			WithFirstSendingTime(sim.VTimeInSec(cfg.FirstSendingTime)).
			WithInterval(sim.VTimeInSec(cfg.Interval)).
			WithJitter(sim.VTimeInSec(cfg.Jitter)).
			WithMetadata(packetsource.Metadata{
				Pseudonym:      cfg.Metadata.Pseudonym,
				OperationID:    cfg.Metadata.OperationID,
				QosID:          cfg.Metadata.QosID,
				Privacy:        cfg.Metadata.Privacy,
				ConnectionType: cfg.Metadata.ConnectionType,
			}).
			Build(cfg.Name)
		if err != nil {
			return nil, err
		}

		stream += source.AssignStreams(stream)

		s.RegisterApp(source)
		source.StartAt(sim.VTimeInSec(cfg.Start))

		if cfg.Stop != nil {
			source.StopAt(sim.VTimeInSec(*cfg.Stop))
		}

		inst.Sources = append(inst.Sources, source)
	}

	return inst, nil
}

// Run runs the simulation until the scenario's end time. An end time of 0
// runs until no event is left.
func (sc *Scenario) Run(s *simulation.Simulation) error {
	if sc.EndTime == 0 {
		return s.Run()
	}

	return s.RunUntil(sim.VTimeInSec(sc.EndTime))
}
