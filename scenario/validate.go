package scenario

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/sarchlab/trafficsim/packet"
	"github.com/sarchlab/trafficsim/sim"
	"github.com/sarchlab/trafficsim/transport"
)

// Validate reports every problem of the scenario at once.
func (sc *Scenario) Validate() error {
	var errs *multierror.Error

	if sc.EndTime < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("end time %v must not be negative", sc.EndTime))
	}

	errs = multierror.Append(errs, sc.Network.validate())

	names := make(map[string]bool)
	checkName := func(kind, name string) {
		err := sim.CheckName(name)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", kind, err))
			return
		}

		if names[name] {
			errs = multierror.Append(errs,
				fmt.Errorf("%s: name %s is used more than once", kind, name))
		}

		names[name] = true
	}

	sinks := make(map[transport.Address]SinkConfig)
	for i, s := range sc.Sinks {
		checkName(fmt.Sprintf("sink %d", i), s.Name)

		if _, found := sinks[s.Address]; found {
			errs = multierror.Append(errs, fmt.Errorf(
				"sink %s: address %s is used more than once", s.Name, s.Address))
		}

		sinks[s.Address] = s

		errs = multierror.Append(errs, s.validate())
	}

	for i, s := range sc.Sources {
		checkName(fmt.Sprintf("source %d", i), s.Name)

		errs = multierror.Append(errs, s.validate())

		if sc.EndTime == 0 && s.Stop == nil && s.MaxBytes == 0 {
			errs = multierror.Append(errs, fmt.Errorf(
				"source %s: never stops, set end_time, stop or max_bytes", s.Name))
		}

		sink, found := sinks[s.Peer]
		if found && sink.Protocol != s.Protocol {
			errs = multierror.Append(errs, fmt.Errorf(
				"source %s: protocol %s does not match sink %s (%s)",
				s.Name, s.Protocol, sink.Name, sink.Protocol))
		}
	}

	return errs.ErrorOrNil()
}

func (n NetworkConfig) validate() error {
	var errs *multierror.Error

	if n.Latency < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("network: latency %v must not be negative", n.Latency))
	}

	if n.Bandwidth < 0 {
		errs = multierror.Append(errs, fmt.Errorf(
			"network: bandwidth %v must not be negative", n.Bandwidth))
	}

	if n.MSS <= 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("network: mss %d must be positive", n.MSS))
	}

	if n.SendBufferSize <= 0 {
		errs = multierror.Append(errs, fmt.Errorf(
			"network: send buffer size %d must be positive", n.SendBufferSize))
	}

	if n.LossRate < 0 || n.LossRate >= 1 {
		errs = multierror.Append(errs, fmt.Errorf(
			"network: loss rate %v must be in [0, 1)", n.LossRate))
	}

	return errs.ErrorOrNil()
}

func validateTimes(start float64, stop *float64) error {
	if start < 0 {
		return fmt.Errorf("start time %v must not be negative", start)
	}

	if stop != nil && *stop < start {
		return fmt.Errorf("stop time %v must not be before start time %v",
			*stop, start)
	}

	return nil
}

func (s SinkConfig) validate() error {
	var errs *multierror.Error

	if !s.Address.IsValid() || s.Address.Port == 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("address %s is not valid", s.Address))
	}

	if s.RxBufferSize <= 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("rx buffer size %d must be positive", s.RxBufferSize))
	}

	errs = multierror.Append(errs, validateTimes(s.Start, s.Stop))

	err := errs.ErrorOrNil()
	if err != nil {
		return fmt.Errorf("sink %s: %w", s.Name, err)
	}

	return nil
}

func (s SourceConfig) validate() error {
	var errs *multierror.Error

	if !s.Node.IsValid() {
		errs = multierror.Append(errs, errors.New("node is not set"))
	}

	if !s.Peer.IsValid() || s.Peer.Port == 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("peer address %s is not valid", s.Peer))
	}

	if s.PacketSize < packet.HeaderSize {
		errs = multierror.Append(errs,
			fmt.Errorf("packet size %d must be at least %d bytes",
				s.PacketSize, packet.HeaderSize))
	}

	if s.FirstSendingTime < 0 {
		errs = multierror.Append(errs, fmt.Errorf(
			"first sending time %v must not be negative", s.FirstSendingTime))
	}

	if s.Interval <= 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("interval %v must be positive", s.Interval))
	}

	if s.Jitter < 0 {
		errs = multierror.Append(errs,
			fmt.Errorf("jitter %v must not be negative", s.Jitter))
	}

	errs = multierror.Append(errs, validateTimes(s.Start, s.Stop))

	err := errs.ErrorOrNil()
	if err != nil {
		return fmt.Errorf("source %s: %w", s.Name, err)
	}

	return nil
}
