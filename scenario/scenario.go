// Package scenario describes traffic simulations in YAML files and installs
// them into a simulation.
package scenario

import (
	"bytes"
	"fmt"
	"net/netip"
	"os"
	"reflect"
	"strings"

	"github.com/sarchlab/trafficsim/transport"
	"gopkg.in/yaml.v3"
)

// Scenario is a complete traffic simulation: the network, the sinks that
// receive traffic and the sources that generate it.
type Scenario struct {
	Name    string         `yaml:"name"`
	EndTime float64        `yaml:"end_time"`
	Seed    int64          `yaml:"seed"`
	Network NetworkConfig  `yaml:"network"`
	Sinks   []SinkConfig   `yaml:"sinks"`
	Sources []SourceConfig `yaml:"sources"`
}

// NetworkConfig configures the simulated network.
type NetworkConfig struct {
	Latency        float64 `yaml:"latency"`
	Bandwidth      float64 `yaml:"bandwidth"`
	MSS            int     `yaml:"mss"`
	SendBufferSize int     `yaml:"send_buffer_size"`
	LossRate       float64 `yaml:"loss_rate"`
}

// SinkConfig configures a packet sink.
type SinkConfig struct {
	Name         string             `yaml:"name"`
	Address      transport.Address  `yaml:"address"`
	Protocol     transport.Protocol `yaml:"protocol"`
	RxBufferSize int                `yaml:"rx_buffer_size"`
	Start        float64            `yaml:"start"`
	Stop         *float64           `yaml:"stop,omitempty"`
}

// SourceConfig configures a packet source.
type SourceConfig struct {
	Name             string             `yaml:"name"`
	Node             netip.Addr         `yaml:"node"`
	Peer             transport.Address  `yaml:"peer"`
	Protocol         transport.Protocol `yaml:"protocol"`
	PacketSize       int                `yaml:"packet_size"`
	MaxBytes         uint64             `yaml:"max_bytes"`
	FirstSendingTime float64            `yaml:"first_sending_time"`
	Interval         float64            `yaml:"interval"`
	Jitter           float64            `yaml:"jitter"`
	Start            float64            `yaml:"start"`
	Stop             *float64           `yaml:"stop,omitempty"`
	Metadata         MetadataConfig     `yaml:"metadata"`
}

// MetadataConfig holds the opaque fields a source writes into each header.
type MetadataConfig struct {
	Pseudonym      uint32 `yaml:"pseudonym"`
	OperationID    uint32 `yaml:"operation_id"`
	QosID          uint8  `yaml:"qos_id"`
	Privacy        uint8  `yaml:"privacy"`
	ConnectionType uint8  `yaml:"connection_type"`
}

// DefaultNetwork returns the network used when a scenario does not
// configure one.
func DefaultNetwork() NetworkConfig {
	return NetworkConfig{
		Latency:        0.001,
		MSS:            1460,
		SendBufferSize: 128,
	}
}

// DefaultSink returns a stream sink with a 1024-byte receive buffer that
// starts at 1 s.
func DefaultSink() SinkConfig {
	return SinkConfig{
		Protocol:     transport.Stream,
		RxBufferSize: 1024,
		Start:        1.0,
	}
}

// DefaultSource returns a stream source that sends 1024-byte packets every
// 5 s, starting 2 s after it starts, and starts at 2 s.
func DefaultSource() SourceConfig {
	return SourceConfig{
		Protocol:         transport.Stream,
		PacketSize:       1024,
		FirstSendingTime: 2.0,
		Interval:         5.0,
		Start:            2.0,
	}
}

// DefaultScenario returns an empty scenario that ends at 10 s.
func DefaultScenario() Scenario {
	return Scenario{
		Name:    "trafficsim",
		EndTime: 10.0,
		Seed:    1,
		Network: DefaultNetwork(),
	}
}

// UnmarshalYAML fills the fields missing from the document with the
// defaults of a sink.
func (c *SinkConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain SinkConfig

	cfg := plain(DefaultSink())

	err := decodeKnownFields(value, &cfg)
	if err != nil {
		return err
	}

	*c = SinkConfig(cfg)

	return nil
}

// UnmarshalYAML fills the fields missing from the document with the
// defaults of a source.
func (c *SourceConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain SourceConfig

	cfg := plain(DefaultSource())

	err := decodeKnownFields(value, &cfg)
	if err != nil {
		return err
	}

	*c = SourceConfig(cfg)

	return nil
}

// decodeKnownFields decodes a mapping node into the struct pointed to by out
// and rejects keys that no field is tagged with.
func decodeKnownFields(value *yaml.Node, out any) error {
	if value.Kind == yaml.MappingNode {
		known := make(map[string]bool)

		t := reflect.TypeOf(out).Elem()
		for i := 0; i < t.NumField(); i++ {
			tag, _, _ := strings.Cut(t.Field(i).Tag.Get("yaml"), ",")
			known[tag] = true
		}

		for i := 0; i < len(value.Content); i += 2 {
			key := value.Content[i]
			if !known[key.Value] {
				return fmt.Errorf("line %d: field %s not found in type %s",
					key.Line, key.Value, t.Name())
			}
		}
	}

	return value.Decode(out)
}

// Parse decodes a scenario. Unknown fields are rejected. The scenario is
// not validated.
func Parse(data []byte) (*Scenario, error) {
	sc := DefaultScenario()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	err := decoder.Decode(&sc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	return &sc, nil
}

// Load reads, parses and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	sc, err := Parse(data)
	if err != nil {
		return nil, err
	}

	err = sc.Validate()
	if err != nil {
		return nil, fmt.Errorf("scenario %s is not valid: %w", path, err)
	}

	return sc, nil
}

// Marshal encodes the scenario as YAML.
func (sc *Scenario) Marshal() ([]byte, error) {
	return yaml.Marshal(sc)
}
