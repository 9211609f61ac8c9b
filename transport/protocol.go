package transport

import (
	"fmt"
	"strings"
)

// Protocol selects the kind of socket a network creates.
type Protocol int

// The supported protocols.
const (
	// Stream sockets are connection oriented, reliable and ordered. Data is
	// delivered as a byte stream and may be split into several segments.
	Stream Protocol = iota

	// Datagram sockets are connectionless. Each send is delivered as a
	// whole or not at all.
	Datagram
)

func (p Protocol) String() string {
	switch p {
	case Stream:
		return "tcp"
	case Datagram:
		return "udp"
	default:
		return fmt.Sprintf("Protocol(%d)", int(p))
	}
}

// IsConnectionOriented returns true if connecting involves the peer.
func (p Protocol) IsConnectionOriented() bool {
	return p == Stream
}

// ParseProtocol accepts "tcp", "stream", "udp", "datagram" and the ns-3
// socket factory names.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tcp", "stream", "ns3::tcpsocketfactory":
		return Stream, nil
	case "udp", "datagram", "ns3::udpsocketfactory":
		return Datagram, nil
	default:
		return 0, fmt.Errorf("unknown protocol %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Protocol) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Protocol) UnmarshalText(text []byte) error {
	parsed, err := ParseProtocol(string(text))
	if err != nil {
		return err
	}

	*p = parsed

	return nil
}
