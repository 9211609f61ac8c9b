package transport

import (
	"fmt"
	"net/netip"
	"strings"
)

// An Address identifies a transport endpoint on a simulated node.
type Address struct {
	IP   netip.Addr
	Port uint16
}

// ParseAddress parses "ip:port" (IPv6 addresses in brackets).
func ParseAddress(s string) (Address, error) {
	ap, err := netip.ParseAddrPort(strings.TrimSpace(s))
	if err != nil {
		return Address{}, fmt.Errorf("invalid address %q: %w", s, err)
	}

	return Address{IP: ap.Addr(), Port: ap.Port()}, nil
}

// MustParseAddress is like ParseAddress but panics on malformed input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}

	return a
}

// ParseNode parses the IP address of a simulated node.
func ParseNode(s string) (netip.Addr, error) {
	ip, err := netip.ParseAddr(strings.TrimSpace(s))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("invalid node address %q: %w", s, err)
	}

	return ip, nil
}

// IsValid reports whether the address has an IP. Port 0 is valid and means
// "any port" when binding.
func (a Address) IsValid() bool {
	return a.IP.IsValid()
}

func (a Address) String() string {
	if !a.IP.IsValid() {
		return "<none>"
	}

	return netip.AddrPortFrom(a.IP, a.Port).String()
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := ParseAddress(string(text))
	if err != nil {
		return err
	}

	*a = parsed

	return nil
}
