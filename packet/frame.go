package packet

import (
	"fmt"

	"github.com/google/gopacket"
)

// Build serializes a frame of exactly size bytes. The payload after the
// header is zero filled. The length field of h is overwritten.
func Build(h Header, size int) ([]byte, error) {
	if size < HeaderSize {
		return nil, fmt.Errorf(
			"packet: frame size %d is smaller than the header (%d bytes)",
			size, HeaderSize)
	}

	buf := gopacket.NewSerializeBufferExpectedSize(HeaderSize, size-HeaderSize)
	payload := gopacket.Payload(make([]byte, size-HeaderSize))

	err := gopacket.SerializeLayers(
		buf,
		gopacket.SerializeOptions{FixLengths: true},
		&h,
		payload,
	)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Parse decodes the header at the front of a frame and returns it together
// with the payload.
func Parse(frame []byte) (Header, []byte, error) {
	h := Header{}

	err := h.DecodeFromBytes(frame, gopacket.NilDecodeFeedback)
	if err != nil {
		return Header{}, nil, err
	}

	return h, h.Payload, nil
}

// Decode decodes a frame into a gopacket.Packet whose first layer is the
// header.
func Decode(frame []byte) gopacket.Packet {
	return gopacket.NewPacket(frame, LayerTypeTraffic, gopacket.Default)
}
