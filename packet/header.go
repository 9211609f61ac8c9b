// Package packet defines the frame format exchanged by packet sources and
// packet sinks.
//
// A frame starts with a fixed size header followed by an opaque payload. The
// header is exposed as a gopacket layer so that frames can be decoded with the
// usual gopacket machinery, for example when dumping simulated traffic.
package packet

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/sarchlab/trafficsim/sim"
)

// HeaderSize is the number of bytes the header takes at the front of each
// frame.
const HeaderSize = 28

// LayerTypeTraffic is the gopacket layer type of the frame header.
var LayerTypeTraffic = gopacket.RegisterLayerType(
	2901,
	gopacket.LayerTypeMetadata{
		Name:    "Traffic",
		Decoder: gopacket.DecodeFunc(decodeTraffic),
	},
)

var (
	// ErrTruncated is returned when a frame is shorter than it claims to be.
	ErrTruncated = errors.New("packet: truncated frame")

	// ErrBadLength is returned when the length field cannot describe a
	// valid frame.
	ErrBadLength = errors.New("packet: invalid length field")
)

// Header is the per-frame header. Only Seq, Timestamp and Length are
// interpreted by the applications. The remaining fields are carried for
// observers.
type Header struct {
	layers.BaseLayer

	Seq            uint32
	Timestamp      uint64 // virtual time of transmission, in nanoseconds
	Length         uint32 // total frame length, header included
	Pseudonym      uint32
	OperationID    uint32
	QosID          uint8
	Privacy        uint8
	ConnectionType uint8
}

// SentAt returns the transmission time carried in the header.
func (h *Header) SentAt() sim.VTimeInSec {
	return sim.VTimeFromNanoseconds(h.Timestamp)
}

// LayerType returns LayerTypeTraffic.
func (h *Header) LayerType() gopacket.LayerType {
	return LayerTypeTraffic
}

// CanDecode returns the layer class this layer can decode.
func (h *Header) CanDecode() gopacket.LayerClass {
	return LayerTypeTraffic
}

// NextLayerType returns the type of the layer that follows the header.
func (h *Header) NextLayerType() gopacket.LayerType {
	return gopacket.LayerTypePayload
}

// DecodeFromBytes decodes the header and slices out the payload.
func (h *Header) DecodeFromBytes(
	data []byte,
	df gopacket.DecodeFeedback,
) error {
	if len(data) < HeaderSize {
		df.SetTruncated()
		return fmt.Errorf("%w: %d bytes, need %d",
			ErrTruncated, len(data), HeaderSize)
	}

	h.Seq = binary.BigEndian.Uint32(data[0:4])
	h.Timestamp = binary.BigEndian.Uint64(data[4:12])
	h.Length = binary.BigEndian.Uint32(data[12:16])
	h.Pseudonym = binary.BigEndian.Uint32(data[16:20])
	h.OperationID = binary.BigEndian.Uint32(data[20:24])
	h.QosID = data[24]
	h.Privacy = data[25]
	h.ConnectionType = data[26]

	if h.Length < HeaderSize {
		return fmt.Errorf("%w: %d", ErrBadLength, h.Length)
	}

	if int(h.Length) > len(data) {
		df.SetTruncated()
		return fmt.Errorf("%w: %d bytes, header says %d",
			ErrTruncated, len(data), h.Length)
	}

	h.Contents = data[:HeaderSize]
	h.Payload = data[HeaderSize:h.Length]

	return nil
}

// SerializeTo writes the header in front of whatever is already in the
// buffer. With FixLengths set, the length field is computed from the buffer.
func (h *Header) SerializeTo(
	b gopacket.SerializeBuffer,
	opts gopacket.SerializeOptions,
) error {
	bytes, err := b.PrependBytes(HeaderSize)
	if err != nil {
		return err
	}

	if opts.FixLengths {
		h.Length = uint32(len(b.Bytes()))
	}

	binary.BigEndian.PutUint32(bytes[0:4], h.Seq)
	binary.BigEndian.PutUint64(bytes[4:12], h.Timestamp)
	binary.BigEndian.PutUint32(bytes[12:16], h.Length)
	binary.BigEndian.PutUint32(bytes[16:20], h.Pseudonym)
	binary.BigEndian.PutUint32(bytes[20:24], h.OperationID)
	bytes[24] = h.QosID
	bytes[25] = h.Privacy
	bytes[26] = h.ConnectionType
	bytes[27] = 0

	return nil
}

func decodeTraffic(data []byte, p gopacket.PacketBuilder) error {
	h := &Header{}

	err := h.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}

	p.AddLayer(h)

	return p.NextDecoder(h.NextLayerType())
}
