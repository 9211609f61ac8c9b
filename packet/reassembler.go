package packet

import (
	"encoding/binary"
	"fmt"
)

// A Reassembler rebuilds frames out of a byte stream. Stream transports may
// split a frame across several reads or merge several frames in one read.
type Reassembler struct {
	buf          []byte
	maxFrameSize int
}

// NewReassembler creates a Reassembler that rejects frames longer than
// maxFrameSize. A maxFrameSize of 0 disables the check.
func NewReassembler(maxFrameSize int) *Reassembler {
	return &Reassembler{maxFrameSize: maxFrameSize}
}

// Write appends bytes read from the stream.
func (r *Reassembler) Write(chunk []byte) {
	r.buf = append(r.buf, chunk...)
}

// Buffered returns the number of bytes waiting for the rest of their frame.
func (r *Reassembler) Buffered() int {
	return len(r.buf)
}

// Next returns the next complete frame, or nil if more bytes are needed. An
// error means the stream cannot be resynchronized; the buffered bytes are
// discarded.
func (r *Reassembler) Next() ([]byte, error) {
	if len(r.buf) < HeaderSize {
		return nil, nil
	}

	length := int(binary.BigEndian.Uint32(r.buf[12:16]))
	if length < HeaderSize ||
		(r.maxFrameSize > 0 && length > r.maxFrameSize) {
		r.Reset()
		return nil, fmt.Errorf("%w: %d", ErrBadLength, length)
	}

	if len(r.buf) < length {
		return nil, nil
	}

	frame := make([]byte, length)
	copy(frame, r.buf[:length])
	r.buf = r.buf[length:]

	if len(r.buf) == 0 {
		r.buf = nil
	}

	return frame, nil
}

// Reset drops all the buffered bytes.
func (r *Reassembler) Reset() {
	r.buf = nil
}
