// SPDX-License-Identifier: GPL-3.0-or-later

/*
Package sdp implements the SpiNNaker Datagram Protocol (SDP) message
that host tools exchange with SpiNNaker boards over UDP.

On UDP, an SDP message is a 10-byte header followed by the payload:

	offset  field
	0-1     padding (always zero)
	2       flags
	3       tag
	4       destination port (3 MSBs) and destination CPU (5 LSBs)
	5       source port (3 MSBs) and source CPU (5 LSBs)
	6       destination chip Y
	7       destination chip X
	8       source chip Y
	9       source chip X

Both [*Header] and [*Message] implement [encoding.BinaryAppender] and
[encoding.BinaryUnmarshaler], so a [*Message] can be sent directly with
the SendMessage method of a udpconn connection.
*/
package sdp

import (
	"encoding"
	"errors"
	"fmt"
)

// HeaderLen is the length in bytes of the header on UDP, including
// the two leading padding bytes.
const HeaderLen = 10

const (
	// FlagReplyNotExpected marks a message that does not expect a reply.
	FlagReplyNotExpected = 0x07

	// FlagReplyExpected marks a message that expects a reply.
	FlagReplyExpected = 0x87
)

const (
	// MaxPort is the largest port that fits the 3-bit port field.
	MaxPort = 7

	// MaxCPU is the largest CPU that fits the 5-bit CPU field.
	MaxCPU = 31
)

var (
	// ErrShortHeader indicates that the input is shorter than [HeaderLen].
	ErrShortHeader = errors.New("sdp: header too short")

	// ErrFieldRange indicates that a port or CPU does not fit its field.
	ErrFieldRange = errors.New("sdp: field out of range")
)

// Header is the SDP header.
//
// The zero value is a valid header addressed to port 0 of CPU 0 on chip (0, 0).
type Header struct {
	// Flags contains the message flags (e.g., [FlagReplyExpected]).
	Flags uint8

	// Tag is the IP tag used to route replies.
	Tag uint8

	// DestinationPort is the destination SDP port (0-7).
	DestinationPort uint8

	// DestinationCPU is the destination CPU (0-31).
	DestinationCPU uint8

	// DestinationChipX is the X coordinate of the destination chip.
	DestinationChipX uint8

	// DestinationChipY is the Y coordinate of the destination chip.
	DestinationChipY uint8

	// SourcePort is the source SDP port (0-7).
	SourcePort uint8

	// SourceCPU is the source CPU (0-31).
	SourceCPU uint8

	// SourceChipX is the X coordinate of the source chip.
	SourceChipX uint8

	// SourceChipY is the Y coordinate of the source chip.
	SourceChipY uint8
}

var (
	_ encoding.BinaryAppender    = &Header{}
	_ encoding.BinaryUnmarshaler = &Header{}
)

// validate returns [ErrFieldRange] if a port or CPU overflows its bits.
func (h *Header) validate() error {
	switch {
	case h.DestinationPort > MaxPort:
		return fmt.Errorf("%w: destination port %d", ErrFieldRange, h.DestinationPort)
	case h.SourcePort > MaxPort:
		return fmt.Errorf("%w: source port %d", ErrFieldRange, h.SourcePort)
	case h.DestinationCPU > MaxCPU:
		return fmt.Errorf("%w: destination cpu %d", ErrFieldRange, h.DestinationCPU)
	case h.SourceCPU > MaxCPU:
		return fmt.Errorf("%w: source cpu %d", ErrFieldRange, h.SourceCPU)
	default:
		return nil
	}
}

// AppendBinary implements [encoding.BinaryAppender].
func (h *Header) AppendBinary(buf []byte) ([]byte, error) {
	if err := h.validate(); err != nil {
		return buf, err
	}
	return append(buf,
		0, 0,
		h.Flags,
		h.Tag,
		h.DestinationPort<<5|h.DestinationCPU,
		h.SourcePort<<5|h.SourceCPU,
		h.DestinationChipY,
		h.DestinationChipX,
		h.SourceChipY,
		h.SourceChipX,
	), nil
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
//
// Only the first [HeaderLen] bytes of data are consumed.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderLen {
		return ErrShortHeader
	}
	h.Flags = data[2]
	h.Tag = data[3]
	h.DestinationPort = data[4] >> 5
	h.DestinationCPU = data[4] & MaxCPU
	h.SourcePort = data[5] >> 5
	h.SourceCPU = data[5] & MaxCPU
	h.DestinationChipY = data[6]
	h.DestinationChipX = data[7]
	h.SourceChipY = data[8]
	h.SourceChipX = data[9]
	return nil
}

// String returns a compact human readable representation of the header.
func (h *Header) String() string {
	return fmt.Sprintf(
		"%d,%d,%d:%d <- %d,%d,%d:%d flags=0x%02x tag=%d",
		h.DestinationChipX, h.DestinationChipY, h.DestinationCPU, h.DestinationPort,
		h.SourceChipX, h.SourceChipY, h.SourceCPU, h.SourcePort,
		h.Flags, h.Tag,
	)
}

// Message is an SDP message: a [Header] followed by an opaque payload.
type Message struct {
	// Header is the message header.
	Header Header

	// Data is the message payload.
	Data []byte
}

var (
	_ encoding.BinaryAppender    = &Message{}
	_ encoding.BinaryUnmarshaler = &Message{}
)

// AppendBinary implements [encoding.BinaryAppender].
func (m *Message) AppendBinary(buf []byte) ([]byte, error) {
	buf, err := m.Header.AppendBinary(buf)
	if err != nil {
		return buf, err
	}
	return append(buf, m.Data...), nil
}

// MarshalBinary implements [encoding.BinaryMarshaler].
func (m *Message) MarshalBinary() ([]byte, error) {
	return m.AppendBinary(make([]byte, 0, HeaderLen+len(m.Data)))
}

// UnmarshalBinary implements [encoding.BinaryUnmarshaler].
//
// The payload is copied, so data may be reused after the call.
func (m *Message) UnmarshalBinary(data []byte) error {
	if err := m.Header.UnmarshalBinary(data); err != nil {
		return err
	}
	m.Data = append([]byte{}, data[HeaderLen:]...)
	return nil
}
