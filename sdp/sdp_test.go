// SPDX-License-Identifier: GPL-3.0-or-later

package sdp_test

import (
	"encoding/hex"
	"testing"

	"github.com/spinnhost/x/sdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderAppendBinary(t *testing.T) {
	t.Run("field layout", func(t *testing.T) {
		hdr := &sdp.Header{
			Flags:            sdp.FlagReplyExpected,
			Tag:              0xff,
			DestinationPort:  1,
			DestinationCPU:   17,
			DestinationChipX: 2,
			DestinationChipY: 3,
			SourcePort:       7,
			SourceCPU:        31,
			SourceChipX:      0,
			SourceChipY:      0,
		}
		data, err := hdr.AppendBinary(nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{
			0x00, 0x00, // padding
			0x87,       // flags
			0xff,       // tag
			0x31,       // port 1, cpu 17
			0xff,       // port 7, cpu 31
			0x03, 0x02, // destination y, x
			0x00, 0x00, // source y, x
		}, data)
	})

	t.Run("appends to existing buffer", func(t *testing.T) {
		hdr := &sdp.Header{}
		data, err := hdr.AppendBinary([]byte("prefix"))
		require.NoError(t, err)
		assert.Len(t, data, len("prefix")+sdp.HeaderLen)
		assert.Equal(t, "prefix", string(data[:6]))
	})

	t.Run("out of range fields", func(t *testing.T) {
		tests := []struct {
			name string
			hdr  sdp.Header
		}{
			{"destination port", sdp.Header{DestinationPort: sdp.MaxPort + 1}},
			{"source port", sdp.Header{SourcePort: sdp.MaxPort + 1}},
			{"destination cpu", sdp.Header{DestinationCPU: sdp.MaxCPU + 1}},
			{"source cpu", sdp.Header{SourceCPU: sdp.MaxCPU + 1}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				data, err := tt.hdr.AppendBinary(nil)
				assert.ErrorIs(t, err, sdp.ErrFieldRange)
				assert.Empty(t, data)
			})
		}
	})
}

func TestHeaderUnmarshalBinary(t *testing.T) {
	t.Run("short input", func(t *testing.T) {
		var hdr sdp.Header
		err := hdr.UnmarshalBinary(make([]byte, sdp.HeaderLen-1))
		assert.ErrorIs(t, err, sdp.ErrShortHeader)
	})

	t.Run("decodes fields", func(t *testing.T) {
		var hdr sdp.Header
		err := hdr.UnmarshalBinary([]byte{0, 0, 0x07, 1, 0x31, 0xff, 3, 2, 5, 4})
		require.NoError(t, err)
		assert.Equal(t, sdp.Header{
			Flags:            sdp.FlagReplyNotExpected,
			Tag:              1,
			DestinationPort:  1,
			DestinationCPU:   17,
			DestinationChipX: 2,
			DestinationChipY: 3,
			SourcePort:       7,
			SourceCPU:        31,
			SourceChipX:      4,
			SourceChipY:      5,
		}, hdr)
	})
}

func TestMessage(t *testing.T) {
	msg := &sdp.Message{
		Header: sdp.Header{
			Flags:           sdp.FlagReplyNotExpected,
			DestinationPort: 1,
			DestinationCPU:  1,
			SourcePort:      7,
			SourceCPU:       31,
		},
		Data: []byte("hello"),
	}

	data, err := msg.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, sdp.HeaderLen+5)
	assert.Equal(t, "hello", string(data[sdp.HeaderLen:]))

	var decoded sdp.Message
	require.NoError(t, decoded.UnmarshalBinary(data))
	assert.Equal(t, msg.Header, decoded.Header)
	assert.Equal(t, msg.Data, decoded.Data)

	// the decoded payload must not alias the input buffer
	data[sdp.HeaderLen] = 'j'
	assert.Equal(t, "hello", string(decoded.Data))
}

func TestMessageEncoding(t *testing.T) {
	msg := &sdp.Message{
		Header: sdp.Header{
			Flags:            sdp.FlagReplyExpected,
			Tag:              3,
			DestinationChipX: 4,
			DestinationChipY: 5,
		},
		Data: []byte{0x01, 0x02},
	}
	data, err := msg.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, sdp.HeaderLen+2)
	assert.Equal(t, "000087030000050400000102", hex.EncodeToString(data))
}

func TestHeaderString(t *testing.T) {
	hdr := &sdp.Header{
		Flags:            sdp.FlagReplyExpected,
		Tag:              3,
		DestinationCPU:   1,
		DestinationPort:  2,
		DestinationChipX: 4,
		DestinationChipY: 5,
	}
	assert.Equal(t, "4,5,1:2 <- 0,0,0:0 flags=0x87 tag=3", hdr.String())
}
