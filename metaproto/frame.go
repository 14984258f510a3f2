// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package metaproto

import "fmt"

// ProtocolType is carried in the top two bits of a Frame header byte.
type ProtocolType byte

const (
	ProtocolMeta            ProtocolType = 0
	ProtocolApplication     ProtocolType = 1
	ProtocolNaturalLanguage ProtocolType = 2
	ProtocolVerification    ProtocolType = 3
)

func (t ProtocolType) String() string {
	switch t {
	case ProtocolMeta:
		return "meta"
	case ProtocolApplication:
		return "application"
	case ProtocolNaturalLanguage:
		return "natural-language"
	case ProtocolVerification:
		return "verification"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

const (
	protocolTypeShift = 6
	protocolTypeMask  = 0b11
	reservedBitsMask  = 0b00111111
)

// Frame is the single-octet-header envelope every meta-protocol message is
// wrapped in before it crosses a bidirectional transport: the high two bits
// of the header encode ProtocolType, the low six bits are reserved zero,
// and the remainder of the buffer is the payload verbatim.
type Frame struct {
	ProtocolType ProtocolType
	Payload      []byte
}

// FrameBuilder assembles a Frame via chained setters, in the same
// builder-and-Build shape used elsewhere in this module for structured
// construction.
type FrameBuilder struct {
	frame Frame
}

// NewFrameBuilder starts building a Frame of the given ProtocolType.
func NewFrameBuilder(pt ProtocolType) *FrameBuilder {
	return &FrameBuilder{frame: Frame{ProtocolType: pt}}
}

// WithPayload sets the frame's payload bytes.
func (b *FrameBuilder) WithPayload(payload []byte) *FrameBuilder {
	b.frame.Payload = payload
	return b
}

// Build finalizes and returns the Frame.
func (b *FrameBuilder) Build() Frame {
	return b.frame
}

// Encode packs f into its wire form: one header byte followed by the
// payload.
func Encode(f Frame) ([]byte, error) {
	if f.ProtocolType > ProtocolVerification {
		return nil, fmt.Errorf("metaproto: protocol_type %d out of range", f.ProtocolType)
	}
	header := byte(f.ProtocolType) << protocolTypeShift
	out := make([]byte, 1+len(f.Payload))
	out[0] = header
	copy(out[1:], f.Payload)
	return out, nil
}

// Decode parses the wire form produced by Encode. It rejects buffers
// shorter than one byte and headers whose reserved low six bits are
// nonzero.
func Decode(data []byte) (Frame, error) {
	if len(data) < 1 {
		return Frame{}, fmt.Errorf("metaproto: frame too short: %d bytes", len(data))
	}
	header := data[0]
	if header&reservedBitsMask != 0 {
		return Frame{}, fmt.Errorf("metaproto: reserved header bits set: %08b", header)
	}
	pt := ProtocolType(header >> protocolTypeShift & protocolTypeMask)

	payload := make([]byte, len(data)-1)
	copy(payload, data[1:])
	return Frame{ProtocolType: pt, Payload: payload}, nil
}
