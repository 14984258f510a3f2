package metaproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	for _, pt := range []ProtocolType{ProtocolMeta, ProtocolApplication, ProtocolNaturalLanguage, ProtocolVerification} {
		f := NewFrameBuilder(pt).WithPayload([]byte("hello")).Build()

		wire, err := Encode(f)
		require.NoError(t, err)
		require.Len(t, wire, 1+len("hello"))

		decoded, err := Decode(wire)
		require.NoError(t, err)
		assert.Equal(t, pt, decoded.ProtocolType)
		assert.Equal(t, []byte("hello"), decoded.Payload)
	}
}

func TestEncode_HeaderPacksProtocolTypeInTopTwoBits(t *testing.T) {
	wire, err := Encode(Frame{ProtocolType: ProtocolVerification, Payload: nil})
	require.NoError(t, err)
	require.Len(t, wire, 1)
	assert.Equal(t, byte(0b11000000), wire[0])
}

func TestEncode_RejectsOutOfRangeProtocolType(t *testing.T) {
	_, err := Encode(Frame{ProtocolType: ProtocolType(4)})
	assert.Error(t, err)
}

func TestDecode_RejectsEmptyBuffer(t *testing.T) {
	_, err := Decode(nil)
	assert.Error(t, err)
}

func TestDecode_RejectsNonzeroReservedBits(t *testing.T) {
	_, err := Decode([]byte{0b00000001})
	assert.Error(t, err)
}

func TestDecode_EmptyPayloadIsValid(t *testing.T) {
	f, err := Decode([]byte{0})
	require.NoError(t, err)
	assert.Empty(t, f.Payload)
	assert.Equal(t, ProtocolMeta, f.ProtocolType)
}
