package metaproto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_ParseEnvelope_RoundTrip(t *testing.T) {
	payload := ProtocolNegotiationPayload{ProposedProtocol: "anp/1.0", Round: 1}
	env, err := NewEnvelope("ctx-1", 1, "nonce-1", ActionProtocolNegotiation, payload)
	require.NoError(t, err)

	data, err := json.Marshal(env)
	require.NoError(t, err)

	parsed, err := ParseEnvelope(data)
	require.NoError(t, err)
	assert.Equal(t, ActionProtocolNegotiation, parsed.Action)
	assert.EqualValues(t, 1, parsed.GetSequence())
	assert.Equal(t, "nonce-1", parsed.GetNonce())

	var decodedPayload ProtocolNegotiationPayload
	require.NoError(t, json.Unmarshal(parsed.Payload, &decodedPayload))
	assert.Equal(t, payload, decodedPayload)
}

func TestParseEnvelope_RejectsMissingAction(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"sequence":1,"nonce":"n","timestamp":"2025-01-01T00:00:00Z"}`))
	require.Error(t, err)
	var pnErr *ProtocolNegotiationError
	assert.ErrorAs(t, err, &pnErr)
}

func TestParseEnvelope_RejectsUnknownAction(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{"action":"bogusAction"}`))
	require.Error(t, err)
	var pnErr *ProtocolNegotiationError
	assert.ErrorAs(t, err, &pnErr)
	assert.Equal(t, Action("bogusAction"), pnErr.Action)
}

func TestParseEnvelope_RejectsMalformedJSON(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{not json`))
	assert.Error(t, err)
}
