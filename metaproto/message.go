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

import (
	"encoding/json"
	"time"

	"github.com/sage-x-project/anp/core/message"
)

// Action discriminates the JSON payload a meta-protocol Envelope carries.
type Action string

const (
	ActionProtocolNegotiation        Action = "protocolNegotiation"
	ActionCodeGeneration             Action = "codeGeneration"
	ActionTestCasesNegotiation       Action = "testCasesNegotiation"
	ActionFixErrorNegotiation        Action = "fixErrorNegotiation"
	ActionNaturalLanguageNegotiation Action = "naturalLanguageNegotiation"
)

func (a Action) valid() bool {
	switch a {
	case ActionProtocolNegotiation, ActionCodeGeneration, ActionTestCasesNegotiation,
		ActionFixErrorNegotiation, ActionNaturalLanguageNegotiation:
		return true
	default:
		return false
	}
}

// ProtocolNegotiationError reports why parsing a meta-protocol payload
// failed: an unknown or missing action discriminator.
type ProtocolNegotiationError struct {
	Action Action
	Op     string
	Cause  error
}

func (e *ProtocolNegotiationError) Error() string {
	if e.Action != "" {
		return "metaproto: " + e.Op + " " + string(e.Action) + ": " + e.Cause.Error()
	}
	return "metaproto: " + e.Op + ": " + e.Cause.Error()
}

func (e *ProtocolNegotiationError) Unwrap() error { return e.Cause }

var errUnknownAction = &actionError{"unknown action"}
var errMissingAction = &actionError{"missing action"}

type actionError struct{ msg string }

func (e *actionError) Error() string { return e.msg }

// Envelope is the JSON body a Frame of ProtocolType meta or
// natural-language carries: a context-scoped, sequenced, action-discriminated
// message, generalizing the fixed four-phase handshake's message shape to
// the full negotiation state machine.
type Envelope struct {
	message.BaseMessage
	message.MessageControlHeader

	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// GetSequence implements message.ControlHeader.
func (e *Envelope) GetSequence() uint64 { return e.Sequence }

// GetNonce implements message.ControlHeader.
func (e *Envelope) GetNonce() string { return e.Nonce }

// GetTimestamp implements message.ControlHeader.
func (e *Envelope) GetTimestamp() time.Time { return e.Timestamp }

// NewEnvelope builds an Envelope ready for marshaling, stamping seq and the
// current time.
func NewEnvelope(contextID string, seq uint64, nonce string, action Action, payload interface{}) (*Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, &ProtocolNegotiationError{Action: action, Op: "build", Cause: err}
	}
	return &Envelope{
		BaseMessage: message.BaseMessage{ContextID: contextID},
		MessageControlHeader: message.MessageControlHeader{
			Sequence:  seq,
			Nonce:     nonce,
			Timestamp: time.Now(),
		},
		Action:  action,
		Payload: raw,
	}, nil
}

// ParseEnvelope decodes data into an Envelope, failing with a
// ProtocolNegotiationError on malformed JSON or an unknown/missing action.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &ProtocolNegotiationError{Op: "parse", Cause: err}
	}
	if env.Action == "" {
		return nil, &ProtocolNegotiationError{Op: "parse", Cause: errMissingAction}
	}
	if !env.Action.valid() {
		return nil, &ProtocolNegotiationError{Action: env.Action, Op: "parse", Cause: errUnknownAction}
	}
	return &env, nil
}

// ProtocolNegotiationPayload is the payload of an ActionProtocolNegotiation
// Envelope: the proposed protocol and the negotiation round it belongs to.
type ProtocolNegotiationPayload struct {
	ProposedProtocol string `json:"proposedProtocol"`
	Round            int    `json:"round"`
}

// CodeGenerationPayload is the payload of an ActionCodeGeneration Envelope.
type CodeGenerationPayload struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// TestCasesNegotiationPayload is the payload of an
// ActionTestCasesNegotiation Envelope.
type TestCasesNegotiationPayload struct {
	TestCases json.RawMessage `json:"testCases,omitempty"`
	Agreed    bool            `json:"agreed"`
}

// FixErrorNegotiationPayload is the payload of an
// ActionFixErrorNegotiation Envelope.
type FixErrorNegotiationPayload struct {
	Fix      string `json:"fix,omitempty"`
	Accepted bool   `json:"accepted"`
}

// NaturalLanguageNegotiationPayload is the payload of an
// ActionNaturalLanguageNegotiation Envelope.
type NaturalLanguageNegotiationPayload struct {
	Text string `json:"text"`
}
