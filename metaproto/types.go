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

// Package metaproto drives the meta-protocol negotiation state machine: two
// agents move through protocol negotiation, code generation, test
// agreement, and testing before reaching a ready state, then hand off to an
// encrypted communicating state backed by the session package.
package metaproto

import "errors"

// State is one node of the negotiation state machine.
type State string

const (
	StateIdle           State = "idle"
	StateNegotiating    State = "negotiating"
	StateCodeGeneration State = "code_generation"
	StateTestCases      State = "test_cases"
	StateTesting        State = "testing"
	StateFixError       State = "fix_error"
	StateReady          State = "ready"
	StateCommunicating  State = "communicating"
	StateRejected       State = "rejected"
	StateFailed         State = "failed"
	StateCompleted      State = "completed"
)

// Terminal reports whether s has no outgoing transitions.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StateFailed, StateCompleted:
		return true
	default:
		return false
	}
}

// Event is a trigger applied to the state machine via Machine.Fire.
type Event string

const (
	EventInitiate           Event = "initiate"
	EventReceiveRequest     Event = "receive_request"
	EventNegotiate          Event = "negotiate"
	EventAccept             Event = "accept"
	EventReject             Event = "reject"
	EventTimeout            Event = "timeout"
	EventCodeReady          Event = "code_ready"
	EventCodeError          Event = "code_error"
	EventTestsAgreed        Event = "tests_agreed"
	EventSkipTests          Event = "skip_tests"
	EventTestsPassed        Event = "tests_passed"
	EventTestsFailed        Event = "tests_failed"
	EventFixAccepted        Event = "fix_accepted"
	EventFixRejected        Event = "fix_rejected"
	EventStartCommunication Event = "start_communication"
	EventProtocolError      Event = "protocol_error"
	EventEnd                Event = "end"
)

// ErrInvalidTransition is returned when an event has no transition defined
// for the machine's current state.
var ErrInvalidTransition = errors.New("metaproto: event not valid in current state")

// ErrSequenceRegression is returned when an inbound control header's
// sequence id does not strictly increase over the last one accepted for
// its session.
var ErrSequenceRegression = errors.New("metaproto: sequence id regressed")

// ErrNotCommunicating is returned by Machine.Channel when the machine has
// not reached StateCommunicating.
var ErrNotCommunicating = errors.New("metaproto: machine is not in the communicating state")

// DefaultMaxRounds is used when a Machine is constructed with maxRounds <= 0.
const DefaultMaxRounds = 10

// transitions is the table driving every event except EventNegotiate, whose
// self-loop carries the negotiation_round/max_rounds bookkeeping handled in
// fsm.go.
var transitions = map[State]map[Event]State{
	StateIdle: {
		EventInitiate:       StateNegotiating,
		EventReceiveRequest: StateNegotiating,
	},
	StateNegotiating: {
		EventAccept:  StateCodeGeneration,
		EventReject:  StateRejected,
		EventTimeout: StateRejected,
	},
	StateCodeGeneration: {
		EventCodeReady: StateTestCases,
		EventCodeError: StateFailed,
		EventTimeout:   StateFailed,
	},
	StateTestCases: {
		EventTestsAgreed: StateTesting,
		EventSkipTests:   StateReady,
		EventTimeout:     StateFailed,
	},
	StateTesting: {
		EventTestsPassed: StateReady,
		EventTestsFailed: StateFixError,
		EventTimeout:     StateFailed,
	},
	StateFixError: {
		EventFixAccepted: StateCodeGeneration,
		EventFixRejected: StateFailed,
		EventTimeout:     StateFailed,
	},
	StateReady: {
		EventStartCommunication: StateCommunicating,
		EventTimeout:            StateFailed,
	},
	StateCommunicating: {
		EventProtocolError: StateFixError,
		EventEnd:           StateCompleted,
		EventTimeout:       StateFailed,
	},
}
