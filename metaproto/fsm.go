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
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sage-x-project/anp/internal/metrics"
	"github.com/sage-x-project/anp/session"
)

// globalSeq hands out process-wide monotonic sequence ids so that two
// machines on the same process never emit colliding sequence numbers.
var globalSeq uint64

// nextSequence returns the next outbound sequence id.
func nextSequence() uint64 {
	return atomic.AddUint64(&globalSeq, 1)
}

// Machine is a single-actor negotiation session: one per (local DID, peer
// DID, context) triple. Events are applied sequentially under an internal
// lock; sending and building outbound messages may happen concurrently with
// event application.
type Machine struct {
	mu sync.Mutex

	contextID string
	state     State

	negotiationRound int
	maxRounds        int

	outSeq uint64

	peerSeqSeen bool
	lastPeerSeq uint64
	lastPeerAt  time.Time

	agreedProtocol string
	testCases      json.RawMessage

	channel *session.SecureChannel

	deadline    time.Time
	hasDeadline bool

	errors []error
}

// NewMachine creates a Machine in StateIdle for contextID. maxRounds <= 0
// falls back to DefaultMaxRounds; maxRounds is clamped to a minimum of 1.
func NewMachine(contextID string, maxRounds int) *Machine {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Machine{
		contextID: contextID,
		state:     StateIdle,
		maxRounds: maxRounds,
	}
}

// State returns the machine's current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ContextID returns the negotiation context this machine belongs to.
func (m *Machine) ContextID() string {
	return m.contextID
}

// Errors returns the errors Fire has rejected over this machine's lifetime,
// in the order they occurred. Each one drove the machine to StateFailed.
func (m *Machine) Errors() []error {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]error, len(m.errors))
	copy(out, m.errors)
	return out
}

// AgreedProtocol returns the protocol negotiated so far, if any.
func (m *Machine) AgreedProtocol() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.agreedProtocol
}

// TestCases returns the test cases negotiated so far, if any.
func (m *Machine) TestCases() json.RawMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.testCases
}

// SetDeadline arms the timeout contract for the machine's current
// non-terminal state; ExpireIfPast fires EventTimeout once now is past t.
func (m *Machine) SetDeadline(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deadline = t
	m.hasDeadline = true
}

// ExpireIfPast fires EventTimeout if a deadline was armed via SetDeadline,
// the machine is still in a non-terminal state, and now is past it. It
// reports whether a timeout was fired.
func (m *Machine) ExpireIfPast(now time.Time) (bool, error) {
	m.mu.Lock()
	if !m.hasDeadline || m.state.Terminal() || now.Before(m.deadline) {
		m.mu.Unlock()
		return false, nil
	}
	m.hasDeadline = false
	m.mu.Unlock()

	if err := m.Fire(EventTimeout); err != nil {
		return false, err
	}
	return true, nil
}

// Fire applies event to the machine's current state, per the transition
// table in types.go. EventNegotiate is handled specially: it self-loops on
// StateNegotiating, incrementing negotiation_round and the outbound
// sequence id, except once negotiation_round has already reached
// max_rounds, in which case the additional negotiate transitions to
// StateRejected instead of looping again.
func (m *Machine) Fire(event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hasDeadline = false

	if m.state == StateNegotiating && event == EventNegotiate {
		if m.negotiationRound >= m.maxRounds {
			m.state = StateRejected
			metrics.NegotiationRounds.Observe(float64(m.negotiationRound))
			metrics.NegotiationsCompleted.WithLabelValues("rejected").Inc()
			return nil
		}
		m.negotiationRound++
		m.outSeq = nextSequence()
		return nil
	}

	next, ok := transitions[m.state][event]
	if !ok {
		err := fmt.Errorf("%w: state=%s event=%s", ErrInvalidTransition, m.state, event)
		m.errors = append(m.errors, err)
		if !m.state.Terminal() {
			prev := m.state
			m.state = StateFailed
			if prev == StateNegotiating {
				metrics.NegotiationRounds.Observe(float64(m.negotiationRound))
			}
			metrics.NegotiationsCompleted.WithLabelValues(negotiationOutcome(StateFailed)).Inc()
		}
		return err
	}

	prev := m.state
	m.state = next
	if prev == StateIdle && next == StateNegotiating {
		metrics.NegotiationsStarted.Inc()
	}
	if prev == StateNegotiating && next.Terminal() {
		metrics.NegotiationRounds.Observe(float64(m.negotiationRound))
	}
	if next.Terminal() {
		metrics.NegotiationsCompleted.WithLabelValues(negotiationOutcome(next)).Inc()
	}
	return nil
}

// negotiationOutcome maps a terminal state to the outcome label metrics
// report it under.
func negotiationOutcome(s State) string {
	switch s {
	case StateCompleted:
		return "completed"
	case StateRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// NextOutboundSequence returns the next sequence id to stamp on an outbound
// message and records it as this machine's last-sent sequence.
func (m *Machine) NextOutboundSequence() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outSeq = nextSequence()
	return m.outSeq
}

// ValidateInbound enforces the total-order invariant on a peer's control
// header: sequence ids must strictly increase and timestamps must not go
// backwards, mirroring the per-session bookkeeping the fixed four-phase
// handshake keeps for replay protection. Out-of-order messages are
// reported via ErrSequenceRegression and must be dropped by the caller.
func (m *Machine) ValidateInbound(seq uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.peerSeqSeen && seq <= m.lastPeerSeq {
		return fmt.Errorf("%w: got %d, last %d", ErrSequenceRegression, seq, m.lastPeerSeq)
	}
	if m.peerSeqSeen && at.Before(m.lastPeerAt) {
		return fmt.Errorf("%w: timestamp %v before %v", ErrSequenceRegression, at, m.lastPeerAt)
	}

	m.peerSeqSeen = true
	m.lastPeerSeq = seq
	m.lastPeerAt = at
	return nil
}

// RecordAgreement stores the negotiated protocol and test cases for later
// consumption, as required once negotiation leaves StateNegotiating.
func (m *Machine) RecordAgreement(protocol string, testCases json.RawMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if protocol != "" {
		m.agreedProtocol = protocol
	}
	if testCases != nil {
		m.testCases = testCases
	}
}

// BindChannel attaches the encrypted record-layer channel that
// StateCommunicating will route traffic through.
func (m *Machine) BindChannel(ch *session.SecureChannel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channel = ch
}

// Channel returns the bound SecureChannel, failing with ErrNotCommunicating
// unless the machine is currently in StateCommunicating.
func (m *Machine) Channel() (*session.SecureChannel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateCommunicating {
		return nil, ErrNotCommunicating
	}
	if m.channel == nil {
		return nil, ErrNotCommunicating
	}
	return m.channel, nil
}
