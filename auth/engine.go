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

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sage-x-project/anp/crypto"
	"github.com/sage-x-project/anp/did"
	"github.com/sage-x-project/anp/internal/metrics"
)

const (
	defaultNonceSize = 32
	defaultMaxAge    = 300 * time.Second
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithMaxAge overrides the accepted clock-skew / replay window (default
// 300s).
func WithMaxAge(d time.Duration) EngineOption {
	return func(e *Engine) { e.maxAge = d }
}

// WithNonceSize overrides the number of random bytes used for outbound
// nonces (default 32, hex-encoded).
func WithNonceSize(n int) EngineOption {
	return func(e *Engine) { e.nonceSize = n }
}

// Engine builds and verifies DID-WBA Authorization headers.
type Engine struct {
	manager   *did.Manager
	nonces    *NonceStore
	maxAge    time.Duration
	nonceSize int
}

// NewEngine creates an Engine resolving DIDs through manager (the default
// did.Manager is used when manager is nil).
func NewEngine(manager *did.Manager, opts ...EngineOption) *Engine {
	if manager == nil {
		manager = did.NewManager()
	}
	e := &Engine{
		manager:   manager,
		maxAge:    defaultMaxAge,
		nonceSize: defaultNonceSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.nonces = NewNonceStore(e.maxAge)
	return e
}

// Close stops the engine's background nonce GC.
func (e *Engine) Close() { e.nonces.Close() }

// BuildHeader constructs a DIDWba Authorization header authenticating
// localDID to serviceDomain, signing with keyPair under the given
// verification method fragment (e.g. "key-1").
func (e *Engine) BuildHeader(localDID, fragment string, keyPair crypto.KeyPair, serviceDomain string, version Version) (string, error) {
	nonce, err := randomNonce(e.nonceSize)
	if err != nil {
		return "", fmt.Errorf("auth: generate nonce: %w", err)
	}
	timestamp := time.Now().UTC().Format(time.RFC3339)

	payload, err := canonicalPayload(version, localDID, nonce, timestamp, serviceDomain)
	if err != nil {
		return "", fmt.Errorf("auth: canonicalize payload: %w", err)
	}

	sig, err := keyPair.Sign(payload)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("sign").Inc()
		return "", newAuthError(ReasonSignature, err.Error(), err)
	}
	metrics.CryptoOperations.WithLabelValues("sign", string(keyPair.Type())).Inc()

	h := Header{
		Version:            version,
		DID:                localDID,
		Nonce:              nonce,
		Timestamp:          timestamp,
		VerificationMethod: fragment,
		Signature:          base64.RawURLEncoding.EncodeToString(sig),
	}
	return FormatHeader(h), nil
}

// Verify parses and verifies a DIDWba Authorization header value against
// serviceDomain, the domain this server is acting as.
func (e *Engine) Verify(ctx context.Context, headerValue, serviceDomain string) (*Result, error) {
	h, err := ParseHeader(headerValue)
	if err != nil {
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339, h.Timestamp)
	if err != nil {
		return nil, newAuthError(ReasonMalformedHeader, "invalid timestamp: "+h.Timestamp, err)
	}
	if skew := time.Since(ts); skew > e.maxAge || skew < -e.maxAge {
		return nil, newAuthError(ReasonTimestamp, fmt.Sprintf("skew %s exceeds max age %s", skew, e.maxAge), nil)
	}

	if e.nonces.Seen(h.DID, h.Nonce) {
		metrics.NonceValidations.WithLabelValues("invalid").Inc()
		metrics.ReplayAttacksDetected.Inc()
		return nil, newAuthError(ReasonNonce, "replayed nonce", nil)
	}
	metrics.NonceValidations.WithLabelValues("valid").Inc()

	doc, err := e.manager.ResolveAgent(ctx, did.AgentDID(h.DID))
	if err != nil {
		return nil, newAuthError(ReasonDIDUnresolvable, err.Error(), err)
	}

	vm, err := did.VerificationMethodByFragment(doc, h.VerificationMethod)
	if err != nil {
		return nil, newAuthError(ReasonVerificationMethod, h.VerificationMethod, err)
	}

	pub, err := publicKeyFromJWK(vm)
	if err != nil {
		return nil, newAuthError(ReasonVerificationMethod, err.Error(), err)
	}

	payload, err := canonicalPayload(h.Version, h.DID, h.Nonce, h.Timestamp, serviceDomain)
	if err != nil {
		return nil, fmt.Errorf("auth: canonicalize payload: %w", err)
	}

	sig, err := base64.RawURLEncoding.DecodeString(h.Signature)
	if err != nil {
		return nil, newAuthError(ReasonSignature, "invalid base64url signature", err)
	}

	if err := pub.Verify(payload, sig); err != nil {
		metrics.CryptoErrors.WithLabelValues("verify").Inc()
		return nil, newAuthError(ReasonSignature, err.Error(), err)
	}
	metrics.CryptoOperations.WithLabelValues("verify", vm.Type).Inc()

	return &Result{
		DID:                h.DID,
		Verified:           true,
		Timestamp:          ts,
		Nonce:              h.Nonce,
		VerificationMethod: h.VerificationMethod,
	}, nil
}

func randomNonce(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
