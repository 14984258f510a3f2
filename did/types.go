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

// Package did implements the did:wba method: constructing web-based agent
// identifiers, resolving their documents over HTTPS, and selecting a usable
// authentication method from a resolved document.
package did

import (
	"time"

	"github.com/sage-x-project/anp/crypto"
	"github.com/sage-x-project/anp/crypto/formats"
)

// AgentDID is a did:wba identifier, e.g. "did:wba:example.com:agents:alice".
type AgentDID string

// VerificationMethod is a single key entry in a Document's
// verificationMethod array.
type VerificationMethod struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Controller   string      `json:"controller"`
	PublicKeyJwk *formats.JWK `json:"publicKeyJwk,omitempty"`
}

// Service is a did:wba document service entry, e.g. an AgentDescription
// pointer.
type Service struct {
	ID              string `json:"id"`
	Type            string `json:"type"`
	ServiceEndpoint string `json:"serviceEndpoint"`
}

// Document is a did:wba DID document as served from
// https://<host>/.well-known/did.json (or a path-specific did.json).
type Document struct {
	Context            []string              `json:"@context"`
	ID                 string                `json:"id"`
	VerificationMethod []VerificationMethod  `json:"verificationMethod"`
	Authentication     []string              `json:"authentication"`
	Service            []Service             `json:"service,omitempty"`
}

// Keys is the private-key material backing a Document, keyed by
// verificationMethod fragment (e.g. "key-1"). It never leaves the process
// and is never serialized alongside the Document.
type Keys map[string]crypto.KeyPair

// VerificationResult is returned by a successful DID-WBA verification.
type VerificationResult struct {
	DID                AgentDID  `json:"did"`
	Verified           bool      `json:"verified"`
	Timestamp          time.Time `json:"timestamp"`
	Nonce              string    `json:"nonce"`
	VerificationMethod string    `json:"verification_method"`
}

// DIDError is a did:wba-specific error, carrying the offending DID and
// underlying cause.
type DIDError struct {
	DID     string
	Op      string
	Cause   error
}

func (e *DIDError) Error() string {
	if e.DID != "" {
		return "did: " + e.Op + " " + e.DID + ": " + e.Cause.Error()
	}
	return "did: " + e.Op + ": " + e.Cause.Error()
}

func (e *DIDError) Unwrap() error { return e.Cause }

// DIDResolutionError reports why resolving a DID failed: non-200 response,
// JSON parse failure, missing/mismatched id, or network error.
type DIDResolutionError = DIDError

// NewDIDResolutionError wraps cause as a DIDResolutionError for did.
func NewDIDResolutionError(did string, cause error) error {
	return &DIDError{DID: did, Op: "resolve", Cause: cause}
}

// Common errors returned by this package's operations.
var (
	ErrInvalidDID            = simpleErr("invalid did:wba identifier")
	ErrIPLiteralHostname     = simpleErr("did:wba hostname must not be an IP literal")
	ErrNoAuthenticationMethod = simpleErr("document has no resolvable authentication method")
	ErrVerificationMethodNotFound = simpleErr("verification method not found in document")
	ErrDocumentIDMismatch    = simpleErr("resolved document id does not match requested did")
)

type simpleError string

func (e simpleError) Error() string { return string(e) }

func simpleErr(msg string) error { return simpleError(msg) }
