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

package did

import (
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/sage-x-project/anp/crypto"
	"github.com/sage-x-project/anp/crypto/formats"
)

// CreateOptions configures CreateWBA.
type CreateOptions struct {
	Port                int
	PathSegments        []string
	AgentDescriptionURL string
	KeyType             crypto.KeyType // defaults to KeyTypeSecp256k1
}

// CreateOption mutates a CreateOptions.
type CreateOption func(*CreateOptions)

// WithPort sets the port segment, encoded as "%3A<port>" in the identifier.
func WithPort(port int) CreateOption {
	return func(o *CreateOptions) { o.Port = port }
}

// WithPathSegments sets the path segments joined by ":" in the identifier.
func WithPathSegments(segments ...string) CreateOption {
	return func(o *CreateOptions) { o.PathSegments = segments }
}

// WithAgentDescriptionURL attaches an AgentDescription service entry.
func WithAgentDescriptionURL(url string) CreateOption {
	return func(o *CreateOptions) { o.AgentDescriptionURL = url }
}

// WithKeyType overrides the default Secp256k1 authentication key type.
func WithKeyType(kt crypto.KeyType) CreateOption {
	return func(o *CreateOptions) { o.KeyType = kt }
}

// CreateWBA constructs a new did:wba identifier and document rooted at
// hostname, generating one authentication key pair and attaching it as
// "#key-1".
func CreateWBA(hostname string, opts ...CreateOption) (*Document, Keys, error) {
	if hostname == "" {
		return nil, nil, fmt.Errorf("did: %w: empty hostname", ErrInvalidDID)
	}
	if ip := net.ParseIP(hostname); ip != nil {
		return nil, nil, ErrIPLiteralHostname
	}

	o := &CreateOptions{KeyType: crypto.KeyTypeSecp256k1}
	for _, opt := range opts {
		opt(o)
	}

	hostSegment := hostname
	if o.Port != 0 {
		hostSegment = fmt.Sprintf("%s%%3A%d", hostname, o.Port)
	}

	segments := []string{hostSegment}
	for _, seg := range o.PathSegments {
		segments = append(segments, percentEncodeSegment(seg))
	}
	did := "did:wba:" + strings.Join(segments, ":")

	keyPair, err := crypto.GenerateKeyPair(o.KeyType)
	if err != nil {
		return nil, nil, fmt.Errorf("did: failed to generate authentication key: %w", err)
	}

	jwkBytes, err := formats.NewJWKExporter().ExportPublic(keyPair, crypto.KeyFormatJWK)
	if err != nil {
		return nil, nil, fmt.Errorf("did: failed to export public key as JWK: %w", err)
	}
	var jwk formats.JWK
	if err := json.Unmarshal(jwkBytes, &jwk); err != nil {
		return nil, nil, fmt.Errorf("did: failed to decode exported JWK: %w", err)
	}
	jwk.Use = ""

	methodID := did + "#key-1"
	doc := &Document{
		Context: []string{"https://www.w3.org/ns/did/v1"},
		ID:      did,
		VerificationMethod: []VerificationMethod{
			{
				ID:           methodID,
				Type:         o.KeyType.VerificationMethodType(),
				Controller:   did,
				PublicKeyJwk: &jwk,
			},
		},
		Authentication: []string{methodID},
	}

	if o.AgentDescriptionURL != "" {
		doc.Service = []Service{
			{
				ID:              did + "#agent-description",
				Type:            "AgentDescription",
				ServiceEndpoint: o.AgentDescriptionURL,
			},
		}
	}

	return doc, Keys{"key-1": keyPair}, nil
}

// percentEncodeSegment percent-encodes "/" and spaces within a single path
// segment, leaving everything else untouched.
func percentEncodeSegment(seg string) string {
	var b strings.Builder
	for _, r := range seg {
		switch r {
		case '/':
			b.WriteString("%2F")
		case ' ':
			b.WriteString("%20")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// percentDecodeSegment reverses percentEncodeSegment (and any other
// %XX escape) within a single path segment.
func percentDecodeSegment(seg string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(seg); i++ {
		if seg[i] == '%' && i+2 < len(seg) {
			v, err := strconv.ParseUint(seg[i+1:i+3], 16, 8)
			if err != nil {
				return "", fmt.Errorf("did: invalid percent-escape in path segment: %w", err)
			}
			b.WriteByte(byte(v))
			i += 2
			continue
		}
		b.WriteByte(seg[i])
	}
	return b.String(), nil
}

// ParseDID splits a did:wba identifier into its host (with any %3A<port>
// suffix resolved into a separate port) and its decoded path segments.
func ParseDID(did AgentDID) (host string, port int, pathSegments []string, err error) {
	const prefix = "did:wba:"
	s := string(did)
	if !strings.HasPrefix(s, prefix) {
		return "", 0, nil, fmt.Errorf("did: %w: missing did:wba: prefix", ErrInvalidDID)
	}
	tail := s[len(prefix):]
	if tail == "" {
		return "", 0, nil, fmt.Errorf("did: %w: empty identifier", ErrInvalidDID)
	}

	parts := splitUnescaped(tail)
	if len(parts) == 0 {
		return "", 0, nil, fmt.Errorf("did: %w: no host segment", ErrInvalidDID)
	}

	hostSegment := parts[0]
	host = hostSegment
	if idx := strings.Index(hostSegment, "%3A"); idx >= 0 {
		host = hostSegment[:idx]
		portStr := hostSegment[idx+3:]
		p, perr := strconv.Atoi(portStr)
		if perr != nil {
			return "", 0, nil, fmt.Errorf("did: %w: invalid port suffix %q", ErrInvalidDID, portStr)
		}
		port = p
	}

	for _, seg := range parts[1:] {
		decoded, derr := percentDecodeSegment(seg)
		if derr != nil {
			return "", 0, nil, derr
		}
		pathSegments = append(pathSegments, decoded)
	}

	return host, port, pathSegments, nil
}

// splitUnescaped splits s on ":" characters that are not part of a "%3A"
// escape sequence.
func splitUnescaped(s string) []string {
	var parts []string
	var cur strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			parts = append(parts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(s[i])
	}
	parts = append(parts, cur.String())
	return parts
}
