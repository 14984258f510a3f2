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
	"fmt"
	"strings"
)

const headerScheme = "DIDWba"

// FormatHeader renders h in the DIDWba Authorization header grammar.
func FormatHeader(h Header) string {
	return fmt.Sprintf(
		`%s v="%s", did="%s", nonce="%s", timestamp="%s", verification_method="%s", signature="%s"`,
		headerScheme, h.Version, h.DID, h.Nonce, h.Timestamp, h.VerificationMethod, h.Signature,
	)
}

// ParseHeader parses a DIDWba Authorization header value. Field keys are
// matched case-insensitively; fields may appear in any order. All five of
// did, nonce, timestamp, verification_method and signature are required.
func ParseHeader(value string) (Header, error) {
	fields := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(fields) != 2 || !strings.EqualFold(fields[0], headerScheme) {
		return Header{}, newAuthError(ReasonMalformedHeader, "missing DIDWba scheme", nil)
	}

	kv := map[string]string{}
	for _, part := range splitHeaderFields(fields[1]) {
		k, v, ok := splitHeaderField(part)
		if !ok {
			return Header{}, newAuthError(ReasonMalformedHeader, "unparseable field: "+part, nil)
		}
		kv[strings.ToLower(k)] = v
	}

	h := Header{
		Version:            Version(kv["v"]),
		DID:                kv["did"],
		Nonce:              kv["nonce"],
		Timestamp:          kv["timestamp"],
		VerificationMethod: kv["verification_method"],
		Signature:          kv["signature"],
	}
	if h.Version == "" {
		h.Version = Version1_0
	}

	var missing []string
	if h.DID == "" {
		missing = append(missing, "did")
	}
	if h.Nonce == "" {
		missing = append(missing, "nonce")
	}
	if h.Timestamp == "" {
		missing = append(missing, "timestamp")
	}
	if h.VerificationMethod == "" {
		missing = append(missing, "verification_method")
	}
	if h.Signature == "" {
		missing = append(missing, "signature")
	}
	if len(missing) > 0 {
		return Header{}, newAuthError(ReasonMissingField, strings.Join(missing, ","), nil)
	}

	return h, nil
}

// splitHeaderFields splits a comma-separated field list, respecting commas
// enclosed in quoted values.
func splitHeaderFields(s string) []string {
	var parts []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range s {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			cur.WriteRune(r)
		case r == ',' && !inQuotes:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, strings.TrimSpace(cur.String()))
	}
	return parts
}

// splitHeaderField splits a single key="value" field.
func splitHeaderField(s string) (key, value string, ok bool) {
	eq := strings.Index(s, "=")
	if eq < 0 {
		return "", "", false
	}
	key = strings.TrimSpace(s[:eq])
	value = strings.TrimSpace(s[eq+1:])
	value = strings.TrimPrefix(value, `"`)
	value = strings.TrimSuffix(value, `"`)
	if key == "" {
		return "", "", false
	}
	return key, value, true
}
