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
	canonicaljson "github.com/gibson042/canonicaljson-go"
)

// canonicalPayload builds the JCS-canonicalized bytes signed (and, on
// verification, re-derived) for a DID-WBA handshake. version selects
// whether the domain field is named "service" (1.0) or "aud" (>=1.1).
func canonicalPayload(version Version, did, nonce, timestamp, serviceDomain string) ([]byte, error) {
	payload := map[string]interface{}{
		"did":                 did,
		"nonce":               nonce,
		"timestamp":           timestamp,
		version.domainField(): serviceDomain,
	}
	return canonicaljson.Marshal(payload)
}
