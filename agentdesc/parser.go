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

package agentdesc

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Parse decodes and validates an agent description document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("agentdesc: invalid document: %w", err)
	}

	if doc.ProtocolType != ProtocolType {
		return nil, ErrUnexpectedProtocol
	}
	if doc.Type != DocumentType {
		return nil, ErrUnexpectedType
	}
	if doc.DID == "" {
		return nil, ErrMissingDID
	}

	return &doc, nil
}

// OpenRPCInterfaces returns every interface entry that points at a
// discoverable OpenRPC document. type and protocol are matched
// case-insensitively, and protocol additionally accepts the "JSON-RPC 2.0"
// spelling some agent descriptions use in place of "openrpc".
func (d *Document) OpenRPCInterfaces() []Interface {
	var out []Interface
	for _, iface := range d.Interfaces {
		if !strings.EqualFold(iface.Type, InterfaceTypeStructured) {
			continue
		}
		if strings.EqualFold(iface.Protocol, ProtocolOpenRPC) || strings.EqualFold(iface.Protocol, "JSON-RPC 2.0") {
			out = append(out, iface)
		}
	}
	return out
}
