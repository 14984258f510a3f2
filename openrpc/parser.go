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

package openrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoServer is returned when a method has neither a method-level nor a
// document-level servers entry to resolve an RPC URL from.
var ErrNoServer = errors.New("openrpc: method has no resolvable server url")

// ResolvedMethod is a method normalized for client use: params collapsed to
// a single object schema and its RPC URL fully resolved.
type ResolvedMethod struct {
	Name         string
	Description  string
	ParamsSchema *Schema
	Result       *ContentDescriptor
	RPCURL       string
	AP2          bool
}

// Parse decodes an OpenRPC document from data.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("openrpc: invalid document: %w", err)
	}
	if doc.OpenRPC == "" {
		return nil, fmt.Errorf("openrpc: missing openrpc version")
	}
	return &doc, nil
}

// ResolveMethods normalizes every method in doc for client use, accepting
// both the array-of-ContentDescriptor and single-object-schema forms for
// params and resolving each method's RPC URL from its own servers entry,
// falling back to the document-level servers[0].url. A method with neither
// is reported via ErrNoServer rather than aborting the whole document.
func (d *Document) ResolveMethods() ([]ResolvedMethod, error) {
	var docServer string
	if len(d.Servers) > 0 {
		docServer = d.Servers[0].URL
	}

	out := make([]ResolvedMethod, 0, len(d.Methods))
	for _, m := range d.Methods {
		url := docServer
		if len(m.Servers) > 0 && m.Servers[0].URL != "" {
			url = m.Servers[0].URL
		}
		if url == "" {
			return nil, fmt.Errorf("%w: %q", ErrNoServer, m.Name)
		}

		resolved := ResolvedMethod{
			Name:         m.Name,
			Description:  m.Description,
			ParamsSchema: normalizeParams(m),
			Result:       m.Result,
			RPCURL:       url,
		}
		if m.Extensions[ExtensionProtocol] == ProtocolAP2ANP {
			resolved.AP2 = true
		}
		out = append(out, resolved)
	}
	return out, nil
}

// normalizeParams collapses a method's params, in either wire form, into a
// single object schema with properties and a required list.
func normalizeParams(m Method) *Schema {
	if m.ParamsSchema != nil {
		return m.ParamsSchema
	}

	schema := &Schema{Type: "object", Properties: map[string]*Schema{}}
	for _, cd := range m.Params {
		if cd.Schema != nil {
			schema.Properties[cd.Name] = cd.Schema
		} else {
			schema.Properties[cd.Name] = &Schema{Type: "object"}
		}
		if cd.Required {
			schema.Required = append(schema.Required, cd.Name)
		}
	}
	return schema
}
