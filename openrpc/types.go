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

// Package openrpc assembles and parses OpenRPC 1.3.2 interface documents,
// the callable-method surface an agent description points at.
package openrpc

import "encoding/json"

const (
	// SpecVersion is the OpenRPC document version this package emits.
	SpecVersion = "1.3.2"

	// ExtensionProtocol is the extension key marking a method as belonging
	// to a payment protocol layered on top of JSON-RPC.
	ExtensionProtocol = "x-protocol"

	// ProtocolAP2ANP is the ExtensionProtocol value for AP2/ANP payment methods.
	ProtocolAP2ANP = "AP2/ANP"
)

// Document is an OpenRPC interface document.
type Document struct {
	OpenRPC             string                 `json:"openrpc"`
	Info                Info                   `json:"info"`
	Servers             []Server               `json:"servers,omitempty"`
	Methods             []Method               `json:"methods"`
	SecurityDefinitions map[string]interface{} `json:"securityDefinitions,omitempty"`
	Security            []string               `json:"security,omitempty"`
}

// Info carries document-level metadata.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// Server is an endpoint a method (or the whole document) can be reached at.
type Server struct {
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`
}

// Method describes one callable JSON-RPC method.
//
// Params holds the preferred, array-of-ContentDescriptor form once a method
// has been assembled by this package. A method parsed from a remote document
// may instead carry ParamsSchema, a single object schema; exactly one of
// Params or ParamsSchema is ever populated for a given Method value.
type Method struct {
	Name         string              `json:"name"`
	Description  string              `json:"description,omitempty"`
	Params       []ContentDescriptor `json:"params,omitempty"`
	ParamsSchema *Schema             `json:"-"`
	Result       *ContentDescriptor  `json:"result,omitempty"`
	Servers      []Server            `json:"servers,omitempty"`
	Extensions   map[string]string   `json:"-"`
}

// MarshalJSON emits Extensions as top-level "x-"-prefixed fields alongside
// the method's regular members, matching how OpenRPC documents encode them.
func (m Method) MarshalJSON() ([]byte, error) {
	type alias Method
	raw, err := json.Marshal(alias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extensions) == 0 {
		return raw, nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	for k, v := range m.Extensions {
		obj[k] = v
	}
	return json.Marshal(obj)
}

// UnmarshalJSON recovers "x-"-prefixed fields into Extensions and normalizes
// params into either the ContentDescriptor array form or ParamsSchema,
// whichever the source document used.
func (m *Method) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if v, ok := raw["name"]; ok {
		_ = json.Unmarshal(v, &m.Name)
	}
	if v, ok := raw["description"]; ok {
		_ = json.Unmarshal(v, &m.Description)
	}
	if v, ok := raw["result"]; ok {
		_ = json.Unmarshal(v, &m.Result)
	}
	if v, ok := raw["servers"]; ok {
		_ = json.Unmarshal(v, &m.Servers)
	}

	if v, ok := raw["params"]; ok {
		var asArray []ContentDescriptor
		if err := json.Unmarshal(v, &asArray); err == nil {
			m.Params = asArray
		} else {
			var asSchema Schema
			if err := json.Unmarshal(v, &asSchema); err != nil {
				return err
			}
			m.ParamsSchema = &asSchema
		}
	}

	for k, v := range raw {
		if len(k) > 2 && k[:2] == "x-" {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				if m.Extensions == nil {
					m.Extensions = map[string]string{}
				}
				m.Extensions[k] = s
			}
		}
	}

	return nil
}

// ContentDescriptor names and types one parameter or a method's result.
type ContentDescriptor struct {
	Name     string  `json:"name"`
	Schema   *Schema `json:"schema"`
	Required bool    `json:"required,omitempty"`
}

// Schema is a minimal JSON Schema subset, enough to describe the primitive,
// object, and array shapes registered methods traffic in.
type Schema struct {
	Type       string             `json:"type,omitempty"`
	Properties map[string]*Schema `json:"properties,omitempty"`
	Items      *Schema            `json:"items,omitempty"`
	Required   []string           `json:"required,omitempty"`
}
