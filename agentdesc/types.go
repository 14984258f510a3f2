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

// Package agentdesc builds and parses the JSON-LD agent-description
// documents agents publish to advertise their callable surface.
package agentdesc

import "errors"

const (
	ProtocolType            = "ANP"
	DocumentType            = "ad:AgentDescription"
	InterfaceTypeStructured = "StructuredInterface"
	ProtocolOpenRPC         = "openrpc"
)

// Interface is one callable surface an agent exposes. type="StructuredInterface"
// with protocol="openrpc" marks a discoverable OpenRPC document at url.
type Interface struct {
	Type        string `json:"type"`
	Protocol    string `json:"protocol"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// Information is a supplementary document attached to the description,
// either embedded inline (Content) or referenced externally (URL). Path is
// a third, filesystem-relative addressing mode some agents use for bundled
// resources.
type Information struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	URL         string `json:"url,omitempty"`
	Path        string `json:"path,omitempty"`
}

// Mode reports whether the entry is embedded or linked.
func (i Information) Mode() string {
	if i.Content != "" {
		return "content"
	}
	return "linked"
}

// Document is the on-wire agent description. Field names and the
// "Infomations" misspelling are fixed by the wire format and must be
// preserved verbatim.
type Document struct {
	ProtocolType        string                 `json:"protocolType"`
	ProtocolVersion     string                 `json:"protocolVersion"`
	Type                string                 `json:"@type"`
	ID                  string                 `json:"@id"`
	Name                string                 `json:"name"`
	DID                 string                 `json:"did"`
	Description         string                 `json:"description,omitempty"`
	SecurityDefinitions map[string]interface{} `json:"securityDefinitions,omitempty"`
	Security            []string               `json:"security,omitempty"`
	Interfaces          []Interface            `json:"interfaces"`
	Informations        []Information          `json:"Infomations,omitempty"`
}

var (
	ErrMissingDID         = errors.New("agentdesc: did is required")
	ErrMissingName        = errors.New("agentdesc: name is required")
	ErrAmbiguousInfo      = errors.New("agentdesc: information entry must set exactly one of content, url, or path")
	ErrInvalidInterface   = errors.New("agentdesc: interface must set type, protocol and url")
	ErrUnexpectedProtocol = errors.New("agentdesc: protocolType must be \"ANP\"")
	ErrUnexpectedType     = errors.New("agentdesc: @type must be \"ad:AgentDescription\"")
)
