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

// Builder assembles a Document incrementally. The zero value is not usable;
// create one with NewBuilder.
type Builder struct {
	doc Document
}

// NewBuilder starts a Document for agentDID, identified by @id id.
func NewBuilder(id, agentDID, name string) *Builder {
	return &Builder{doc: Document{
		ProtocolType:    ProtocolType,
		ProtocolVersion: "1.0",
		Type:            DocumentType,
		ID:              id,
		Name:            name,
		DID:             agentDID,
	}}
}

// WithProtocolVersion overrides the default "1.0" protocol version.
func (b *Builder) WithProtocolVersion(version string) *Builder {
	b.doc.ProtocolVersion = version
	return b
}

// WithDescription sets the human-readable description.
func (b *Builder) WithDescription(description string) *Builder {
	b.doc.Description = description
	return b
}

// WithSecurityDefinitions sets the securityDefinitions/security pair.
func (b *Builder) WithSecurityDefinitions(definitions map[string]interface{}, security []string) *Builder {
	b.doc.SecurityDefinitions = definitions
	b.doc.Security = security
	return b
}

// AddOpenRPCInterface registers a StructuredInterface/openrpc entry pointing
// at url (the agent's OpenRPC document).
func (b *Builder) AddOpenRPCInterface(url, description string) *Builder {
	return b.AddInterface(Interface{
		Type:        InterfaceTypeStructured,
		Protocol:    ProtocolOpenRPC,
		URL:         url,
		Description: description,
	})
}

// AddInterface appends an arbitrary interface entry.
func (b *Builder) AddInterface(i Interface) *Builder {
	b.doc.Interfaces = append(b.doc.Interfaces, i)
	return b
}

// AddEmbeddedInformation appends an Information entry carrying content inline.
func (b *Builder) AddEmbeddedInformation(infoType, description, content string) *Builder {
	return b.addInformation(Information{Type: infoType, Description: description, Content: content})
}

// AddLinkedInformation appends an Information entry referencing an external url.
func (b *Builder) AddLinkedInformation(infoType, description, url string) *Builder {
	return b.addInformation(Information{Type: infoType, Description: description, URL: url})
}

func (b *Builder) addInformation(i Information) *Builder {
	b.doc.Informations = append(b.doc.Informations, i)
	return b
}

// Build validates and returns the assembled Document.
func (b *Builder) Build() (*Document, error) {
	doc := b.doc

	if doc.DID == "" {
		return nil, ErrMissingDID
	}
	if doc.Name == "" {
		return nil, ErrMissingName
	}

	for _, iface := range doc.Interfaces {
		if iface.Type == "" || iface.Protocol == "" || iface.URL == "" {
			return nil, ErrInvalidInterface
		}
	}

	for _, info := range doc.Informations {
		set := 0
		if info.Content != "" {
			set++
		}
		if info.URL != "" {
			set++
		}
		if info.Path != "" {
			set++
		}
		if set != 1 {
			return nil, ErrAmbiguousInfo
		}
	}

	return &doc, nil
}
