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
	"context"
	"fmt"
	"sync"
)

// Manager provides a unified interface over a Resolver, adding the default
// in-process HTTPS resolver unless a caller swaps it out.
type Manager struct {
	mu       sync.RWMutex
	resolver Resolver
}

// NewManager creates a new DID manager backed by an HTTPResolver.
func NewManager() *Manager {
	return &Manager{resolver: NewHTTPResolver()}
}

// SetResolver overrides the manager's Resolver, e.g. with a fake for tests.
func (m *Manager) SetResolver(r Resolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolver = r
}

// ResolveAgent retrieves the DID document for did.
func (m *Manager) ResolveAgent(ctx context.Context, did AgentDID) (*Document, error) {
	m.mu.RLock()
	resolver := m.resolver
	m.mu.RUnlock()
	return resolver.Resolve(ctx, did)
}

// ValidateAgent resolves did and selects its authentication method,
// returning an error if the document cannot be resolved or has no usable
// authentication method.
func (m *Manager) ValidateAgent(ctx context.Context, did AgentDID) (*Document, VerificationMethod, string, error) {
	doc, err := m.ResolveAgent(ctx, did)
	if err != nil {
		return nil, VerificationMethod{}, "", err
	}
	vm, fragment, err := SelectAuthenticationMethod(doc)
	if err != nil {
		return doc, VerificationMethod{}, "", err
	}
	return doc, vm, fragment, nil
}

// defaultManager is used by the package-level convenience functions below.
var defaultManager = NewManager()

// GetDefaultManager returns the process-wide default DID manager.
func GetDefaultManager() *Manager { return defaultManager }

// Resolve retrieves the DID document for did using the default manager.
func Resolve(ctx context.Context, did AgentDID) (*Document, error) {
	return defaultManager.ResolveAgent(ctx, did)
}

// ValidateDID checks that did has did:wba grammar.
func ValidateDID(did string) error {
	if len(did) < len("did:wba:x") {
		return fmt.Errorf("did: %w: too short", ErrInvalidDID)
	}
	_, _, _, err := ParseDID(AgentDID(did))
	return err
}
