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

// Package discovery fetches an agent's published description and OpenRPC
// interfaces and assembles them into a callable, frozen RemoteAgent.
package discovery

import (
	"errors"
	"net/http"

	"github.com/sage-x-project/anp/openrpc"
)

var (
	// ErrNoMethods is returned when discovery completes but the agent
	// exposes zero callable methods.
	ErrNoMethods = errors.New("discovery: agent description resolved to zero methods")
	// ErrMethodNotFound is returned by RemoteAgent.Call for an unknown name.
	ErrMethodNotFound = errors.New("discovery: no such method on remote agent")
)

// Method is one callable surface discovered on a remote agent.
type Method struct {
	Name         string
	Description  string
	ParamsSchema *openrpc.Schema
	Result       *openrpc.ContentDescriptor
	RPCURL       string
	AP2          bool
}

// RemoteAgent is an immutable snapshot produced by Discover: the agent's
// identity plus its resolved, callable method table. Once built it is never
// mutated; repeated discovery produces a new snapshot rather than updating
// an existing one.
type RemoteAgent struct {
	URL         string
	Name        string
	Description string
	Methods     []Method
}

// MethodByName returns the method named name, if the agent exposes it.
func (a *RemoteAgent) MethodByName(name string) (Method, bool) {
	for _, m := range a.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// MethodNames returns the discovered methods' names, in discovery order.
func (a *RemoteAgent) MethodNames() []string {
	names := make([]string, len(a.Methods))
	for i, m := range a.Methods {
		names[i] = m.Name
	}
	return names
}

// HeaderBuilder produces a fresh Authorization header value scoped to
// serviceDomain. Discover and RemoteAgent.Call each invoke it once per HTTP
// request so every request carries its own nonce/timestamp, per the
// authentication scheme's replay-protection rules. Implementations
// typically close over an *auth.Engine and a local DID/keypair; this
// package stays decoupled from package auth the same way package rpc stays
// decoupled from package session.
type HeaderBuilder func(serviceDomain string) (string, error)

// HTTPDoer is the minimal HTTP client surface this package depends on,
// satisfied by *http.Client and easily faked in tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}
