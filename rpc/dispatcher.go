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

package rpc

import (
	"context"
	"encoding/json"
	"net/http"
)

// Dispatcher drives a raw JSON-RPC request body through registry lookup,
// parameter binding, context/session construction, and invocation, always
// producing a raw response body. Per JSON-RPC-over-HTTP convention the HTTP
// status is always 200; callers never need to inspect it to find an error.
type Dispatcher struct {
	registry *Registry
	sessions SessionProvider
}

// NewDispatcher builds a Dispatcher over registry. sessions may be nil, in
// which case no method sees a non-nil Context.Session.
func NewDispatcher(registry *Registry, sessions SessionProvider) *Dispatcher {
	return &Dispatcher{registry: registry, sessions: sessions}
}

// Handle processes one request body and returns the response body to write
// back verbatim. auth is the caller's authentication result, or nil for
// requests that reached the dispatcher without one (e.g. an endpoint that
// doesn't require authentication).
func (d *Dispatcher) Handle(ctx context.Context, body []byte, auth *AuthInfo, headers http.Header) []byte {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return encodeError(nil, CodeParseError, "parse error: "+err.Error(), nil)
	}

	if req.JSONRPC != Version || req.Method == "" {
		return encodeError(req.ID, CodeInvalidRequest, "invalid request", nil)
	}

	method, ok := d.registry.Lookup(req.Method)
	if !ok {
		return encodeError(req.ID, CodeMethodNotFound, "method not found: "+req.Method, nil)
	}

	args, err := bindParams(method, req.Params)
	if err != nil {
		return encodeError(req.ID, CodeInvalidParams, err.Error(), nil)
	}

	rpcCtx := &Context{Context: ctx, Auth: auth, Headers: headers}
	if method.NeedsContext && d.sessions != nil && auth != nil {
		rpcCtx.Session = d.sessions.GetOrCreate(auth.DID)
	}

	result, err := method.Invoke(rpcCtx, args)
	if err != nil {
		code, message, data := classify(err)
		return encodeError(req.ID, code, message, data)
	}

	resp := Response{JSONRPC: Version, ID: req.ID, Result: result}
	data, err := json.Marshal(resp)
	if err != nil {
		return encodeError(req.ID, CodeInternalError, "failed to marshal result: "+err.Error(), nil)
	}
	return data
}

func encodeError(id interface{}, code int, message string, data interface{}) []byte {
	resp := Response{
		JSONRPC: Version,
		ID:      id,
		Error:   &Error{Code: code, Message: message, Data: data},
	}
	out, err := json.Marshal(resp)
	if err != nil {
		// Marshaling a plain Response of primitive fields cannot fail; this
		// is an unreachable fallback kept only to avoid a bare panic.
		return []byte(`{"jsonrpc":"2.0","id":null,"error":{"code":-32603,"message":"internal error"}}`)
	}
	return out
}
