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

package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sage-x-project/anp/rpc"
)

// Call locates name on a, posts a fresh JSON-RPC 2.0 request carrying
// params to its RPC URL with a fresh auth header, and returns the raw
// result on success. There is no dynamic attribute-access sugar in this
// port: Call(name, params) is the one explicit call surface, per the
// registry's method table.
func (a *RemoteAgent) Call(ctx context.Context, client HTTPDoer, auth HeaderBuilder, name string, params interface{}) (json.RawMessage, error) {
	method, ok := a.MethodByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMethodNotFound, name)
	}

	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("discovery: marshal params for %q: %w", name, err)
	}

	req := rpc.Request{
		JSONRPC: rpc.Version,
		ID:      uuid.NewString(),
		Method:  method.Name,
		Params:  rawParams,
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("discovery: marshal request for %q: %w", name, err)
	}

	domain, err := serviceDomain(method.RPCURL)
	if err != nil {
		return nil, err
	}
	header, err := auth(domain)
	if err != nil {
		return nil, fmt.Errorf("discovery: build auth header for %q: %w", name, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, method.RPCURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("discovery: build http request for %q: %w", name, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", header)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("discovery: call %q: %w", name, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("discovery: read response for %q: %w", name, err)
	}

	var rpcResp rpc.Response
	if err := json.Unmarshal(respBody, &rpcResp); err != nil {
		return nil, fmt.Errorf("discovery: decode response for %q: %w", name, err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}

	result, err := json.Marshal(rpcResp.Result)
	if err != nil {
		return nil, fmt.Errorf("discovery: re-marshal result for %q: %w", name, err)
	}
	return result, nil
}
