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
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sage-x-project/anp/agentdesc"
	"github.com/sage-x-project/anp/openrpc"
)

// Discover fetches ad_url with a C3-built Authorization header, parses the
// agent description, follows every OpenRPC-typed interface it links to,
// and aggregates their methods into one frozen RemoteAgent. It fails if
// the resulting method table is empty.
func Discover(ctx context.Context, client HTTPDoer, adURL string, auth HeaderBuilder) (*RemoteAgent, error) {
	body, err := fetchSigned(ctx, client, adURL, auth)
	if err != nil {
		return nil, fmt.Errorf("discovery: fetch agent description: %w", err)
	}

	doc, err := agentdesc.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("discovery: parse agent description: %w", err)
	}

	var methods []Method
	for _, iface := range doc.OpenRPCInterfaces() {
		ifaceBody, err := fetchSigned(ctx, client, iface.URL, auth)
		if err != nil {
			return nil, fmt.Errorf("discovery: fetch interface %q: %w", iface.URL, err)
		}

		ifaceDoc, err := openrpc.Parse(ifaceBody)
		if err != nil {
			return nil, fmt.Errorf("discovery: parse interface %q: %w", iface.URL, err)
		}

		resolved, err := ifaceDoc.ResolveMethods()
		if err != nil {
			return nil, fmt.Errorf("discovery: resolve methods from %q: %w", iface.URL, err)
		}

		for _, rm := range resolved {
			methods = append(methods, Method{
				Name:         rm.Name,
				Description:  rm.Description,
				ParamsSchema: rm.ParamsSchema,
				Result:       rm.Result,
				RPCURL:       rm.RPCURL,
				AP2:          rm.AP2,
			})
		}
	}

	if len(methods) == 0 {
		return nil, ErrNoMethods
	}

	return &RemoteAgent{
		URL:         adURL,
		Name:        doc.Name,
		Description: doc.Description,
		Methods:     methods,
	}, nil
}

// fetchSigned performs a signed GET, retrying transient network/5xx
// failures with exponential backoff. A fresh header is built for every
// attempt, since a header's nonce is single-use.
func fetchSigned(ctx context.Context, client HTTPDoer, target string, auth HeaderBuilder) ([]byte, error) {
	domain, err := serviceDomain(target)
	if err != nil {
		return nil, err
	}

	const maxAttempts = 3
	delay := 100 * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			delay *= 2
		}

		body, retryable, err := doFetch(ctx, client, target, domain, auth)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, fmt.Errorf("exhausted %d attempts: %w", maxAttempts, lastErr)
}

func doFetch(ctx context.Context, client HTTPDoer, target, domain string, auth HeaderBuilder) (body []byte, retryable bool, err error) {
	header, err := auth(domain)
	if err != nil {
		return nil, false, fmt.Errorf("build auth header: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", header)

	resp, err := client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("server error: status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return data, false, nil
}

func serviceDomain(target string) (string, error) {
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", target, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("url %q has no host", target)
	}
	return u.Host, nil
}
