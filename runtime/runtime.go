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

// Package runtime bundles every concurrently-shared resource a running
// agent needs into one explicitly constructed, explicitly threaded value.
// Nothing in this module keeps these as package-level mutable globals: a
// Runtime is built once at process start and passed into the HTTP server
// and CLI commands that need it.
package runtime

import (
	"time"

	"github.com/sage-x-project/anp/auth"
	"github.com/sage-x-project/anp/did"
	"github.com/sage-x-project/anp/internal/logger"
	"github.com/sage-x-project/anp/metaproto"
	"github.com/sage-x-project/anp/rpc"
	"github.com/sage-x-project/anp/session"
)

const (
	defaultSessionIdleExpiry    = 30 * time.Minute
	defaultMaxNegotiationRounds = metaproto.DefaultMaxRounds
)

// Runtime owns the five shared resources package auth, did, rpc, session,
// and metaproto each require a single, long-lived instance of:
//   - DID cache: *did.Manager, read-mostly, immutable entries once resolved.
//   - Nonce store: embedded inside *auth.Engine, append-and-check per DID.
//   - Method registry: *rpc.Registry, write-once at startup, read-only after.
//   - Session store: *session.Store, a concurrent per-DID map.
//   - Negotiation registry: *metaproto.Registry, one Machine per in-flight
//     meta-protocol negotiation.
type Runtime struct {
	DIDs         *did.Manager
	Auth         *auth.Engine
	Methods      *rpc.Registry
	Sessions     *session.Store
	Negotiations *metaproto.Registry
}

// Option configures a Runtime at construction time, in the same functional-
// options shape as auth.EngineOption and did.ResolverOption.
type Option func(*options)

type options struct {
	didManager        *did.Manager
	authOpts          []auth.EngineOption
	sessionIdleExpiry time.Duration
	maxRounds         int
}

// WithDIDManager supplies a pre-built did.Manager (e.g. one seeded with
// trusted documents for tests) instead of a fresh did.NewManager().
func WithDIDManager(m *did.Manager) Option {
	return func(o *options) { o.didManager = m }
}

// WithAuthOptions forwards opts to auth.NewEngine.
func WithAuthOptions(opts ...auth.EngineOption) Option {
	return func(o *options) { o.authOpts = append(o.authOpts, opts...) }
}

// WithSessionIdleExpiry overrides the session store's idle-eviction window
// (default 30 minutes; zero or negative disables eviction).
func WithSessionIdleExpiry(d time.Duration) Option {
	return func(o *options) { o.sessionIdleExpiry = d }
}

// WithMaxNegotiationRounds overrides the default max_rounds new negotiation
// Machines are created with (default metaproto.DefaultMaxRounds).
func WithMaxNegotiationRounds(n int) Option {
	return func(o *options) { o.maxRounds = n }
}

// New constructs a Runtime with fresh, empty resources.
func New(opts ...Option) *Runtime {
	o := &options{
		sessionIdleExpiry: defaultSessionIdleExpiry,
		maxRounds:         defaultMaxNegotiationRounds,
	}
	for _, opt := range opts {
		opt(o)
	}

	didManager := o.didManager
	if didManager == nil {
		didManager = did.NewManager()
	}

	logger.Info("runtime starting",
		logger.Duration("session_idle_expiry", o.sessionIdleExpiry),
		logger.Int("max_negotiation_rounds", o.maxRounds))

	return &Runtime{
		DIDs:         didManager,
		Auth:         auth.NewEngine(didManager, o.authOpts...),
		Methods:      rpc.NewRegistry(),
		Sessions:     session.NewStore(o.sessionIdleExpiry),
		Negotiations: metaproto.NewRegistry(o.maxRounds),
	}
}

// Dispatcher builds an rpc.Dispatcher over this Runtime's method registry
// and session store, ready to drive the HTTP server's JSON-RPC endpoint.
func (r *Runtime) Dispatcher() *rpc.Dispatcher {
	return rpc.NewDispatcher(r.Methods, r.Sessions)
}

// Close releases every background goroutine a Runtime started: the auth
// engine's nonce-store GC and the session store's idle-eviction ticker.
func (r *Runtime) Close() {
	logger.Info("runtime stopping")
	r.Auth.Close()
	r.Sessions.Close()
}
