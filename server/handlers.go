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

package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sage-x-project/anp/internal/logger"
	"github.com/sage-x-project/anp/rpc"
)

type ctxKey int

const authInfoKey ctxKey = iota

func withAuthInfo(ctx context.Context, a *rpc.AuthInfo) context.Context {
	return context.WithValue(ctx, authInfoKey, a)
}

func authInfoFromContext(ctx context.Context) *rpc.AuthInfo {
	a, _ := ctx.Value(authInfoKey).(*rpc.AuthInfo)
	return a
}

const maxRequestBody = 1 << 20 // 1 MiB

func (s *Server) buildMux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc(s.prefix+"/ad.json", s.handleAD)
	mux.HandleFunc(s.prefix+"/interface.json", s.handleInterface)
	mux.HandleFunc(s.prefix+"/interface/", s.handleLinkInterface)
	mux.HandleFunc(s.prefix+"/health", s.handleHealth)
	mux.HandleFunc(s.prefix+"/error", s.handleError)
	mux.HandleFunc(s.prefix+"/rpc", s.authenticate(s.handleRPC))
	mux.HandleFunc(s.prefix+"/tools", s.authenticate(s.handleTools))

	return mux
}

// authenticate enforces the Authorization header spec.md §6 requires on
// every endpoint except the well-known ones registered directly in
// buildMux: a DIDWba header is verified through the runtime's auth engine;
// a Bearer token is verified through the optional token issuer. Either form
// populates an rpc.AuthInfo the handler (and, through it, the dispatcher)
// can read back out of the request context.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeAuthError(w, "missing Authorization header")
			return
		}

		if rest, ok := strings.CutPrefix(header, "Bearer "); ok {
			if s.tokens == nil {
				writeAuthError(w, "bearer tokens are not configured for this server")
				return
			}
			v := s.tokens.Verify(rest)
			if !v.Valid {
				writeAuthError(w, "invalid bearer token")
				return
			}
			next(w, r.WithContext(withAuthInfo(r.Context(), &rpc.AuthInfo{DID: v.DID})))
			return
		}

		result, err := s.rt.Auth.Verify(r.Context(), header, r.Host)
		if err != nil {
			writeAuthError(w, err.Error())
			return
		}
		info := &rpc.AuthInfo{DID: result.DID, VerificationMethod: result.VerificationMethod}
		next(w, r.WithContext(withAuthInfo(r.Context(), info)))
	}
}

func writeAuthError(w http.ResponseWriter, detail string) {
	logger.Warn("rejected unauthenticated request", logger.String("detail", detail))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    rpc.CodeUnauthenticated,
			"message": detail,
		},
	})
}

func (s *Server) handleAD(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.adJSON)
}

func (s *Server) handleInterface(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.docJSON == nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(s.docJSON)
}

func (s *Server) handleLinkInterface(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, s.prefix+"/interface/")
	name := strings.TrimSuffix(rest, ".json")

	doc, ok := s.linkDocs[name]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":        "ok",
		"uptimeSeconds": time.Since(s.started).Seconds(),
		"sessions":      s.rt.Sessions.Count(),
		"negotiations":  s.rt.Negotiations.Count(),
	})
}

// handleError returns a canned JSON-RPC-shaped error body, useful for
// exercising a client's error-handling path without provoking a real
// failure elsewhere in the server.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    rpc.CodeServerError,
			"message": "example error endpoint",
		},
	})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	resp := s.rt.Dispatcher().Handle(r.Context(), body, authInfoFromContext(r.Context()), r.Header)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(resp)
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.ExportTools())
}
