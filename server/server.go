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

// Package server wires the authentication engine (C3), the method registry
// and dispatcher (C6), and the agent-description/OpenRPC builders (C4, C5)
// into one HTTP handler for prefix P, over plain net/http — no router
// dependency, matching the teacher's example servers.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sage-x-project/anp/agentdesc"
	"github.com/sage-x-project/anp/auth"
	"github.com/sage-x-project/anp/discovery"
	"github.com/sage-x-project/anp/openrpc"
	"github.com/sage-x-project/anp/rpc"
	"github.com/sage-x-project/anp/runtime"
)

// Mode selects whether a registered method shares the prefix-wide
// interface.json document or gets its own interface/<method>.json.
type Mode int

const (
	ModeContent Mode = iota
	ModeLink
)

// MethodDef is the developer-facing description of one method a Server
// exposes: both its dispatch behavior (for rpc.Registry) and its published
// interface shape (for openrpc.Assembler/agentdesc.Builder).
type MethodDef struct {
	Name         string
	Description  string
	Params       []openrpc.ParamSpec
	Result       openrpc.ParamSpec
	AP2          bool
	NeedsContext bool
	Mode         Mode
	Invoke       rpc.Invoker
}

// Server exposes a runtime.Runtime's method registry over the HTTP
// endpoints spec.md §6 defines, for one agent identified by agentDID at
// baseURL+prefix.
type Server struct {
	rt          *runtime.Runtime
	baseURL     string
	prefix      string
	name        string
	description string
	agentDID    string
	started     time.Time
	tokens      *auth.TokenIssuer

	mu       sync.Mutex
	defs     []MethodDef
	built    bool
	adJSON   []byte
	docJSON  []byte
	linkDocs map[string][]byte

	mux *http.ServeMux
}

// New creates a Server for agentDID, serving under baseURL+prefix.
func New(rt *runtime.Runtime, baseURL, prefix, agentDID, name, description string) *Server {
	return &Server{
		rt:          rt,
		baseURL:     strings.TrimRight(baseURL, "/"),
		prefix:      "/" + strings.Trim(prefix, "/"),
		name:        name,
		description: description,
		agentDID:    agentDID,
		started:     time.Now(),
		linkDocs:    make(map[string][]byte),
	}
}

// RegisterMethod adds def to both the dispatch registry and the published
// interface documents. It fails once Build has run — the registry is
// write-once at startup, per SPEC_FULL.md §5.
func (s *Server) RegisterMethod(def MethodDef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return fmt.Errorf("server: cannot register %q after Build", def.Name)
	}
	if def.Invoke == nil {
		return fmt.Errorf("server: method %q has no invoker", def.Name)
	}

	required := make(map[string]bool, len(def.Params))
	names := make([]string, 0, len(def.Params))
	for _, p := range def.Params {
		names = append(names, p.Name)
		required[p.Name] = p.Required
	}

	if err := s.rt.Methods.Register(rpc.Method{
		Name:         def.Name,
		Description:  def.Description,
		ParamNames:   names,
		Required:     required,
		NeedsContext: def.NeedsContext,
		AP2:          def.AP2,
		Invoke:       def.Invoke,
	}); err != nil {
		return err
	}

	s.defs = append(s.defs, def)
	return nil
}

// WithTokenIssuer enables Authorization: Bearer <token> as an alternative
// to a full DID-WBA header, verified against issuer.
func (s *Server) WithTokenIssuer(issuer *auth.TokenIssuer) *Server {
	s.tokens = issuer
	return s
}

func (s *Server) contentURL() string         { return s.prefix + "/interface.json" }
func (s *Server) linkURL(name string) string { return s.prefix + "/interface/" + name + ".json" }
func (s *Server) adURL() string              { return s.baseURL + s.prefix + "/ad.json" }

// Build assembles the agent description and OpenRPC document(s) from every
// registered method and installs the HTTP handlers. It must run exactly
// once, after every RegisterMethod call and before Handler is used.
func (s *Server) Build() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.built {
		return fmt.Errorf("server: Build already ran")
	}

	var contentMethods []MethodDef
	var linkMethods []MethodDef
	for _, d := range s.defs {
		if d.Mode == ModeLink {
			linkMethods = append(linkMethods, d)
		} else {
			contentMethods = append(contentMethods, d)
		}
	}

	adBuilder := agentdesc.NewBuilder(s.adURL(), s.agentDID, s.name).WithDescription(s.description)

	if len(contentMethods) > 0 {
		asm := openrpc.NewAssembler(s.name, "1.0")
		for _, d := range contentMethods {
			asm.AddMethod(openrpc.MethodSpec{
				Name:        d.Name,
				Description: d.Description,
				Params:      d.Params,
				Result:      d.Result,
				RPCURL:      s.baseURL + s.prefix + "/rpc",
				AP2:         d.AP2,
			})
		}
		doc, err := asm.Build()
		if err != nil {
			return fmt.Errorf("server: assemble interface.json: %w", err)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("server: marshal interface.json: %w", err)
		}
		s.docJSON = data
		adBuilder.AddOpenRPCInterface(s.baseURL+s.contentURL(), "content-mode methods")
	}

	for _, d := range linkMethods {
		asm := openrpc.NewAssembler(s.name, "1.0").AddMethod(openrpc.MethodSpec{
			Name:        d.Name,
			Description: d.Description,
			Params:      d.Params,
			Result:      d.Result,
			RPCURL:      s.baseURL + s.prefix + "/rpc",
			AP2:         d.AP2,
		})
		doc, err := asm.Build()
		if err != nil {
			return fmt.Errorf("server: assemble interface/%s.json: %w", d.Name, err)
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("server: marshal interface/%s.json: %w", d.Name, err)
		}
		s.linkDocs[d.Name] = data
		adBuilder.AddInterface(agentdesc.Interface{
			Type:        agentdesc.InterfaceTypeStructured,
			Protocol:    agentdesc.ProtocolOpenRPC,
			URL:         s.baseURL + s.linkURL(d.Name),
			Description: d.Description,
		})
	}

	doc, err := adBuilder.Build()
	if err != nil {
		return fmt.Errorf("server: assemble ad.json: %w", err)
	}
	adData, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("server: marshal ad.json: %w", err)
	}
	s.adJSON = adData

	s.built = true
	s.mux = s.buildMux()
	return nil
}

// Handler returns the assembled http.Handler. It panics if called before a
// successful Build, since serving an unbuilt Server is always a bug.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.built {
		panic("server: Handler called before Build")
	}
	return s.mux
}

// ExportTools mirrors discovery.RemoteAgent.ExportTools for this server's
// own method table, for agents that want to advertise their own tool array
// without a round-trip through their own HTTP endpoint.
func (s *Server) ExportTools() []discovery.Tool {
	s.mu.Lock()
	defer s.mu.Unlock()
	tools := make([]discovery.Tool, 0, len(s.defs))
	for _, d := range s.defs {
		tools = append(tools, discovery.Tool{
			Type: "function",
			Function: discovery.ToolFunction{
				Name:        d.Name,
				Description: d.Description,
			},
		})
	}
	return tools
}
