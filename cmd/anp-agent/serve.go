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

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anp/auth"
	"github.com/sage-x-project/anp/config"
	"github.com/sage-x-project/anp/did"
	"github.com/sage-x-project/anp/health"
	"github.com/sage-x-project/anp/internal/logger"
	"github.com/sage-x-project/anp/internal/metrics"
	"github.com/sage-x-project/anp/openrpc"
	"github.com/sage-x-project/anp/rpc"
	"github.com/sage-x-project/anp/runtime"
	"github.com/sage-x-project/anp/server"
)

var serveConfigDir string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve an agent's ad.json, interface documents, and JSON-RPC endpoint",
	Long: `Serve loads a Config (see package config) and starts the agent's HTTP
surface: its AgentDescription document, OpenRPC interface documents, and
authenticated JSON-RPC dispatch endpoint, plus a Prometheus /metrics
listener when metrics are enabled in configuration.

The served method table is this binary's own fixed example set (ping,
echo, time); embedding applications register their own methods directly
against server.Server rather than through this CLI.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveConfigDir, "config-dir", "config", "Directory to load environment config files from")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(config.LoaderOptions{ConfigDir: serveConfigDir})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	rt := runtime.New(
		runtime.WithSessionIdleExpiry(cfg.Session.IdleExpiry),
		runtime.WithMaxNegotiationRounds(cfg.MetaProto.MaxRounds),
		runtime.WithAuthOptions(auth.WithMaxAge(cfg.Auth.MaxClockSkew), auth.WithNonceSize(cfg.Auth.NonceSize)),
	)
	defer rt.Close()

	srv := server.New(rt, cfg.Server.BaseURL, cfg.Server.Prefix, cfg.Server.AgentDID, cfg.Server.Name, cfg.Server.Description)
	if key := os.Getenv(cfg.Auth.TokenSigningKeyEnv); key != "" {
		srv = srv.WithTokenIssuer(auth.NewTokenIssuer([]byte(key)))
	}

	if err := registerExampleMethods(srv); err != nil {
		return fmt.Errorf("failed to register example methods: %w", err)
	}
	if err := srv.Build(); err != nil {
		return fmt.Errorf("failed to assemble agent documents: %w", err)
	}

	httpSrv := &http.Server{
		Addr:    cfg.Server.BindAddr,
		Handler: srv.Handler(),
	}

	if cfg.Metrics.Enabled {
		go serveMetrics(cfg.Metrics.Port, cfg.Metrics.Path)
	}
	if cfg.Health.Enabled {
		checker := buildHealthChecker(rt, cfg.Server.AgentDID)
		go serveHealth(checker, cfg.Health.Port, cfg.Health.Path)
	}

	logger.Info("agent server starting",
		logger.String("agent_did", cfg.Server.AgentDID),
		logger.String("bind_addr", cfg.Server.BindAddr),
		logger.String("base_url", cfg.Server.BaseURL))

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("agent server: %w", err)
	case <-sigCh:
		logger.Info("agent server shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(ctx)
	}
}

func serveMetrics(port int, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info("metrics server starting", logger.String("addr", addr), logger.String("path", path))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("metrics server stopped", logger.Error(err))
	}
}

// buildHealthChecker registers the checks a running agent can meaningfully
// report on: that its own DID still resolves, and that it holds a usable
// signing key.
func buildHealthChecker(rt *runtime.Runtime, agentDID string) *health.HealthChecker {
	checker := health.NewHealthChecker(5 * time.Second)

	checker.RegisterCheck("did_resolver", health.DIDResolverHealthCheck(func(ctx context.Context) error {
		_, err := rt.DIDs.ResolveAgent(ctx, did.AgentDID(agentDID))
		return err
	}))

	return checker
}

func serveHealth(checker *health.HealthChecker, port int, path string) {
	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		systemHealth := checker.GetSystemHealth(r.Context())
		w.Header().Set("Content-Type", "application/json")
		if systemHealth.Status != health.StatusHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		if err := json.NewEncoder(w).Encode(systemHealth); err != nil {
			logger.Warn("failed to encode health response", logger.Error(err))
		}
	})
	addr := fmt.Sprintf(":%d", port)
	logger.Info("health server starting", logger.String("addr", addr), logger.String("path", path))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("health server stopped", logger.Error(err))
	}
}

// registerExampleMethods wires the fixed demonstration method table this
// binary ships with: a content-mode health probe, a content-mode echo, and
// a link-mode clock reading.
func registerExampleMethods(srv *server.Server) error {
	methods := []server.MethodDef{
		{
			Name:        "ping",
			Description: "Liveness probe; always returns \"pong\".",
			Result:      openrpc.ParamSpec{Name: "reply", Sample: "pong"},
			Mode:        server.ModeContent,
			Invoke: func(_ *rpc.Context, _ map[string]interface{}) (interface{}, error) {
				return "pong", nil
			},
		},
		{
			Name:        "echo",
			Description: "Returns the text parameter unchanged.",
			Params:      []openrpc.ParamSpec{{Name: "text", Sample: "hello", Required: true}},
			Result:      openrpc.ParamSpec{Name: "text", Sample: "hello"},
			Mode:        server.ModeContent,
			Invoke: func(_ *rpc.Context, args map[string]interface{}) (interface{}, error) {
				text, _ := args["text"].(string)
				return text, nil
			},
		},
		{
			Name:        "time",
			Description: "Returns the server's current UTC time in RFC 3339.",
			Result:      openrpc.ParamSpec{Name: "now", Sample: "2025-01-01T00:00:00Z"},
			Mode:        server.ModeLink,
			Invoke: func(_ *rpc.Context, _ map[string]interface{}) (interface{}, error) {
				return time.Now().UTC().Format(time.RFC3339), nil
			},
		},
	}

	for _, m := range methods {
		if err := srv.RegisterMethod(m); err != nil {
			return err
		}
	}
	return nil
}
