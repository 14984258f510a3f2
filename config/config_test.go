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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromFile_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")
	content := `
environment: staging
server:
  agent_did: "did:wba:agent.example:shop"
  name: shop-agent
  base_url: "https://agent.example"
  prefix: "/shop"
did:
  method: wba
  cache_ttl: 2m
auth:
  max_clock_skew: 45s
logging:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "staging", cfg.Environment)
	assert.Equal(t, "did:wba:agent.example:shop", cfg.Server.AgentDID)
	assert.Equal(t, "/shop", cfg.Server.Prefix)
	assert.Equal(t, 2*time.Minute, cfg.DID.CacheTTL)
	assert.Equal(t, 45*time.Second, cfg.Auth.MaxClockSkew)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_JSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.json")
	content := `{"environment":"production","server":{"agent_did":"did:wba:agent.example:hotel"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "did:wba:agent.example:hotel", cfg.Server.AgentDID)
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/agent.yaml")
	assert.Error(t, err)
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent.yaml")

	cfg := &Config{Environment: "development"}
	setDefaults(cfg)
	require.NoError(t, SaveToFile(cfg, path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server.Prefix, loaded.Server.Prefix)
	assert.Equal(t, cfg.DID.Method, loaded.DID.Method)
}

func TestSetDefaults_FillsEveryGroup(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "wba", cfg.DID.Method)
	assert.Equal(t, 5*time.Minute, cfg.DID.CacheTTL)
	assert.Equal(t, 300*time.Second, cfg.Auth.MaxClockSkew)
	assert.Equal(t, 16, cfg.Auth.NonceSize)
	assert.Equal(t, 30*time.Minute, cfg.Session.IdleExpiry)
	assert.Equal(t, 10, cfg.MetaProto.MaxRounds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, 8081, cfg.Health.Port)
}

func TestSetDefaults_DoesNotOverrideExplicitValues(t *testing.T) {
	cfg := &Config{DID: &DIDConfig{Method: "wba", CacheTTL: time.Minute}}
	setDefaults(cfg)
	assert.Equal(t, time.Minute, cfg.DID.CacheTTL)
}
