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

// Package config loads and validates the settings an ANP agent process
// needs at startup: its own served identity, the runtime's DID/auth/session
// tuning, and the ambient logging/metrics/health knobs.
package config

import "time"

// Config is the root configuration structure for one agent process.
type Config struct {
	Environment string          `yaml:"environment" json:"environment"`
	Server      *ServerConfig   `yaml:"server" json:"server"`
	DID         *DIDConfig      `yaml:"did" json:"did"`
	Auth        *AuthConfig     `yaml:"auth" json:"auth"`
	Session     *SessionConfig  `yaml:"session" json:"session"`
	MetaProto   *MetaProtoConfig `yaml:"meta_protocol" json:"meta_protocol"`
	Logging     *LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics     *MetricsConfig  `yaml:"metrics" json:"metrics"`
	Health      *HealthConfig   `yaml:"health" json:"health"`
}

// ServerConfig describes the agent this process serves: its identity,
// where it listens, and the base URL/prefix its published documents
// advertise (which need not match the listen address behind a proxy).
type ServerConfig struct {
	AgentDID    string `yaml:"agent_did" json:"agent_did"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	BaseURL     string `yaml:"base_url" json:"base_url"`
	Prefix      string `yaml:"prefix" json:"prefix"`
	BindAddr    string `yaml:"bind_addr" json:"bind_addr"`
}

// DIDConfig tunes did:wba document resolution.
type DIDConfig struct {
	Method   string        `yaml:"method" json:"method"`
	CacheTTL time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
}

// AuthConfig tunes DID-WBA header verification and the optional bearer
// token issuer an agent can offer as a lighter-weight alternative.
type AuthConfig struct {
	MaxClockSkew      time.Duration `yaml:"max_clock_skew" json:"max_clock_skew"`
	NonceSize         int           `yaml:"nonce_size" json:"nonce_size"`
	TokenSigningKeyEnv string       `yaml:"token_signing_key_env" json:"token_signing_key_env"`
	TokenTTL          time.Duration `yaml:"token_ttl" json:"token_ttl"`
}

// SessionConfig tunes the per-DID session store.
type SessionConfig struct {
	IdleExpiry time.Duration `yaml:"idle_expiry" json:"idle_expiry"`
}

// MetaProtoConfig tunes the meta-protocol negotiation registry.
type MetaProtoConfig struct {
	MaxRounds int `yaml:"max_rounds" json:"max_rounds"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level    string `yaml:"level" json:"level"`       // debug, info, warn, error
	Format   string `yaml:"format" json:"format"`      // json, console
	Output   string `yaml:"output" json:"output"`      // stdout, stderr, file path
	FilePath string `yaml:"file_path" json:"file_path"`
}

// MetricsConfig configures the Prometheus metrics exporter.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}

// HealthConfig configures the liveness/readiness surface.
type HealthConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    int    `yaml:"port" json:"port"`
	Path    string `yaml:"path" json:"path"`
}
