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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateConfiguration_MissingAgentDIDIsError(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	errs := ValidateConfiguration(cfg)
	var found bool
	for _, e := range errs {
		if e.Field == "server.agent_did" {
			found = true
			assert.Equal(t, "error", e.Level)
		}
	}
	assert.True(t, found)
}

func TestValidateConfiguration_UnsupportedDIDMethodIsError(t *testing.T) {
	cfg := &Config{Server: &ServerConfig{AgentDID: "did:wba:x:y"}, DID: &DIDConfig{Method: "ethr"}}
	setDefaults(cfg)
	cfg.DID.Method = "ethr"

	errs := ValidateConfiguration(cfg)
	var found bool
	for _, e := range errs {
		if e.Field == "did.method" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidateConfiguration_MissingBaseURLIsWarningOnly(t *testing.T) {
	cfg := &Config{Server: &ServerConfig{AgentDID: "did:wba:x:y"}}
	setDefaults(cfg)

	errs := ValidateConfiguration(cfg)
	for _, e := range errs {
		if e.Field == "server.base_url" {
			assert.Equal(t, "warning", e.Level)
			return
		}
	}
	t.Fatal("expected a server.base_url warning")
}

func TestValidateConfiguration_FullyDefaultedValidConfigHasNoErrors(t *testing.T) {
	cfg := &Config{Server: &ServerConfig{AgentDID: "did:wba:x:y", BaseURL: "https://x.example"}}
	setDefaults(cfg)

	errs := ValidateConfiguration(cfg)
	for _, e := range errs {
		assert.NotEqual(t, "error", e.Level, e.Message)
	}
}
