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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anp/did"
)

var (
	resolveOutput  string
	resolveTimeout time.Duration
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <did>",
	Short: "Resolve a did:wba identifier to its DID document",
	Long: `Resolve a did:wba identifier over HTTPS to retrieve its DID document,
per the .well-known/did.json well-known-URI convention.`,
	Example: `  anp-did resolve did:wba:agent.example
  anp-did resolve did:wba:agent.example%3A8443:agents:billing -o billing.did.json`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVarP(&resolveOutput, "output", "o", "", "Output file path (default: stdout)")
	resolveCmd.Flags().DurationVar(&resolveTimeout, "timeout", 10*time.Second, "HTTP request timeout")
}

func runResolve(cmd *cobra.Command, args []string) error {
	agentDID := did.AgentDID(args[0])
	if err := did.ValidateDID(string(agentDID)); err != nil {
		return fmt.Errorf("invalid DID: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), resolveTimeout)
	defer cancel()

	manager := did.NewManager()
	fmt.Printf("Resolving %s...\n", agentDID)
	doc, err := manager.ResolveAgent(ctx, agentDID)
	if err != nil {
		return fmt.Errorf("failed to resolve DID: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal DID document: %w", err)
	}

	return writeNamed(resolveOutput, data, "DID document")
}
