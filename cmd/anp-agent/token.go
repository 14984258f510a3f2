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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anp/auth"
)

var (
	tokenSigningKeyEnv string
	tokenTTL           time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token <did>",
	Short: "Issue a bearer token authenticating did",
	Long: `Issue a signed bearer token a caller can present as
"Authorization: Bearer <token>" instead of a DID-WBA header, using the
same signing key configured for the running server via --signing-key-env.`,
	Example: `  ANP_TOKEN_KEY=$(openssl rand -hex 32) anp-agent token did:wba:caller.example --ttl 1h`,
	Args:    cobra.ExactArgs(1),
	RunE:    runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenSigningKeyEnv, "signing-key-env", "ANP_TOKEN_KEY", "Environment variable holding the token signing key")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	did := args[0]

	key := os.Getenv(tokenSigningKeyEnv)
	if key == "" {
		return fmt.Errorf("environment variable %s is empty; it must hold the server's token signing key", tokenSigningKeyEnv)
	}

	issuer := auth.NewTokenIssuer([]byte(key))
	token, err := issuer.Issue(did, tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	fmt.Println(token)
	return nil
}
