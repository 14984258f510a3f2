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
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anp/auth"
)

var (
	verifyHeaderFile string
	verifyHeader     string
	verifyDomain     string
)

var verifyCmd = &cobra.Command{
	Use:   "verify <service-domain>",
	Short: "Verify a DID-WBA Authorization header",
	Long: `Verify a DID-WBA Authorization header value against the service domain
the request was sent to: resolves the signer's DID, checks clock skew and
nonce freshness, and checks the signature over the canonical payload.`,
	Example: `  anp-did verify agent.example --header 'DIDWba did="did:wba:caller.example", ...'
  anp-did verify agent.example --header-file req.header.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifyHeader, "header", "", "Authorization header value")
	verifyCmd.Flags().StringVar(&verifyHeaderFile, "header-file", "", "File containing the Authorization header value")
	verifyCmd.MarkFlagsOneRequired("header", "header-file")
	verifyCmd.MarkFlagsMutuallyExclusive("header", "header-file")
}

func runVerify(cmd *cobra.Command, args []string) error {
	verifyDomain = args[0]

	headerValue := verifyHeader
	if verifyHeaderFile != "" {
		data, err := os.ReadFile(verifyHeaderFile)
		if err != nil {
			return fmt.Errorf("failed to read header file: %w", err)
		}
		headerValue = string(data)
	}

	engine := auth.NewEngine(nil)
	defer engine.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := engine.Verify(ctx, headerValue, verifyDomain)
	if err != nil {
		fmt.Println("Signature verification FAILED")
		return fmt.Errorf("verify: %w", err)
	}

	fmt.Println("Signature verification PASSED")
	fmt.Printf("DID: %s\n", result.DID)
	fmt.Printf("Verification method: %s\n", result.VerificationMethod)
	fmt.Printf("Timestamp: %s\n", result.Timestamp.Format(time.RFC3339))
	return nil
}
