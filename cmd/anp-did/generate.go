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
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sage-x-project/anp/crypto"
	"github.com/sage-x-project/anp/crypto/formats"
	"github.com/sage-x-project/anp/did"
)

var (
	genPort         int
	genPathSegments string
	genADURL        string
	genKeyType      string
	genKeyFormat    string
	genDocOut       string
	genKeyOut       string
)

var generateCmd = &cobra.Command{
	Use:   "generate <hostname>",
	Short: "Generate a new did:wba identity",
	Long: `Generate a new did:wba identifier rooted at hostname, along with a fresh
authentication key pair bound to it as "#key-1".

The DID document is printed (or written with --doc-out) as JSON; the
private key is exported in JWK or PEM format (--key-format) and written
with --key-out, or printed if omitted.`,
	Example: `  # Generate an identity for agent.example, printing both to stdout
  anp-did generate agent.example

  # Generate with an Ed25519 key and an attached AgentDescription endpoint
  anp-did generate agent.example --key-type ed25519 \
    --ad-url https://agent.example/agent/ad.json \
    --doc-out agent.did.json --key-out agent.key.jwk`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVar(&genPort, "port", 0, "Port segment, encoded as %3A<port> in the identifier")
	generateCmd.Flags().StringVar(&genPathSegments, "path", "", "Comma-separated path segments appended to the identifier")
	generateCmd.Flags().StringVar(&genADURL, "ad-url", "", "AgentDescription service endpoint URL")
	generateCmd.Flags().StringVar(&genKeyType, "key-type", "secp256k1", "Authentication key type (secp256k1, secp256r1, ed25519)")
	generateCmd.Flags().StringVar(&genKeyFormat, "key-format", "jwk", "Private key export format (jwk, pem)")
	generateCmd.Flags().StringVar(&genDocOut, "doc-out", "", "Output file for the DID document (default: stdout)")
	generateCmd.Flags().StringVar(&genKeyOut, "key-out", "", "Output file for the private key (default: stdout)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	hostname := args[0]

	keyType, err := parseKeyType(genKeyType)
	if err != nil {
		return err
	}

	opts := []did.CreateOption{did.WithKeyType(keyType)}
	if genPort != 0 {
		opts = append(opts, did.WithPort(genPort))
	}
	if genPathSegments != "" {
		opts = append(opts, did.WithPathSegments(strings.Split(genPathSegments, ",")...))
	}
	if genADURL != "" {
		opts = append(opts, did.WithAgentDescriptionURL(genADURL))
	}

	doc, keys, err := did.CreateWBA(hostname, opts...)
	if err != nil {
		return fmt.Errorf("failed to create did:wba identity: %w", err)
	}

	docJSON, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal DID document: %w", err)
	}

	var exporter crypto.KeyExporter
	var format crypto.KeyFormat
	switch genKeyFormat {
	case "jwk":
		exporter, format = formats.NewJWKExporter(), crypto.KeyFormatJWK
	case "pem":
		exporter, format = formats.NewPEMExporter(), crypto.KeyFormatPEM
	default:
		return fmt.Errorf("unsupported key format: %s (supported: jwk, pem)", genKeyFormat)
	}
	keyBytes, err := exporter.Export(keys["key-1"], format)
	if err != nil {
		return fmt.Errorf("failed to export private key: %w", err)
	}

	if err := writeNamed(genDocOut, docJSON, "DID document"); err != nil {
		return err
	}
	if err := writeNamed(genKeyOut, keyBytes, "private key"); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Generated %s\n", doc.ID)
	return nil
}

func parseKeyType(s string) (crypto.KeyType, error) {
	switch strings.ToLower(s) {
	case "secp256k1":
		return crypto.KeyTypeSecp256k1, nil
	case "secp256r1":
		return crypto.KeyTypeSecp256r1, nil
	case "ed25519":
		return crypto.KeyTypeEd25519, nil
	default:
		return "", fmt.Errorf("unsupported key type: %s (supported: secp256k1, secp256r1, ed25519)", s)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func writeNamed(path string, data []byte, label string) error {
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s to %s: %w", label, path, err)
	}
	fmt.Fprintf(os.Stderr, "%s written to %s\n", capitalize(label), path)
	return nil
}
