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

package auth

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"math/big"

	"github.com/sage-x-project/anp/crypto/keys"
	"github.com/sage-x-project/anp/did"
)

// publicKeyFromJWK builds a verification-only crypto.KeyPair from a
// verificationMethod's embedded JWK.
func publicKeyFromJWK(vm did.VerificationMethod) (verifier, error) {
	jwk := vm.PublicKeyJwk
	if jwk == nil {
		return nil, fmt.Errorf("verification method %s has no publicKeyJwk", vm.ID)
	}

	switch jwk.Kty {
	case "OKP":
		if jwk.Crv != "Ed25519" {
			return nil, fmt.Errorf("unsupported OKP curve: %s", jwk.Crv)
		}
		x, err := base64.RawURLEncoding.DecodeString(jwk.X)
		if err != nil {
			return nil, fmt.Errorf("decode x: %w", err)
		}
		return keys.NewEd25519PublicKey(ed25519.PublicKey(x), jwk.Kid), nil

	case "EC":
		x, err := decodeCoordinate(jwk.X)
		if err != nil {
			return nil, fmt.Errorf("decode x: %w", err)
		}
		y, err := decodeCoordinate(jwk.Y)
		if err != nil {
			return nil, fmt.Errorf("decode y: %w", err)
		}
		switch jwk.Crv {
		case "secp256k1":
			return keys.NewSecp256k1PublicKey(x, y, jwk.Kid)
		case "P-256":
			return keys.NewSecp256r1PublicKey(x, y, jwk.Kid), nil
		default:
			return nil, fmt.Errorf("unsupported EC curve: %s", jwk.Crv)
		}

	default:
		return nil, fmt.Errorf("unsupported key type: %s", jwk.Kty)
	}
}

// verifier is the subset of crypto.KeyPair that header verification needs.
type verifier interface {
	Verify(message, signature []byte) error
}

func decodeCoordinate(s string) (*big.Int, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
