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

package keys

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"math/big"

	sagecrypto "github.com/sage-x-project/anp/crypto"
)

// secp256r1KeyPair implements the KeyPair interface for NIST P-256
// (secp256r1) keys. No example repo in this corpus vendors a secp256r1
// library, so this curve is the one KeyType implemented directly against
// crypto/ecdsa and crypto/elliptic rather than a third-party package.
type secp256r1KeyPair struct {
	privateKey *ecdsa.PrivateKey
	publicKey  *ecdsa.PublicKey
	id         string
}

// GenerateSecp256r1KeyPair generates a new P-256 key pair.
func GenerateSecp256r1KeyPair() (sagecrypto.KeyPair, error) {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	id := secp256r1ID(&privateKey.PublicKey)

	return &secp256r1KeyPair{
		privateKey: privateKey,
		publicKey:  &privateKey.PublicKey,
		id:         id,
	}, nil
}

func secp256r1ID(pub *ecdsa.PublicKey) string {
	pubBytes := elliptic.Marshal(pub.Curve, pub.X, pub.Y)
	hash := sha256.Sum256(pubBytes)
	return hex.EncodeToString(hash[:8])
}

// PublicKey returns the public key
func (kp *secp256r1KeyPair) PublicKey() crypto.PublicKey {
	return kp.publicKey
}

// PrivateKey returns the private key
func (kp *secp256r1KeyPair) PrivateKey() crypto.PrivateKey {
	return kp.privateKey
}

// Type returns the key type
func (kp *secp256r1KeyPair) Type() sagecrypto.KeyType {
	return sagecrypto.KeyTypeSecp256r1
}

// Sign signs the given message. The message is pre-hashed with SHA-256
// twice (double-SHA256), matching the hashing convention did:wba agents
// use for secp256r1 signatures.
func (kp *secp256r1KeyPair) Sign(message []byte) ([]byte, error) {
	digest := doubleSHA256(message)

	r, s, err := ecdsa.Sign(rand.Reader, kp.privateKey, digest[:])
	if err != nil {
		return nil, err
	}

	return serializeSignature(r, s), nil
}

// Verify verifies the signature
func (kp *secp256r1KeyPair) Verify(message, signature []byte) error {
	digest := doubleSHA256(message)

	r, s, err := deserializeSignature(signature)
	if err != nil {
		return sagecrypto.ErrInvalidSignature
	}

	if !ecdsa.Verify(kp.publicKey, digest[:], r, s) {
		return sagecrypto.ErrInvalidSignature
	}

	return nil
}

// ID returns a unique identifier for this key pair
func (kp *secp256r1KeyPair) ID() string {
	return kp.id
}

func doubleSHA256(message []byte) [32]byte {
	first := sha256.Sum256(message)
	return sha256.Sum256(first[:])
}

// publicKeyOnlySecp256r1 wraps a P-256 public key for verification only.
type publicKeyOnlySecp256r1 struct {
	publicKey *ecdsa.PublicKey
	id        string
}

// NewSecp256r1PublicKey wraps a raw P-256 public key for signature
// verification when no private key material is available.
func NewSecp256r1PublicKey(x, y *big.Int, id string) sagecrypto.KeyPair {
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	if id == "" {
		id = secp256r1ID(pub)
	}
	return &publicKeyOnlySecp256r1{publicKey: pub, id: id}
}

func (pk *publicKeyOnlySecp256r1) PublicKey() crypto.PublicKey { return pk.publicKey }
func (pk *publicKeyOnlySecp256r1) PrivateKey() crypto.PrivateKey { return nil }
func (pk *publicKeyOnlySecp256r1) Type() sagecrypto.KeyType     { return sagecrypto.KeyTypeSecp256r1 }

func (pk *publicKeyOnlySecp256r1) Sign(message []byte) ([]byte, error) {
	return nil, sagecrypto.ErrSignNotSupported
}

func (pk *publicKeyOnlySecp256r1) Verify(message, signature []byte) error {
	digest := doubleSHA256(message)
	r, s, err := deserializeSignature(signature)
	if err != nil {
		return sagecrypto.ErrInvalidSignature
	}
	if !ecdsa.Verify(pk.publicKey, digest[:], r, s) {
		return sagecrypto.ErrInvalidSignature
	}
	return nil
}

func (pk *publicKeyOnlySecp256r1) ID() string { return pk.id }
