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

// Package crypto defines the cryptographic primitives behind did:wba
// identities: key generation, signing, verification, ECDH key exchange, key
// derivation and AEAD encryption. Concrete algorithms live in crypto/keys;
// this package only carries the shared interfaces and sentinel errors every
// implementation returns.
package crypto

import (
	"crypto"
	"errors"
	"time"
)

// KeyType identifies the verification-method algorithm behind a KeyPair.
type KeyType string

const (
	KeyTypeSecp256k1 KeyType = "Secp256k1"
	KeyTypeSecp256r1 KeyType = "Secp256r1"
	KeyTypeEd25519   KeyType = "Ed25519"
	KeyTypeX25519    KeyType = "X25519"
)

// VerificationMethodType maps a KeyType to the DID document type string used
// in verificationMethod entries.
func (t KeyType) VerificationMethodType() string {
	switch t {
	case KeyTypeSecp256k1:
		return "EcdsaSecp256k1VerificationKey2019"
	case KeyTypeSecp256r1:
		return "EcdsaSecp256r1VerificationKey2019"
	case KeyTypeEd25519:
		return "Ed25519VerificationKey2020"
	case KeyTypeX25519:
		return "X25519KeyAgreementKey2019"
	default:
		return ""
	}
}

// KeyFormat is an export/import encoding for a KeyPair.
type KeyFormat string

const (
	KeyFormatJWK KeyFormat = "JWK"
	KeyFormatPEM KeyFormat = "PEM"
)

// KeyPair is a cryptographic key pair capable of signing and/or verifying.
// X25519 pairs implement Sign/Verify by returning ErrSignNotSupported /
// ErrVerifyNotSupported: they exist only for key agreement.
type KeyPair interface {
	// PublicKey returns the public key
	PublicKey() crypto.PublicKey

	// PrivateKey returns the private key
	PrivateKey() crypto.PrivateKey

	// Type returns the key type
	Type() KeyType

	// Sign signs the given message
	Sign(message []byte) ([]byte, error)

	// Verify verifies the signature
	Verify(message, signature []byte) error

	// ID returns a unique identifier for this key pair
	ID() string
}

// KeyExchanger is implemented by key-agreement pairs (X25519).
type KeyExchanger interface {
	// DeriveSharedSecret performs ECDH against a peer's raw public key bytes
	// and runs the result through HKDF with salt to produce a symmetric key.
	DeriveSharedSecret(peerPublicKey, salt []byte) ([]byte, error)
}

// KeyExporter handles key export operations
type KeyExporter interface {
	// Export exports the key pair in the specified format
	Export(keyPair KeyPair, format KeyFormat) ([]byte, error)

	// ExportPublic exports only the public key
	ExportPublic(keyPair KeyPair, format KeyFormat) ([]byte, error)
}

// KeyImporter handles key import operations
type KeyImporter interface {
	// Import imports a key pair from the specified format
	Import(data []byte, format KeyFormat) (KeyPair, error)

	// ImportPublic imports only a public key
	ImportPublic(data []byte, format KeyFormat) (crypto.PublicKey, error)
}

// KeyStorage provides secure storage for keys, keyed by DID fragment.
type KeyStorage interface {
	Store(id string, keyPair KeyPair) error
	Load(id string) (KeyPair, error)
	Delete(id string) error
	List() ([]string, error)
	Exists(id string) bool
}

// CryptoError is returned by a C1 operation on malformed keys, unknown
// algorithms, or verification mismatches.
type CryptoError struct {
	Op      string
	KeyType KeyType
	Err     error
}

func (e *CryptoError) Error() string {
	if e.KeyType != "" {
		return "crypto: " + e.Op + " (" + string(e.KeyType) + "): " + e.Err.Error()
	}
	return "crypto: " + e.Op + ": " + e.Err.Error()
}

func (e *CryptoError) Unwrap() error { return e.Err }

// NewCryptoError wraps err as a CryptoError for operation op on key type kt.
func NewCryptoError(op string, kt KeyType, err error) error {
	return &CryptoError{Op: op, KeyType: kt, Err: err}
}

// Common sentinel errors returned (optionally wrapped in a *CryptoError) by
// implementations in crypto/keys.
var (
	ErrKeyNotFound          = errors.New("key not found")
	ErrKeyExists            = errors.New("key already exists")
	ErrInvalidKeyType       = errors.New("invalid key type")
	ErrInvalidKeyFormat     = errors.New("invalid key format")
	ErrInvalidSignature     = errors.New("signature verification failed")
	ErrSignNotSupported     = errors.New("key type does not support signing")
	ErrVerifyNotSupported   = errors.New("key type does not support verification")
	ErrKeyExchangeFailed    = errors.New("key exchange failed")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

// KeyRotationConfig represents configuration for key rotation
type KeyRotationConfig struct {
	RotationInterval time.Duration
	MaxKeyAge        time.Duration
	KeepOldKeys      bool
}

// KeyRotationEvent represents a key rotation event
type KeyRotationEvent struct {
	Timestamp time.Time
	OldKeyID  string
	NewKeyID  string
	Reason    string
}

// KeyRotator handles key rotation operations
type KeyRotator interface {
	Rotate(id string) (KeyPair, error)
	SetRotationConfig(config KeyRotationConfig)
	GetRotationHistory(id string) ([]KeyRotationEvent, error)
}
