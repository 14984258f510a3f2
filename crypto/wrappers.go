package crypto

// This file provides wrapper functions implemented by a separate
// initialization package (internal/cryptoinit) to avoid circular
// dependencies between crypto and its subpackages.

var (
	generateEd25519Fn   func() (KeyPair, error)
	generateSecp256k1Fn func() (KeyPair, error)
	generateSecp256r1Fn func() (KeyPair, error)
	generateX25519Fn    func() (KeyPair, error)

	newMemoryKeyStorageFn func() KeyStorage

	newJWKExporterFn func() KeyExporter
	newPEMExporterFn func() KeyExporter
	newJWKImporterFn func() KeyImporter
	newPEMImporterFn func() KeyImporter
)

// SetKeyGenerators registers the key generation functions for every
// supported KeyType.
func SetKeyGenerators(ed25519Gen, secp256k1Gen, secp256r1Gen, x25519Gen func() (KeyPair, error)) {
	generateEd25519Fn = ed25519Gen
	generateSecp256k1Fn = secp256k1Gen
	generateSecp256r1Fn = secp256r1Gen
	generateX25519Fn = x25519Gen
}

// SetStorageConstructors registers the storage constructor functions.
func SetStorageConstructors(memoryStorage func() KeyStorage) {
	newMemoryKeyStorageFn = memoryStorage
}

// SetFormatConstructors registers the format constructor functions.
func SetFormatConstructors(jwkExp, pemExp func() KeyExporter, jwkImp, pemImp func() KeyImporter) {
	newJWKExporterFn = jwkExp
	newPEMExporterFn = pemExp
	newJWKImporterFn = jwkImp
	newPEMImporterFn = pemImp
}

// GenerateKeyPair generates a new key pair of the given type.
func GenerateKeyPair(keyType KeyType) (KeyPair, error) {
	switch keyType {
	case KeyTypeEd25519:
		if generateEd25519Fn == nil {
			panic("crypto: Ed25519 generator not initialized")
		}
		return generateEd25519Fn()
	case KeyTypeSecp256k1:
		if generateSecp256k1Fn == nil {
			panic("crypto: Secp256k1 generator not initialized")
		}
		return generateSecp256k1Fn()
	case KeyTypeSecp256r1:
		if generateSecp256r1Fn == nil {
			panic("crypto: Secp256r1 generator not initialized")
		}
		return generateSecp256r1Fn()
	case KeyTypeX25519:
		if generateX25519Fn == nil {
			panic("crypto: X25519 generator not initialized")
		}
		return generateX25519Fn()
	default:
		return nil, NewCryptoError("generate", keyType, ErrInvalidKeyType)
	}
}

// NewMemoryKeyStorage creates a new in-memory key storage backend.
func NewMemoryKeyStorage() KeyStorage {
	if newMemoryKeyStorageFn == nil {
		panic("crypto: memory key storage constructor not initialized")
	}
	return newMemoryKeyStorageFn()
}

// NewJWKExporter creates a new JWK exporter.
func NewJWKExporter() KeyExporter {
	if newJWKExporterFn == nil {
		panic("crypto: JWK exporter constructor not initialized")
	}
	return newJWKExporterFn()
}

// NewPEMExporter creates a new PEM exporter.
func NewPEMExporter() KeyExporter {
	if newPEMExporterFn == nil {
		panic("crypto: PEM exporter constructor not initialized")
	}
	return newPEMExporterFn()
}

// NewJWKImporter creates a new JWK importer.
func NewJWKImporter() KeyImporter {
	if newJWKImporterFn == nil {
		panic("crypto: JWK importer constructor not initialized")
	}
	return newJWKImporterFn()
}

// NewPEMImporter creates a new PEM importer.
func NewPEMImporter() KeyImporter {
	if newPEMImporterFn == nil {
		panic("crypto: PEM importer constructor not initialized")
	}
	return newPEMImporterFn()
}
