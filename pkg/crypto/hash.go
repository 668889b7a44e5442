// Package crypto provides the hash primitives used by BIP-39.
package crypto

import (
	"crypto/sha256"
	"crypto/sha512"

	"github.com/Klingon-tech/klingnet-seed/pkg/types"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/pbkdf2"
)

// SHA256 computes the SHA-256 digest used for mnemonic checksums.
func SHA256(data []byte) [sha256.Size]byte {
	return sha256.Sum256(data)
}

// PBKDF2SHA512 stretches password with salt using PBKDF2 and HMAC-SHA512.
func PBKDF2SHA512(password, salt []byte, iterations, keyLen int) []byte {
	return pbkdf2.Key(password, salt, iterations, keyLen, sha512.New)
}

// Fingerprint computes a BLAKE3-256 identifier for seed material.
// It is one-way and safe to log or index by.
func Fingerprint(seed []byte) types.Fingerprint {
	return blake3.Sum256(seed)
}
