package keystore

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// Sealed envelope layout:
//
//	version(1) | salt(32) | memory(4) | iterations(4) | parallelism(1) | nonce(24) | ciphertext
const (
	envelopeVersion = 1
	SaltSize        = 32
	headerSize      = 1 + SaltSize + 4 + 4 + 1

	// maxMemory caps the Argon2 memory a stored envelope may request (4 GiB).
	maxMemory = 4 * 1024 * 1024
)

// EncryptionParams holds Argon2id parameters.
type EncryptionParams struct {
	Memory      uint32 // in KiB
	Iterations  uint32
	Parallelism uint8
}

// DefaultParams returns recommended Argon2id parameters.
func DefaultParams() EncryptionParams {
	return EncryptionParams{
		Memory:      64 * 1024, // 64 MB
		Iterations:  3,
		Parallelism: 4,
	}
}

// Validate rejects parameters argon2 cannot run with.
func (p EncryptionParams) Validate() error {
	switch {
	case p.Memory == 0 || p.Memory > maxMemory:
		return fmt.Errorf("argon2 memory must be in [1, %d] KiB, got %d", maxMemory, p.Memory)
	case p.Iterations == 0:
		return fmt.Errorf("argon2 iterations must be positive")
	case p.Parallelism == 0:
		return fmt.Errorf("argon2 parallelism must be positive")
	}
	return nil
}

func deriveKey(password, salt []byte, params EncryptionParams) []byte {
	return argon2.IDKey(
		password,
		salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		chacha20poly1305.KeySize,
	)
}

// Seal encrypts data under password with Argon2id and XChaCha20-Poly1305.
// aad is authenticated but not encrypted; Open must be given the same value.
func Seal(data, password, aad []byte, params EncryptionParams) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}

	key := deriveKey(password, salt, params)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	out := make([]byte, 0, headerSize+len(nonce)+len(data)+aead.Overhead())
	out = append(out, envelopeVersion)
	out = append(out, salt...)
	out = binary.LittleEndian.AppendUint32(out, params.Memory)
	out = binary.LittleEndian.AppendUint32(out, params.Iterations)
	out = append(out, params.Parallelism)
	out = append(out, nonce...)
	return aead.Seal(out, nonce, data, aad), nil
}

// Open decrypts an envelope produced by Seal. Any authentication failure,
// including a wrong password or aad, is reported as ErrDecrypt.
func Open(sealed, password, aad []byte) ([]byte, error) {
	nonceSize := chacha20poly1305.NonceSizeX
	minSize := headerSize + nonceSize + chacha20poly1305.Overhead
	if len(sealed) < minSize {
		return nil, fmt.Errorf("%w: envelope too short: %d bytes, need at least %d", ErrCorruptRecord, len(sealed), minSize)
	}
	if sealed[0] != envelopeVersion {
		return nil, fmt.Errorf("%w: unsupported envelope version %d", ErrCorruptRecord, sealed[0])
	}

	salt := sealed[1 : 1+SaltSize]
	params := EncryptionParams{
		Memory:      binary.LittleEndian.Uint32(sealed[1+SaltSize:]),
		Iterations:  binary.LittleEndian.Uint32(sealed[1+SaltSize+4:]),
		Parallelism: sealed[1+SaltSize+8],
	}
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}

	nonce := sealed[headerSize : headerSize+nonceSize]
	ciphertext := sealed[headerSize+nonceSize:]

	key := deriveKey(password, salt, params)
	defer clear(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}
