package bip39

import (
	"fmt"

	gobip39 "github.com/tyler-smith/go-bip39"
	"golang.org/x/text/unicode/norm"

	"github.com/Klingon-tech/klingnet-seed/pkg/crypto"
)

// DefaultEntropyBits is the entropy size used by CreateRandomMasterSeed.
const DefaultEntropyBits = 128

// NewEntropy draws bits/8 bytes from the operating system CSPRNG.
func NewEntropy(bits int) ([]byte, error) {
	if !ValidEntropyBits(bits) {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidEntropyLength, bits)
	}
	entropy, err := gobip39.NewEntropy(bits)
	if err != nil {
		return nil, fmt.Errorf("generate entropy: %w", err)
	}
	return entropy, nil
}

// CreateRandom returns a fresh mnemonic carrying bits of random entropy.
func CreateRandom(bits int) ([]string, error) {
	entropy, err := NewEntropy(bits)
	if err != nil {
		return nil, err
	}
	return Encode(entropy)
}

// CreateRandomMasterSeed derives a master seed from a fresh 128-bit mnemonic
// and an empty passphrase.
func CreateRandomMasterSeed() (*MasterSeed, error) {
	words, err := CreateRandom(DefaultEntropyBits)
	if err != nil {
		return nil, err
	}
	return DeriveSeed(words, "")
}

// DeriveSeed derives the 64-byte BIP-32 seed for words and passphrase.
//
// The checksum is not verified; use DeriveSeedChecked to enforce it. The
// empty passphrase is the BIP-39 default.
func DeriveSeed(words []string, passphrase string) (*MasterSeed, error) {
	entropy, err := Decode(words)
	if err != nil {
		return nil, err
	}

	passphrase = norm.NFKD.String(passphrase)
	mnemonic := MnemonicString(words)
	salt := norm.NFKD.String(saltPrefix + passphrase)

	seed := crypto.PBKDF2SHA512([]byte(mnemonic), []byte(salt), Iterations, SeedSize)

	return newMasterSeed(entropy, passphrase, seed), nil
}

// DeriveSeedChecked is DeriveSeed after verifying the mnemonic checksum.
func DeriveSeedChecked(words []string, passphrase string) (*MasterSeed, error) {
	buf, err := pack(words)
	if err != nil {
		return nil, err
	}
	if !verifyChecksum(buf) {
		return nil, ErrInvalidChecksum
	}
	return DeriveSeed(words, passphrase)
}
