// Package bip39 converts between entropy, mnemonic word lists and BIP-32
// seeds as described by BIP-39, and serializes derived seeds.
//
// Entropy of 128 to 256 bits (in steps of 32) is extended with a checksum of
// bits/32 bits taken from SHA-256(entropy) and split into 11-bit word
// indices. Seeds are derived with PBKDF2-HMAC-SHA512 over the space-joined
// mnemonic, salted with "mnemonic" plus the NFKD-normalized passphrase.
//
// Every function in this package is safe for concurrent use.
package bip39

import "github.com/Klingon-tech/klingnet-seed/pkg/bitpack"

const (
	// SeedSize is the length of a derived BIP-32 seed in bytes.
	SeedSize = 64

	// Iterations is the PBKDF2 round count fixed by BIP-39.
	Iterations = 2048

	// saltPrefix is prepended to the passphrase to form the PBKDF2 salt.
	saltPrefix = "mnemonic"

	// MaxBlockSize bounds every length-prefixed block in a serialized seed.
	MaxBlockSize = 200
)

// EntropyBits lists the supported entropy sizes in bits.
var EntropyBits = [...]int{128, 160, 192, 224, 256}

// ValidEntropyBits reports whether bits is a supported entropy size.
func ValidEntropyBits(bits int) bool {
	return bits >= 128 && bits <= 256 && bits%32 == 0
}

// ValidWordCount reports whether n is a supported mnemonic length.
func ValidWordCount(n int) bool {
	_, ok := EntropyBitsForWords(n)
	return ok
}

// checksumBits returns the checksum length for an entropy size.
func checksumBits(entropyBits int) int {
	return entropyBits / 32
}

// WordsForEntropyBits returns the mnemonic length for an entropy size.
func WordsForEntropyBits(bits int) (int, bool) {
	if !ValidEntropyBits(bits) {
		return 0, false
	}
	return (bits + checksumBits(bits)) / bitpack.WordBits, true
}

// EntropyBitsForWords returns the entropy size encoded by n words.
func EntropyBitsForWords(n int) (int, bool) {
	switch n {
	case 12, 15, 18, 21, 24:
		// n*11 = bits + bits/32 = bits*33/32
		return n * bitpack.WordBits * 32 / 33, true
	default:
		return 0, false
	}
}
