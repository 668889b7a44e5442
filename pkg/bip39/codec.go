package bip39

import (
	"fmt"
	"strings"

	"github.com/Klingon-tech/klingnet-seed/pkg/bitpack"
	"github.com/Klingon-tech/klingnet-seed/pkg/crypto"
	"github.com/Klingon-tech/klingnet-seed/pkg/wordlist"
)

// checksumByte returns the checksum of entropy as a full byte. Only the top
// len(entropy)*8/32 bits carry information; the rest are zero.
func checksumByte(entropy []byte) byte {
	cs := checksumBits(len(entropy) * 8)
	digest := crypto.SHA256(entropy)
	return digest[0] & byte(0xFF<<uint(8-cs))
}

// Encode turns raw entropy into a mnemonic word list with its checksum embedded.
// Entropy must be 16, 20, 24, 28, or 32 bytes.
func Encode(entropy []byte) ([]string, error) {
	bits := len(entropy) * 8
	n, ok := WordsForEntropyBits(bits)
	if !ok {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidEntropyLength, bits)
	}

	buf := make([]byte, len(entropy)+1)
	copy(buf, entropy)
	buf[len(entropy)] = checksumByte(entropy)

	dict := wordlist.Get()
	words := make([]string, n)
	for i := range words {
		words[i] = dict.Word(int(bitpack.Uint11(buf, i)))
	}
	return words, nil
}

// pack maps words to dictionary indices and packs them into a checksummed buffer.
func pack(words []string) ([]byte, error) {
	if !ValidWordCount(len(words)) {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidWordListLength, len(words))
	}

	dict := wordlist.Get()
	buf := make([]byte, bitpack.ByteLen(len(words)*bitpack.WordBits))
	for i, w := range words {
		idx, ok := dict.Index(w)
		if !ok {
			return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownWord, w, i+1)
		}
		bitpack.PutUint11(buf, i, uint16(idx))
	}
	return buf, nil
}

// Decode recovers the raw entropy from a word list, discarding the checksum.
// It does not verify the checksum; use IsValidWordList for that.
func Decode(words []string) ([]byte, error) {
	buf, err := pack(words)
	if err != nil {
		return nil, err
	}
	return buf[:len(buf)-1], nil
}

// MnemonicString joins words with single spaces.
func MnemonicString(words []string) string {
	return strings.Join(words, " ")
}

// ParseMnemonic splits a mnemonic sentence on runs of whitespace.
func ParseMnemonic(mnemonic string) []string {
	return strings.Fields(mnemonic)
}
