package bip39

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Klingon-tech/klingnet-seed/pkg/bytebuf"
	"github.com/Klingon-tech/klingnet-seed/pkg/crypto"
	"github.com/Klingon-tech/klingnet-seed/pkg/types"
	"github.com/Klingon-tech/klingnet-seed/pkg/wordlist"
)

// MasterSeed is a derived BIP-32 seed together with the entropy and
// passphrase it was derived from. It is immutable.
//
// Two master seeds are Equal when their derived seeds are equal, regardless
// of the entropy and passphrase stored alongside.
type MasterSeed struct {
	entropy    []byte
	passphrase string
	seed       [SeedSize]byte
	listType   wordlist.Type
}

// newMasterSeed builds a master seed from checked parts. The passphrase is
// normalized again so every construction path stores NFKD text.
func newMasterSeed(entropy []byte, passphrase string, seed []byte) *MasterSeed {
	ms := &MasterSeed{
		entropy:    entropy,
		passphrase: norm.NFKD.String(passphrase),
		listType:   wordlist.English,
	}
	copy(ms.seed[:], seed)
	return ms
}

// RawEntropy returns a copy of the entropy, without checksum.
func (m *MasterSeed) RawEntropy() []byte {
	out := make([]byte, len(m.entropy))
	copy(out, m.entropy)
	return out
}

// Passphrase returns the NFKD-normalized passphrase.
func (m *MasterSeed) Passphrase() string {
	return m.passphrase
}

// Seed returns the 64-byte BIP-32 seed.
func (m *MasterSeed) Seed() [SeedSize]byte {
	return m.seed
}

// WordListType returns the dictionary the mnemonic was drawn from.
func (m *MasterSeed) WordListType() wordlist.Type {
	return m.listType
}

// Words returns the mnemonic for the stored entropy.
func (m *MasterSeed) Words() []string {
	words, err := Encode(m.entropy)
	if err != nil {
		// Entropy length is checked on every construction path.
		panic(err)
	}
	return words
}

// Mnemonic returns the mnemonic as a space-separated sentence.
func (m *MasterSeed) Mnemonic() string {
	return MnemonicString(m.Words())
}

// Fingerprint returns a non-secret identifier of the derived seed.
func (m *MasterSeed) Fingerprint() types.Fingerprint {
	return crypto.Fingerprint(m.seed[:])
}

// Equal reports whether m and other carry the same derived seed.
func (m *MasterSeed) Equal(other *MasterSeed) bool {
	if m == nil || other == nil {
		return m == other
	}
	return subtle.ConstantTimeCompare(m.seed[:], other.seed[:]) == 1
}

// ToBytes serializes the master seed.
//
// Layout: word list type (1 byte), then CompactSize-prefixed entropy,
// UTF-8 passphrase and, unless compressed, the 64-byte seed. The compressed
// form is smaller but FromBytes must rerun PBKDF2 to restore the seed.
// FromBytes accepts the result only if ValidatePassphrase(m.Passphrase())
// succeeds.
func (m *MasterSeed) ToBytes(compressed bool) []byte {
	w := bytebuf.NewWriter(1 + 1 + len(m.entropy) + 1 + len(m.passphrase) + 1 + SeedSize)
	w.PutByte(byte(m.listType))
	w.PutVarBytes(m.entropy)
	w.PutVarBytes([]byte(m.passphrase))
	if !compressed {
		w.PutVarBytes(m.seed[:])
	}
	return w.Bytes()
}

// ValidatePassphrase reports ErrPassphraseTooLong when the NFKD form of
// passphrase does not fit one serialized block.
func ValidatePassphrase(passphrase string) error {
	if n := len(norm.NFKD.String(passphrase)); n > MaxBlockSize {
		return fmt.Errorf("%w: %d bytes", ErrPassphraseTooLong, n)
	}
	return nil
}

// FromBytes parses a master seed produced by ToBytes with the same
// compressed flag. It returns false for any malformed input and never panics.
// Invalid UTF-8 in the passphrase block is replaced with U+FFFD and the
// result is NFKD-normalized.
func FromBytes(data []byte, compressed bool) (*MasterSeed, bool) {
	r := bytebuf.NewReader(data)

	tag, err := r.Byte()
	if err != nil || wordlist.Type(tag) != wordlist.English {
		return nil, false
	}

	entropy, err := r.VarBytes(MaxBlockSize)
	if err != nil || !ValidEntropyBits(len(entropy)*8) {
		return nil, false
	}

	rawPass, err := r.VarBytes(MaxBlockSize)
	if err != nil {
		return nil, false
	}
	passphrase := strings.ToValidUTF8(string(rawPass), "\uFFFD")

	if compressed {
		words, err := Encode(entropy)
		if err != nil {
			return nil, false
		}
		ms, err := DeriveSeed(words, passphrase)
		if err != nil {
			return nil, false
		}
		return ms, true
	}

	seed, err := r.VarBytes(MaxBlockSize)
	if err != nil || len(seed) != SeedSize {
		return nil, false
	}
	return newMasterSeed(entropy, passphrase, seed), true
}
