// Package types defines value types shared across klingnet-seed packages.
package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// FingerprintSize is the length of a seed fingerprint in bytes.
const FingerprintSize = 32

// ShortFingerprintSize is the number of bytes shown by Short.
const ShortFingerprintSize = 4

// Fingerprint is a non-secret identifier of a derived seed.
type Fingerprint [FingerprintSize]byte

// IsZero returns true if the fingerprint is all zeros.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// String returns the hex-encoded fingerprint.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the hex encoding of the leading bytes, for display.
func (f Fingerprint) Short() string {
	return hex.EncodeToString(f[:ShortFingerprintSize])
}

// Bytes returns a copy of the fingerprint as a byte slice.
func (f Fingerprint) Bytes() []byte {
	b := make([]byte, FingerprintSize)
	copy(b, f[:])
	return b
}

// MarshalJSON encodes the fingerprint as a hex string.
func (f Fingerprint) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// UnmarshalJSON decodes a hex string into a fingerprint.
func (f *Fingerprint) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*f = Fingerprint{}
		return nil
	}
	parsed, err := HexToFingerprint(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// HexToFingerprint converts a hex string to a Fingerprint.
// Returns an error if the string is not exactly 64 hex characters.
func HexToFingerprint(s string) (Fingerprint, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != FingerprintSize {
		return Fingerprint{}, fmt.Errorf("fingerprint must be %d bytes, got %d", FingerprintSize, len(b))
	}
	var f Fingerprint
	copy(f[:], b)
	return f, nil
}
