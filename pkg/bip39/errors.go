package bip39

import "errors"

var (
	// ErrInvalidEntropyLength is returned for entropy outside 128..256 bits in steps of 32.
	ErrInvalidEntropyLength = errors.New("entropy must be 128, 160, 192, 224, or 256 bits")

	// ErrInvalidWordListLength is returned for word lists that are not 12, 15, 18, 21, or 24 words.
	ErrInvalidWordListLength = errors.New("word list must be 12, 15, 18, 21, or 24 words")

	// ErrUnknownWord is returned when a word is not in the dictionary.
	ErrUnknownWord = errors.New("word not in dictionary")

	// ErrInvalidChecksum is returned by checked derivation when the embedded checksum does not match.
	ErrInvalidChecksum = errors.New("mnemonic checksum mismatch")

	// ErrPassphraseTooLong is returned when a normalized passphrase does not fit a serialized block.
	ErrPassphraseTooLong = errors.New("passphrase exceeds 200 bytes after NFKD normalization")
)
