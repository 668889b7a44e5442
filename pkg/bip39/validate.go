package bip39

// IsValidWordList reports whether words is a well-formed mnemonic: a
// supported length, every word in the dictionary, and a matching checksum.
// It never panics and is safe on untrusted input.
func IsValidWordList(words []string) bool {
	buf, err := pack(words)
	if err != nil {
		return false
	}
	return verifyChecksum(buf)
}

// IsValidMnemonic is IsValidWordList over a space-separated sentence.
func IsValidMnemonic(mnemonic string) bool {
	return IsValidWordList(ParseMnemonic(mnemonic))
}

// verifyChecksum checks the trailing checksum byte of a packed word buffer.
func verifyChecksum(packed []byte) bool {
	if len(packed) < 2 {
		return false
	}
	entropy := packed[:len(packed)-1]
	if !ValidEntropyBits(len(entropy) * 8) {
		return false
	}
	return checksumByte(entropy) == packed[len(packed)-1]
}
