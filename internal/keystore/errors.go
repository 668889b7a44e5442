package keystore

import "errors"

// Keystore errors.
var (
	ErrWalletExists   = errors.New("wallet already exists")
	ErrWalletNotFound = errors.New("wallet not found")
	ErrDuplicateSeed  = errors.New("seed already stored under another name")
	ErrDecrypt        = errors.New("wrong password or corrupted data")
	ErrCorruptRecord  = errors.New("corrupt wallet record")
	ErrInvalidName    = errors.New("invalid wallet name")
)
