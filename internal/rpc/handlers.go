package rpc

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-seed/pkg/bip39"
)

// seedError maps core errors to JSON-RPC invalid-params errors.
func seedError(err error) *Error {
	switch {
	case errors.Is(err, bip39.ErrInvalidEntropyLength),
		errors.Is(err, bip39.ErrInvalidWordListLength),
		errors.Is(err, bip39.ErrUnknownWord),
		errors.Is(err, bip39.ErrInvalidChecksum),
		errors.Is(err, bip39.ErrPassphraseTooLong):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: "internal error"}
	}
}

func (s *Server) handleMnemonicGenerate(req *Request) (interface{}, *Error) {
	var p GenerateParam
	if err := parseOptionalParams(req, &p); err != nil {
		return nil, err
	}
	bits := p.Bits
	if bits == 0 {
		bits = s.defaultBits
	}

	words, err := bip39.CreateRandom(bits)
	if err != nil {
		return nil, seedError(err)
	}
	return &GenerateResult{
		Mnemonic: bip39.MnemonicString(words),
		Words:    words,
	}, nil
}

func (s *Server) handleMnemonicValidate(req *Request) (interface{}, *Error) {
	var p MnemonicParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	return &ValidateResult{Valid: bip39.IsValidMnemonic(p.Mnemonic)}, nil
}

func (s *Server) handleMnemonicFromEntropy(req *Request) (interface{}, *Error) {
	var p EntropyParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	entropy, err := hex.DecodeString(p.Entropy)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "entropy must be hex"}
	}

	words, err := bip39.Encode(entropy)
	if err != nil {
		return nil, seedError(err)
	}
	return &MnemonicResult{Mnemonic: bip39.MnemonicString(words)}, nil
}

func (s *Server) handleMnemonicToEntropy(req *Request) (interface{}, *Error) {
	var p MnemonicParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	entropy, err := bip39.Decode(bip39.ParseMnemonic(p.Mnemonic))
	if err != nil {
		return nil, seedError(err)
	}
	return &EntropyResult{Entropy: hex.EncodeToString(entropy)}, nil
}

// deriveSeed runs the optionally checked derivation shared by several endpoints.
func deriveSeed(mnemonic, passphrase string, check bool) (*bip39.MasterSeed, *Error) {
	words := bip39.ParseMnemonic(mnemonic)
	var (
		ms  *bip39.MasterSeed
		err error
	)
	if check {
		ms, err = bip39.DeriveSeedChecked(words, passphrase)
	} else {
		ms, err = bip39.DeriveSeed(words, passphrase)
	}
	if err != nil {
		return nil, seedError(err)
	}
	return ms, nil
}

func (s *Server) handleMnemonicToSeed(req *Request) (interface{}, *Error) {
	var p ToSeedParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	ms, rpcErr := deriveSeed(p.Mnemonic, p.Passphrase, p.Check)
	if rpcErr != nil {
		return nil, rpcErr
	}
	seed := ms.Seed()
	return &SeedResult{
		Seed:        hex.EncodeToString(seed[:]),
		Fingerprint: ms.Fingerprint(),
	}, nil
}

func (s *Server) handleSeedExport(req *Request) (interface{}, *Error) {
	var p SeedExportParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	ms, rpcErr := deriveSeed(p.Mnemonic, p.Passphrase, true)
	if rpcErr != nil {
		return nil, rpcErr
	}
	if err := bip39.ValidatePassphrase(ms.Passphrase()); err != nil {
		return nil, seedError(err)
	}
	return &DataResult{Data: hex.EncodeToString(ms.ToBytes(p.Compressed))}, nil
}

func (s *Server) handleSeedImport(req *Request) (interface{}, *Error) {
	var p SeedImportParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	data, err := hex.DecodeString(p.Data)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "data must be hex"}
	}

	ms, ok := bip39.FromBytes(data, p.Compressed)
	if !ok {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("data is not a valid serialized seed (compressed=%v)", p.Compressed)}
	}
	seed := ms.Seed()
	return &SeedImportResult{
		Mnemonic:    ms.Mnemonic(),
		Entropy:     hex.EncodeToString(ms.RawEntropy()),
		Passphrase:  ms.Passphrase(),
		Seed:        hex.EncodeToString(seed[:]),
		Fingerprint: ms.Fingerprint(),
	}, nil
}
