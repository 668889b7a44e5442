package rpc

import (
	"encoding/hex"
	"errors"

	"github.com/Klingon-tech/klingnet-seed/internal/keystore"
	"github.com/Klingon-tech/klingnet-seed/pkg/bip39"
)

// keystoreError maps keystore errors to JSON-RPC errors.
func (s *Server) keystoreError(err error) *Error {
	switch {
	case errors.Is(err, keystore.ErrWalletNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, keystore.ErrWalletExists),
		errors.Is(err, keystore.ErrDuplicateSeed),
		errors.Is(err, keystore.ErrInvalidName),
		errors.Is(err, keystore.ErrDecrypt):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	case errors.Is(err, bip39.ErrInvalidEntropyLength),
		errors.Is(err, bip39.ErrInvalidWordListLength),
		errors.Is(err, bip39.ErrUnknownWord),
		errors.Is(err, bip39.ErrInvalidChecksum),
		errors.Is(err, bip39.ErrPassphraseTooLong):
		return seedError(err)
	default:
		s.logger.Error().Err(err).Msg("Keystore operation failed")
		return &Error{Code: CodeInternalError, Message: "internal error"}
	}
}

func (s *Server) requireKeystore() *Error {
	if s.keystore == nil {
		return &Error{Code: CodeNotFound, Message: "keystore not enabled"}
	}
	return nil
}

func (s *Server) handleKeystoreCreate(req *Request) (interface{}, *Error) {
	if err := s.requireKeystore(); err != nil {
		return nil, err
	}
	var p KeystoreCreateParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.Password == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "password required"}
	}
	bits := p.Bits
	if bits == 0 {
		bits = s.defaultBits
	}

	ms, info, err := s.keystore.Generate(p.Name, bits, p.Passphrase, []byte(p.Password))
	if err != nil {
		return nil, s.keystoreError(err)
	}
	return &KeystoreCreateResult{
		Name:        info.Name,
		Mnemonic:    ms.Mnemonic(),
		Fingerprint: info.Fingerprint,
	}, nil
}

func (s *Server) handleKeystoreImport(req *Request) (interface{}, *Error) {
	if err := s.requireKeystore(); err != nil {
		return nil, err
	}
	var p KeystoreImportParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.Password == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "password required"}
	}

	info, err := s.keystore.Import(p.Name, bip39.ParseMnemonic(p.Mnemonic), p.Passphrase, []byte(p.Password))
	if err != nil {
		return nil, s.keystoreError(err)
	}
	return &KeystoreImportResult{Name: info.Name, Fingerprint: info.Fingerprint}, nil
}

func (s *Server) handleKeystoreList(_ *Request) (interface{}, *Error) {
	if err := s.requireKeystore(); err != nil {
		return nil, err
	}
	infos, err := s.keystore.List()
	if err != nil {
		return nil, s.keystoreError(err)
	}

	out := make([]WalletEntry, 0, len(infos))
	for _, in := range infos {
		out = append(out, WalletEntry{
			Name:        in.Name,
			Fingerprint: in.Fingerprint,
			CreatedAt:   in.CreatedAt,
			Compressed:  in.Compressed,
		})
	}
	return out, nil
}

func (s *Server) handleKeystoreExport(req *Request) (interface{}, *Error) {
	if err := s.requireKeystore(); err != nil {
		return nil, err
	}
	var p KeystoreExportParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}

	data, err := s.keystore.Export(p.Name, []byte(p.Password), p.Compressed)
	if err != nil {
		return nil, s.keystoreError(err)
	}
	return &DataResult{Data: hex.EncodeToString(data)}, nil
}

func (s *Server) handleKeystoreChangePassword(req *Request) (interface{}, *Error) {
	if err := s.requireKeystore(); err != nil {
		return nil, err
	}
	var p KeystorePasswordParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.NewPassword == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "new_password required"}
	}

	if err := s.keystore.ChangePassword(p.Name, []byte(p.OldPassword), []byte(p.NewPassword)); err != nil {
		return nil, s.keystoreError(err)
	}
	return &ChangedResult{Changed: true}, nil
}

func (s *Server) handleKeystoreDelete(req *Request) (interface{}, *Error) {
	if err := s.requireKeystore(); err != nil {
		return nil, err
	}
	var p KeystoreNameParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if err := s.keystore.Delete(p.Name); err != nil {
		return nil, s.keystoreError(err)
	}
	return &DeleteResult{Deleted: true}, nil
}
