package main

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/Klingon-tech/klingnet-seed/config"
	"github.com/Klingon-tech/klingnet-seed/internal/keystore"
	"github.com/Klingon-tech/klingnet-seed/internal/node"
	"github.com/Klingon-tech/klingnet-seed/internal/rpc"
	"github.com/Klingon-tech/klingnet-seed/internal/rpcclient"
	"github.com/Klingon-tech/klingnet-seed/internal/storage"
	"github.com/Klingon-tech/klingnet-seed/pkg/bip39"
)

// backend runs seed-cli commands either in-process or against seedd.
// Both implementations return the RPC result types so output formatting is
// shared.
type backend interface {
	Generate(bits int) (*rpc.GenerateResult, error)
	Validate(mnemonic string) (bool, error)
	FromEntropy(entropy []byte) (string, error)
	ToEntropy(mnemonic string) ([]byte, error)
	ToSeed(mnemonic, passphrase string, check bool) (*rpc.SeedResult, error)
	Export(mnemonic, passphrase string, compressed bool) ([]byte, error)
	Import(data []byte, compressed bool) (*rpc.SeedImportResult, error)

	CreateWallet(name string, bits int, passphrase string, password []byte) (*rpc.KeystoreCreateResult, error)
	ImportWallet(name, mnemonic, passphrase string, password []byte) (*rpc.KeystoreImportResult, error)
	ListWallets() ([]rpc.WalletEntry, error)
	ExportWallet(name string, password []byte, compressed bool) ([]byte, error)
	ChangePassword(name string, oldPassword, newPassword []byte) error
	DeleteWallet(name string) error

	Close() error
}

// ── local ───────────────────────────────────────────────────────────────

type localBackend struct {
	bits int
	cfg  *config.Config
	ks   *keystore.Keystore
	db   storage.DB
}

func newLocalBackend(cfg *config.Config) *localBackend {
	return &localBackend{bits: cfg.Mnemonic.Bits, cfg: cfg}
}

// keystore opens the on-disk keystore on first use so codec-only commands
// never touch the data directory.
func (b *localBackend) keystore() (*keystore.Keystore, error) {
	if b.ks != nil {
		return b.ks, nil
	}
	if err := config.EnsureDataDirs(b.cfg); err != nil {
		return nil, err
	}
	ks, db, err := node.OpenKeystore(b.cfg)
	if err != nil {
		return nil, err
	}
	b.ks, b.db = ks, db
	return ks, nil
}

func (b *localBackend) Generate(bits int) (*rpc.GenerateResult, error) {
	if bits == 0 {
		bits = b.bits
	}
	words, err := bip39.CreateRandom(bits)
	if err != nil {
		return nil, err
	}
	return &rpc.GenerateResult{Mnemonic: bip39.MnemonicString(words), Words: words}, nil
}

func (b *localBackend) Validate(mnemonic string) (bool, error) {
	return bip39.IsValidMnemonic(mnemonic), nil
}

func (b *localBackend) FromEntropy(entropy []byte) (string, error) {
	words, err := bip39.Encode(entropy)
	if err != nil {
		return "", err
	}
	return bip39.MnemonicString(words), nil
}

func (b *localBackend) ToEntropy(mnemonic string) ([]byte, error) {
	return bip39.Decode(bip39.ParseMnemonic(mnemonic))
}

func derive(mnemonic, passphrase string, check bool) (*bip39.MasterSeed, error) {
	words := bip39.ParseMnemonic(mnemonic)
	if check {
		return bip39.DeriveSeedChecked(words, passphrase)
	}
	return bip39.DeriveSeed(words, passphrase)
}

func (b *localBackend) ToSeed(mnemonic, passphrase string, check bool) (*rpc.SeedResult, error) {
	ms, err := derive(mnemonic, passphrase, check)
	if err != nil {
		return nil, err
	}
	seed := ms.Seed()
	return &rpc.SeedResult{Seed: hex.EncodeToString(seed[:]), Fingerprint: ms.Fingerprint()}, nil
}

func (b *localBackend) Export(mnemonic, passphrase string, compressed bool) ([]byte, error) {
	ms, err := derive(mnemonic, passphrase, true)
	if err != nil {
		return nil, err
	}
	if err := bip39.ValidatePassphrase(ms.Passphrase()); err != nil {
		return nil, err
	}
	return ms.ToBytes(compressed), nil
}

func (b *localBackend) Import(data []byte, compressed bool) (*rpc.SeedImportResult, error) {
	ms, ok := bip39.FromBytes(data, compressed)
	if !ok {
		return nil, fmt.Errorf("data is not a valid serialized seed (compressed=%v)", compressed)
	}
	seed := ms.Seed()
	return &rpc.SeedImportResult{
		Mnemonic:    ms.Mnemonic(),
		Entropy:     hex.EncodeToString(ms.RawEntropy()),
		Passphrase:  ms.Passphrase(),
		Seed:        hex.EncodeToString(seed[:]),
		Fingerprint: ms.Fingerprint(),
	}, nil
}

func (b *localBackend) CreateWallet(name string, bits int, passphrase string, password []byte) (*rpc.KeystoreCreateResult, error) {
	ks, err := b.keystore()
	if err != nil {
		return nil, err
	}
	if bits == 0 {
		bits = b.bits
	}
	ms, info, err := ks.Generate(name, bits, passphrase, password)
	if err != nil {
		return nil, err
	}
	return &rpc.KeystoreCreateResult{Name: info.Name, Mnemonic: ms.Mnemonic(), Fingerprint: info.Fingerprint}, nil
}

func (b *localBackend) ImportWallet(name, mnemonic, passphrase string, password []byte) (*rpc.KeystoreImportResult, error) {
	ks, err := b.keystore()
	if err != nil {
		return nil, err
	}
	info, err := ks.Import(name, bip39.ParseMnemonic(mnemonic), passphrase, password)
	if err != nil {
		return nil, err
	}
	return &rpc.KeystoreImportResult{Name: info.Name, Fingerprint: info.Fingerprint}, nil
}

func (b *localBackend) ListWallets() ([]rpc.WalletEntry, error) {
	ks, err := b.keystore()
	if err != nil {
		return nil, err
	}
	infos, err := ks.List()
	if err != nil {
		return nil, err
	}
	out := make([]rpc.WalletEntry, 0, len(infos))
	for _, in := range infos {
		out = append(out, rpc.WalletEntry{
			Name:        in.Name,
			Fingerprint: in.Fingerprint,
			CreatedAt:   in.CreatedAt,
			Compressed:  in.Compressed,
		})
	}
	return out, nil
}

func (b *localBackend) ExportWallet(name string, password []byte, compressed bool) ([]byte, error) {
	ks, err := b.keystore()
	if err != nil {
		return nil, err
	}
	return ks.Export(name, password, compressed)
}

func (b *localBackend) ChangePassword(name string, oldPassword, newPassword []byte) error {
	ks, err := b.keystore()
	if err != nil {
		return err
	}
	return ks.ChangePassword(name, oldPassword, newPassword)
}

func (b *localBackend) DeleteWallet(name string) error {
	ks, err := b.keystore()
	if err != nil {
		return err
	}
	return ks.Delete(name)
}

func (b *localBackend) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

// ── remote ──────────────────────────────────────────────────────────────

type remoteBackend struct {
	client *rpcclient.Client
	ctx    context.Context
}

func newRemoteBackend(url string) *remoteBackend {
	return &remoteBackend{client: rpcclient.New(url), ctx: context.Background()}
}

func (b *remoteBackend) Generate(bits int) (*rpc.GenerateResult, error) {
	return b.client.GenerateMnemonic(b.ctx, bits)
}

func (b *remoteBackend) Validate(mnemonic string) (bool, error) {
	return b.client.ValidateMnemonic(b.ctx, mnemonic)
}

func (b *remoteBackend) FromEntropy(entropy []byte) (string, error) {
	return b.client.MnemonicFromEntropy(b.ctx, hex.EncodeToString(entropy))
}

func (b *remoteBackend) ToEntropy(mnemonic string) ([]byte, error) {
	h, err := b.client.MnemonicToEntropy(b.ctx, mnemonic)
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(h)
}

func (b *remoteBackend) ToSeed(mnemonic, passphrase string, check bool) (*rpc.SeedResult, error) {
	return b.client.MnemonicToSeed(b.ctx, rpc.ToSeedParam{Mnemonic: mnemonic, Passphrase: passphrase, Check: check})
}

func (b *remoteBackend) Export(mnemonic, passphrase string, compressed bool) ([]byte, error) {
	h, err := b.client.ExportSeed(b.ctx, rpc.SeedExportParam{Mnemonic: mnemonic, Passphrase: passphrase, Compressed: compressed})
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(h)
}

func (b *remoteBackend) Import(data []byte, compressed bool) (*rpc.SeedImportResult, error) {
	return b.client.ImportSeed(b.ctx, hex.EncodeToString(data), compressed)
}

func (b *remoteBackend) CreateWallet(name string, bits int, passphrase string, password []byte) (*rpc.KeystoreCreateResult, error) {
	return b.client.CreateWallet(b.ctx, rpc.KeystoreCreateParam{
		Name: name, Password: string(password), Bits: bits, Passphrase: passphrase,
	})
}

func (b *remoteBackend) ImportWallet(name, mnemonic, passphrase string, password []byte) (*rpc.KeystoreImportResult, error) {
	return b.client.ImportWallet(b.ctx, rpc.KeystoreImportParam{
		Name: name, Password: string(password), Mnemonic: mnemonic, Passphrase: passphrase,
	})
}

func (b *remoteBackend) ListWallets() ([]rpc.WalletEntry, error) {
	return b.client.ListWallets(b.ctx)
}

func (b *remoteBackend) ExportWallet(name string, password []byte, compressed bool) ([]byte, error) {
	h, err := b.client.ExportWallet(b.ctx, rpc.KeystoreExportParam{Name: name, Password: string(password), Compressed: compressed})
	if err != nil {
		return nil, err
	}
	return hex.DecodeString(h)
}

func (b *remoteBackend) ChangePassword(name string, oldPassword, newPassword []byte) error {
	return b.client.ChangeWalletPassword(b.ctx, rpc.KeystorePasswordParam{
		Name: name, OldPassword: string(oldPassword), NewPassword: string(newPassword),
	})
}

func (b *remoteBackend) DeleteWallet(name string) error {
	return b.client.DeleteWallet(b.ctx, name)
}

func (b *remoteBackend) Close() error { return nil }
