// Package keystore persists master seeds sealed under a password.
//
// Each wallet is one JSON record under "seed/<name>" holding the serialized
// MasterSeed encrypted with Argon2id and XChaCha20-Poly1305. A second key,
// "fp/<fingerprint>", maps each stored seed back to its wallet name so the
// same seed cannot be stored twice.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Klingon-tech/klingnet-seed/internal/log"
	"github.com/Klingon-tech/klingnet-seed/internal/storage"
	"github.com/Klingon-tech/klingnet-seed/pkg/bip39"
	"github.com/Klingon-tech/klingnet-seed/pkg/types"
)

const (
	recordVersion = 1
	maxNameLen    = 64
)

var (
	recordPrefix = []byte("seed/")
	indexPrefix  = []byte("fp/")
)

// record is the stored JSON form of a wallet.
type record struct {
	Version     int               `json:"version"`
	CreatedAt   time.Time         `json:"created_at"`
	Compressed  bool              `json:"compressed"`
	Fingerprint types.Fingerprint `json:"fingerprint"`
	Sealed      []byte            `json:"sealed"`
}

// Info describes a stored wallet without revealing secrets.
type Info struct {
	Name        string            `json:"name"`
	Fingerprint types.Fingerprint `json:"fingerprint"`
	CreatedAt   time.Time         `json:"created_at"`
	Compressed  bool              `json:"compressed"`
}

// Options controls how new records are sealed.
type Options struct {
	Params EncryptionParams
	// Compressed stores the seed without its 64-byte derived form; Load
	// then reruns PBKDF2.
	Compressed bool
}

// DefaultOptions returns the default sealing options.
func DefaultOptions() Options {
	return Options{Params: DefaultParams()}
}

// Keystore manages password-sealed master seeds in a storage.DB.
type Keystore struct {
	mu      sync.Mutex // serializes writes
	db      storage.DB
	records *storage.PrefixDB
	opts    Options
	now     func() time.Time
}

// New creates a keystore over db. The keystore does not close db.
func New(db storage.DB, opts Options) *Keystore {
	return &Keystore{
		db:      db,
		records: storage.NewPrefixDB(db, recordPrefix),
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ValidateName checks that name is 1 to 64 characters of [A-Za-z0-9._-].
func ValidateName(name string) error {
	if name == "" || len(name) > maxNameLen {
		return fmt.Errorf("%w: length must be 1..%d", ErrInvalidName, maxNameLen)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		ok := c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '.' || c == '_' || c == '-'
		if !ok {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidName, name, c)
		}
	}
	return nil
}

func recordKey(name string) []byte {
	return append(append([]byte{}, recordPrefix...), name...)
}

func indexKey(fp types.Fingerprint) []byte {
	return append(append([]byte{}, indexPrefix...), fp.String()...)
}

// Create seals ms under password and stores it as name.
func (ks *Keystore) Create(name string, ms *bip39.MasterSeed, password []byte) (Info, error) {
	if err := ValidateName(name); err != nil {
		return Info{}, err
	}
	if ms == nil {
		return Info{}, errors.New("nil master seed")
	}
	if err := bip39.ValidatePassphrase(ms.Passphrase()); err != nil {
		return Info{}, err
	}

	ks.mu.Lock()
	defer ks.mu.Unlock()

	if ok, err := ks.records.Has([]byte(name)); err != nil {
		return Info{}, fmt.Errorf("check wallet: %w", err)
	} else if ok {
		return Info{}, fmt.Errorf("%w: %q", ErrWalletExists, name)
	}

	fp := ms.Fingerprint()
	if owner, err := ks.db.Get(indexKey(fp)); err == nil {
		return Info{}, fmt.Errorf("%w: %q", ErrDuplicateSeed, owner)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Info{}, fmt.Errorf("check fingerprint: %w", err)
	}

	rec, err := ks.seal(name, ms, password, ks.opts.Compressed)
	if err != nil {
		return Info{}, err
	}
	rec.CreatedAt = ks.now()

	data, err := json.Marshal(rec)
	if err != nil {
		return Info{}, fmt.Errorf("marshal wallet: %w", err)
	}

	batch := storage.NewBatch(ks.db)
	batch.Put(recordKey(name), data)
	batch.Put(indexKey(fp), []byte(name))
	if err := batch.Commit(); err != nil {
		return Info{}, fmt.Errorf("store wallet: %w", err)
	}

	logger := log.WithWallet(name)
	logger.Info().
		Str("fingerprint", fp.Short()).
		Bool("compressed", rec.Compressed).
		Msg("Wallet created")

	return rec.info(name), nil
}

// Generate creates a wallet from fresh random entropy of the given size and
// returns the new master seed so the caller can show its mnemonic once.
func (ks *Keystore) Generate(name string, bits int, passphrase string, password []byte) (*bip39.MasterSeed, Info, error) {
	if err := bip39.ValidatePassphrase(passphrase); err != nil {
		return nil, Info{}, err
	}
	words, err := bip39.CreateRandom(bits)
	if err != nil {
		return nil, Info{}, err
	}
	ms, err := bip39.DeriveSeed(words, passphrase)
	if err != nil {
		return nil, Info{}, err
	}
	info, err := ks.Create(name, ms, password)
	if err != nil {
		return nil, Info{}, err
	}
	return ms, info, nil
}

// Import stores an existing mnemonic. The checksum must be valid.
func (ks *Keystore) Import(name string, words []string, passphrase string, password []byte) (Info, error) {
	if err := bip39.ValidatePassphrase(passphrase); err != nil {
		return Info{}, err
	}
	ms, err := bip39.DeriveSeedChecked(words, passphrase)
	if err != nil {
		return Info{}, err
	}
	return ks.Create(name, ms, password)
}

// Load decrypts the wallet name.
func (ks *Keystore) Load(name string, password []byte) (*bip39.MasterSeed, error) {
	rec, err := ks.read(name)
	if err != nil {
		return nil, err
	}
	return ks.open(name, rec, password)
}

// Export decrypts the wallet name and returns its serialized form.
func (ks *Keystore) Export(name string, password []byte, compressed bool) ([]byte, error) {
	ms, err := ks.Load(name, password)
	if err != nil {
		return nil, err
	}
	return ms.ToBytes(compressed), nil
}

// ChangePassword reseals the wallet name under a new password.
func (ks *Keystore) ChangePassword(name string, oldPassword, newPassword []byte) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	rec, err := ks.read(name)
	if err != nil {
		return err
	}
	ms, err := ks.open(name, rec, oldPassword)
	if err != nil {
		return err
	}

	resealed, err := ks.seal(name, ms, newPassword, rec.Compressed)
	if err != nil {
		return err
	}
	resealed.CreatedAt = rec.CreatedAt

	data, err := json.Marshal(resealed)
	if err != nil {
		return fmt.Errorf("marshal wallet: %w", err)
	}
	if err := ks.records.Put([]byte(name), data); err != nil {
		return fmt.Errorf("store wallet: %w", err)
	}

	logger := log.WithWallet(name)
	logger.Info().Msg("Wallet password changed")
	return nil
}

// Delete removes the wallet name.
func (ks *Keystore) Delete(name string) error {
	ks.mu.Lock()
	defer ks.mu.Unlock()

	rec, err := ks.read(name)
	if err != nil {
		return err
	}

	batch := storage.NewBatch(ks.db)
	batch.Delete(recordKey(name))
	batch.Delete(indexKey(rec.Fingerprint))
	if err := batch.Commit(); err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}

	logger := log.WithWallet(name)
	logger.Info().Str("fingerprint", rec.Fingerprint.Short()).Msg("Wallet deleted")
	return nil
}

// Has reports whether a wallet called name exists.
func (ks *Keystore) Has(name string) (bool, error) {
	if err := ValidateName(name); err != nil {
		return false, err
	}
	return ks.records.Has([]byte(name))
}

// Info returns metadata for the wallet name.
func (ks *Keystore) Info(name string) (Info, error) {
	rec, err := ks.read(name)
	if err != nil {
		return Info{}, err
	}
	return rec.info(name), nil
}

// List returns metadata for every wallet, ordered by name.
func (ks *Keystore) List() ([]Info, error) {
	var out []Info
	err := ks.records.ForEach(nil, func(key, value []byte) error {
		rec, err := decodeRecord(value)
		if err != nil {
			log.Keystore.Warn().Str("wallet", string(key)).Err(err).Msg("Skipping unreadable record")
			return nil
		}
		out = append(out, rec.info(string(key)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	return out, nil
}

func (ks *Keystore) read(name string) (*record, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := ks.records.Get([]byte(name))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrWalletNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read wallet: %w", err)
	}
	return decodeRecord(data)
}

func decodeRecord(data []byte) (*record, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if rec.Version != recordVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptRecord, rec.Version)
	}
	return &rec, nil
}

func (ks *Keystore) seal(name string, ms *bip39.MasterSeed, password []byte, compressed bool) (*record, error) {
	defer log.Benchmark("keystore seal")()

	plain := ms.ToBytes(compressed)
	defer clear(plain)

	sealed, err := Seal(plain, password, []byte(name), ks.opts.Params)
	if err != nil {
		return nil, fmt.Errorf("seal wallet: %w", err)
	}
	return &record{
		Version:     recordVersion,
		Compressed:  compressed,
		Fingerprint: ms.Fingerprint(),
		Sealed:      sealed,
	}, nil
}

func (ks *Keystore) open(name string, rec *record, password []byte) (*bip39.MasterSeed, error) {
	defer log.Benchmark("keystore open")()

	plain, err := Open(rec.Sealed, password, []byte(name))
	if err != nil {
		return nil, fmt.Errorf("open wallet %q: %w", name, err)
	}
	defer clear(plain)

	ms, ok := bip39.FromBytes(plain, rec.Compressed)
	if !ok {
		return nil, fmt.Errorf("%w: %q does not hold a valid seed", ErrCorruptRecord, name)
	}
	if ms.Fingerprint() != rec.Fingerprint {
		return nil, fmt.Errorf("%w: %q fingerprint mismatch", ErrCorruptRecord, name)
	}
	return ms, nil
}

func (r *record) info(name string) Info {
	return Info{
		Name:        name,
		Fingerprint: r.Fingerprint,
		CreatedAt:   r.CreatedAt,
		Compressed:  r.Compressed,
	}
}
