package node

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Klingon-tech/klingnet-seed/config"
	"github.com/Klingon-tech/klingnet-seed/internal/keystore"
	"github.com/Klingon-tech/klingnet-seed/internal/storage"
)

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// openStore opens the storage backend named by the keystore config.
func openStore(cfg *config.Config) (storage.DB, error) {
	switch cfg.Keystore.Backend {
	case config.BackendMemory:
		return storage.NewMemory(), nil
	case config.BackendBadger, "":
		dir := expandHome(cfg.KeystoreDir())
		db, err := storage.NewBadger(dir)
		if err != nil {
			return nil, fmt.Errorf("open keystore at %s: %w", dir, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported keystore backend: %s", cfg.Keystore.Backend)
	}
}

// keystoreOptions maps the keystore config onto sealing options.
func keystoreOptions(cfg *config.Config) keystore.Options {
	return keystore.Options{
		Params: keystore.EncryptionParams{
			Memory:      cfg.Keystore.Argon.Memory,
			Iterations:  cfg.Keystore.Argon.Iterations,
			Parallelism: cfg.Keystore.Argon.Parallelism,
		},
		Compressed: cfg.Keystore.Compressed,
	}
}
