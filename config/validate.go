package config

import (
	"fmt"

	"github.com/Klingon-tech/klingnet-seed/internal/log"
	"github.com/Klingon-tech/klingnet-seed/pkg/bip39"
)

// Validate checks the config for obvious operator mistakes.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("datadir must not be empty")
	}
	if cfg.RPC.Port < 0 || cfg.RPC.Port > 65535 {
		return fmt.Errorf("rpc.port must be in range [0, 65535]")
	}

	switch cfg.Keystore.Backend {
	case BackendBadger, BackendMemory:
	default:
		return fmt.Errorf("keystore.backend must be %q or %q, got %q", BackendBadger, BackendMemory, cfg.Keystore.Backend)
	}
	argon := cfg.Keystore.Argon
	if argon.Memory == 0 || argon.Iterations == 0 || argon.Parallelism == 0 {
		return fmt.Errorf("keystore.argon.memory, iterations and parallelism must be positive")
	}

	if !bip39.ValidEntropyBits(cfg.Mnemonic.Bits) {
		return fmt.Errorf("mnemonic.bits must be one of %v, got %d", bip39.EntropyBits, cfg.Mnemonic.Bits)
	}

	if cfg.Log.Level != "" && !log.ValidLevel(cfg.Log.Level) {
		return fmt.Errorf("log.level %q is not one of trace, debug, info, warn, error", cfg.Log.Level)
	}
	return nil
}
