// Package config handles daemon and CLI configuration.
//
// Values are resolved as defaults, then the seed.conf file in the data
// directory, then command-line flags.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Keystore backends.
const (
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config holds runtime configuration.
type Config struct {
	// Core
	DataDir string `conf:"datadir"`

	// RPC server
	RPC RPCConfig

	// Keystore
	Keystore KeystoreConfig

	// Mnemonic generation
	Mnemonic MnemonicConfig

	// Logging
	Log LogConfig
}

// RPCConfig holds RPC server settings.
type RPCConfig struct {
	Enabled     bool     `conf:"rpc.enabled"`
	Addr        string   `conf:"rpc.addr"`
	Port        int      `conf:"rpc.port"`
	AllowedIPs  []string `conf:"rpc.allowed"`
	CORSOrigins []string `conf:"rpc.cors"` // Allowed CORS origins ("*" = all).
}

// KeystoreConfig holds keystore settings.
type KeystoreConfig struct {
	Backend    string `conf:"keystore.backend"`    // badger or memory
	Compressed bool   `conf:"keystore.compressed"` // store seeds without the derived 64 bytes
	Argon      ArgonConfig
}

// ArgonConfig holds the Argon2id cost used to seal new wallets.
type ArgonConfig struct {
	Memory      uint32 `conf:"keystore.argon.memory"` // in KiB
	Iterations  uint32 `conf:"keystore.argon.iterations"`
	Parallelism uint8  `conf:"keystore.argon.parallelism"`
}

// MnemonicConfig holds mnemonic generation settings.
type MnemonicConfig struct {
	Bits int `conf:"mnemonic.bits"` // entropy size for generated mnemonics
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `conf:"log.level"`
	File  string `conf:"log.file"`
	JSON  bool   `conf:"log.json"`
}

// DefaultDataDir returns the platform-specific default data directory.
//
//	Linux:   ~/.klingnet-seed
//	macOS:   ~/Library/Application Support/KlingnetSeed
//	Windows: %APPDATA%\KlingnetSeed
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".klingnet-seed"
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "KlingnetSeed")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			return filepath.Join(appData, "KlingnetSeed")
		}
		return filepath.Join(home, "AppData", "Roaming", "KlingnetSeed")
	default:
		return filepath.Join(home, ".klingnet-seed")
	}
}

// KeystoreDir returns the Badger keystore directory.
func (c *Config) KeystoreDir() string {
	return filepath.Join(c.DataDir, "keystore")
}

// LogsDir returns the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// ConfigFile returns the config file path.
func (c *Config) ConfigFile() string {
	return filepath.Join(c.DataDir, "seed.conf")
}
