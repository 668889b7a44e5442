package config

// DefaultRPCPort is the default JSON-RPC listen port.
const DefaultRPCPort = 8555

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		DataDir: DefaultDataDir(),
		RPC: RPCConfig{
			Enabled:    true,
			Addr:       "127.0.0.1",
			Port:       DefaultRPCPort,
			AllowedIPs: []string{"127.0.0.1"},
		},
		Keystore: KeystoreConfig{
			Backend: BackendBadger,
			Argon: ArgonConfig{
				Memory:      64 * 1024, // 64 MB
				Iterations:  3,
				Parallelism: 4,
			},
		},
		Mnemonic: MnemonicConfig{
			Bits: 128,
		},
		Log: LogConfig{
			Level: "info",
			JSON:  false,
		},
	}
}
