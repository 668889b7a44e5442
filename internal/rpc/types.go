package rpc

import (
	"time"

	"github.com/Klingon-tech/klingnet-seed/pkg/types"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
)

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
	ID      interface{} `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Mnemonic ────────────────────────────────────────────────────────────

// GenerateParam is used by mnemonic_generate. Bits 0 means the server default.
type GenerateParam struct {
	Bits int `json:"bits,omitempty"`
}

// GenerateResult is returned by mnemonic_generate.
type GenerateResult struct {
	Mnemonic string   `json:"mnemonic"`
	Words    []string `json:"words"`
}

// MnemonicParam is used by endpoints that take a single mnemonic.
type MnemonicParam struct {
	Mnemonic string `json:"mnemonic"`
}

// ValidateResult is returned by mnemonic_validate.
type ValidateResult struct {
	Valid bool `json:"valid"`
}

// EntropyParam is used by mnemonic_fromEntropy.
type EntropyParam struct {
	Entropy string `json:"entropy"` // hex
}

// MnemonicResult is returned by mnemonic_fromEntropy.
type MnemonicResult struct {
	Mnemonic string `json:"mnemonic"`
}

// EntropyResult is returned by mnemonic_toEntropy.
type EntropyResult struct {
	Entropy string `json:"entropy"` // hex
}

// ── Seed ────────────────────────────────────────────────────────────────

// ToSeedParam is used by mnemonic_toSeed. Check enforces the checksum.
type ToSeedParam struct {
	Mnemonic   string `json:"mnemonic"`
	Passphrase string `json:"passphrase,omitempty"`
	Check      bool   `json:"check,omitempty"`
}

// SeedResult is returned by mnemonic_toSeed.
type SeedResult struct {
	Seed        string            `json:"seed"` // hex
	Fingerprint types.Fingerprint `json:"fingerprint"`
}

// SeedExportParam is used by seed_export.
type SeedExportParam struct {
	Mnemonic   string `json:"mnemonic"`
	Passphrase string `json:"passphrase,omitempty"`
	Compressed bool   `json:"compressed,omitempty"`
}

// DataResult carries a hex-encoded serialized master seed.
type DataResult struct {
	Data string `json:"data"`
}

// SeedImportParam is used by seed_import.
type SeedImportParam struct {
	Data       string `json:"data"` // hex
	Compressed bool   `json:"compressed,omitempty"`
}

// SeedImportResult is returned by seed_import.
type SeedImportResult struct {
	Mnemonic    string            `json:"mnemonic"`
	Entropy     string            `json:"entropy"`
	Passphrase  string            `json:"passphrase"`
	Seed        string            `json:"seed"`
	Fingerprint types.Fingerprint `json:"fingerprint"`
}

// ── Keystore ────────────────────────────────────────────────────────────

// KeystoreCreateParam is used by keystore_create.
type KeystoreCreateParam struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	Bits       int    `json:"bits,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
}

// KeystoreCreateResult is returned by keystore_create. The mnemonic is only
// ever returned here.
type KeystoreCreateResult struct {
	Name        string            `json:"name"`
	Mnemonic    string            `json:"mnemonic"`
	Fingerprint types.Fingerprint `json:"fingerprint"`
}

// KeystoreImportParam is used by keystore_import.
type KeystoreImportParam struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	Mnemonic   string `json:"mnemonic"`
	Passphrase string `json:"passphrase,omitempty"`
}

// KeystoreImportResult is returned by keystore_import.
type KeystoreImportResult struct {
	Name        string            `json:"name"`
	Fingerprint types.Fingerprint `json:"fingerprint"`
}

// WalletEntry is one element of the keystore_list result.
type WalletEntry struct {
	Name        string            `json:"name"`
	Fingerprint types.Fingerprint `json:"fingerprint"`
	CreatedAt   time.Time         `json:"created_at"`
	Compressed  bool              `json:"compressed"`
}

// KeystoreExportParam is used by keystore_export.
type KeystoreExportParam struct {
	Name       string `json:"name"`
	Password   string `json:"password"`
	Compressed bool   `json:"compressed,omitempty"`
}

// KeystorePasswordParam is used by keystore_changePassword.
type KeystorePasswordParam struct {
	Name        string `json:"name"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// ChangedResult is returned by keystore_changePassword.
type ChangedResult struct {
	Changed bool `json:"changed"`
}

// KeystoreNameParam is used by keystore_delete.
type KeystoreNameParam struct {
	Name string `json:"name"`
}

// DeleteResult is returned by keystore_delete.
type DeleteResult struct {
	Deleted bool `json:"deleted"`
}
