// Package rpcclient provides a JSON-RPC 2.0 client for seedd.
package rpcclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/Klingon-tech/klingnet-seed/internal/rpc"
)

// DefaultTimeout bounds every request. Keystore calls run Argon2 on the
// server, so this is longer than a plain query needs.
const DefaultTimeout = 30 * time.Second

// Client is a JSON-RPC 2.0 HTTP client.
type Client struct {
	endpoint string
	http     *http.Client
	nextID   atomic.Uint64
}

// New creates a new RPC client targeting the given endpoint URL.
func New(endpoint string) *Client {
	return NewWithTimeout(endpoint, DefaultTimeout)
}

// NewWithTimeout creates a new RPC client with a custom HTTP timeout.
func NewWithTimeout(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// request is a JSON-RPC 2.0 request.
type request struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
	ID      uint64      `json:"id"`
}

// response is a JSON-RPC 2.0 response.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      uint64          `json:"id"`
}

// rpcError is a JSON-RPC 2.0 error.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPCError is returned when the server responds with an error.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// HTTPError is returned when the server answers with a non-200 status
// and no JSON-RPC body, e.g. 403 from the IP filter.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.StatusCode, e.Body)
}

// Call invokes a JSON-RPC method and unmarshals the result into the provided pointer.
// If result is nil, the response result is discarded.
func (c *Client) Call(method string, params, result interface{}) error {
	return c.CallContext(context.Background(), method, params, result)
}

// CallContext is Call with a caller-supplied context.
func (c *Client) CallContext(ctx context.Context, method string, params, result interface{}) error {
	req := request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var rpcResp response
	if err := json.Unmarshal(data, &rpcResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return &HTTPError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(data))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if rpcResp.Error != nil {
		return &RPCError{
			Code:    rpcResp.Error.Code,
			Message: rpcResp.Error.Message,
		}
	}

	if result != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("decode result: %w", err)
		}
	}

	return nil
}

// GenerateMnemonic calls mnemonic_generate. bits 0 uses the server default.
func (c *Client) GenerateMnemonic(ctx context.Context, bits int) (*rpc.GenerateResult, error) {
	var res rpc.GenerateResult
	if err := c.CallContext(ctx, "mnemonic_generate", rpc.GenerateParam{Bits: bits}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ValidateMnemonic calls mnemonic_validate.
func (c *Client) ValidateMnemonic(ctx context.Context, mnemonic string) (bool, error) {
	var res rpc.ValidateResult
	if err := c.CallContext(ctx, "mnemonic_validate", rpc.MnemonicParam{Mnemonic: mnemonic}, &res); err != nil {
		return false, err
	}
	return res.Valid, nil
}

// MnemonicFromEntropy calls mnemonic_fromEntropy with hex entropy.
func (c *Client) MnemonicFromEntropy(ctx context.Context, entropyHex string) (string, error) {
	var res rpc.MnemonicResult
	if err := c.CallContext(ctx, "mnemonic_fromEntropy", rpc.EntropyParam{Entropy: entropyHex}, &res); err != nil {
		return "", err
	}
	return res.Mnemonic, nil
}

// MnemonicToEntropy calls mnemonic_toEntropy and returns hex entropy.
func (c *Client) MnemonicToEntropy(ctx context.Context, mnemonic string) (string, error) {
	var res rpc.EntropyResult
	if err := c.CallContext(ctx, "mnemonic_toEntropy", rpc.MnemonicParam{Mnemonic: mnemonic}, &res); err != nil {
		return "", err
	}
	return res.Entropy, nil
}

// MnemonicToSeed calls mnemonic_toSeed.
func (c *Client) MnemonicToSeed(ctx context.Context, p rpc.ToSeedParam) (*rpc.SeedResult, error) {
	var res rpc.SeedResult
	if err := c.CallContext(ctx, "mnemonic_toSeed", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ExportSeed calls seed_export and returns the hex serialization.
func (c *Client) ExportSeed(ctx context.Context, p rpc.SeedExportParam) (string, error) {
	var res rpc.DataResult
	if err := c.CallContext(ctx, "seed_export", p, &res); err != nil {
		return "", err
	}
	return res.Data, nil
}

// ImportSeed calls seed_import.
func (c *Client) ImportSeed(ctx context.Context, dataHex string, compressed bool) (*rpc.SeedImportResult, error) {
	var res rpc.SeedImportResult
	if err := c.CallContext(ctx, "seed_import", rpc.SeedImportParam{Data: dataHex, Compressed: compressed}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CreateWallet calls keystore_create. The returned mnemonic is shown once.
func (c *Client) CreateWallet(ctx context.Context, p rpc.KeystoreCreateParam) (*rpc.KeystoreCreateResult, error) {
	var res rpc.KeystoreCreateResult
	if err := c.CallContext(ctx, "keystore_create", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ImportWallet calls keystore_import.
func (c *Client) ImportWallet(ctx context.Context, p rpc.KeystoreImportParam) (*rpc.KeystoreImportResult, error) {
	var res rpc.KeystoreImportResult
	if err := c.CallContext(ctx, "keystore_import", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListWallets calls keystore_list.
func (c *Client) ListWallets(ctx context.Context) ([]rpc.WalletEntry, error) {
	var res []rpc.WalletEntry
	if err := c.CallContext(ctx, "keystore_list", nil, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ExportWallet calls keystore_export and returns the hex serialization.
func (c *Client) ExportWallet(ctx context.Context, p rpc.KeystoreExportParam) (string, error) {
	var res rpc.DataResult
	if err := c.CallContext(ctx, "keystore_export", p, &res); err != nil {
		return "", err
	}
	return res.Data, nil
}

// ChangeWalletPassword calls keystore_changePassword.
func (c *Client) ChangeWalletPassword(ctx context.Context, p rpc.KeystorePasswordParam) error {
	return c.CallContext(ctx, "keystore_changePassword", p, nil)
}

// DeleteWallet calls keystore_delete.
func (c *Client) DeleteWallet(ctx context.Context, name string) error {
	return c.CallContext(ctx, "keystore_delete", rpc.KeystoreNameParam{Name: name}, nil)
}
