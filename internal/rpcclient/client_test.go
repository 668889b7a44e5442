package rpcclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Klingon-tech/klingnet-seed/config"
	"github.com/Klingon-tech/klingnet-seed/internal/keystore"
	klog "github.com/Klingon-tech/klingnet-seed/internal/log"
	"github.com/Klingon-tech/klingnet-seed/internal/rpc"
	"github.com/Klingon-tech/klingnet-seed/internal/storage"
	"github.com/Klingon-tech/klingnet-seed/pkg/bip39"
)

const zeroMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func setupTestClient(t *testing.T, rpcCfg config.RPCConfig) *Client {
	t.Helper()
	klog.Discard()

	ks := keystore.New(storage.NewMemory(), keystore.Options{
		Params: keystore.EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1},
	})
	s := rpc.New("127.0.0.1:0", rpcCfg)
	s.SetKeystore(ks)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return New(ts.URL)
}

func TestClient_Mnemonic(t *testing.T) {
	c := setupTestClient(t, config.RPCConfig{})
	ctx := context.Background()

	gen, err := c.GenerateMnemonic(ctx, 256)
	if err != nil {
		t.Fatalf("GenerateMnemonic() error: %v", err)
	}
	if len(gen.Words) != 24 {
		t.Errorf("got %d words, want 24", len(gen.Words))
	}

	ok, err := c.ValidateMnemonic(ctx, gen.Mnemonic)
	if err != nil || !ok {
		t.Errorf("ValidateMnemonic() = %v, %v", ok, err)
	}

	m, err := c.MnemonicFromEntropy(ctx, strings.Repeat("00", 16))
	if err != nil || m != zeroMnemonic {
		t.Fatalf("MnemonicFromEntropy() = %q, %v", m, err)
	}
	e, err := c.MnemonicToEntropy(ctx, m)
	if err != nil || e != strings.Repeat("00", 16) {
		t.Errorf("MnemonicToEntropy() = %q, %v", e, err)
	}
}

func TestClient_SeedRoundTrip(t *testing.T) {
	c := setupTestClient(t, config.RPCConfig{})
	ctx := context.Background()

	seed, err := c.MnemonicToSeed(ctx, rpc.ToSeedParam{Mnemonic: zeroMnemonic, Passphrase: "TREZOR", Check: true})
	if err != nil {
		t.Fatalf("MnemonicToSeed() error: %v", err)
	}

	data, err := c.ExportSeed(ctx, rpc.SeedExportParam{Mnemonic: zeroMnemonic, Passphrase: "TREZOR", Compressed: true})
	if err != nil {
		t.Fatalf("ExportSeed() error: %v", err)
	}
	imp, err := c.ImportSeed(ctx, data, true)
	if err != nil {
		t.Fatalf("ImportSeed() error: %v", err)
	}
	if imp.Seed != seed.Seed || imp.Fingerprint != seed.Fingerprint {
		t.Error("imported seed differs from derived seed")
	}
}

func TestClient_Keystore(t *testing.T) {
	c := setupTestClient(t, config.RPCConfig{})
	ctx := context.Background()

	created, err := c.CreateWallet(ctx, rpc.KeystoreCreateParam{Name: "hot", Password: "pw"})
	if err != nil {
		t.Fatalf("CreateWallet() error: %v", err)
	}
	if !bip39.IsValidMnemonic(created.Mnemonic) {
		t.Errorf("created mnemonic is invalid: %q", created.Mnemonic)
	}

	if _, err := c.ImportWallet(ctx, rpc.KeystoreImportParam{Name: "cold", Password: "pw", Mnemonic: zeroMnemonic}); err != nil {
		t.Fatalf("ImportWallet() error: %v", err)
	}

	wallets, err := c.ListWallets(ctx)
	if err != nil {
		t.Fatalf("ListWallets() error: %v", err)
	}
	if len(wallets) != 2 || wallets[0].Name != "cold" || wallets[1].Name != "hot" {
		t.Fatalf("ListWallets() = %+v", wallets)
	}

	if err := c.ChangeWalletPassword(ctx, rpc.KeystorePasswordParam{Name: "hot", OldPassword: "pw", NewPassword: "new"}); err != nil {
		t.Fatalf("ChangeWalletPassword() error: %v", err)
	}
	if _, err := c.ExportWallet(ctx, rpc.KeystoreExportParam{Name: "hot", Password: "new"}); err != nil {
		t.Errorf("ExportWallet() with new password: %v", err)
	}

	if err := c.DeleteWallet(ctx, "hot"); err != nil {
		t.Fatalf("DeleteWallet() error: %v", err)
	}
	err = c.DeleteWallet(ctx, "hot")
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) || rpcErr.Code != rpc.CodeNotFound {
		t.Errorf("second DeleteWallet() error = %v, want not found", err)
	}
}

func TestClient_RPCError(t *testing.T) {
	c := setupTestClient(t, config.RPCConfig{})

	err := c.Call("nope_method", nil, nil)
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected *RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != rpc.CodeMethodNotFound {
		t.Errorf("code = %d, want %d", rpcErr.Code, rpc.CodeMethodNotFound)
	}
}

func TestClient_Forbidden(t *testing.T) {
	c := setupTestClient(t, config.RPCConfig{AllowedIPs: []string{"10.1.2.3"}})

	_, err := c.ValidateMnemonic(context.Background(), zeroMnemonic)
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusForbidden {
		t.Errorf("error = %v, want HTTP 403", err)
	}
}

func TestClient_ContextCancel(t *testing.T) {
	block := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer ts.Close()
	defer close(block)

	c := New(ts.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := c.CallContext(ctx, "mnemonic_generate", nil, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestClient_IncrementsIDs(t *testing.T) {
	c := New("http://unused")
	a := c.nextID.Add(1)
	b := c.nextID.Add(1)
	if b != a+1 {
		t.Errorf("ids %d, %d not sequential", a, b)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	c := NewWithTimeout("http://127.0.0.1:1", time.Second)
	if err := c.Call("mnemonic_generate", nil, nil); err == nil {
		t.Error("expected connection error")
	}
}
