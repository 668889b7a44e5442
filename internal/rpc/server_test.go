package rpc

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-seed/config"
	"github.com/Klingon-tech/klingnet-seed/internal/keystore"
	klog "github.com/Klingon-tech/klingnet-seed/internal/log"
	"github.com/Klingon-tech/klingnet-seed/internal/storage"
	"github.com/Klingon-tech/klingnet-seed/pkg/bip39"
)

const (
	zeroMnemonic   = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	trezorSeedZero = "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"
)

// testEnv holds a server wired to an in-memory keystore.
type testEnv struct {
	server *Server
	http   *httptest.Server
	url    string
}

func setupTestEnv(t *testing.T, rpcCfg config.RPCConfig) *testEnv {
	t.Helper()
	klog.Discard()

	ks := keystore.New(storage.NewMemory(), keystore.Options{
		Params: keystore.EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1},
	})

	s := New("127.0.0.1:0", rpcCfg)
	s.SetKeystore(ks)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{server: s, http: ts, url: ts.URL}
}

// rpcCall sends a JSON-RPC request and decodes the response.
func rpcCall(t *testing.T, url, method string, params interface{}) *Response {
	t.Helper()
	body, err := json.Marshal(Request{JSONRPC: "2.0", Method: method, Params: params, ID: 1})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return &out
}

// resultAs re-decodes a generic result into target.
func resultAs(t *testing.T, resp *Response, target interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected RPC error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	data, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("decode result: %v", err)
	}
}

func expectError(t *testing.T, resp *Response, code int) {
	t.Helper()
	if resp.Error == nil {
		t.Fatalf("expected error %d, got result %v", code, resp.Result)
	}
	if resp.Error.Code != code {
		t.Fatalf("error code = %d (%s), want %d", resp.Error.Code, resp.Error.Message, code)
	}
}

func TestMnemonicGenerate(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{})

	var res GenerateResult
	resultAs(t, rpcCall(t, env.url, "mnemonic_generate", nil), &res)
	if len(res.Words) != 12 || !bip39.IsValidMnemonic(res.Mnemonic) {
		t.Errorf("default generate = %q", res.Mnemonic)
	}

	resultAs(t, rpcCall(t, env.url, "mnemonic_generate", GenerateParam{Bits: 256}), &res)
	if len(res.Words) != 24 {
		t.Errorf("256-bit generate = %d words", len(res.Words))
	}

	env.server.SetDefaultBits(160)
	resultAs(t, rpcCall(t, env.url, "mnemonic_generate", map[string]int{}), &res)
	if len(res.Words) != 15 {
		t.Errorf("default 160-bit generate = %d words", len(res.Words))
	}

	expectError(t, rpcCall(t, env.url, "mnemonic_generate", GenerateParam{Bits: 100}), CodeInvalidParams)
}

func TestMnemonicValidate(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{})
	tests := []struct {
		mnemonic string
		valid    bool
	}{
		{zeroMnemonic, true},
		{strings.Repeat("abandon ", 12), false},
		{"", false},
		{"not a mnemonic", false},
	}
	for _, tt := range tests {
		var res ValidateResult
		resultAs(t, rpcCall(t, env.url, "mnemonic_validate", MnemonicParam{Mnemonic: tt.mnemonic}), &res)
		if res.Valid != tt.valid {
			t.Errorf("validate(%q) = %v, want %v", tt.mnemonic, res.Valid, tt.valid)
		}
	}
}

func TestMnemonicEntropyRoundTrip(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{})

	var m MnemonicResult
	resultAs(t, rpcCall(t, env.url, "mnemonic_fromEntropy", EntropyParam{Entropy: strings.Repeat("00", 16)}), &m)
	if m.Mnemonic != zeroMnemonic {
		t.Fatalf("fromEntropy = %q", m.Mnemonic)
	}

	var e EntropyResult
	resultAs(t, rpcCall(t, env.url, "mnemonic_toEntropy", MnemonicParam{Mnemonic: m.Mnemonic}), &e)
	if e.Entropy != strings.Repeat("00", 16) {
		t.Errorf("toEntropy = %s", e.Entropy)
	}

	expectError(t, rpcCall(t, env.url, "mnemonic_fromEntropy", EntropyParam{Entropy: "zz"}), CodeInvalidParams)
	expectError(t, rpcCall(t, env.url, "mnemonic_fromEntropy", EntropyParam{Entropy: "00"}), CodeInvalidParams)
	expectError(t, rpcCall(t, env.url, "mnemonic_toEntropy", MnemonicParam{Mnemonic: "abandon"}), CodeInvalidParams)
}

func TestMnemonicToSeed(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{})

	var res SeedResult
	resultAs(t, rpcCall(t, env.url, "mnemonic_toSeed", ToSeedParam{Mnemonic: zeroMnemonic, Passphrase: "TREZOR"}), &res)
	if res.Seed != trezorSeedZero {
		t.Errorf("seed = %s", res.Seed)
	}
	if res.Fingerprint.IsZero() {
		t.Error("fingerprint missing")
	}

	bad := strings.TrimSpace(strings.Repeat("abandon ", 12))
	resultAs(t, rpcCall(t, env.url, "mnemonic_toSeed", ToSeedParam{Mnemonic: bad}), &res)
	expectError(t, rpcCall(t, env.url, "mnemonic_toSeed", ToSeedParam{Mnemonic: bad, Check: true}), CodeInvalidParams)
	expectError(t, rpcCall(t, env.url, "mnemonic_toSeed", nil), CodeInvalidParams)
}

func TestSeedExportImport(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{})

	for _, compressed := range []bool{false, true} {
		var d DataResult
		resultAs(t, rpcCall(t, env.url, "seed_export", SeedExportParam{
			Mnemonic: zeroMnemonic, Passphrase: "TREZOR", Compressed: compressed,
		}), &d)

		var imp SeedImportResult
		resultAs(t, rpcCall(t, env.url, "seed_import", SeedImportParam{Data: d.Data, Compressed: compressed}), &imp)
		if imp.Mnemonic != zeroMnemonic || imp.Passphrase != "TREZOR" || imp.Seed != trezorSeedZero {
			t.Errorf("compressed=%v: import = %+v", compressed, imp)
		}
		if imp.Entropy != strings.Repeat("00", 16) {
			t.Errorf("entropy = %s", imp.Entropy)
		}
	}

	expectError(t, rpcCall(t, env.url, "seed_import", SeedImportParam{Data: "00"}), CodeInvalidParams)
	expectError(t, rpcCall(t, env.url, "seed_import", SeedImportParam{Data: "xyz"}), CodeInvalidParams)
	expectError(t, rpcCall(t, env.url, "seed_export", SeedExportParam{Mnemonic: strings.Repeat("abandon ", 12)}), CodeInvalidParams)
	expectError(t, rpcCall(t, env.url, "seed_export", SeedExportParam{
		Mnemonic: zeroMnemonic, Passphrase: strings.Repeat("p", 201),
	}), CodeInvalidParams)
}

func TestKeystoreLifecycle(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{})

	var created KeystoreCreateResult
	resultAs(t, rpcCall(t, env.url, "keystore_create", KeystoreCreateParam{Name: "main", Password: "pw", Bits: 192}), &created)
	if len(bip39.ParseMnemonic(created.Mnemonic)) != 18 || created.Fingerprint.IsZero() {
		t.Fatalf("create = %+v", created)
	}

	var imported KeystoreImportResult
	resultAs(t, rpcCall(t, env.url, "keystore_import", KeystoreImportParam{
		Name: "trezor", Password: "pw", Mnemonic: zeroMnemonic, Passphrase: "TREZOR",
	}), &imported)

	var list []WalletEntry
	resultAs(t, rpcCall(t, env.url, "keystore_list", nil), &list)
	if len(list) != 2 || list[0].Name != "main" || list[1].Name != "trezor" {
		t.Fatalf("list = %+v", list)
	}
	if list[1].Fingerprint != imported.Fingerprint {
		t.Error("list fingerprint differs from import result")
	}

	var d DataResult
	resultAs(t, rpcCall(t, env.url, "keystore_export", KeystoreExportParam{Name: "trezor", Password: "pw"}), &d)
	raw, _ := hex.DecodeString(d.Data)
	ms, ok := bip39.FromBytes(raw, false)
	if !ok {
		t.Fatal("exported data does not parse")
	}
	seed := ms.Seed()
	if hex.EncodeToString(seed[:]) != trezorSeedZero {
		t.Error("exported seed differs")
	}

	var changed ChangedResult
	resultAs(t, rpcCall(t, env.url, "keystore_changePassword", KeystorePasswordParam{
		Name: "trezor", OldPassword: "pw", NewPassword: "pw2",
	}), &changed)
	expectError(t, rpcCall(t, env.url, "keystore_export", KeystoreExportParam{Name: "trezor", Password: "pw"}), CodeInvalidParams)

	var del DeleteResult
	resultAs(t, rpcCall(t, env.url, "keystore_delete", KeystoreNameParam{Name: "trezor"}), &del)
	if !del.Deleted {
		t.Error("delete = false")
	}
	expectError(t, rpcCall(t, env.url, "keystore_delete", KeystoreNameParam{Name: "trezor"}), CodeNotFound)
}

func TestKeystoreErrors(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{})
	rpcCall(t, env.url, "keystore_import", KeystoreImportParam{Name: "a", Password: "pw", Mnemonic: zeroMnemonic})

	tests := []struct {
		name   string
		method string
		params interface{}
		code   int
	}{
		{"duplicate name", "keystore_create", KeystoreCreateParam{Name: "a", Password: "pw"}, CodeInvalidParams},
		{"duplicate seed", "keystore_import", KeystoreImportParam{Name: "b", Password: "pw", Mnemonic: zeroMnemonic}, CodeInvalidParams},
		{"bad name", "keystore_create", KeystoreCreateParam{Name: "a/b", Password: "pw"}, CodeInvalidParams},
		{"no password", "keystore_create", KeystoreCreateParam{Name: "c"}, CodeInvalidParams},
		{"bad checksum", "keystore_import", KeystoreImportParam{Name: "d", Password: "pw", Mnemonic: strings.Repeat("abandon ", 12)}, CodeInvalidParams},
		{"long passphrase import", "keystore_import", KeystoreImportParam{Name: "e", Password: "pw", Mnemonic: zeroMnemonic, Passphrase: strings.Repeat("p", 201)}, CodeInvalidParams},
		{"long passphrase create", "keystore_create", KeystoreCreateParam{Name: "f", Password: "pw", Passphrase: strings.Repeat("p", 201)}, CodeInvalidParams},
		{"wrong password", "keystore_export", KeystoreExportParam{Name: "a", Password: "nope"}, CodeInvalidParams},
		{"missing wallet", "keystore_export", KeystoreExportParam{Name: "zz", Password: "pw"}, CodeNotFound},
		{"no params", "keystore_delete", nil, CodeInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, rpcCall(t, env.url, tt.method, tt.params), tt.code)
		})
	}
}

func TestKeystoreDisabled(t *testing.T) {
	klog.Discard()
	s := New("127.0.0.1:0", config.RPCConfig{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	expectError(t, rpcCall(t, ts.URL, "keystore_list", nil), CodeNotFound)
}

func TestProtocolErrors(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{})

	expectError(t, rpcCall(t, env.url, "mnemonic_unknown", nil), CodeMethodNotFound)

	post := func(body string) *Response {
		resp, err := http.Post(env.url, "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		var out Response
		json.NewDecoder(resp.Body).Decode(&out)
		return &out
	}
	expectError(t, post("{not json"), CodeParseError)
	expectError(t, post(`{"jsonrpc":"1.0","method":"mnemonic_generate","id":1}`), CodeInvalidRequest)
	expectError(t, post(`{"jsonrpc":"2.0","method":"mnemonic_validate","params":{"mnemonic":5},"id":1}`), CodeInvalidParams)
	expectError(t, post(strings.Repeat(" ", maxBodySize+1)), CodeInvalidRequest)

	resp, err := http.Get(env.url)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out Response
	json.NewDecoder(resp.Body).Decode(&out)
	expectError(t, &out, CodeInvalidRequest)
}

func TestIPFiltering(t *testing.T) {
	denied := setupTestEnv(t, config.RPCConfig{AllowedIPs: []string{"10.0.0.0/8"}})
	resp, err := http.Post(denied.url, "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want 403", resp.StatusCode)
	}

	allowed := setupTestEnv(t, config.RPCConfig{AllowedIPs: []string{"127.0.0.1"}})
	var res ValidateResult
	resultAs(t, rpcCall(t, allowed.url, "mnemonic_validate", MnemonicParam{Mnemonic: zeroMnemonic}), &res)
	if !res.Valid {
		t.Error("allowed IP should reach the handler")
	}
}

func TestParseAllowedIPs(t *testing.T) {
	nets := parseAllowedIPs([]string{"127.0.0.1", "10.0.0.0/8", "::1", "garbage"})
	if len(nets) != 3 {
		t.Fatalf("parsed %d nets, want 3", len(nets))
	}
}

func TestCORS(t *testing.T) {
	env := setupTestEnv(t, config.RPCConfig{CORSOrigins: []string{"http://localhost:3000"}})

	req, _ := http.NewRequest(http.MethodOptions, env.url, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("preflight status = %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req, _ = http.NewRequest(http.MethodOptions, env.url, nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.Header.Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin should not get CORS headers")
	}
}

func TestStartStop(t *testing.T) {
	klog.Discard()
	s := New("127.0.0.1:0", config.RPCConfig{})
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	url := "http://" + s.Addr()
	var res ValidateResult
	resultAs(t, rpcCall(t, url, "mnemonic_validate", MnemonicParam{Mnemonic: zeroMnemonic}), &res)
	if err := s.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
}
