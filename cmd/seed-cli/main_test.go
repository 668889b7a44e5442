package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Klingon-tech/klingnet-seed/config"
	"github.com/Klingon-tech/klingnet-seed/internal/keystore"
	klog "github.com/Klingon-tech/klingnet-seed/internal/log"
	"github.com/Klingon-tech/klingnet-seed/internal/rpc"
	"github.com/Klingon-tech/klingnet-seed/internal/storage"
)

const (
	zeroMnemonic   = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	trezorSeedZero = "c55257c360c07c72029aebc1b53c05ed0362ada38ead3e3e9efa3708e53495531f09a6987599d18264c1e1c92f2cf141630c7a3c4ab7c81b2f001698e7463b04"
)

// stubPasswords replaces the terminal prompt with a fixed answer queue.
func stubPasswords(t *testing.T, answers ...string) {
	t.Helper()
	orig := readPassword
	t.Cleanup(func() { readPassword = orig })
	readPassword = func(prompt string) ([]byte, error) {
		if len(answers) == 0 {
			t.Fatalf("unexpected prompt %q", prompt)
		}
		a := answers[0]
		answers = answers[1:]
		return []byte(a), nil
	}
}

// testDataDir returns a data dir whose seed.conf uses cheap Argon2 settings.
func testDataDir(t *testing.T) string {
	t.Helper()
	klog.Discard()
	dir := t.TempDir()
	conf := "keystore.argon.memory = 64\nkeystore.argon.iterations = 1\nkeystore.argon.parallelism = 1\n"
	if err := os.WriteFile(filepath.Join(dir, "seed.conf"), []byte(conf), 0600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("seed-cli %s: %v", strings.Join(args, " "), err)
	}
	return out
}

// field returns the value printed after "label:" in command output.
func field(t *testing.T, out, label string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, label+":"); ok {
			return strings.TrimSpace(v)
		}
	}
	t.Fatalf("no %q in output:\n%s", label, out)
	return ""
}

func TestRun_Usage(t *testing.T) {
	if _, err := runCLI(t); !errors.Is(err, errUsage) {
		t.Errorf("no args: error = %v, want usage", err)
	}
	out := mustRun(t, "help")
	if !strings.Contains(out, "Usage: seed-cli") {
		t.Errorf("help output = %q", out)
	}
	dir := testDataDir(t)
	if _, err := runCLI(t, "--datadir", dir, "bogus"); err == nil {
		t.Error("unknown command should fail")
	}
	if _, err := runCLI(t, "--datadir", dir, "words"); !errors.Is(err, errUsage) {
		t.Errorf("words without --entropy: error = %v", err)
	}
}

func TestCodecCommands(t *testing.T) {
	dir := testDataDir(t)

	got := mustRun(t, "--datadir", dir, "words", "--entropy", strings.Repeat("00", 16))
	if strings.TrimSpace(got) != zeroMnemonic {
		t.Errorf("words = %q", got)
	}

	words := strings.Fields(zeroMnemonic)
	got = mustRun(t, append([]string{"--datadir=" + dir, "entropy"}, words...)...)
	if strings.TrimSpace(got) != strings.Repeat("00", 16) {
		t.Errorf("entropy = %q", got)
	}

	got = mustRun(t, append([]string{"--datadir", dir, "validate"}, words...)...)
	if strings.TrimSpace(got) != "valid" {
		t.Errorf("validate = %q", got)
	}
	bad := strings.Fields(strings.Repeat("abandon ", 12))
	got, err := runCLI(t, append([]string{"--datadir", dir, "validate"}, bad...)...)
	if err == nil || strings.TrimSpace(got) != "invalid" {
		t.Errorf("validate bad checksum = %q, %v", got, err)
	}

	got = mustRun(t, append([]string{"--datadir", dir, "seed", "--passphrase", "TREZOR"}, words...)...)
	if field(t, got, "Seed") != trezorSeedZero {
		t.Errorf("seed output:\n%s", got)
	}

	got = mustRun(t, "--datadir", dir, "generate", "--bits", "224")
	if n := len(strings.Fields(got)); n != 21 {
		t.Errorf("generate --bits 224 produced %d words", n)
	}
}

func TestSeed_PromptsForMnemonic(t *testing.T) {
	dir := testDataDir(t)
	stubPasswords(t, zeroMnemonic, "TREZOR")

	got := mustRun(t, "--datadir", dir, "seed", "--check", "--ask-passphrase")
	if field(t, got, "Seed") != trezorSeedZero {
		t.Errorf("seed output:\n%s", got)
	}
}

func TestExportImport(t *testing.T) {
	dir := testDataDir(t)
	words := strings.Fields(zeroMnemonic)

	for _, compressed := range []bool{false, true} {
		args := []string{"--datadir", dir, "export", "--passphrase", "TREZOR"}
		importArgs := []string{"--datadir", dir, "import"}
		if compressed {
			args = append(args, "--compressed")
			importArgs = append(importArgs, "--compressed")
		}
		data := strings.TrimSpace(mustRun(t, append(args, words...)...))

		got := mustRun(t, append(importArgs, "--data", data)...)
		if field(t, got, "Mnemonic") != zeroMnemonic {
			t.Errorf("compressed=%v: mnemonic:\n%s", compressed, got)
		}
		if field(t, got, "Passphrase") != `"TREZOR"` {
			t.Errorf("compressed=%v: passphrase:\n%s", compressed, got)
		}
		if field(t, got, "Seed") != trezorSeedZero {
			t.Errorf("compressed=%v: seed:\n%s", compressed, got)
		}
	}

	if _, err := runCLI(t, "--datadir", dir, "import", "--data", "00"); err == nil {
		t.Error("import of garbage should fail")
	}
	long := append([]string{"--datadir", dir, "export", "--passphrase", strings.Repeat("p", 201)}, words...)
	if _, err := runCLI(t, long...); err == nil {
		t.Error("export with a 201-byte passphrase should fail")
	}
}

func TestKeystoreCommands_Local(t *testing.T) {
	dir := testDataDir(t)

	stubPasswords(t, "pw", "pw")
	out := mustRun(t, "--datadir", dir, "keystore", "create", "--name", "hot", "--bits", "256")
	if !strings.Contains(out, "write this down") || field(t, out, "Wallet") != "hot" {
		t.Errorf("create output:\n%s", out)
	}

	stubPasswords(t, "pw", "pw")
	out = mustRun(t, append([]string{"--datadir", dir, "keystore", "import", "--name", "cold"}, strings.Fields(zeroMnemonic)...)...)
	fp := field(t, out, "Fingerprint")

	out = mustRun(t, "--datadir", dir, "keystore", "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "cold") || !strings.HasPrefix(lines[1], "hot") {
		t.Fatalf("list output:\n%s", out)
	}
	if !strings.Contains(lines[0], fp[:8]) {
		t.Errorf("list should show short fingerprint %s: %q", fp[:8], lines[0])
	}

	stubPasswords(t, "pw", "new", "new")
	mustRun(t, "--datadir", dir, "keystore", "passwd", "--name", "cold")

	stubPasswords(t, "pw")
	if _, err := runCLI(t, "--datadir", dir, "keystore", "export", "--name", "cold"); err == nil {
		t.Error("export with old password should fail")
	}
	stubPasswords(t, "new")
	data := strings.TrimSpace(mustRun(t, "--datadir", dir, "keystore", "export", "--name", "cold"))
	out = mustRun(t, "--datadir", dir, "import", "--data", data)
	if field(t, out, "Mnemonic") != zeroMnemonic {
		t.Errorf("exported wallet decodes to:\n%s", out)
	}

	mustRun(t, "--datadir", dir, "keystore", "delete", "--name", "cold")
	out = mustRun(t, "--datadir", dir, "keystore", "list")
	if strings.Contains(out, "cold") {
		t.Errorf("deleted wallet still listed:\n%s", out)
	}
}

func TestKeystoreCreate_PasswordMismatch(t *testing.T) {
	dir := testDataDir(t)
	stubPasswords(t, "a", "b")
	if _, err := runCLI(t, "--datadir", dir, "keystore", "create", "--name", "x"); err == nil {
		t.Error("mismatched passwords should fail")
	}
	if _, err := runCLI(t, "--datadir", dir, "keystore", "create"); !errors.Is(err, errUsage) {
		t.Errorf("missing --name: error = %v", err)
	}
}

func TestCommands_Remote(t *testing.T) {
	klog.Discard()
	ks := keystore.New(storage.NewMemory(), keystore.Options{
		Params: keystore.EncryptionParams{Memory: 64, Iterations: 1, Parallelism: 1},
	})
	s := rpc.New("127.0.0.1:0", config.RPCConfig{})
	s.SetKeystore(ks)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	words := strings.Fields(zeroMnemonic)

	got := mustRun(t, "--rpc", ts.URL, "words", "--entropy", strings.Repeat("00", 16))
	if strings.TrimSpace(got) != zeroMnemonic {
		t.Errorf("remote words = %q", got)
	}
	got = mustRun(t, append([]string{"--rpc", ts.URL, "seed", "--passphrase", "TREZOR"}, words...)...)
	if field(t, got, "Seed") != trezorSeedZero {
		t.Errorf("remote seed:\n%s", got)
	}

	stubPasswords(t, "pw", "pw")
	mustRun(t, append([]string{"--rpc", ts.URL, "keystore", "import", "--name", "remote"}, words...)...)
	got = mustRun(t, "--rpc", ts.URL, "keystore", "list")
	if !strings.HasPrefix(got, "remote") {
		t.Errorf("remote list:\n%s", got)
	}
	if _, err := ks.Info("remote"); err != nil {
		t.Errorf("wallet not stored server-side: %v", err)
	}
}

func TestBackends_Agree(t *testing.T) {
	klog.Discard()
	s := rpc.New("127.0.0.1:0", config.RPCConfig{})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	local := newLocalBackend(config.Default())
	remote := newRemoteBackend(ts.URL)

	for _, passphrase := range []string{"", "TREZOR", "café"} {
		l, err := local.ToSeed(zeroMnemonic, passphrase, true)
		if err != nil {
			t.Fatal(err)
		}
		r, err := remote.ToSeed(zeroMnemonic, passphrase, true)
		if err != nil {
			t.Fatal(err)
		}
		if l.Seed != r.Seed || l.Fingerprint != r.Fingerprint {
			t.Errorf("passphrase %q: local and remote seeds differ", passphrase)
		}

		ld, _ := local.Export(zeroMnemonic, passphrase, true)
		rd, _ := remote.Export(zeroMnemonic, passphrase, true)
		if !bytes.Equal(ld, rd) {
			t.Errorf("passphrase %q: exports differ", passphrase)
		}
	}
}
