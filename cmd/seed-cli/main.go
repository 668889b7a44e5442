// seed-cli is a command-line front end for BIP-39 mnemonics and the seed
// keystore. Commands run in-process unless --rpc points at a seedd daemon.
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/Klingon-tech/klingnet-seed/config"
)

// readPassword prompts on stderr and reads a line without echo.
var readPassword = func(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr) // newline after hidden input
	if err != nil {
		return nil, err
	}
	return password, nil
}

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, errUsage) {
			fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
			usage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses global flags, selects a backend and dispatches the command.
func run(args []string, out io.Writer) error {
	rpcURL := ""
	dataDir := ""

	// Scan for --rpc and --datadir before the subcommand.
	for len(args) > 0 {
		switch {
		case args[0] == "--rpc" && len(args) > 1:
			rpcURL = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--rpc="):
			rpcURL = args[0][len("--rpc="):]
			args = args[1:]
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		return fmt.Errorf("%w: missing command", errUsage)
	}
	cmd, cmdArgs := args[0], args[1:]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		usage(out)
		return nil
	}

	var b backend
	if rpcURL != "" {
		b = newRemoteBackend(rpcURL)
	} else {
		cfg, err := config.LoadFromFile(dataDir)
		if err != nil {
			return err
		}
		b = newLocalBackend(cfg)
	}
	defer b.Close()

	switch cmd {
	case "generate":
		return cmdGenerate(b, cmdArgs, out)
	case "validate":
		return cmdValidate(b, cmdArgs, out)
	case "entropy":
		return cmdEntropy(b, cmdArgs, out)
	case "words":
		return cmdWords(b, cmdArgs, out)
	case "seed":
		return cmdSeed(b, cmdArgs, out)
	case "export":
		return cmdExport(b, cmdArgs, out)
	case "import":
		return cmdImport(b, cmdArgs, out)
	case "keystore":
		return cmdKeystore(b, cmdArgs, out)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func usage(w io.Writer) {
	fmt.Fprint(w, `Usage: seed-cli [global flags] <command> [flags]

Global flags:
  --rpc <url>         seedd endpoint (default: run in-process)
  --datadir <path>    Data directory (default: ~/.klingnet-seed)

Commands:
  generate [--bits n]                   Generate a new mnemonic
  validate <words...>                   Check a mnemonic's words and checksum
  entropy <words...>                    Print the entropy behind a mnemonic
  words --entropy <hex>                 Encode entropy as a mnemonic
  seed [--check] [--passphrase p | --ask-passphrase] <words...>
                                        Derive the 64-byte seed
  export [--compressed] [--passphrase p | --ask-passphrase] <words...>
                                        Serialize a master seed as hex
  import [--compressed] --data <hex>    Decode a serialized master seed

  keystore create --name <n> [--bits n] [--ask-passphrase]
                                        Generate and store a new seed
  keystore import --name <n> [--ask-passphrase] <words...>
                                        Store an existing mnemonic
  keystore list                         List stored seeds
  keystore export --name <n> [--compressed]
                                        Print a stored seed as hex
  keystore passwd --name <n>            Change a stored seed's password
  keystore delete --name <n>            Delete a stored seed

Omitting <words...> prompts for the mnemonic without echo.
`)
}

// ── argument helpers ────────────────────────────────────────────────────

// mnemonicArg joins positional words, or prompts when none were given.
func mnemonicArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() > 0 {
		return strings.Join(fs.Args(), " "), nil
	}
	m, err := readPassword("Mnemonic: ")
	if err != nil {
		return "", fmt.Errorf("read mnemonic: %w", err)
	}
	return strings.TrimSpace(string(m)), nil
}

// passphraseArg returns the --passphrase value or prompts for it.
func passphraseArg(flagValue string, ask bool) (string, error) {
	if !ask {
		return flagValue, nil
	}
	p, err := readPassword("BIP-39 passphrase: ")
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(p), nil
}

// newPassword prompts twice and requires both entries to match.
func newPassword() ([]byte, error) {
	password, err := readPassword("Enter password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	if string(password) != string(confirm) {
		return nil, errors.New("passwords do not match")
	}
	if len(password) == 0 {
		return nil, errors.New("password must not be empty")
	}
	return password, nil
}

func requireName(name, usageLine string) error {
	if name == "" {
		return fmt.Errorf("%w: seed-cli %s", errUsage, usageLine)
	}
	return nil
}

// ── codec commands ──────────────────────────────────────────────────────

func cmdGenerate(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	bits := fs.Int("bits", 0, "Entropy bits (128, 160, 192, 224, 256)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	res, err := b.Generate(*bits)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, res.Mnemonic)
	return nil
}

func cmdValidate(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	mnemonic, err := mnemonicArg(fs)
	if err != nil {
		return err
	}

	valid, err := b.Validate(mnemonic)
	if err != nil {
		return err
	}
	if !valid {
		fmt.Fprintln(out, "invalid")
		return errors.New("mnemonic is not valid")
	}
	fmt.Fprintln(out, "valid")
	return nil
}

func cmdEntropy(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("entropy", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	mnemonic, err := mnemonicArg(fs)
	if err != nil {
		return err
	}

	entropy, err := b.ToEntropy(mnemonic)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hex.EncodeToString(entropy))
	return nil
}

func cmdWords(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("words", flag.ContinueOnError)
	entropyHex := fs.String("entropy", "", "Entropy as hex (16-32 bytes)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *entropyHex == "" {
		return fmt.Errorf("%w: seed-cli words --entropy <hex>", errUsage)
	}
	entropy, err := hex.DecodeString(*entropyHex)
	if err != nil {
		return fmt.Errorf("decode entropy: %w", err)
	}

	mnemonic, err := b.FromEntropy(entropy)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, mnemonic)
	return nil
}

func cmdSeed(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	check := fs.Bool("check", false, "Reject mnemonics with a bad checksum")
	passphrase := fs.String("passphrase", "", "BIP-39 passphrase")
	ask := fs.Bool("ask-passphrase", false, "Prompt for the passphrase")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mnemonic, err := mnemonicArg(fs)
	if err != nil {
		return err
	}
	pass, err := passphraseArg(*passphrase, *ask)
	if err != nil {
		return err
	}

	res, err := b.ToSeed(mnemonic, pass, *check)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seed:        %s\n", res.Seed)
	fmt.Fprintf(out, "Fingerprint: %s\n", res.Fingerprint)
	return nil
}

func cmdExport(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	compressed := fs.Bool("compressed", false, "Omit the derived seed from the output")
	passphrase := fs.String("passphrase", "", "BIP-39 passphrase")
	ask := fs.Bool("ask-passphrase", false, "Prompt for the passphrase")
	if err := fs.Parse(args); err != nil {
		return err
	}
	mnemonic, err := mnemonicArg(fs)
	if err != nil {
		return err
	}
	pass, err := passphraseArg(*passphrase, *ask)
	if err != nil {
		return err
	}

	data, err := b.Export(mnemonic, pass, *compressed)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hex.EncodeToString(data))
	return nil
}

func cmdImport(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	compressed := fs.Bool("compressed", false, "Data was exported with --compressed")
	dataHex := fs.String("data", "", "Serialized master seed as hex")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dataHex == "" {
		return fmt.Errorf("%w: seed-cli import --data <hex>", errUsage)
	}
	data, err := hex.DecodeString(*dataHex)
	if err != nil {
		return fmt.Errorf("decode data: %w", err)
	}

	res, err := b.Import(data, *compressed)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Mnemonic:    %s\n", res.Mnemonic)
	fmt.Fprintf(out, "Entropy:     %s\n", res.Entropy)
	fmt.Fprintf(out, "Passphrase:  %q\n", res.Passphrase)
	fmt.Fprintf(out, "Seed:        %s\n", res.Seed)
	fmt.Fprintf(out, "Fingerprint: %s\n", res.Fingerprint)
	return nil
}

// ── keystore ────────────────────────────────────────────────────────────

func cmdKeystore(b backend, args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: seed-cli keystore <create|import|list|export|passwd|delete> [flags]", errUsage)
	}

	switch args[0] {
	case "create":
		return cmdKeystoreCreate(b, args[1:], out)
	case "import":
		return cmdKeystoreImport(b, args[1:], out)
	case "list":
		return cmdKeystoreList(b, out)
	case "export":
		return cmdKeystoreExport(b, args[1:], out)
	case "passwd":
		return cmdKeystorePasswd(b, args[1:], out)
	case "delete":
		return cmdKeystoreDelete(b, args[1:], out)
	default:
		return fmt.Errorf("unknown keystore command: %s", args[0])
	}
}

func cmdKeystoreCreate(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keystore create", flag.ContinueOnError)
	name := fs.String("name", "", "Wallet name")
	bits := fs.Int("bits", 0, "Entropy bits (128, 160, 192, 224, 256)")
	ask := fs.Bool("ask-passphrase", false, "Prompt for a BIP-39 passphrase")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireName(*name, "keystore create --name <name>"); err != nil {
		return err
	}
	pass, err := passphraseArg("", *ask)
	if err != nil {
		return err
	}
	password, err := newPassword()
	if err != nil {
		return err
	}

	res, err := b.CreateWallet(*name, *bits, pass, password)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "Mnemonic (write this down!):")
	fmt.Fprintf(out, "  %s\n\n", res.Mnemonic)
	fmt.Fprintf(out, "Wallet:      %s\n", res.Name)
	fmt.Fprintf(out, "Fingerprint: %s\n", res.Fingerprint)
	return nil
}

func cmdKeystoreImport(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keystore import", flag.ContinueOnError)
	name := fs.String("name", "", "Wallet name")
	ask := fs.Bool("ask-passphrase", false, "Prompt for a BIP-39 passphrase")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireName(*name, "keystore import --name <name> <words...>"); err != nil {
		return err
	}
	mnemonic, err := mnemonicArg(fs)
	if err != nil {
		return err
	}
	pass, err := passphraseArg("", *ask)
	if err != nil {
		return err
	}
	password, err := newPassword()
	if err != nil {
		return err
	}

	res, err := b.ImportWallet(*name, mnemonic, pass, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wallet:      %s\n", res.Name)
	fmt.Fprintf(out, "Fingerprint: %s\n", res.Fingerprint)
	return nil
}

func cmdKeystoreList(b backend, out io.Writer) error {
	wallets, err := b.ListWallets()
	if err != nil {
		return err
	}
	if len(wallets) == 0 {
		fmt.Fprintln(out, "No wallets found.")
		return nil
	}
	for _, w := range wallets {
		form := "full"
		if w.Compressed {
			form = "compressed"
		}
		fmt.Fprintf(out, "%-20s %s  %s  %s\n", w.Name, w.Fingerprint.Short(), w.CreatedAt.Format("2006-01-02 15:04"), form)
	}
	return nil
}

func cmdKeystoreExport(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keystore export", flag.ContinueOnError)
	name := fs.String("name", "", "Wallet name")
	compressed := fs.Bool("compressed", false, "Omit the derived seed from the output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireName(*name, "keystore export --name <name>"); err != nil {
		return err
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	data, err := b.ExportWallet(*name, password, *compressed)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, hex.EncodeToString(data))
	return nil
}

func cmdKeystorePasswd(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keystore passwd", flag.ContinueOnError)
	name := fs.String("name", "", "Wallet name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireName(*name, "keystore passwd --name <name>"); err != nil {
		return err
	}
	old, err := readPassword("Current password: ")
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	password, err := newPassword()
	if err != nil {
		return err
	}

	if err := b.ChangePassword(*name, old, password); err != nil {
		return err
	}
	fmt.Fprintf(out, "Password changed for %s\n", *name)
	return nil
}

func cmdKeystoreDelete(b backend, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("keystore delete", flag.ContinueOnError)
	name := fs.String("name", "", "Wallet name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := requireName(*name, "keystore delete --name <name>"); err != nil {
		return err
	}

	if err := b.DeleteWallet(*name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted %s\n", *name)
	return nil
}
