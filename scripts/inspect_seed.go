// inspect_seed.go decodes a hex-encoded serialized master seed file.
// Usage: go run scripts/inspect_seed.go [-compressed] <seedfile>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingnet-seed/pkg/bip39"
)

func main() {
	args := os.Args[1:]
	compressed := false
	if len(args) > 0 && args[0] == "-compressed" {
		compressed = true
		args = args[1:]
	}
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: inspect_seed [-compressed] <seedfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	raw, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ms, ok := bip39.FromBytes(raw, compressed)
	if !ok {
		fmt.Fprintf(os.Stderr, "not a valid serialized seed (compressed=%v)\n", compressed)
		os.Exit(1)
	}
	fmt.Printf("words=%d\n", len(ms.Words()))
	fmt.Printf("wordlist=%s\n", ms.WordListType())
	fmt.Printf("passphrase=%v\n", ms.Passphrase() != "")
	fmt.Printf("fingerprint=%s\n", ms.Fingerprint())
}
