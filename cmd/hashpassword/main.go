// hashpassword prints the bcrypt hash to put in ADMIN_PASSWORD_HASH.
// Usage: go run ./cmd/hashpassword -cost 12 < password.txt, or pass the password as the first argument.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jaehkim-quant/research-platform/internal/security"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost (4-31)")
	flag.Parse()

	password := flag.Arg(0)
	if password == "" {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			fmt.Fprintln(os.Stderr, "hashpassword: read password:", err)
			os.Exit(1)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		fmt.Fprintln(os.Stderr, "hashpassword: empty password")
		os.Exit(1)
	}

	hash, err := security.NewHasher(*cost).Hash([]byte(password))
	if err != nil {
		fmt.Fprintln(os.Stderr, "hashpassword:", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}
