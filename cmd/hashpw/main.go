// Command hashpw prints the argon2id hash to put in KPG_ADMIN_PASSWORD_HASH.
//
//	go run ./cmd/hashpw 'admin password'
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"kekspay-gateway/internal/service"
)

func main() {
	password, err := readPassword(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}

	if err := service.ValidateAdminPassword(password); err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}

	hash, err := service.NewArgon2HashService().Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hashpw: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

// readPassword takes the first argument, or one line from stdin.
func readPassword(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading password from stdin: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("empty password")
	}
	return password, nil
}
