// Package credentials acquires and stores the password for a server
// account. Passwords at rest live in the system keychain; on the wire the
// session sends the transformed form, never the plain text.
package credentials

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

// service is the keychain service name under which accounts are stored.
const service = "scriptsync"

// Transform produces the wire form of a password. The protocol expects
// the MD5 hex digest of the plain text; an empty password passes through
// unchanged.
func Transform(plain string) string {
	if plain == "" {
		return ""
	}
	sum := md5.Sum([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// account qualifies the keychain entry per server and user.
func account(server, username string) string {
	return username + "@" + server
}

// Store saves a plain password in the system keychain.
func Store(server, username, plain string) error {
	if err := keyring.Set(service, account(server, username), plain); err != nil {
		return fmt.Errorf("store credentials: %w", err)
	}
	return nil
}

// Delete removes a stored password. A missing entry is not an error.
func Delete(server, username string) error {
	err := keyring.Delete(service, account(server, username))
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

// Lookup returns the stored plain password, or ok=false when none is
// saved.
func Lookup(server, username string) (string, bool) {
	plain, err := keyring.Get(service, account(server, username))
	if err != nil {
		return "", false
	}
	return plain, true
}

// Prompt reads a password from the terminal without echo.
func Prompt(username string) (string, error) {
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

// Resolve returns the wire-form password for a server account: the
// SCRIPTSYNC_PASSWORD environment variable, the keychain, or an
// interactive prompt, in that order.
func Resolve(server, username string) (string, error) {
	if plain := os.Getenv("SCRIPTSYNC_PASSWORD"); plain != "" {
		return Transform(plain), nil
	}
	if plain, ok := Lookup(server, username); ok {
		return Transform(plain), nil
	}
	plain, err := Prompt(username)
	if err != nil {
		return "", err
	}
	return Transform(plain), nil
}
