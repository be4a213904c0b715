package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

// ErrNotStored is returned by Get when no password is stored for the key.
var ErrNotStored = errors.New("no password stored")

// openRing opens the backend holding IMAP passwords. The OS store is tried
// first; the encrypted file under ~/.mailtriage covers headless machines.
var openRing = func() (keyring.Keyring, error) {
	return keyring.Open(keyring.Config{
		ServiceName: "mailtriage",
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.mailtriage/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("mailtriage-file-key"),
		KeychainTrustApplication: true,
	})
}

func ring() (keyring.Keyring, error) {
	r, err := openRing()
	if err != nil {
		return nil, fmt.Errorf("keyring unavailable: %w", err)
	}
	return r, nil
}

// Key names the entry of one IMAP login, e.g. "imap:me@example.com@imap.gmail.com".
func Key(server, login string) string {
	return "imap:" + login + "@" + server
}

// Get returns the IMAP password stored under key.
func Get(key string) (string, error) {
	r, err := ring()
	if err != nil {
		return "", err
	}
	item, err := r.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%s: %w", key, ErrNotStored)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read password for %s: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores password under key, replacing any previous value.
func Set(key, password string) error {
	r, err := ring()
	if err != nil {
		return err
	}
	if err := r.Set(keyring.Item{
		Key:         key,
		Data:        []byte(password),
		Label:       "mailtriage IMAP password",
		Description: "IMAP login used by mailtriage scan and serve",
	}); err != nil {
		return fmt.Errorf("failed to store password for %s: %w", key, err)
	}
	return nil
}

// Delete removes the password stored under key. Removing a key that was
// never stored is not an error.
func Delete(key string) error {
	r, err := ring()
	if err != nil {
		return err
	}
	if err := r.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("failed to remove password for %s: %w", key, err)
	}
	return nil
}
