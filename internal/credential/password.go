package credential

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mailtriage/mailtriage/internal/config"
)

// Resolver finds the IMAP password. Sources are tried in order: the config
// file, the environment, the keyring, and finally an interactive prompt.
type Resolver struct {
	Getenv  func(string) string
	Keyring func(key string) (string, error)
	Prompt  func(label string) (string, error) // nil disables prompting
}

// NewResolver returns a resolver backed by the process environment, the
// system keyring and, when stdin is a terminal, a password prompt.
func NewResolver() *Resolver {
	r := &Resolver{Getenv: os.Getenv, Keyring: Get}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		r.Prompt = func(label string) (string, error) {
			return PromptPassword(os.Stdin, os.Stderr, label)
		}
	}
	return r
}

// Resolve fills cfg.Password when it is empty.
func (r *Resolver) Resolve(cfg *config.InboxConfig) error {
	if cfg.Password != "" {
		return nil
	}
	if r.Getenv != nil {
		if pw := r.Getenv(config.PasswordEnv); pw != "" {
			cfg.Password = pw
			return nil
		}
	}
	if r.Keyring != nil && cfg.Email != "" {
		if pw, err := r.Keyring(Key(cfg.Server, cfg.Email)); err == nil && pw != "" {
			cfg.Password = pw
			return nil
		}
	}
	if r.Prompt != nil {
		pw, err := r.Prompt(fmt.Sprintf("IMAP password for %s: ", cfg.Email))
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Password = pw
	}
	return nil
}

// PromptPassword reads a password from in without echo when in is a
// terminal, and as a plain line otherwise.
func PromptPassword(in *os.File, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	defer fmt.Fprintln(out)

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	var line string
	if _, err := fmt.Fscanln(in, &line); err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
