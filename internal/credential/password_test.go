package credential

import (
	"errors"
	"testing"

	"github.com/mailtriage/mailtriage/internal/config"
)

func TestResolveOrder(t *testing.T) {
	env := map[string]string{}
	ring := map[string]string{}
	prompted := false

	r := &Resolver{
		Getenv: func(k string) string { return env[k] },
		Keyring: func(k string) (string, error) {
			if v, ok := ring[k]; ok {
				return v, nil
			}
			return "", errors.New("not found")
		},
		Prompt: func(string) (string, error) {
			prompted = true
			return "typed", nil
		},
	}

	base := config.InboxConfig{Server: "imap.example.com", Email: "me@example.com"}

	tests := []struct {
		name     string
		cfgPass  string
		env      string
		ring     string
		want     string
		prompted bool
	}{
		{name: "config wins", cfgPass: "fromcfg", env: "fromenv", ring: "fromring", want: "fromcfg"},
		{name: "env before keyring", env: "fromenv", ring: "fromring", want: "fromenv"},
		{name: "keyring before prompt", ring: "fromring", want: "fromring"},
		{name: "prompt last", want: "typed", prompted: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompted = false
			env = map[string]string{}
			ring = map[string]string{}
			if tt.env != "" {
				env[config.PasswordEnv] = tt.env
			}
			if tt.ring != "" {
				ring[Key(base.Server, base.Email)] = tt.ring
			}

			cfg := base
			cfg.Password = tt.cfgPass
			if err := r.Resolve(&cfg); err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if cfg.Password != tt.want {
				t.Errorf("Password = %q, want %q", cfg.Password, tt.want)
			}
			if prompted != tt.prompted {
				t.Errorf("prompted = %v, want %v", prompted, tt.prompted)
			}
		})
	}
}

func TestResolveWithoutPrompt(t *testing.T) {
	r := &Resolver{Getenv: func(string) string { return "" }}
	cfg := config.InboxConfig{Email: "me@example.com"}
	if err := r.Resolve(&cfg); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Password != "" {
		t.Errorf("Password = %q, want empty", cfg.Password)
	}
}
