package config

import (
	"encoding/base64"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

const testYAML = `
app:
  app_env: dev
scopes:
  - name: vault.read.email
    description: lectura de emails
  - name: custom.ethical.values
consent:
  default_ttl: 30m
  revocation:
    driver: fs
    path: /tmp/rev.json
vault:
  store:
    driver: memory
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(testYAML), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func b64Key(b byte) string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = b
	}
	return base64.StdEncoding.EncodeToString(raw)
}

func TestLoad_WithKeys(t *testing.T) {
	t.Setenv("CONSENT_SIGNING_KEY", b64Key(1))
	t.Setenv("VAULT_MASTER_KEY", b64Key(2))

	cfg, err := Load(writeTestConfig(t))
	if err != nil {
		t.Fatalf("Load err: %v", err)
	}
	if len(cfg.Scopes) != 2 || cfg.Scopes[0].Name != "vault.read.email" {
		t.Fatalf("scopes: %+v", cfg.Scopes)
	}
	if cfg.Consent.Revocation.Driver != "fs" {
		t.Fatalf("driver: %q", cfg.Consent.Revocation.Driver)
	}
	if got := cfg.DefaultTTL().Minutes(); got != 30 {
		t.Fatalf("default ttl: %v", got)
	}
	if len(cfg.Keys.Signing) != 32 || len(cfg.Keys.VaultMaster) != 32 {
		t.Fatalf("keys: %d/%d", len(cfg.Keys.Signing), len(cfg.Keys.VaultMaster))
	}
	if cfg.Keys.Signing[0] != 1 || cfg.Keys.VaultMaster[0] != 2 {
		t.Fatal("keys swapped")
	}
}

// Claves ausentes o malformadas => error de arranque, no per-call.
func TestLoad_MissingKeysFatal(t *testing.T) {
	t.Setenv("CONSENT_SIGNING_KEY", "")
	t.Setenv("VAULT_MASTER_KEY", "")
	if _, err := Load(writeTestConfig(t)); err == nil {
		t.Fatal("expected error with missing keys")
	}

	t.Setenv("CONSENT_SIGNING_KEY", b64Key(1))
	t.Setenv("VAULT_MASTER_KEY", "dG9vLXNob3J0") // base64("too-short")
	if _, err := Load(writeTestConfig(t)); err == nil {
		t.Fatal("expected error with malformed vault key")
	}
}

func TestLoadWithoutKeys_Defaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("app:\n  app_env: dev\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadWithoutKeys(p)
	if err != nil {
		t.Fatalf("LoadWithoutKeys err: %v", err)
	}
	if cfg.Consent.Revocation.Driver != "memory" || cfg.Vault.Store.Driver != "memory" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.DefaultTTL().Hours() != 1 {
		t.Fatalf("default ttl: %v", cfg.DefaultTTL())
	}
}

func TestDecodeKey_Formats(t *testing.T) {
	t.Parallel()
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}

	cases := []string{
		base64.StdEncoding.EncodeToString(raw),
		base64.RawStdEncoding.EncodeToString(raw),
		hex.EncodeToString(raw),
		string(raw),
	}
	for _, in := range cases {
		got, err := DecodeKey(in)
		if err != nil {
			t.Fatalf("DecodeKey(%q) err: %v", in, err)
		}
		if len(got) != 32 || got[5] != 5 {
			t.Fatalf("DecodeKey(%q): %x", in, got)
		}
	}

	for _, bad := range []string{"", "short", base64.StdEncoding.EncodeToString([]byte("short"))} {
		if _, err := DecodeKey(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
