package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	signingKeyEnvVar = "CONSENT_SIGNING_KEY"
	vaultKeyEnvVar   = "VAULT_MASTER_KEY"

	// 32 bytes => HMAC-SHA256 / AES-256
	requiredKeyLength = 32
)

// ScopeDef define un scope del catálogo (cerrado, cargado al inicio).
type ScopeDef struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	// Catálogo de scopes. Set fijo y explícito; no se descubre dinámicamente.
	Scopes []ScopeDef `yaml:"scopes"`

	Consent struct {
		// TTL por defecto para tokens emitidos sin TTL explícito.
		DefaultTTL string `yaml:"default_ttl"`

		Revocation struct {
			// memory | fs | redis | postgres
			Driver string `yaml:"driver"`
			// fs: ruta del log de revocaciones
			Path  string `yaml:"path"`
			Redis struct {
				Addr   string `yaml:"addr"`
				DB     int    `yaml:"db"`
				Prefix string `yaml:"prefix"`
			} `yaml:"redis"`
			Postgres struct {
				DSN string `yaml:"dsn"`
			} `yaml:"postgres"`
		} `yaml:"revocation"`
	} `yaml:"consent"`

	Vault struct {
		Store struct {
			// memory | fs | postgres
			Driver string `yaml:"driver"`
			// fs: directorio raíz de registros
			Path     string `yaml:"path"`
			Postgres struct {
				DSN string `yaml:"dsn"`
			} `yaml:"postgres"`
		} `yaml:"store"`
	} `yaml:"vault"`

	// Claves maestras. Vienen SOLO de env (nunca del YAML): una misconfiguración
	// acá es fatal al arranque, no un error por llamada.
	Keys struct {
		Signing     []byte `yaml:"-"`
		VaultMaster []byte `yaml:"-"`
	} `yaml:"-"`
}

// Load lee el YAML, aplica defaults, y carga las claves maestras desde env.
// Claves ausentes o malformadas => error (el caller debe abortar el proceso).
func Load(path string) (*Config, error) {
	c, err := LoadWithoutKeys(path)
	if err != nil {
		return nil, err
	}
	if err := c.loadKeysFromEnv(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadWithoutKeys es como Load pero no exige claves en env.
// Útil para comandos que solo leen el catálogo de scopes (ej: `consentctl scopes`).
func LoadWithoutKeys(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Consent.DefaultTTL == "" {
		c.Consent.DefaultTTL = "1h"
	}
	if c.Consent.Revocation.Driver == "" {
		c.Consent.Revocation.Driver = "memory"
	}
	if c.Consent.Revocation.Path == "" {
		c.Consent.Revocation.Path = "data/revocations.json"
	}
	if c.Vault.Store.Driver == "" {
		c.Vault.Store.Driver = "memory"
	}
	if c.Vault.Store.Path == "" {
		c.Vault.Store.Path = "data/vault"
	}
}

// DefaultTTL parsea Consent.DefaultTTL; fallback 1h si es inválido.
func (c *Config) DefaultTTL() time.Duration {
	d, err := time.ParseDuration(c.Consent.DefaultTTL)
	if err != nil || d <= 0 {
		return time.Hour
	}
	return d
}

func (c *Config) loadKeysFromEnv() error {
	sk, err := DecodeKey(os.Getenv(signingKeyEnvVar))
	if err != nil {
		return fmt.Errorf("%s: %w", signingKeyEnvVar, err)
	}
	vk, err := DecodeKey(os.Getenv(vaultKeyEnvVar))
	if err != nil {
		return fmt.Errorf("%s: %w", vaultKeyEnvVar, err)
	}
	c.Keys.Signing = sk
	c.Keys.VaultMaster = vk
	return nil
}

// DecodeKey acepta una clave en base64 (std o raw), hex (64 chars) o raw 32 bytes.
// Devuelve siempre 32 bytes o error.
func DecodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("clave no seteada; genere una con: openssl rand -base64 %d", requiredKeyLength)
	}

	if b, err := base64.StdEncoding.DecodeString(s); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil && len(b) == requiredKeyLength {
		return b, nil
	}
	// 64 chars hex = 32 bytes
	if len(s) == 64 {
		if h, err := hex.DecodeString(s); err == nil {
			return h, nil
		}
	}
	// Fallback a raw
	if len(s) == requiredKeyLength {
		return []byte(s), nil
	}
	return nil, fmt.Errorf("clave inválida: se requieren %d bytes (base64, hex o raw)", requiredKeyLength)
}
