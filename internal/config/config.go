// Package config loads the engine configuration: the vault program id,
// per-vault authorities, and registry settings. The loaded Config is
// passed explicitly into the gateway; nothing here is global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gagliardetto/solana-go"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/vaultgate/internal/registry"
)

// Backend selects the registry persistence backend.
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
)

// RegistrySettings configures the digest registry.
type RegistrySettings struct {
	Mode    registry.Mode
	Backend Backend
	Dir     string // file backend
	DBPath  string // sqlite backend
}

// Vault holds one vault's authorities. The admin registers and revokes
// digests; the strategist submits manage calls; nobody else touches
// the engine.
type Vault struct {
	VaultID    uint64
	Admin      solana.PublicKey
	Strategist solana.PublicKey
	Paused     bool
}

// Config is the parsed, validated engine configuration. Vault
// authorities can be refreshed at runtime via Reload; everything else
// is fixed at startup.
type Config struct {
	ProgramID solana.PublicKey
	RPCURL    string
	AuditLog  string
	Registry  RegistrySettings

	mu     sync.RWMutex
	vaults map[uint64]Vault
}

// New builds a Config programmatically, for embedders that do not load
// a file. Registry settings and paths keep their zero values.
func New(programID solana.PublicKey, vaults ...Vault) *Config {
	cfg := &Config{ProgramID: programID, vaults: make(map[uint64]Vault)}
	for _, v := range vaults {
		cfg.vaults[v.VaultID] = v
	}
	return cfg
}

// Vault returns the configuration for a vault id.
func (c *Config) Vault(vaultID uint64) (Vault, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.vaults[vaultID]
	return v, ok
}

// Vaults returns all configured vaults.
func (c *Config) Vaults() []Vault {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Vault, 0, len(c.vaults))
	for _, v := range c.vaults {
		out = append(out, v)
	}
	return out
}

// Reload re-reads the config file and swaps in the new vault set:
// rotated strategists, new admins, pause flag changes, added or removed
// vaults. The program id must not change (a different id orphans every
// derived authority); registry settings and paths stay as loaded at
// startup. On any error the current vault set is kept.
func (c *Config) Reload(path string) error {
	fresh, err := Load(path)
	if err != nil {
		return err
	}
	if !fresh.ProgramID.Equals(c.ProgramID) {
		return fmt.Errorf("program_id changed from %s to %s; restart required", c.ProgramID, fresh.ProgramID)
	}

	c.mu.Lock()
	c.vaults = fresh.vaults
	c.mu.Unlock()
	return nil
}

// Raw YAML shape. Pubkeys stay strings until validation.
type rawConfig struct {
	ProgramID string `yaml:"program_id"`
	RPCURL    string `yaml:"rpc_url"`
	AuditLog  string `yaml:"audit_log"`
	Registry  struct {
		Mode    string `yaml:"mode"`
		Backend string `yaml:"backend"`
		Dir     string `yaml:"dir"`
		DBPath  string `yaml:"db_path"`
	} `yaml:"registry"`
	Vaults []struct {
		VaultID    uint64 `yaml:"vault_id"`
		Admin      string `yaml:"admin"`
		Strategist string `yaml:"strategist"`
		Paused     bool   `yaml:"paused"`
	} `yaml:"vaults"`
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vaultgate.yaml")
	}
	return filepath.Join(home, ".vaultgate", "config.yaml")
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".vaultgate")
}

// Load reads and validates a config file. Empty path falls back to
// DefaultPath. Unset registry and log paths get defaults; the program
// id and vault authorities are required.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return parse(raw)
}

func parse(raw rawConfig) (*Config, error) {
	cfg := &Config{
		RPCURL:   raw.RPCURL,
		AuditLog: raw.AuditLog,
		vaults:   make(map[uint64]Vault),
	}

	var err error
	if cfg.ProgramID, err = solana.PublicKeyFromBase58(raw.ProgramID); err != nil {
		return nil, fmt.Errorf("invalid program_id %q: %w", raw.ProgramID, err)
	}

	if len(raw.Vaults) == 0 {
		return nil, fmt.Errorf("config defines no vaults")
	}
	for _, rv := range raw.Vaults {
		if _, dup := cfg.vaults[rv.VaultID]; dup {
			return nil, fmt.Errorf("duplicate vault_id %d", rv.VaultID)
		}
		v := Vault{VaultID: rv.VaultID, Paused: rv.Paused}
		if v.Admin, err = solana.PublicKeyFromBase58(rv.Admin); err != nil {
			return nil, fmt.Errorf("vault %d: invalid admin %q: %w", rv.VaultID, rv.Admin, err)
		}
		if v.Strategist, err = solana.PublicKeyFromBase58(rv.Strategist); err != nil {
			return nil, fmt.Errorf("vault %d: invalid strategist %q: %w", rv.VaultID, rv.Strategist, err)
		}
		cfg.vaults[rv.VaultID] = v
	}

	cfg.Registry = RegistrySettings{
		Mode:    registry.Mode(raw.Registry.Mode),
		Backend: Backend(raw.Registry.Backend),
		Dir:     raw.Registry.Dir,
		DBPath:  raw.Registry.DBPath,
	}
	if cfg.Registry.Mode == "" {
		cfg.Registry.Mode = registry.ModeSingleUse
	}
	if cfg.Registry.Backend == "" {
		cfg.Registry.Backend = BackendFile
	}
	switch cfg.Registry.Backend {
	case BackendFile, BackendSQLite:
	default:
		return nil, fmt.Errorf("invalid registry backend %q", cfg.Registry.Backend)
	}
	if cfg.Registry.Dir == "" {
		cfg.Registry.Dir = registry.DefaultDir()
	}
	if cfg.Registry.DBPath == "" {
		cfg.Registry.DBPath = filepath.Join(defaultStateDir(), "registry.db")
	}
	if cfg.AuditLog == "" {
		cfg.AuditLog = filepath.Join(defaultStateDir(), "audit.jsonl")
	}

	return cfg, nil
}

// OpenStore opens the registry backend selected by the config.
func (c *Config) OpenStore() (registry.Store, error) {
	switch c.Registry.Backend {
	case BackendSQLite:
		return registry.OpenSQL(c.Registry.DBPath)
	default:
		return registry.NewFileStore(c.Registry.Dir)
	}
}
