package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for the site.
type Config struct {
	LogDir     string         `toml:"log_dir"`
	AdminUsers []string       `toml:"admin_users"` // allow-listed admin login names
	Server     ServerConfig   `toml:"server"`
	Database   DatabaseConfig `toml:"database"`
	Mail       MailConfig     `toml:"mail"`
	Backup     BackupConfig   `toml:"backup"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Addr     string `toml:"addr"`      // main listener, e.g. ":3333"
	DiagAddr string `toml:"diag_addr"` // diagnostics listener (/metrics), e.g. ":9999"
}

// DatabaseConfig represents configuration for the content database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// MailConfig holds SMTP settings for the article notification mail.
// Credentials come from the environment, not from this file.
type MailConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"` // STARTTLS port, normally 587
	Sender   string `toml:"sender"`
	Suppress bool   `toml:"suppress"` // true disables delivery (development)
}

// BackupConfig holds the encrypted-backup settings: the age key pair and the
// vault the snapshots are shipped to.
type BackupConfig struct {
	PublicKeyPath  string      `toml:"public_key_path"`
	PrivateKeyPath string      `toml:"private_key_path"`
	Vault          VaultConfig `toml:"vault"`
}

// VaultConfig represents configuration for a backup vault backend.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type VaultConfig struct {
	Type string `toml:"type"` // "memory", "s3", or "filesystem"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket string `toml:"s3_bucket,omitempty"`
	S3Prefix string `toml:"s3_prefix,omitempty"`
	S3Region string `toml:"s3_region,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// NewConfig creates a Config with defaults rooted at baseDir.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir:     filepath.Join(baseDir, "log"),
		AdminUsers: []string{"rice", "andyzhou"},
		Server: ServerConfig{
			Addr:     ":3333",
			DiagAddr: ":9999",
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "data"),
		},
		Mail: MailConfig{
			Port:     587,
			Suppress: true,
		},
		Backup: BackupConfig{
			PublicKeyPath:  filepath.Join(baseDir, "keys", "backup.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "backup.key"),
			Vault: VaultConfig{
				Type:        "filesystem",
				Name:        "local",
				FSVaultRoot: filepath.Join(baseDir, "backups"),
			},
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
