package vault

import (
	"context"
	"fmt"
	"os"

	"lsfd202201/internal/backup"
	"lsfd202201/internal/config"
)

// NewVaultFromConfig creates a backup.Vault implementation based on the vault
// config type.
func NewVaultFromConfig(cfg config.VaultConfig) (backup.Vault, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault(cfg.Name), nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 vault requires s3_bucket to be set")
		}
		return NewS3Vault(context.Background(), cfg.Name,
			cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region,
			os.Getenv("LSFD_S3_ACCESS_KEY"), os.Getenv("LSFD_S3_SECRET_KEY"))
	case "filesystem":
		if cfg.FSVaultRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_vault_root to be set")
		}
		return NewFileSystemVault(cfg.Name, cfg.FSVaultRoot)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}
