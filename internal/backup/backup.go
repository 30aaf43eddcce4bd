// Package backup ships encrypted snapshots of the site database to a vault.
// A snapshot is a VACUUM INTO copy of the SQLite file, age-encrypted before
// it leaves the host.
package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lsfd202201/internal/site"
)

// Encryptor encrypts snapshot files before upload. Decryption requires
// unlocking the private key with a passphrase first.
type Encryptor interface {
	// Setup generates and stores a new key pair protected by passphrase.
	Setup(passphrase string) error
	// Encrypt reads plaintext from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error
	// Unlock decrypts the private key and returns a decryption context.
	Unlock(passphrase string) (DecryptionContext, error)
	// IsConfigured reports whether a key pair exists.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked identity for decrypting snapshots.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}

// Vault is a destination for encrypted snapshots, addressed by name.
type Vault interface {
	PutSnapshot(name string, r io.Reader, size int64) error
	GetSnapshot(name string, w io.Writer) error
	ListSnapshots() ([]string, error)
	ValidateSetup() error
}

// Service coordinates one backup or restore run.
type Service struct {
	store     site.Store
	encryptor Encryptor
	vault     Vault
	clock     site.Clock
	logger    site.Logger
}

// NewService creates a backup Service with the provided dependencies.
func NewService(store site.Store, encryptor Encryptor, vault Vault, clock site.Clock, logger site.Logger) *Service {
	return &Service{
		store:     store,
		encryptor: encryptor,
		vault:     vault,
		clock:     clock,
		logger:    logger,
	}
}

// Setup generates the encryption key pair. It refuses to overwrite an
// existing one; losing the old private key would orphan every snapshot
// made with it.
func (s *Service) Setup(passphrase string) error {
	if s.encryptor.IsConfigured() {
		return fmt.Errorf("encryption keys already exist")
	}
	if err := s.encryptor.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	s.logger.Info("backup encryption keys generated")
	return nil
}

// Run snapshots the database, encrypts the copy, and uploads it. It returns
// the snapshot name in the vault.
func (s *Service) Run(ctx context.Context) (string, error) {
	if !s.encryptor.IsConfigured() {
		return "", fmt.Errorf("backup encryption keys are not set up (run backup setup)")
	}
	if err := s.vault.ValidateSetup(); err != nil {
		return "", fmt.Errorf("validating vault: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "lsfd-backup-*")
	if err != nil {
		return "", fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// VACUUM INTO produces a consistent copy even with concurrent writers.
	plainPath := filepath.Join(tmpDir, "site.db")
	if err := s.store.BackupTo(plainPath); err != nil {
		return "", fmt.Errorf("snapshotting database: %w", err)
	}

	cipherPath := plainPath + ".age"
	if err := s.encryptFile(plainPath, cipherPath); err != nil {
		return "", err
	}

	info, err := os.Stat(cipherPath)
	if err != nil {
		return "", fmt.Errorf("checking encrypted snapshot: %w", err)
	}

	name := fmt.Sprintf("site-%s.db.age", s.clock.Now().UTC().Format("20060102T150405Z"))

	f, err := os.Open(cipherPath)
	if err != nil {
		return "", fmt.Errorf("opening encrypted snapshot: %w", err)
	}
	defer f.Close()

	if err := s.vault.PutSnapshot(name, f, info.Size()); err != nil {
		return "", fmt.Errorf("uploading snapshot: %w", err)
	}

	s.logger.Info("backup uploaded", "name", name, "size", info.Size())
	return name, nil
}

func (s *Service) encryptFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating encrypted snapshot: %w", err)
	}
	defer dest.Close()

	if err := s.encryptor.Encrypt(src, dest); err != nil {
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return dest.Close()
}

// List returns the snapshot names present in the vault.
func (s *Service) List() ([]string, error) {
	return s.vault.ListSnapshots()
}

// Restore downloads and decrypts the named snapshot to destPath. It refuses
// to overwrite an existing file.
func (s *Service) Restore(name, destPath, passphrase string) error {
	if _, err := os.Stat(destPath); err == nil {
		return fmt.Errorf("refusing to overwrite %s", destPath)
	}

	dc, err := s.encryptor.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking backup key: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "lsfd-restore-*")
	if err != nil {
		return fmt.Errorf("creating temp directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	cipherPath := filepath.Join(tmpDir, name)
	cipher, err := os.Create(cipherPath)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	if err := s.vault.GetSnapshot(name, cipher); err != nil {
		cipher.Close()
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	if err := cipher.Close(); err != nil {
		return fmt.Errorf("finalizing download: %w", err)
	}

	src, err := os.Open(cipherPath)
	if err != nil {
		return fmt.Errorf("opening downloaded snapshot: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating restore target: %w", err)
	}
	defer dest.Close()

	if err := dc.Decrypt(src, dest); err != nil {
		return fmt.Errorf("decrypting snapshot: %w", err)
	}

	s.logger.Info("backup restored", "name", name, "dest", destPath)
	return dest.Close()
}
