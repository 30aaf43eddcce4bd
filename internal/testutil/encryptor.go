package testutil

import (
	"lsfd202201/internal/backup"
	"lsfd202201/internal/encryption"
)

// NewTestEncryptor creates an always-configured encryptor for testing.
func NewTestEncryptor() backup.Encryptor {
	return encryption.NewTestEncryptor()
}
