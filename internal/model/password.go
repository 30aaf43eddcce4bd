package model

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// SetPassword hashes plaintext with bcrypt and stores the result. This is the
// only way to set credentials; the hash step cannot be bypassed by assigning
// to PasswordHash through normal use of the type.
func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// VerifyPassword reports whether candidate matches the stored hash.
func (u *User) VerifyPassword(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(candidate)) == nil
}
