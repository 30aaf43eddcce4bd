// Package auth holds the password-gating logic for the upload flow and the
// admin panel. Passwords are compared only through bcrypt, never by string
// equality.
package auth

import (
	"fmt"
	"slices"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of plaintext.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// VerifyAny reports whether candidate matches at least one of the supplied
// stored hashes.
func VerifyAny(candidate string, hashes ...string) bool {
	for _, h := range hashes {
		if h == "" {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(candidate)) == nil {
			return true
		}
	}
	return false
}

// Verifier holds the site-wide password hashes and the admin allowlist. It is
// built once at startup from environment-provided secrets and never re-reads
// them per request.
type Verifier struct {
	uploadHash string
	adminHash  string
	adminUsers []string
}

// NewVerifier hashes the two plaintext passwords read from the environment
// and records the allow-listed admin usernames.
func NewVerifier(uploadPassword, adminPassword string, adminUsers []string) (*Verifier, error) {
	uploadHash, err := HashPassword(uploadPassword)
	if err != nil {
		return nil, fmt.Errorf("upload password: %w", err)
	}
	adminHash, err := HashPassword(adminPassword)
	if err != nil {
		return nil, fmt.Errorf("admin password: %w", err)
	}
	return &Verifier{
		uploadHash: uploadHash,
		adminHash:  adminHash,
		adminUsers: slices.Clone(adminUsers),
	}, nil
}

// NewVerifierFromHashes builds a Verifier from already-hashed passwords.
// Useful in tests where hashing cost matters.
func NewVerifierFromHashes(uploadHash, adminHash string, adminUsers []string) *Verifier {
	return &Verifier{
		uploadHash: uploadHash,
		adminHash:  adminHash,
		adminUsers: slices.Clone(adminUsers),
	}
}

// VerifyUpload reports whether candidate unlocks the upload flow. The general
// upload password and the admin password are interchangeable here.
func (v *Verifier) VerifyUpload(candidate string) bool {
	return VerifyAny(candidate, v.uploadHash, v.adminHash)
}

// AuthorizeAdmin is the single authorization decision for admin-only
// operations: the username must be allow-listed AND the password must match
// the admin hash. It returns the authenticated identity on success. An
// unknown user and a wrong password are indistinguishable to the caller.
func (v *Verifier) AuthorizeAdmin(name, password string) (string, bool) {
	if !slices.Contains(v.adminUsers, name) {
		return "", false
	}
	if !VerifyAny(password, v.adminHash) {
		return "", false
	}
	return name, true
}
