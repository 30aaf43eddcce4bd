package config

import (
	"fmt"
	"os"
	"strings"
)

// Secrets are the environment-provided credentials. They are read exactly
// once at startup and threaded through explicitly; nothing re-reads the
// environment per request.
//
// Environment variables:
//   - LSFD_PASSWORD:        general upload password (plaintext, hashed at startup)
//   - LSFD_ADMIN_PASSWORD:  admin password (plaintext, hashed at startup)
//   - LSFD_SECRET_KEY:      session cookie signing key
//   - LSFD_MAIL_USERNAME:   SMTP username
//   - LSFD_MAIL_PASSWORD:   SMTP password
//   - LSFD_ADMIN_EMAILS:    comma-separated notification recipient list
type Secrets struct {
	UploadPassword string
	AdminPassword  string
	SessionKey     string
	MailUsername   string
	MailPassword   string
	AdminEmails    []string
}

// SecretsFromEnv reads all secrets from the environment. The two site
// passwords and the session key are required; mail credentials are optional
// (delivery may be suppressed).
func SecretsFromEnv() (*Secrets, error) {
	s := &Secrets{
		UploadPassword: os.Getenv("LSFD_PASSWORD"),
		AdminPassword:  os.Getenv("LSFD_ADMIN_PASSWORD"),
		SessionKey:     os.Getenv("LSFD_SECRET_KEY"),
		MailUsername:   os.Getenv("LSFD_MAIL_USERNAME"),
		MailPassword:   os.Getenv("LSFD_MAIL_PASSWORD"),
	}

	if s.UploadPassword == "" {
		return nil, fmt.Errorf("LSFD_PASSWORD is not set")
	}
	if s.AdminPassword == "" {
		return nil, fmt.Errorf("LSFD_ADMIN_PASSWORD is not set")
	}
	if s.SessionKey == "" {
		return nil, fmt.Errorf("LSFD_SECRET_KEY is not set")
	}

	for _, addr := range strings.Split(os.Getenv("LSFD_ADMIN_EMAILS"), ",") {
		addr = strings.TrimSpace(addr)
		if addr != "" {
			s.AdminEmails = append(s.AdminEmails, addr)
		}
	}

	return s, nil
}
