package model

import "time"

// Article represents one entry on the articles page. Content is stored as raw
// markdown source; rendering to HTML happens at display time only.
type Article struct {
	ID        int64     // Assigned by the database, never reused after deletion
	Title     string    // Display title, at most 64 characters
	Author    string    // Submitter name, at most 64 characters
	Date      string    // User-supplied display date (free-form string)
	Content   string    // Markdown source
	Timestamp time.Time // Server-assigned creation instant, pagination order key
}

// Feedback is a short visitor message shown on the admin side.
type Feedback struct {
	ID        int64
	Body      string // At most 200 characters
	Author    string // At most 20 characters
	Timestamp time.Time
}

// User is a registered account. Only the bcrypt hash of the password is kept;
// the plaintext is handled exclusively by SetPassword and VerifyPassword.
type User struct {
	ID           string // UUID
	Name         string // Unique login name
	PasswordHash string
	RoleID       int64 // Foreign key to Role
}
