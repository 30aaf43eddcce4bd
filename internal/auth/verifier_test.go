package auth

import "testing"

func mustHash(t *testing.T, plaintext string) string {
	t.Helper()
	h, err := HashPassword(plaintext)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	return h
}

func TestVerifyAny(t *testing.T) {
	t.Run("matches any of the hashes", func(t *testing.T) {
		h1 := mustHash(t, "one")
		h2 := mustHash(t, "two")

		if !VerifyAny("one", h1, h2) {
			t.Error("VerifyAny(one) = false, want true")
		}
		if !VerifyAny("two", h1, h2) {
			t.Error("VerifyAny(two) = false, want true")
		}
		if VerifyAny("three", h1, h2) {
			t.Error("VerifyAny(three) = true, want false")
		}
	})

	t.Run("skips empty hashes", func(t *testing.T) {
		if VerifyAny("anything", "", "") {
			t.Error("VerifyAny() against empty hashes = true, want false")
		}
	})
}

func TestVerifier_VerifyUpload(t *testing.T) {
	v := NewVerifierFromHashes(mustHash(t, "upload"), mustHash(t, "admin"), nil)

	if !v.VerifyUpload("upload") {
		t.Error("VerifyUpload(upload) = false, want true")
	}
	// The admin password is interchangeable with the upload password.
	if !v.VerifyUpload("admin") {
		t.Error("VerifyUpload(admin) = false, want true")
	}
	if v.VerifyUpload("wrong") {
		t.Error("VerifyUpload(wrong) = true, want false")
	}
}

func TestVerifier_AuthorizeAdmin(t *testing.T) {
	v := NewVerifierFromHashes(mustHash(t, "upload"), mustHash(t, "admin"), []string{"rice", "andyzhou"})

	t.Run("allow-listed user with admin password", func(t *testing.T) {
		name, ok := v.AuthorizeAdmin("rice", "admin")
		if !ok {
			t.Fatal("AuthorizeAdmin() = false, want true")
		}
		if name != "rice" {
			t.Errorf("identity = %q, want rice", name)
		}
	})

	t.Run("unknown user is rejected even with the right password", func(t *testing.T) {
		if _, ok := v.AuthorizeAdmin("stranger", "admin"); ok {
			t.Error("AuthorizeAdmin(stranger) = true, want false")
		}
	})

	t.Run("allow-listed user with wrong password", func(t *testing.T) {
		if _, ok := v.AuthorizeAdmin("rice", "nope"); ok {
			t.Error("AuthorizeAdmin(rice, nope) = true, want false")
		}
	})

	t.Run("upload password does not grant admin", func(t *testing.T) {
		if _, ok := v.AuthorizeAdmin("rice", "upload"); ok {
			t.Error("AuthorizeAdmin(rice, upload password) = true, want false")
		}
	})
}

func TestNewVerifier(t *testing.T) {
	v, err := NewVerifier("upload", "admin", []string{"rice"})
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	if !v.VerifyUpload("upload") {
		t.Error("VerifyUpload(upload) = false, want true")
	}
	if _, ok := v.AuthorizeAdmin("rice", "admin"); !ok {
		t.Error("AuthorizeAdmin() = false, want true")
	}
}
