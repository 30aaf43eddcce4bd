package backup_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lsfd202201/internal/backup"
	"lsfd202201/internal/database"
	"lsfd202201/internal/model"
	"lsfd202201/internal/site"
	"lsfd202201/internal/testutil"
	"lsfd202201/internal/vault"
)

// newFileStore creates a migrated on-disk store; VACUUM INTO needs a real
// database file.
func newFileStore(t *testing.T) site.Store {
	t.Helper()

	store, err := database.NewSQLiteDatabase(filepath.Join(t.TempDir(), "site.db"))
	if err != nil {
		t.Fatalf("NewSQLiteDatabase() error = %v", err)
	}
	if err := store.MigrateUp(); err != nil {
		store.Close()
		t.Fatalf("MigrateUp() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func newBackupService(t *testing.T, store site.Store, v backup.Vault) *backup.Service {
	t.Helper()
	return backup.NewService(store, testutil.NewTestEncryptor(), v, testutil.FixedClock(), site.NewNopLogger())
}

func TestService_Run(t *testing.T) {
	t.Run("uploads an encrypted snapshot", func(t *testing.T) {
		store := newFileStore(t)
		v := vault.NewMemoryVault("test")
		svc := newBackupService(t, store, v)

		if _, err := store.CreateArticle(context.Background(), &model.Article{
			Title: "keep", Author: "rice", Date: "2022-06-01", Content: "# x", Timestamp: time.Now().UTC(),
		}); err != nil {
			t.Fatalf("CreateArticle() error = %v", err)
		}

		name, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if !strings.HasPrefix(name, "site-") || !strings.HasSuffix(name, ".db.age") {
			t.Errorf("snapshot name = %q, want site-<timestamp>.db.age", name)
		}

		names, err := svc.List()
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(names) != 1 || names[0] != name {
			t.Errorf("List() = %v, want [%s]", names, name)
		}
	})

	t.Run("snapshot name comes from the clock", func(t *testing.T) {
		store := newFileStore(t)
		svc := newBackupService(t, store, vault.NewMemoryVault("test"))

		name, err := svc.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		// FixedClock pins 2024-01-15 10:30:00 UTC.
		if name != "site-20240115T103000Z.db.age" {
			t.Errorf("name = %q, want site-20240115T103000Z.db.age", name)
		}
	})
}

func TestService_Restore(t *testing.T) {
	t.Run("round trips the database", func(t *testing.T) {
		store := newFileStore(t)
		v := vault.NewMemoryVault("test")
		svc := newBackupService(t, store, v)
		ctx := context.Background()

		created, err := store.CreateArticle(ctx, &model.Article{
			Title: "survivor", Author: "rice", Date: "2022-06-01", Content: "# x", Timestamp: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("CreateArticle() error = %v", err)
		}

		name, err := svc.Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		destPath := filepath.Join(t.TempDir(), "restored.db")
		if err := svc.Restore(name, destPath, "passphrase"); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}

		restored, err := database.NewSQLiteDatabase(destPath)
		if err != nil {
			t.Fatalf("opening restored database: %v", err)
		}
		defer restored.Close()

		got, err := restored.GetArticle(ctx, created.ID)
		if err != nil {
			t.Fatalf("GetArticle() on restored db error = %v", err)
		}
		if got == nil || got.Title != "survivor" {
			t.Errorf("restored article = %+v, want survivor", got)
		}
	})

	t.Run("refuses to overwrite an existing file", func(t *testing.T) {
		store := newFileStore(t)
		svc := newBackupService(t, store, vault.NewMemoryVault("test"))
		ctx := context.Background()

		name, err := svc.Run(ctx)
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}

		destPath := filepath.Join(t.TempDir(), "exists.db")
		if err := os.WriteFile(destPath, []byte("precious"), 0644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		if err := svc.Restore(name, destPath, "passphrase"); err == nil {
			t.Fatal("Restore() over existing file succeeded, want error")
		}

		content, err := os.ReadFile(destPath)
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		if string(content) != "precious" {
			t.Error("existing file was clobbered")
		}
	})

	t.Run("missing snapshot is an error", func(t *testing.T) {
		store := newFileStore(t)
		svc := newBackupService(t, store, vault.NewMemoryVault("test"))

		destPath := filepath.Join(t.TempDir(), "never.db")
		if err := svc.Restore("site-nope.db.age", destPath, "passphrase"); err == nil {
			t.Error("Restore() of missing snapshot succeeded, want error")
		}
	})
}
