package vault

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryVault_PutAndGetSnapshot(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	tests := []struct {
		name     string
		snapshot string
		content  string
		wantErr  bool
	}{
		{
			name:     "store and retrieve snapshot",
			snapshot: "site-20240115T103000Z.db.age",
			content:  "encrypted bytes",
			wantErr:  false,
		},
		{
			name:     "store empty snapshot",
			snapshot: "empty.db.age",
			content:  "",
			wantErr:  false,
		},
		{
			name:     "store large snapshot",
			snapshot: "large.db.age",
			content:  strings.Repeat("x", 10000),
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := strings.NewReader(tt.content)
			err := vault.PutSnapshot(tt.snapshot, r, int64(len(tt.content)))
			if (err != nil) != tt.wantErr {
				t.Errorf("PutSnapshot() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				return
			}

			var buf bytes.Buffer
			err = vault.GetSnapshot(tt.snapshot, &buf)
			if err != nil {
				t.Errorf("GetSnapshot() unexpected error: %v", err)
				return
			}

			if got := buf.String(); got != tt.content {
				t.Errorf("GetSnapshot() content = %q, want %q", got, tt.content)
			}
		})
	}
}

func TestMemoryVault_PutSnapshot_SizeMismatch(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	err := vault.PutSnapshot("bad.db.age", strings.NewReader("short"), 100)
	if err == nil {
		t.Error("PutSnapshot() with wrong size succeeded, want error")
	}
}

func TestMemoryVault_GetSnapshot_NotFound(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	var buf bytes.Buffer
	if err := vault.GetSnapshot("missing.db.age", &buf); err == nil {
		t.Error("GetSnapshot() for missing name succeeded, want error")
	}
}

func TestMemoryVault_ListSnapshots(t *testing.T) {
	vault := NewMemoryVault("test-vault")

	names, err := vault.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListSnapshots() on empty vault = %v, want empty", names)
	}

	for _, n := range []string{"b.db.age", "a.db.age", "c.db.age"} {
		if err := vault.PutSnapshot(n, strings.NewReader("x"), 1); err != nil {
			t.Fatalf("PutSnapshot(%s) error = %v", n, err)
		}
	}

	names, err = vault.ListSnapshots()
	if err != nil {
		t.Fatalf("ListSnapshots() error = %v", err)
	}
	want := []string{"a.db.age", "b.db.age", "c.db.age"}
	if len(names) != len(want) {
		t.Fatalf("ListSnapshots() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListSnapshots()[%d] = %q, want %q (lexical order)", i, names[i], want[i])
		}
	}
}
