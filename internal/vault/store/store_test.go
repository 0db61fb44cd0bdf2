package store

import (
	"context"
	"testing"

	"github.com/hushh-labs/consentcore/internal/vault"
)

var testMaster = []byte("0123456789abcdef0123456789abcdef")

// backendsUnderTest arma los backends locales (memory y fs).
func backendsUnderTest(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS err: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fs,
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	t.Parallel()
	v, err := vault.New(testMaster)
	if err != nil {
		t.Fatal(err)
	}

	for name, s := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec, err := v.Encrypt("u1", "ethical_values", []byte("secret"))
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, rec); err != nil {
				t.Fatalf("Put err: %v", err)
			}

			got, err := s.Get(ctx, "u1", "ethical_values")
			if err != nil {
				t.Fatalf("Get err: %v", err)
			}
			// El registro recuperado descifra al original
			pt, err := v.Decrypt(got)
			if err != nil {
				t.Fatalf("Decrypt err: %v", err)
			}
			if string(pt) != "secret" {
				t.Fatalf("got %q", pt)
			}

			if err := s.Delete(ctx, "u1", "ethical_values"); err != nil {
				t.Fatalf("Delete err: %v", err)
			}
			if _, err := s.Get(ctx, "u1", "ethical_values"); err != ErrNotFound {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}
			// Delete de un registro inexistente es no-op
			if err := s.Delete(ctx, "u1", "ethical_values"); err != nil {
				t.Fatalf("double delete: %v", err)
			}
		})
	}
}

// Overwrite: cada update reemplaza el registro completo con nonce nuevo.
func TestStore_OverwriteReplacesRecord(t *testing.T) {
	t.Parallel()
	v, err := vault.New(testMaster)
	if err != nil {
		t.Fatal(err)
	}

	for name, s := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			first, err := v.Encrypt("u1", "k", []byte("v1"))
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, first); err != nil {
				t.Fatal(err)
			}

			second, err := v.Encrypt("u1", "k", []byte("v2"))
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, second); err != nil {
				t.Fatal(err)
			}

			got, err := s.Get(ctx, "u1", "k")
			if err != nil {
				t.Fatal(err)
			}
			pt, err := v.Decrypt(got)
			if err != nil {
				t.Fatal(err)
			}
			if string(pt) != "v2" {
				t.Fatalf("expected v2, got %q", pt)
			}
		})
	}
}

func TestStore_IsolationBetweenOwners(t *testing.T) {
	t.Parallel()
	v, err := vault.New(testMaster)
	if err != nil {
		t.Fatal(err)
	}

	for name, s := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			rec, err := v.Encrypt("u1", "k", []byte("mine"))
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Put(ctx, rec); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Get(ctx, "u2", "k"); err != ErrNotFound {
				t.Fatalf("cross-owner get: %v", err)
			}
		})
	}
}

func TestStore_RejectsBadIDs(t *testing.T) {
	t.Parallel()
	for name, s := range backendsUnderTest(t) {
		t.Run(name, func(t *testing.T) {
			rec := &vault.Record{OwnerID: "../escape", KeyID: "k"}
			if err := s.Put(context.Background(), rec); err == nil {
				t.Fatal("expected error for path-traversal owner id")
			}
		})
	}
}

func TestValidRecordID(t *testing.T) {
	t.Parallel()
	for _, ok := range []string{"u1", "ethical_values", "a.b-c:d"} {
		if !ValidRecordID(ok) {
			t.Fatalf("expected valid: %q", ok)
		}
	}
	for _, bad := range []string{"", "../x", "a/b", "UPPER", ".hidden"} {
		if ValidRecordID(bad) {
			t.Fatalf("expected invalid: %q", bad)
		}
	}
}
