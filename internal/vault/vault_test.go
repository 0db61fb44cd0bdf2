package vault

import (
	"bytes"
	"errors"
	"testing"
)

var testMaster = []byte("0123456789abcdef0123456789abcdef") // 32 bytes

func testVault(t *testing.T) *Vault {
	t.Helper()
	v, err := New(testMaster)
	if err != nil {
		t.Fatalf("New err: %v", err)
	}
	return v
}

func TestNew_RejectsBadMasterKey(t *testing.T) {
	t.Parallel()
	for _, k := range [][]byte{nil, []byte("short"), make([]byte, 31), make([]byte, 33)} {
		if _, err := New(k); !errors.Is(err, ErrKeyDerivation) {
			t.Fatalf("len=%d: expected ErrKeyDerivation, got %v", len(k), err)
		}
	}
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()
	v := testVault(t)

	msg := []byte(`{"environmental_importance":5} ✓ — secreto`)
	rec, err := v.Encrypt("u1", "ethical_values", msg)
	if err != nil {
		t.Fatalf("Encrypt err: %v", err)
	}
	if len(rec.Nonce) != nonceSize || len(rec.Tag) != tagSize {
		t.Fatalf("record shape: nonce=%d tag=%d", len(rec.Nonce), len(rec.Tag))
	}
	pt, err := v.Decrypt(rec)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if !bytes.Equal(pt, msg) {
		t.Fatalf("plaintext mismatch: got %q want %q", pt, msg)
	}
}

func TestEncrypt_FreshNoncePerCall(t *testing.T) {
	t.Parallel()
	v := testVault(t)

	a, err := v.Encrypt("u1", "k", []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := v.Encrypt("u1", "k", []byte("same"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a.Nonce, b.Nonce) {
		t.Fatal("nonce reusado")
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Fatal("ciphertext determinístico: nonce no está entrando al cifrado")
	}
}

// Flip de cualquier bit de ciphertext, tag o nonce => DecryptionFailure,
// nunca plaintext alterado.
func TestDecrypt_DetectsTamper(t *testing.T) {
	t.Parallel()
	v := testVault(t)

	rec, err := v.Encrypt("u1", "k", []byte("top secret"))
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name string
		mut  func(r *Record)
	}{
		{"ciphertext", func(r *Record) { r.Ciphertext[0] ^= 0x01 }},
		{"tag", func(r *Record) { r.Tag[0] ^= 0x01 }},
		{"nonce", func(r *Record) { r.Nonce[0] ^= 0x01 }},
		{"last_ct_byte", func(r *Record) { r.Ciphertext[len(r.Ciphertext)-1] ^= 0x80 }},
	}
	for _, tc := range cases {
		cp := cloneRecord(rec)
		tc.mut(cp)
		if _, err := v.Decrypt(cp); !errors.Is(err, ErrDecryptionFailure) {
			t.Fatalf("%s: expected ErrDecryptionFailure, got %v", tc.name, err)
		}
	}
}

func TestDecrypt_TruncatedRecordFailsClosed(t *testing.T) {
	t.Parallel()
	v := testVault(t)

	rec, err := v.Encrypt("u1", "k", []byte("data"))
	if err != nil {
		t.Fatal(err)
	}

	trunc := cloneRecord(rec)
	trunc.Tag = trunc.Tag[:tagSize-1]
	if _, err := v.Decrypt(trunc); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("truncated tag: got %v", err)
	}

	short := cloneRecord(rec)
	short.Nonce = short.Nonce[:nonceSize-1]
	if _, err := v.Decrypt(short); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("truncated nonce: got %v", err)
	}

	if _, err := v.Decrypt(nil); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("nil record: got %v", err)
	}
}

func TestDecrypt_WrongMasterKey(t *testing.T) {
	t.Parallel()
	v := testVault(t)
	rec, err := v.Encrypt("u1", "k", []byte("data"))
	if err != nil {
		t.Fatal(err)
	}

	other, err := New([]byte("ffffffffffffffffffffffffffffffff"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Decrypt(rec); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("wrong master key: got %v", err)
	}
}

// La identidad del registro va como associated data: re-etiquetar un registro
// a otro dueño u otro slot no descifra.
func TestDecrypt_RelabeledRecordFails(t *testing.T) {
	t.Parallel()
	v := testVault(t)
	rec, err := v.Encrypt("u1", "ethical_values", []byte("data"))
	if err != nil {
		t.Fatal(err)
	}

	stolen := cloneRecord(rec)
	stolen.OwnerID = "u2"
	if _, err := v.Decrypt(stolen); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("owner swap: got %v", err)
	}

	moved := cloneRecord(rec)
	moved.KeyID = "finance"
	if _, err := v.Decrypt(moved); !errors.Is(err, ErrDecryptionFailure) {
		t.Fatalf("key_id swap: got %v", err)
	}
}

func TestRecord_CompactRoundTrip(t *testing.T) {
	t.Parallel()
	v := testVault(t)
	rec, err := v.Encrypt("u1", "k", []byte("compact me"))
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := ParseCompact("u1", "k", rec.Compact())
	if err != nil {
		t.Fatalf("ParseCompact err: %v", err)
	}
	pt, err := v.Decrypt(parsed)
	if err != nil {
		t.Fatalf("Decrypt err: %v", err)
	}
	if string(pt) != "compact me" {
		t.Fatalf("got %q", pt)
	}

	if _, err := ParseCompact("u1", "k", "no-es-compacto"); err == nil {
		t.Fatal("expected parse error")
	}
}

func cloneRecord(r *Record) *Record {
	cp := *r
	cp.Nonce = append([]byte(nil), r.Nonce...)
	cp.Ciphertext = append([]byte(nil), r.Ciphertext...)
	cp.Tag = append([]byte(nil), r.Tag...)
	return &cp
}
