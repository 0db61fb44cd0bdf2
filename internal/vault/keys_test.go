package vault

import (
	"bytes"
	"errors"
	"testing"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	t.Parallel()
	a, err := deriveKey(testMaster, "u1")
	if err != nil {
		t.Fatalf("deriveKey err: %v", err)
	}
	b, err := deriveKey(testMaster, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("derivación no determinística")
	}
	if len(a) != masterKeyLength {
		t.Fatalf("key len: %d", len(a))
	}
}

func TestDeriveKey_DistinctPerUser(t *testing.T) {
	t.Parallel()
	a, err := deriveKey(testMaster, "u1")
	if err != nil {
		t.Fatal(err)
	}
	b, err := deriveKey(testMaster, "u2")
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("dos usuarios comparten clave")
	}
	// Ni la maestra se filtra como clave derivada
	if bytes.Equal(a, testMaster) || bytes.Equal(b, testMaster) {
		t.Fatal("clave derivada igual a la maestra")
	}
}

func TestDeriveKey_Errors(t *testing.T) {
	t.Parallel()
	if _, err := deriveKey([]byte("short"), "u1"); !errors.Is(err, ErrKeyDerivation) {
		t.Fatalf("short master: got %v", err)
	}
	if _, err := deriveKey(testMaster, ""); !errors.Is(err, ErrKeyDerivation) {
		t.Fatalf("empty owner: got %v", err)
	}
}
