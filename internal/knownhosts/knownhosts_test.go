package knownhosts

import (
	"crypto/ed25519"
	"crypto/rand"
	"path/filepath"
	"testing"
)

func genKey(t *testing.T) ed25519.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return pub
}

func TestPinAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts")
	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	pub := genKey(t)

	if _, ok := s.Lookup("example.com", 7744); ok {
		t.Fatal("expected no entry before pinning")
	}
	if err := s.Pin("example.com", 7744, pub); err != nil {
		t.Fatalf("Pin: %v", err)
	}
	got, ok := s.Lookup("example.com", 7744)
	if !ok || string(got) != string(pub) {
		t.Fatal("expected pinned key to be retrievable")
	}

	// Reload from disk and confirm persistence.
	s2, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	got2, ok := s2.Lookup("example.com", 7744)
	if !ok || string(got2) != string(pub) {
		t.Fatal("expected pinned key to survive reload")
	}
}

func TestPin_SameKeyIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts")
	s, _ := Load(path)
	pub := genKey(t)
	if err := s.Pin("host", 1, pub); err != nil {
		t.Fatalf("first pin: %v", err)
	}
	if err := s.Pin("host", 1, pub); err != nil {
		t.Fatalf("second pin with same key should succeed: %v", err)
	}
}

func TestPin_KeyChangedRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "known_hosts")
	s, _ := Load(path)
	if err := s.Pin("host", 1, genKey(t)); err != nil {
		t.Fatalf("first pin: %v", err)
	}
	err := s.Pin("host", 1, genKey(t))
	if err == nil {
		t.Fatal("expected ErrHostKeyChanged")
	}
	if _, ok := err.(*ErrHostKeyChanged); !ok {
		t.Fatalf("got %T, want *ErrHostKeyChanged", err)
	}
}
