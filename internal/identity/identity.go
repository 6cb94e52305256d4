// Package identity implements the pluggable long-term identity-key
// abstraction from spec §4.8/§9: the handshake only ever calls Sign and
// PublicKey, and never learns which backing produced them (raw in-memory
// Ed25519, an OpenSSH-format key file, or a key held by an external
// signing agent).
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

// Identity is the capability set the handshake state machine depends
// on. Implementations must not block indefinitely in Sign; the
// handshake's per-phase deadline is the caller's responsibility.
type Identity interface {
	Sign(message []byte) ([]byte, error)
	PublicKey() ed25519.PublicKey
}

// Verify checks an Ed25519 signature produced by any Identity backing.
func Verify(pub ed25519.PublicKey, message, signature []byte) bool {
	return ed25519.Verify(pub, message, signature)
}

// InMemory holds a raw Ed25519 private key in process memory. This is
// the simplest backing and the one used by tests and the demo CLI.
type InMemory struct {
	priv ed25519.PrivateKey
}

// NewInMemory wraps an existing private key.
func NewInMemory(priv ed25519.PrivateKey) *InMemory {
	return &InMemory{priv: priv}
}

// GenerateInMemory creates a fresh random Ed25519 keypair.
func GenerateInMemory() (*InMemory, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("identity: generate key: %w", err)
	}
	return &InMemory{priv: priv}, nil
}

func (m *InMemory) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(m.priv, message), nil
}

func (m *InMemory) PublicKey() ed25519.PublicKey {
	return m.priv.Public().(ed25519.PublicKey)
}

// Zero overwrites the private key material. Call on every identity
// teardown path (spec §9 zeroization).
func (m *InMemory) Zero() {
	for i := range m.priv {
		m.priv[i] = 0
	}
}
