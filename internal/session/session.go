// Package session implements the post-handshake encrypted channel from
// spec §4.9: AEAD-protected payloads (default XSalsa20-Poly1305 via
// golang.org/x/crypto/nacl/secretbox), independent per-direction nonce
// counters, associated-data binding to the framer header, and strict
// in-order delivery.
package session

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"sync/atomic"

	"github.com/zfogg/ascii-chat-sub008/internal/ametrics"
	"github.com/zfogg/ascii-chat-sub008/internal/packet"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24 // secretbox: 24-byte nonce
	// rekeyThreshold is the counter value at which a sender must stop
	// and force a rekey rather than risk nonce reuse on wrap (spec
	// §4.9: "on approach to 2^63 a rekey is mandatory").
	rekeyThreshold = uint64(1) << 63
)

// ErrAuthFailed is returned by Open on any AEAD authentication failure.
// Per spec §4.9 this is fatal for the whole session, not just the
// packet; callers must close the connection on receiving it.
var ErrAuthFailed = fmt.Errorf("session: authentication failed")

// ErrOutOfOrder is returned by Open when the packet's sequence number is
// not exactly one more than the last accepted sequence number.
var ErrOutOfOrder = fmt.Errorf("session: out-of-order or replayed sequence number")

// ErrNeedsRekey is returned by Seal once the send counter has reached
// rekeyThreshold.
var ErrNeedsRekey = fmt.Errorf("session: send nonce counter exhausted, rekey required")

// Session holds the keys and counters derived by a completed handshake
// for one connection. The zero value is not usable; construct with New.
type Session struct {
	clientID uint32

	sendKey    [keySize]byte
	sendPrefix [16]byte
	sendSeq    atomic.Uint64 // nonce counter for packets we send

	// recvKey decrypts packets sent by the peer; the nonce for each one
	// travels on the wire (it was generated from the peer's own send
	// prefix and counter), so no local receive-side prefix is needed
	// here.
	recvKey      [keySize]byte
	lastAccepted uint32
	haveReceived bool

	// failed is the first error Open returned; once set, every later
	// Open returns it without decrypting.
	failed error
}

// New constructs a Session from the keys and this side's send-nonce
// prefix derived during the handshake (spec §4.3 handshake context:
// "Derived session keys (send, receive)"). sendPrefix must be exactly
// 16 bytes (nonceSize - 8, the counter width).
func New(clientID uint32, sendKey, recvKey []byte, sendPrefix []byte) (*Session, error) {
	if len(sendKey) != keySize || len(recvKey) != keySize {
		return nil, fmt.Errorf("session: keys must be %d bytes", keySize)
	}
	if len(sendPrefix) != 16 {
		return nil, fmt.Errorf("session: nonce prefix must be 16 bytes")
	}
	s := &Session{clientID: clientID}
	copy(s.sendKey[:], sendKey)
	copy(s.recvKey[:], recvKey)
	copy(s.sendPrefix[:], sendPrefix)
	return s, nil
}

// RandomPrefix generates a fresh 16-byte nonce prefix for one side's
// sends. It is not exchanged separately: every sealed packet carries its
// full nonce.
func RandomPrefix() ([]byte, error) {
	p := make([]byte, 16)
	if _, err := rand.Read(p); err != nil {
		return nil, fmt.Errorf("session: generate nonce prefix: %w", err)
	}
	return p, nil
}

func nonceFor(prefix [16]byte, counter uint64) [nonceSize]byte {
	var n [nonceSize]byte
	copy(n[:16], prefix[:])
	n[16] = byte(counter >> 56)
	n[17] = byte(counter >> 48)
	n[18] = byte(counter >> 40)
	n[19] = byte(counter >> 32)
	n[20] = byte(counter >> 24)
	n[21] = byte(counter >> 16)
	n[22] = byte(counter >> 8)
	n[23] = byte(counter)
	return n
}

func associatedData(pktType packet.Type, seq, clientID uint32) []byte {
	aad := make([]byte, 10)
	aad[0] = byte(pktType >> 8)
	aad[1] = byte(pktType)
	aad[2] = byte(seq >> 24)
	aad[3] = byte(seq >> 16)
	aad[4] = byte(seq >> 8)
	aad[5] = byte(seq)
	aad[6] = byte(clientID >> 24)
	aad[7] = byte(clientID >> 16)
	aad[8] = byte(clientID >> 8)
	aad[9] = byte(clientID)
	return aad
}

// Seal encrypts plaintext for the given outgoing packet type and
// sequence number, binding both (plus the client ID) as associated
// data: secretbox has no native AAD parameter, so the AAD is prepended
// to the plaintext before sealing and stripped again on Open, which
// achieves the same tamper-detection property (a mismatch between the
// recomputed AAD and the one embedded in the authenticated plaintext
// surfaces as ErrAuthFailed). The returned bytes are
// nonce(24) || tag(16) || ciphertext: secretbox places its Poly1305 tag
// ahead of the ciphertext, and Seal keeps that order (the tag is not
// moved to the end).
func (s *Session) Seal(pktType packet.Type, seq uint32, plaintext []byte) ([]byte, error) {
	counter := s.sendSeq.Add(1) - 1
	if counter >= rekeyThreshold {
		return nil, ErrNeedsRekey
	}
	nonce := nonceFor(s.sendPrefix, counter)

	aad := associatedData(pktType, seq, s.clientID)
	combined := make([]byte, 0, len(aad)+len(plaintext))
	combined = append(combined, aad...)
	combined = append(combined, plaintext...)

	out := make([]byte, 0, nonceSize+len(combined)+secretbox.Overhead)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, combined, &nonce, &s.sendKey)

	ametrics.SessionPacketsSent.Inc()
	ametrics.SessionPacketsRate.Mark(1)
	ametrics.SessionBytesSent.Add(int64(len(plaintext)))
	return out, nil
}

// Open decrypts and authenticates sealed (as produced by Seal on the
// peer's send side), verifying that pktType/seq match what was
// authenticated and that seq is exactly one more than the last accepted
// sequence number (spec §4.9: "sequence numbers must strictly
// increase by 1"). Any failure here is fatal for the session.
func (s *Session) Open(pktType packet.Type, seq uint32, sealed []byte) ([]byte, error) {
	if s.failed != nil {
		return nil, s.failed
	}
	if len(sealed) < nonceSize+secretbox.Overhead {
		ametrics.SessionDecryptFailures.Inc()
		s.failed = ErrAuthFailed
		return nil, ErrAuthFailed
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])

	opened, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.recvKey)
	if !ok {
		ametrics.SessionDecryptFailures.Inc()
		s.failed = ErrAuthFailed
		return nil, ErrAuthFailed
	}

	expectedAAD := associatedData(pktType, seq, s.clientID)
	if len(opened) < len(expectedAAD) || !bytes.Equal(opened[:len(expectedAAD)], expectedAAD) {
		ametrics.SessionDecryptFailures.Inc()
		s.failed = ErrAuthFailed
		return nil, ErrAuthFailed
	}

	// The first received packet establishes the baseline sequence
	// number; every subsequent one must be exactly one more.
	if s.haveReceived && seq != s.lastAccepted+1 {
		s.failed = ErrOutOfOrder
		return nil, ErrOutOfOrder
	}
	s.lastAccepted = seq
	s.haveReceived = true

	plaintext := append([]byte(nil), opened[len(expectedAAD):]...)
	ametrics.SessionPacketsRecv.Inc()
	ametrics.SessionBytesRecv.Add(int64(len(plaintext)))
	return plaintext, nil
}

// NeedsRekey reports whether the send counter is close enough to
// exhaustion that the caller should negotiate fresh session keys before
// sending more packets.
func (s *Session) NeedsRekey() bool {
	return s.sendSeq.Load() >= rekeyThreshold-1<<20
}

// Zero overwrites both session keys. Call on every exit path (spec §9).
func (s *Session) Zero() {
	for i := range s.sendKey {
		s.sendKey[i] = 0
	}
	for i := range s.recvKey {
		s.recvKey[i] = 0
	}
}
