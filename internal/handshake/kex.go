package handshake

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/zfogg/ascii-chat-sub008/internal/packet"
	"github.com/zfogg/ascii-chat-sub008/internal/session"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

// kdfInfoLabel binds the derived keys to this protocol and version, so a
// transcript collision against an unrelated protocol can't produce
// matching session keys.
var kdfInfoLabel = []byte("asciichat-session-keys-v1")

// exchangeKeys runs phase 3 (spec §4.8): generate an ephemeral X25519
// keypair, exchange public keys, compute the shared secret, and derive
// two independent directional keys via HKDF-SHA256 over the shared
// secret and the full transcript so far (everything exchanged in
// phases 1-3). The transcript binding means any tampering with the
// version or parameter negotiation changes the derived keys instead of
// just being caught after the fact.
func (d *driver) exchangeKeys(ctx context.Context, params Params) (sendKey, recvKey, sendPrefix []byte, err error) {
	var priv [32]byte
	if _, err := rand.Read(priv[:]); err != nil {
		return nil, nil, nil, failf(ReasonProtocol, "generate ephemeral key: %v", err)
	}
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, nil, nil, failf(ReasonProtocol, "derive ephemeral public key: %v", err)
	}

	var clientPub, serverPub []byte
	switch d.role {
	case RoleClient:
		if err := d.send(ctx, packet.TypeKeyExchangeInit, pub); err != nil {
			return nil, nil, nil, err
		}
		p, err := d.recv(ctx, packet.TypeKeyExchangeResponse)
		if err != nil {
			return nil, nil, nil, err
		}
		if len(p.Payload) != int(params.KexPublicKeySize) {
			return nil, nil, nil, failf(ReasonProtocol, "server kex public key is %d bytes, want %d", len(p.Payload), params.KexPublicKeySize)
		}
		clientPub, serverPub = pub, p.Payload

	case RoleServer:
		p, err := d.recv(ctx, packet.TypeKeyExchangeInit)
		if err != nil {
			return nil, nil, nil, err
		}
		if len(p.Payload) != int(params.KexPublicKeySize) {
			return nil, nil, nil, failf(ReasonProtocol, "client kex public key is %d bytes, want %d", len(p.Payload), params.KexPublicKeySize)
		}
		if err := d.send(ctx, packet.TypeKeyExchangeResponse, pub); err != nil {
			return nil, nil, nil, err
		}
		clientPub, serverPub = p.Payload, pub
	}

	shared, err := curve25519.X25519(priv[:], peerPublicKey(d.role, clientPub, serverPub))
	if err != nil {
		return nil, nil, nil, failf(ReasonProtocol, "compute shared secret: %v", err)
	}

	transcriptHash := sha256.Sum256(d.transcript)

	info := make([]byte, 0, len(kdfInfoLabel)+len(clientPub)+len(serverPub)+len(transcriptHash))
	info = append(info, kdfInfoLabel...)
	info = append(info, clientPub...)
	info = append(info, serverPub...)
	info = append(info, transcriptHash[:]...)

	kdf := hkdf.New(sha256.New, shared, nil, info)
	derived := make([]byte, 64)
	if _, err := io.ReadFull(kdf, derived); err != nil {
		return nil, nil, nil, failf(ReasonProtocol, "derive session keys: %v", err)
	}
	clientToServer := derived[:32]
	serverToClient := derived[32:64]

	prefix, err := session.RandomPrefix()
	if err != nil {
		return nil, nil, nil, failf(ReasonProtocol, "%v", err)
	}

	if d.role == RoleClient {
		return clientToServer, serverToClient, prefix, nil
	}
	return serverToClient, clientToServer, prefix, nil
}

func peerPublicKey(role Role, clientPub, serverPub []byte) []byte {
	if role == RoleClient {
		return serverPub
	}
	return clientPub
}
