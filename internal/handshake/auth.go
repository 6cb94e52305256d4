package handshake

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"fmt"

	"github.com/zfogg/ascii-chat-sub008/internal/identity"
	"github.com/zfogg/ascii-chat-sub008/internal/packet"
)

// authenticate runs phase 4 (spec §4.8). Authentication is mutual but
// asymmetric in how the peer's key is trusted: the server checks the
// client's key against a fixed authorized-keys list, while the client
// checks the server's key against its TOFU known_hosts store — the
// server has no equivalent of "first contact".
func (d *driver) authenticate(ctx context.Context, params Params) (ed25519.PublicKey, error) {
	if d.cfg.Identity == nil {
		return nil, failf(ReasonProtocol, "verification enabled but no local identity configured")
	}

	switch d.role {
	case RoleServer:
		clientPub, err := d.challengePeer(ctx)
		if err != nil {
			return nil, err
		}
		if !containsKey(d.cfg.AuthorizedKeys, clientPub) {
			return nil, failf(ReasonAuthRejected, "client key not in authorized_keys")
		}
		if err := d.respondToChallenge(ctx); err != nil {
			return nil, err
		}
		return clientPub, nil

	case RoleClient:
		if err := d.respondToChallenge(ctx); err != nil {
			return nil, err
		}
		serverPub, err := d.challengePeer(ctx)
		if err != nil {
			return nil, err
		}
		if d.cfg.InsecureSkipHostCheck {
			return serverPub, nil
		}
		if d.cfg.KnownHosts == nil {
			return nil, failf(ReasonProtocol, "verification enabled but no known_hosts store configured")
		}
		if err := d.cfg.KnownHosts.Pin(d.cfg.PeerHost, d.cfg.PeerPort, serverPub); err != nil {
			return nil, failf(ReasonAuthRejected, "%v", err)
		}
		return serverPub, nil

	default:
		return nil, fmt.Errorf("handshake: unknown role %v", d.role)
	}
}

// challengePeer sends a fresh nonce as AuthChallenge and validates the
// AuthResponse that comes back, returning the peer's claimed public key.
// It does not consult any trust store — that is the caller's job, since
// server and client trust the result differently.
func (d *driver) challengePeer(ctx context.Context) (ed25519.PublicKey, error) {
	nonce, err := randomNonce32()
	if err != nil {
		return nil, failf(ReasonProtocol, "%v", err)
	}
	if err := d.send(ctx, packet.TypeAuthChallenge, nonce); err != nil {
		return nil, err
	}
	p, err := d.recv(ctx, packet.TypeAuthResponse)
	if err != nil {
		return nil, err
	}
	sig, pub, err := splitAuthResponse(p.Payload)
	if err != nil {
		return nil, failf(ReasonProtocol, "%v", err)
	}
	if !identity.Verify(pub, nonce, sig) {
		return nil, failf(ReasonAuthRejected, "signature does not verify against presented key")
	}
	return pub, nil
}

// respondToChallenge waits for the peer's AuthChallenge and answers with
// this side's signature over the nonce plus its public key.
func (d *driver) respondToChallenge(ctx context.Context) error {
	p, err := d.recv(ctx, packet.TypeAuthChallenge)
	if err != nil {
		return err
	}
	sig, err := d.cfg.Identity.Sign(p.Payload)
	if err != nil {
		return failf(ReasonProtocol, "sign auth challenge: %v", err)
	}
	resp := make([]byte, 0, len(sig)+ed25519.PublicKeySize)
	resp = append(resp, sig...)
	resp = append(resp, d.cfg.Identity.PublicKey()...)
	return d.send(ctx, packet.TypeAuthResponse, resp)
}

func splitAuthResponse(payload []byte) (sig []byte, pub ed25519.PublicKey, err error) {
	want := ed25519.SignatureSize + ed25519.PublicKeySize
	if len(payload) != want {
		return nil, nil, fmt.Errorf("auth response is %d bytes, want %d", len(payload), want)
	}
	sig = append([]byte(nil), payload[:ed25519.SignatureSize]...)
	pub = append(ed25519.PublicKey(nil), payload[ed25519.SignatureSize:]...)
	return sig, pub, nil
}

func containsKey(keys []ed25519.PublicKey, want ed25519.PublicKey) bool {
	for _, k := range keys {
		if bytes.Equal(k, want) {
			return true
		}
	}
	return false
}
