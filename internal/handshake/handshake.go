package handshake

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"
	"time"

	"github.com/zfogg/ascii-chat-sub008/internal/ametrics"
	"github.com/zfogg/ascii-chat-sub008/internal/identity"
	"github.com/zfogg/ascii-chat-sub008/internal/knownhosts"
	"github.com/zfogg/ascii-chat-sub008/internal/packet"
)

// Conn is the minimal transport the handshake needs: a byte stream.
// Cancellation is layered on top via context, not via Conn itself (see
// readWithContext); a real net.Conn satisfies this trivially.
type Conn interface {
	io.Reader
	io.Writer
}

// Config parameterizes one handshake run. Exactly one of
// AuthorizedKeys (server) or KnownHosts (client) is consulted, and only
// when VerificationEnabled is set.
type Config struct {
	ClientID            uint32
	PhaseTimeout        time.Duration
	MaxPayloadSize      uint32
	VerificationEnabled bool

	// Identity is this side's long-term signing key, required when
	// VerificationEnabled is true.
	Identity identity.Identity

	// AuthorizedKeys is consulted by the server to accept or reject the
	// client's identity key.
	AuthorizedKeys []ed25519.PublicKey

	// KnownHosts and PeerHost/PeerPort back the client's TOFU check of
	// the server's identity key.
	KnownHosts            *knownhosts.Store
	PeerHost              string
	PeerPort              int
	InsecureSkipHostCheck bool

	// KexMask/AuthMask/CipherMask are the client's advertised
	// capabilities (spec §4.8 phase 2). Servers always select from
	// whatever this implementation supports; there is no server-side
	// mask parameter because exactly one algorithm per class exists.
	KexMask    uint16
	AuthMask   uint16
	CipherMask uint16
}

func (c Config) withDefaults() Config {
	if c.PhaseTimeout == 0 {
		c.PhaseTimeout = 15 * time.Second
	}
	if c.MaxPayloadSize == 0 {
		c.MaxPayloadSize = packet.DefaultMaxPayloadSize
	}
	if c.KexMask == 0 {
		c.KexMask = KexMaskX25519
	}
	if c.CipherMask == 0 {
		c.CipherMask = CipherMaskXSalsa20Poly1305
	}
	if c.AuthMask == 0 {
		if c.VerificationEnabled {
			c.AuthMask = AuthMaskEd25519
		} else {
			c.AuthMask = AuthMaskNone
		}
	}
	return c
}

// Result is everything the session layer needs once the handshake
// reaches Ready.
type Result struct {
	Params       Params
	SendKey      []byte
	RecvKey      []byte
	SendPrefix   []byte
	PeerIdentity ed25519.PublicKey // nil when verification was not enabled
}

// driver holds the mutable state threaded through one handshake run. It
// is not safe for concurrent use — spec §9: "a single-threaded driver
// loop", matching the teacher's ECIES handshake structure
// (reference/p2p/handshake_ecies.go).
type driver struct {
	role       Role
	conn       Conn
	cfg        Config
	state      State
	seq        uint32
	transcript []byte // raw bytes of every exchanged message, in order
}

func newDriver(role Role, conn Conn, cfg Config) *driver {
	return &driver{role: role, conn: conn, cfg: cfg.withDefaults(), state: Idle}
}

// RunClient drives the client side of the handshake to completion.
func RunClient(ctx context.Context, conn Conn, cfg Config) (*Result, error) {
	d := newDriver(RoleClient, conn, cfg)
	return d.run(ctx)
}

// RunServer drives the server side of the handshake to completion.
func RunServer(ctx context.Context, conn Conn, cfg Config) (*Result, error) {
	d := newDriver(RoleServer, conn, cfg)
	return d.run(ctx)
}

func (d *driver) run(ctx context.Context) (result *Result, err error) {
	ametrics.HandshakeAttempts.Inc()
	start := time.Now()
	defer func() {
		if err != nil {
			ametrics.HandshakeFailures.Inc()
		} else {
			ametrics.HandshakeSuccesses.Inc()
			ametrics.HandshakeLatency.Observe(float64(time.Since(start).Milliseconds()))
		}
	}()

	phaseCtx, cancel := context.WithTimeout(ctx, d.cfg.PhaseTimeout)
	defer cancel()

	if _, err := d.exchangeVersion(phaseCtx); err != nil {
		return nil, d.abort(phaseCtx, err)
	}
	d.state = VersionExchanged

	params, err := d.negotiateParameters(phaseCtx)
	if err != nil {
		return nil, d.abort(phaseCtx, err)
	}
	d.state = ParametersNegotiated

	sendKey, recvKey, sendPrefix, err := d.exchangeKeys(phaseCtx, params)
	if err != nil {
		return nil, d.abort(phaseCtx, err)
	}
	d.state = KeyExchanged

	var peerIdentity ed25519.PublicKey
	if params.VerificationEnabled {
		d.state = Authenticating
		peerIdentity, err = d.authenticate(phaseCtx, params)
		if err != nil {
			return nil, d.abort(phaseCtx, err)
		}
	}

	if err := d.completeHandshake(phaseCtx); err != nil {
		return nil, d.abort(phaseCtx, err)
	}
	d.state = Ready

	return &Result{
		Params:       params,
		SendKey:      sendKey,
		RecvKey:      recvKey,
		SendPrefix:   sendPrefix,
		PeerIdentity: peerIdentity,
	}, nil
}

// abort transitions to Failed and, if the failure is local (not caused
// by a transport read error), makes a best-effort attempt to tell the
// peer why. The notification is fire-and-forget: the peer may be
// blocked writing its own next message rather than reading (e.g. an
// auth rejection can race with the other side's reciprocal challenge),
// so abort does not wait on it — it closes the transport instead, which
// is what actually unblocks a peer stuck mid-phase.
func (d *driver) abort(ctx context.Context, err error) error {
	d.state = Failed
	if herr, ok := err.(*Error); ok && herr.Reason != ReasonNetwork && herr.Reason != ReasonTimeout {
		go func() {
			notifyCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			d.seq++
			p := packet.Packet{Type: packet.TypeSessionClose, Sequence: d.seq, ClientID: d.cfg.ClientID, Payload: []byte{byte(herr.Reason)}}
			_ = writeWithContext(notifyCtx, d.conn, p, d.cfg.MaxPayloadSize)
		}()
	}
	if closer, ok := d.conn.(io.Closer); ok {
		_ = closer.Close()
	}
	return err
}

// send writes one handshake packet and appends its payload to the
// transcript.
func (d *driver) send(ctx context.Context, t packet.Type, payload []byte) error {
	d.seq++
	p := packet.Packet{Type: t, Sequence: d.seq, ClientID: d.cfg.ClientID, Payload: payload}
	if err := writeWithContext(ctx, d.conn, p, d.cfg.MaxPayloadSize); err != nil {
		return failf(ReasonNetwork, "write %s: %v", t, err)
	}
	d.transcript = append(d.transcript, payload...)
	return nil
}

// recvRaw reads one packet, requiring it to have the expected type
// (unless want is 0, meaning "any"). It does not touch the transcript:
// callers that pair a recv with a concurrent send (see sendRecv) need to
// control append order themselves so both peers build identical
// transcripts regardless of which side's I/O actually completes first.
// A TypeSessionClose from the peer is translated into the FailReason it
// carries.
func (d *driver) recvRaw(ctx context.Context, want packet.Type) (packet.Packet, error) {
	p, err := readWithContext(ctx, d.conn, d.cfg.MaxPayloadSize)
	if err != nil {
		if ctx.Err() != nil {
			return packet.Packet{}, failf(ReasonTimeout, "waiting for %s: %v", want, ctx.Err())
		}
		if perr, ok := err.(*packet.Error); ok {
			return packet.Packet{}, failf(ReasonProtocol, "%v", perr)
		}
		return packet.Packet{}, failf(ReasonNetwork, "reading %s: %v", want, err)
	}
	if p.Type == packet.TypeSessionClose {
		reason := ReasonProtocol
		if len(p.Payload) == 1 {
			reason = FailReason(p.Payload[0])
		}
		return packet.Packet{}, failf(reason, "peer closed handshake")
	}
	if want != 0 && p.Type != want {
		return packet.Packet{}, failf(ReasonProtocol, "expected %s, got %s", want, p.Type)
	}
	return p, nil
}

// recv is recvRaw plus the transcript append, for the common case where
// a recv is not racing a send of its own.
func (d *driver) recv(ctx context.Context, want packet.Type) (packet.Packet, error) {
	p, err := d.recvRaw(ctx, want)
	if err != nil {
		return packet.Packet{}, err
	}
	d.transcript = append(d.transcript, p.Payload...)
	return p, nil
}

// sendRecv issues a send and a recv concurrently and joins them. Both
// roles call this for the two phases where each side's first move is to
// send its own message before reading the peer's (version exchange and
// handshake completion): over a fully synchronous transport a plain
// send-then-recv would deadlock there, since both ends would be blocked
// writing with nobody yet reading. Transcript bytes are appended in a
// fixed (sent, received) order rather than completion order, so both
// sides end up with the same bytes regardless of scheduling.
func (d *driver) sendRecv(ctx context.Context, sendType packet.Type, sendPayload []byte, wantType packet.Type) (packet.Packet, error) {
	d.seq++
	p := packet.Packet{Type: sendType, Sequence: d.seq, ClientID: d.cfg.ClientID, Payload: sendPayload}

	sendCh := make(chan error, 1)
	go func() {
		sendCh <- writeWithContext(ctx, d.conn, p, d.cfg.MaxPayloadSize)
	}()

	recvPkt, recvErr := d.recvRaw(ctx, wantType)

	if sendErr := <-sendCh; sendErr != nil {
		return packet.Packet{}, failf(ReasonNetwork, "write %s: %v", sendType, sendErr)
	}
	d.transcript = append(d.transcript, sendPayload...)

	if recvErr != nil {
		return packet.Packet{}, recvErr
	}
	d.transcript = append(d.transcript, recvPkt.Payload...)
	return recvPkt, nil
}

func (d *driver) exchangeVersion(ctx context.Context) (uint16, error) {
	p, err := d.sendRecv(ctx, packet.TypeProtocolVersion, encodeVersion(CurrentVersion, CurrentRevision, true), packet.TypeProtocolVersion)
	if err != nil {
		return 0, err
	}
	version, _, _, err := decodeVersion(p.Payload)
	if err != nil {
		return 0, failf(ReasonProtocol, "%v", err)
	}
	if version < MinSupportedVersion {
		return 0, failf(ReasonUnsupportedVersion, "peer version %d below minimum %d", version, MinSupportedVersion)
	}
	return version, nil
}

// negotiateParameters runs phase 2. The client proposes masks; the
// server selects one algorithm per class (lowest enum value, since each
// class currently has exactly one member) and returns the materialized
// Params, which both sides adopt verbatim.
func (d *driver) negotiateParameters(ctx context.Context) (Params, error) {
	switch d.role {
	case RoleClient:
		if err := d.send(ctx, packet.TypeCryptoCapabilities, encodeCapabilities(d.cfg.KexMask, d.cfg.AuthMask, d.cfg.CipherMask)); err != nil {
			return Params{}, err
		}
		p, err := d.recv(ctx, packet.TypeCryptoParameters)
		if err != nil {
			return Params{}, err
		}
		params, err := decodeParameters(p.Payload)
		if err != nil {
			return Params{}, failf(ReasonProtocol, "%v", err)
		}
		return params, nil

	case RoleServer:
		p, err := d.recv(ctx, packet.TypeCryptoCapabilities)
		if err != nil {
			return Params{}, err
		}
		kexMask, authMask, cipherMask, err := decodeCapabilities(p.Payload)
		if err != nil {
			return Params{}, failf(ReasonProtocol, "%v", err)
		}

		params, err := selectParameters(kexMask, authMask, cipherMask, d.cfg.VerificationEnabled)
		if err != nil {
			return Params{}, err
		}
		if err := d.send(ctx, packet.TypeCryptoParameters, encodeParameters(params)); err != nil {
			return Params{}, err
		}
		return params, nil

	default:
		return Params{}, fmt.Errorf("handshake: unknown role %v", d.role)
	}
}

// selectParameters implements the server's deterministic tie-breaking:
// prefer the lowest enum value present in both this implementation's
// support and the client's mask.
func selectParameters(kexMask, authMask, cipherMask uint16, verificationEnabled bool) (Params, error) {
	if kexMask&KexMaskX25519 == 0 {
		return Params{}, failf(ReasonNoCommonAlgorithm, "no common key-exchange algorithm")
	}
	if cipherMask&CipherMaskXSalsa20Poly1305 == 0 {
		return Params{}, failf(ReasonNoCommonAlgorithm, "no common cipher")
	}
	selectedAuth := AuthNone
	if verificationEnabled {
		if authMask&AuthMaskEd25519 == 0 {
			return Params{}, failf(ReasonNoCommonAlgorithm, "no common auth algorithm")
		}
		selectedAuth = AuthEd25519
	}

	return Params{
		SelectedKex:         KexX25519,
		SelectedAuth:        selectedAuth,
		SelectedCipher:      CipherXSalsa20Poly1305,
		VerificationEnabled: verificationEnabled,
		KexPublicKeySize:    KexPublicKeySize,
		AuthPublicKeySize:   AuthPublicKeySize,
		SignatureSize:       SignatureSize,
		SharedSecretSize:    SharedSecretSize,
		NonceSize:           NonceSize,
		MacSize:             MacSize,
		HmacSize:            HmacSize,
	}, nil
}

func (d *driver) completeHandshake(ctx context.Context) error {
	_, err := d.sendRecv(ctx, packet.TypeHandshakeComplete, nil, packet.TypeHandshakeComplete)
	return err
}

// randomNonce32 returns 32 cryptographically random bytes, used for the
// AuthChallenge nonce.
func randomNonce32() ([]byte, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("handshake: generate nonce: %w", err)
	}
	return b, nil
}
