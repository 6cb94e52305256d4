// Package handshake implements the multi-phase crypto handshake state
// machine from spec §4.8: version exchange, algorithm negotiation,
// ephemeral X25519 key exchange, optional Ed25519 peer authentication,
// and completion. It is driven by a single-threaded loop per connection
// (spec §9: "a single-threaded driver loop that inspects state and
// decides the next action"), grounded in the teacher's devp2p handshake
// (reference/p2p/handshake.go, reference/p2p/handshake_ecies.go)
// generalized from RLPx's fixed ECIES exchange to a negotiable
// kex/auth/cipher triple.
package handshake

import "fmt"

// State is a node in the handshake state machine (spec §4.8). Both
// roles share the enum; legal transitions differ by role.
type State int

const (
	Idle State = iota
	VersionExchanged
	ParametersNegotiated
	KeyExchanged
	Authenticating
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case VersionExchanged:
		return "VersionExchanged"
	case ParametersNegotiated:
		return "ParametersNegotiated"
	case KeyExchanged:
		return "KeyExchanged"
	case Authenticating:
		return "Authenticating"
	case Ready:
		return "Ready"
	case Failed:
		return "Failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Role distinguishes the two handshake participants; negotiation is
// asymmetric (the server picks algorithms, the client proposes masks).
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// FailReason is attached to the Failed absorbing state (spec §4.8,
// §7).
type FailReason int

const (
	ReasonNone FailReason = iota
	ReasonUnsupportedVersion
	ReasonNoCommonAlgorithm
	ReasonProtocol
	ReasonTimeout
	ReasonCancelled
	ReasonAuthRejected
	ReasonNetwork
)

func (r FailReason) String() string {
	switch r {
	case ReasonNone:
		return "None"
	case ReasonUnsupportedVersion:
		return "UnsupportedVersion"
	case ReasonNoCommonAlgorithm:
		return "NoCommonAlgorithm"
	case ReasonProtocol:
		return "Protocol"
	case ReasonTimeout:
		return "Timeout"
	case ReasonCancelled:
		return "Cancelled"
	case ReasonAuthRejected:
		return "AuthRejected"
	case ReasonNetwork:
		return "Network"
	default:
		return fmt.Sprintf("FailReason(%d)", int(r))
	}
}

// Error reports a terminal handshake failure.
type Error struct {
	Reason FailReason
	Msg    string
}

func (e *Error) Error() string { return fmt.Sprintf("handshake: %s: %s", e.Reason, e.Msg) }

func failf(reason FailReason, format string, args ...interface{}) *Error {
	return &Error{Reason: reason, Msg: fmt.Sprintf(format, args...)}
}

// KexAlgorithm identifies a key-exchange algorithm. Only one is defined;
// the mask/enum machinery exists so a future algorithm slots in without
// a wire-format change.
type KexAlgorithm uint8

const (
	KexX25519 KexAlgorithm = 1
)

// AuthAlgorithm identifies a peer-authentication algorithm.
type AuthAlgorithm uint8

const (
	AuthNone     AuthAlgorithm = 0
	AuthEd25519  AuthAlgorithm = 1
)

// CipherAlgorithm identifies the AEAD used for the encrypted session.
type CipherAlgorithm uint8

const (
	CipherXSalsa20Poly1305 CipherAlgorithm = 1
)

// Bitmasks advertised in CryptoCapabilities (spec §6). Servers pick the
// strongest mutually supported algorithm per class, with deterministic
// tie-breaking by enum order (lowest numeric ID wins, since there is
// currently exactly one option per class).
const (
	KexMaskX25519 uint16 = 1 << (KexX25519 - 1)

	AuthMaskNone    uint16 = 1 << AuthNone
	AuthMaskEd25519 uint16 = 1 << (AuthEd25519 - 1 + 1)

	CipherMaskXSalsa20Poly1305 uint16 = 1 << (CipherXSalsa20Poly1305 - 1)
)

// MinSupportedVersion is the lowest protocol version this
// implementation accepts (spec §4.8 phase 1).
const MinSupportedVersion uint16 = 1

// CurrentVersion is the version this implementation advertises.
const CurrentVersion uint16 = 1
const CurrentRevision uint16 = 0

// Field sizes carried in CryptoParameters (spec §6).
const (
	KexPublicKeySize    = 32 // X25519
	AuthPublicKeySize   = 32 // Ed25519
	SignatureSize       = 64 // Ed25519
	SharedSecretSize    = 32
	NonceSize           = 24 // XSalsa20-Poly1305 (secretbox)
	MacSize             = secretboxOverhead
	HmacSize            = 0 // unused by the default cipher; carried for wire-format parity with spec §6
)

const secretboxOverhead = 16

// Params holds the negotiated algorithm selection and field sizes,
// materialized identically on both sides after phase 2.
type Params struct {
	SelectedKex         KexAlgorithm
	SelectedAuth        AuthAlgorithm
	SelectedCipher      CipherAlgorithm
	VerificationEnabled bool
	KexPublicKeySize    uint16
	AuthPublicKeySize   uint16
	SignatureSize       uint16
	SharedSecretSize    uint16
	NonceSize           uint16
	MacSize             uint16
	HmacSize            uint16
}
