// Package packet implements the 22-byte framed packet header described
// in spec §3/§4.7: a fixed magic, typed payload, CRC32 integrity check,
// and per-direction sequence number. Sequence ordering and replay
// semantics belong to internal/session, not here.
package packet

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// Magic is the fixed 32-bit constant identifying this wire protocol.
// Implementations must keep the value they adopt stable (§6); this one
// spells "ACSC" (ascii-chat-sub) in ASCII.
const Magic uint32 = 0x41435343

// HeaderSize is the fixed on-wire header length in bytes: magic(4),
// type(2), length(4), sequence(4), CRC32(4), client ID(4).
const HeaderSize = 22

// DefaultMaxPayloadSize bounds a single packet payload (§3).
const DefaultMaxPayloadSize = 16 * 1024 * 1024

// Type enumerates the packet kinds carried over the wire (§3).
type Type uint16

const (
	TypeAsciiFrame Type = iota + 1
	TypeImageFrame
	TypePing
	TypePong
	TypeProtocolVersion
	TypeCryptoCapabilities
	TypeCryptoParameters
	TypeKeyExchangeInit
	TypeKeyExchangeResponse
	TypeAuthChallenge
	TypeAuthResponse
	TypeHandshakeComplete
	TypeEncryptedData
	TypeSessionClose
)

func (t Type) String() string {
	switch t {
	case TypeAsciiFrame:
		return "AsciiFrame"
	case TypeImageFrame:
		return "ImageFrame"
	case TypePing:
		return "Ping"
	case TypePong:
		return "Pong"
	case TypeProtocolVersion:
		return "ProtocolVersion"
	case TypeCryptoCapabilities:
		return "CryptoCapabilities"
	case TypeCryptoParameters:
		return "CryptoParameters"
	case TypeKeyExchangeInit:
		return "KeyExchangeInit"
	case TypeKeyExchangeResponse:
		return "KeyExchangeResponse"
	case TypeAuthChallenge:
		return "AuthChallenge"
	case TypeAuthResponse:
		return "AuthResponse"
	case TypeHandshakeComplete:
		return "HandshakeComplete"
	case TypeEncryptedData:
		return "EncryptedData"
	case TypeSessionClose:
		return "SessionClose"
	default:
		return fmt.Sprintf("Type(%d)", uint16(t))
	}
}

// ErrorKind tags a decode failure, per spec §4.7.
type ErrorKind int

const (
	MagicMismatch ErrorKind = iota
	LengthExceeded
	Truncated
	CrcMismatch
	UnknownType
)

func (k ErrorKind) String() string {
	switch k {
	case MagicMismatch:
		return "MagicMismatch"
	case LengthExceeded:
		return "LengthExceeded"
	case Truncated:
		return "Truncated"
	case CrcMismatch:
		return "CrcMismatch"
	case UnknownType:
		return "UnknownType"
	default:
		return "Unknown"
	}
}

// Error wraps a framer failure with its kind, for callers that need to
// branch on it (spec §7: Protocol errors are fatal for the connection).
type Error struct {
	Kind ErrorKind
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("packet: %s: %s", e.Kind, e.Msg) }

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Packet is one decoded frame: fixed header fields plus its payload.
type Packet struct {
	Type     Type
	Sequence uint32
	ClientID uint32
	Payload  []byte
}

// crcTable is the Castagnoli (CRC-32C) table, which crc32 computes with
// hardware acceleration (SSE4.2 CRC32 instruction / ARMv8 CRC extension)
// when the architecture supports it.
var crcTable = crc32.MakeTable(crc32.Castagnoli)

// Encode lays out the 22-byte header followed by the payload, per §4.7.
// maxPayloadSize of 0 means DefaultMaxPayloadSize.
func Encode(p Packet, maxPayloadSize uint32) ([]byte, error) {
	if maxPayloadSize == 0 {
		maxPayloadSize = DefaultMaxPayloadSize
	}
	if uint32(len(p.Payload)) > maxPayloadSize {
		return nil, newError(LengthExceeded, "payload %d bytes exceeds max %d", len(p.Payload), maxPayloadSize)
	}

	out := make([]byte, HeaderSize+len(p.Payload))
	binary.BigEndian.PutUint32(out[0:4], Magic)
	binary.BigEndian.PutUint16(out[4:6], uint16(p.Type))
	binary.BigEndian.PutUint32(out[6:10], uint32(len(p.Payload)))
	binary.BigEndian.PutUint32(out[10:14], p.Sequence)
	crc := crc32.Checksum(p.Payload, crcTable)
	binary.BigEndian.PutUint32(out[14:18], crc)
	binary.BigEndian.PutUint32(out[18:22], p.ClientID)
	copy(out[HeaderSize:], p.Payload)
	return out, nil
}

// Header is the fixed header portion as parsed by DecodeHeader,
// including the declared payload length so the caller can size its next
// read.
type Header struct {
	Type          Type
	PayloadLength uint32
	Sequence      uint32
	Crc           uint32
	ClientID      uint32
}

// DecodeHeader reads the first HeaderSize bytes of buf.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, newError(Truncated, "header needs %d bytes, have %d", HeaderSize, len(buf))
	}
	magic := binary.BigEndian.Uint32(buf[0:4])
	if magic != Magic {
		return Header{}, newError(MagicMismatch, "got 0x%08x, want 0x%08x", magic, Magic)
	}
	return Header{
		Type:          Type(binary.BigEndian.Uint16(buf[4:6])),
		PayloadLength: binary.BigEndian.Uint32(buf[6:10]),
		Sequence:      binary.BigEndian.Uint32(buf[10:14]),
		Crc:           binary.BigEndian.Uint32(buf[14:18]),
		ClientID:      binary.BigEndian.Uint32(buf[18:22]),
	}, nil
}

// Decode parses a complete header+payload buffer (as produced by
// Encode) into a Packet, validating length bound and CRC.
func Decode(buf []byte, maxPayloadSize uint32) (Packet, error) {
	if maxPayloadSize == 0 {
		maxPayloadSize = DefaultMaxPayloadSize
	}
	h, err := DecodeHeader(buf)
	if err != nil {
		return Packet{}, err
	}
	if h.PayloadLength > maxPayloadSize {
		return Packet{}, newError(LengthExceeded, "declared length %d exceeds max %d", h.PayloadLength, maxPayloadSize)
	}
	if !KnownType(h.Type) {
		return Packet{}, newError(UnknownType, "type %d", uint16(h.Type))
	}
	want := HeaderSize + int(h.PayloadLength)
	if len(buf) < want {
		return Packet{}, newError(Truncated, "need %d bytes, have %d", want, len(buf))
	}
	payload := buf[HeaderSize:want]
	if crc32.Checksum(payload, crcTable) != h.Crc {
		return Packet{}, newError(CrcMismatch, "payload fails CRC32 check")
	}

	out := make([]byte, len(payload))
	copy(out, payload)
	return Packet{
		Type:     h.Type,
		Sequence: h.Sequence,
		ClientID: h.ClientID,
		Payload:  out,
	}, nil
}

// KnownType reports whether t is one of the enumerated packet types.
func KnownType(t Type) bool {
	return t >= TypeAsciiFrame && t <= TypeSessionClose
}
