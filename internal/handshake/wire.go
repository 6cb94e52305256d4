package handshake

import (
	"encoding/binary"
	"fmt"
)

// encodeVersion lays out ProtocolVersion (spec §6): version:u16,
// revision:u16, supports_encryption:u8, reserved:u8.
func encodeVersion(version, revision uint16, supportsEncryption bool) []byte {
	buf := make([]byte, 6)
	binary.BigEndian.PutUint16(buf[0:2], version)
	binary.BigEndian.PutUint16(buf[2:4], revision)
	if supportsEncryption {
		buf[4] = 1
	}
	return buf
}

func decodeVersion(buf []byte) (version, revision uint16, supportsEncryption bool, err error) {
	if len(buf) < 6 {
		return 0, 0, false, fmt.Errorf("handshake: ProtocolVersion needs 6 bytes, have %d", len(buf))
	}
	version = binary.BigEndian.Uint16(buf[0:2])
	revision = binary.BigEndian.Uint16(buf[2:4])
	supportsEncryption = buf[4] != 0
	return version, revision, supportsEncryption, nil
}

// encodeCapabilities lays out CryptoCapabilities (spec §6): three u16
// masks.
func encodeCapabilities(kexMask, authMask, cipherMask uint16) []byte {
	buf := make([]byte, 6)
	binary.BigEndian.PutUint16(buf[0:2], kexMask)
	binary.BigEndian.PutUint16(buf[2:4], authMask)
	binary.BigEndian.PutUint16(buf[4:6], cipherMask)
	return buf
}

func decodeCapabilities(buf []byte) (kexMask, authMask, cipherMask uint16, err error) {
	if len(buf) < 6 {
		return 0, 0, 0, fmt.Errorf("handshake: CryptoCapabilities needs 6 bytes, have %d", len(buf))
	}
	return binary.BigEndian.Uint16(buf[0:2]), binary.BigEndian.Uint16(buf[2:4]), binary.BigEndian.Uint16(buf[4:6]), nil
}

// paramsWireSize is the fixed encoding length of CryptoParameters: three
// one-byte algorithm IDs, one verification flag byte, and seven u16
// field sizes (spec §6: "~20 bytes").
const paramsWireSize = 3 + 1 + 7*2

func encodeParameters(p Params) []byte {
	buf := make([]byte, paramsWireSize)
	buf[0] = byte(p.SelectedKex)
	buf[1] = byte(p.SelectedAuth)
	buf[2] = byte(p.SelectedCipher)
	if p.VerificationEnabled {
		buf[3] = 1
	}
	off := 4
	for _, v := range []uint16{
		p.KexPublicKeySize, p.AuthPublicKeySize, p.SignatureSize,
		p.SharedSecretSize, p.NonceSize, p.MacSize, p.HmacSize,
	} {
		binary.BigEndian.PutUint16(buf[off:off+2], v)
		off += 2
	}
	return buf
}

func decodeParameters(buf []byte) (Params, error) {
	if len(buf) < paramsWireSize {
		return Params{}, fmt.Errorf("handshake: CryptoParameters needs %d bytes, have %d", paramsWireSize, len(buf))
	}
	p := Params{
		SelectedKex:         KexAlgorithm(buf[0]),
		SelectedAuth:        AuthAlgorithm(buf[1]),
		SelectedCipher:      CipherAlgorithm(buf[2]),
		VerificationEnabled: buf[3] != 0,
	}
	off := 4
	read := func() uint16 {
		v := binary.BigEndian.Uint16(buf[off : off+2])
		off += 2
		return v
	}
	p.KexPublicKeySize = read()
	p.AuthPublicKeySize = read()
	p.SignatureSize = read()
	p.SharedSecretSize = read()
	p.NonceSize = read()
	p.MacSize = read()
	p.HmacSize = read()
	return p, nil
}
