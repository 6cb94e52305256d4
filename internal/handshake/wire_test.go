package handshake

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Wire encode/decode round-trips use testify's require for the
// multi-field comparisons below, where a plain testing.T would need one
// t.Errorf per field: the same repetitive-assertion tradeoff that
// justifies testify elsewhere in the pack (e.g. obinexusmk2-obiai's
// go-polycall binding tests).

func TestVersionRoundTrip(t *testing.T) {
	buf := encodeVersion(3, 7, true)
	version, revision, supportsEncryption, err := decodeVersion(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(3), version)
	require.Equal(t, uint16(7), revision)
	require.True(t, supportsEncryption)
}

func TestCapabilitiesRoundTrip(t *testing.T) {
	buf := encodeCapabilities(KexMaskX25519, AuthMaskEd25519, CipherMaskXSalsa20Poly1305)
	kex, auth, cipher, err := decodeCapabilities(buf)
	require.NoError(t, err)
	require.Equal(t, uint16(KexMaskX25519), kex)
	require.Equal(t, uint16(AuthMaskEd25519), auth)
	require.Equal(t, uint16(CipherMaskXSalsa20Poly1305), cipher)
}

func TestParametersRoundTrip(t *testing.T) {
	want := Params{
		SelectedKex:         KexX25519,
		SelectedAuth:        AuthEd25519,
		SelectedCipher:      CipherXSalsa20Poly1305,
		VerificationEnabled: true,
		KexPublicKeySize:    KexPublicKeySize,
		AuthPublicKeySize:   AuthPublicKeySize,
		SignatureSize:       SignatureSize,
		SharedSecretSize:    SharedSecretSize,
		NonceSize:           NonceSize,
		MacSize:             MacSize,
		HmacSize:            HmacSize,
	}
	buf := encodeParameters(want)
	require.Len(t, buf, paramsWireSize)

	got, err := decodeParameters(buf)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDecodeParameters_RejectsShortBuffer(t *testing.T) {
	_, err := decodeParameters(make([]byte, paramsWireSize-1))
	require.Error(t, err)
}
