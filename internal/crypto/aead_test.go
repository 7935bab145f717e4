package crypto

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/chacha20poly1305"
)

func newTestCipher(t *testing.T, algorithm string) Cipher {
	t.Helper()
	kc, err := NewKeyChain(testMasterKey())
	require.NoError(t, err)
	t.Cleanup(kc.Destroy)

	c, err := NewAEADCipher(kc, algorithm)
	require.NoError(t, err)
	return c
}

func TestAEADCipher_RoundTrip(t *testing.T) {
	for _, algorithm := range []string{"", AlgorithmAESGCM, AlgorithmXChaCha20Poly1305} {
		t.Run("algorithm="+algorithm, func(t *testing.T) {
			c := newTestCipher(t, algorithm)

			ct, iv, err := c.Encrypt("data-store", `{"a":1,"b":"x"}`)
			require.NoError(t, err)
			assert.NotEmpty(t, ct)
			assert.NotEmpty(t, iv)

			plain, err := c.Decrypt("data-store", ct, iv)
			require.NoError(t, err)
			assert.Equal(t, `{"a":1,"b":"x"}`, plain)
		})
	}
}

func TestAEADCipher_FreshIVPerCall(t *testing.T) {
	c := newTestCipher(t, AlgorithmAESGCM)

	ct1, iv1, err := c.Encrypt("a", "same")
	require.NoError(t, err)
	ct2, iv2, err := c.Encrypt("a", "same")
	require.NoError(t, err)

	assert.NotEqual(t, iv1, iv2)
	assert.NotEqual(t, ct1, ct2)
}

func TestAEADCipher_IVText(t *testing.T) {
	gcm := newTestCipher(t, AlgorithmAESGCM)
	_, iv, err := gcm.Encrypt("a", "x")
	require.NoError(t, err)
	raw, err := base64.StdEncoding.DecodeString(iv)
	require.NoError(t, err)
	assert.Len(t, raw, 12)

	xc := newTestCipher(t, AlgorithmXChaCha20Poly1305)
	_, iv, err = xc.Encrypt("a", "x")
	require.NoError(t, err)
	raw, err = base64.StdEncoding.DecodeString(iv)
	require.NoError(t, err)
	assert.Len(t, raw, chacha20poly1305.NonceSizeX)
}

func TestAEADCipher_DecryptFailures(t *testing.T) {
	c := newTestCipher(t, AlgorithmAESGCM)
	ct, iv, err := c.Encrypt("data-store", "secret")
	require.NoError(t, err)

	tampered := append([]byte(nil), ct...)
	tampered[0] ^= 0xff

	tests := []struct {
		name    string
		alias   string
		ct      []byte
		iv      string
		wantErr error
	}{
		{name: "tampered ciphertext", alias: "data-store", ct: tampered, iv: iv, wantErr: ErrDecryption},
		{name: "wrong alias", alias: "other", ct: ct, iv: iv, wantErr: ErrDecryption},
		{name: "iv not base64", alias: "data-store", ct: ct, iv: "!!!", wantErr: ErrInvalidIV},
		{name: "iv wrong length", alias: "data-store", ct: ct, iv: base64.StdEncoding.EncodeToString([]byte{1, 2}), wantErr: ErrInvalidIV},
		{name: "empty ciphertext", alias: "data-store", ct: nil, iv: iv, wantErr: ErrDecryption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.alias, tt.ct, tt.iv)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, ErrCrypto)
		})
	}
}

func TestAEADCipher_WrongMasterKey(t *testing.T) {
	c := newTestCipher(t, AlgorithmXChaCha20Poly1305)
	ct, iv, err := c.Encrypt("a", "secret")
	require.NoError(t, err)

	other, err := NewKeyChain(make([]byte, MasterKeySize))
	require.NoError(t, err)
	defer other.Destroy()
	c2, err := NewAEADCipher(other, AlgorithmXChaCha20Poly1305)
	require.NoError(t, err)

	_, err = c2.Decrypt("a", ct, iv)
	assert.ErrorIs(t, err, ErrDecryption)
}

func TestNewAEADCipher_UnknownAlgorithm(t *testing.T) {
	kc, err := NewKeyChain(testMasterKey())
	require.NoError(t, err)
	defer kc.Destroy()

	_, err = NewAEADCipher(kc, "rot13")
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestAEADCipher_DestroyedKeyChain(t *testing.T) {
	kc, err := NewKeyChain(testMasterKey())
	require.NoError(t, err)
	c, err := NewAEADCipher(kc, "")
	require.NoError(t, err)

	kc.Destroy()

	_, _, err = c.Encrypt("a", "x")
	assert.ErrorIs(t, err, ErrKeyChainClosed)
}
