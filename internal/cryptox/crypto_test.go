package cryptox

import (
	"bytes"
	"testing"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var algorithms = []Algorithm{AES256GCM, XChaCha20Poly1305}

func newKey(t *testing.T) []byte {
	t.Helper()
	return common.GenerateRandByteArray(KeySize)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		[]byte("1"),
		[]byte("Tr0ub4dor!23"),
		bytes.Repeat([]byte{0xff, 0x00}, 4096),
	}

	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			c, err := NewCipher(alg)
			require.NoError(t, err)
			key := newKey(t)

			for _, p := range payloads {
				ct, err := c.Encrypt(key, p)
				require.NoError(t, err)
				assert.Equal(t, byte(alg), ct[0])

				pt, err := c.Decrypt(key, ct)
				require.NoError(t, err)
				assert.True(t, bytes.Equal(p, pt), "round trip mismatch for %d-byte payload", len(p))
			}
		})
	}
}

func TestEncrypt_NonDeterministic(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			c, err := NewCipher(alg)
			require.NoError(t, err)
			key := newKey(t)

			a, err := c.Encrypt(key, []byte("same password"))
			require.NoError(t, err)
			b, err := c.Encrypt(key, []byte("same password"))
			require.NoError(t, err)
			assert.NotEqual(t, a, b)
		})
	}
}

func TestDecrypt_DetectsAnySingleByteTamper(t *testing.T) {
	for _, alg := range algorithms {
		t.Run(alg.String(), func(t *testing.T) {
			c, err := NewCipher(alg)
			require.NoError(t, err)
			key := newKey(t)

			ct, err := c.Encrypt(key, []byte("sensitive password data"))
			require.NoError(t, err)

			for i := range ct {
				tampered := bytes.Clone(ct)
				tampered[i] ^= 0x01

				pt, err := c.Decrypt(key, tampered)
				require.ErrorIs(t, err, common.ErrDecryption, "byte %d", i)
				require.Nil(t, pt)
			}
		})
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	c, err := NewCipher(AES256GCM)
	require.NoError(t, err)

	ct, err := c.Encrypt(newKey(t), []byte("secret"))
	require.NoError(t, err)

	_, err = c.Decrypt(newKey(t), ct)
	require.ErrorIs(t, err, common.ErrDecryption)
}

func TestDecrypt_Malformed(t *testing.T) {
	c, err := NewCipher(AES256GCM)
	require.NoError(t, err)
	key := newKey(t)

	ct, err := c.Encrypt(key, []byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		in   []byte
	}{
		{"nil", nil},
		{"header only", ct[:1]},
		{"truncated nonce", ct[:8]},
		{"truncated tag", ct[:len(ct)-1]},
		{"unknown algorithm", append([]byte{0x7f}, ct[1:]...)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt, err := c.Decrypt(key, tt.in)
			require.ErrorIs(t, err, common.ErrDecryption)
			require.Nil(t, pt)
		})
	}
}

func TestDecrypt_ReadsEitherAlgorithm(t *testing.T) {
	key := newKey(t)
	aes, err := NewCipher(AES256GCM)
	require.NoError(t, err)
	xc, err := NewCipher(XChaCha20Poly1305)
	require.NoError(t, err)

	ct, err := aes.Encrypt(key, []byte("written before switching"))
	require.NoError(t, err)

	pt, err := xc.Decrypt(key, ct)
	require.NoError(t, err)
	assert.Equal(t, "written before switching", string(pt))
}

func TestEncrypt_InvalidKeySize(t *testing.T) {
	c, err := NewCipher(AES256GCM)
	require.NoError(t, err)

	_, err = c.Encrypt([]byte("short"), []byte("x"))
	require.ErrorIs(t, err, common.ErrValidation)

	_, err = c.Decrypt([]byte("short"), []byte{1, 2, 3})
	require.ErrorIs(t, err, common.ErrDecryption)
}

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		in      string
		want    Algorithm
		wantErr bool
	}{
		{"", AES256GCM, false},
		{"AES-256-GCM", AES256GCM, false},
		{"xchacha20-poly1305", XChaCha20Poly1305, false},
		{"rot13", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, common.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewCipher_RejectsUnknownAlgorithm(t *testing.T) {
	_, err := NewCipher(Algorithm(99))
	require.Error(t, err)
}

func TestNewCipher_ReportsAlgorithm(t *testing.T) {
	for _, alg := range algorithms {
		c, err := NewCipher(alg)
		require.NoError(t, err)
		assert.Equal(t, alg, c.Algorithm())
	}
}
