package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func genKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return priv
}

func signToken(t *testing.T, priv *rsa.PrivateKey, token []byte) []byte {
	t.Helper()
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA1, token)
	require.NoError(t, err)
	return sig
}

func TestKeyEncodeDecodeRoundTrip(t *testing.T) {
	priv := genKey(t)

	payload, err := EncodeKey(&priv.PublicKey, "user@host")
	require.NoError(t, err)

	key, err := ParseKey(payload)
	require.NoError(t, err)
	assert.Equal(t, "user@host", key.Comment)
	assert.Equal(t, 0, key.Public.N.Cmp(priv.PublicKey.N))
	assert.Equal(t, priv.PublicKey.E, key.Public.E)
}

func TestParseKeyTrailingNul(t *testing.T) {
	priv := genKey(t)
	payload, err := EncodeKey(&priv.PublicKey, "u@h")
	require.NoError(t, err)

	key, err := ParseKey(append(payload, 0))
	require.NoError(t, err)
	assert.Equal(t, "u@h", key.Comment)
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	_, err := ParseKey([]byte("not base64 at all ("))
	assert.ErrorIs(t, err, ErrMalformedKey)

	_, err = ParseKey([]byte("QUJD")) // 合法 base64，长度不对
	assert.ErrorIs(t, err, ErrKeyLength)
}

func TestGenerateToken(t *testing.T) {
	a, err := New(Config{Required: true}, nil)
	require.NoError(t, err)

	t1, err := a.GenerateToken()
	require.NoError(t, err)
	t2, err := a.GenerateToken()
	require.NoError(t, err)

	assert.Len(t, t1, TokenSize)
	assert.NotEqual(t, t1, t2)
}

func TestVerifySignatureWithAuthorizedKey(t *testing.T) {
	priv := genKey(t)
	payload, err := EncodeKey(&priv.PublicKey, "u@h")
	require.NoError(t, err)

	a, err := New(Config{
		Required:       true,
		AuthorizedKeys: []string{string(payload)},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, a.KnownKeyCount())

	token, err := a.GenerateToken()
	require.NoError(t, err)

	assert.True(t, a.VerifySignature(token, signToken(t, priv, token)))
	assert.False(t, a.VerifySignature(token, []byte("bogus")))

	// 换一把钥匙签名不过
	other := genKey(t)
	assert.False(t, a.VerifySignature(token, signToken(t, other, token)))
}

func TestConfirmPublicKeyPolicy(t *testing.T) {
	priv := genKey(t)
	payload, err := EncodeKey(&priv.PublicKey, "dev@box")
	require.NoError(t, err)

	// 策略拒绝
	deny, err := New(Config{Required: true}, func(*Key) bool { return false })
	require.NoError(t, err)
	assert.False(t, deny.ConfirmPublicKey(payload))
	assert.Equal(t, 0, deny.KnownKeyCount())

	// 策略接受后，签名即可通过
	allow, err := New(Config{Required: true}, func(k *Key) bool {
		return k.Comment == "dev@box"
	})
	require.NoError(t, err)
	require.True(t, allow.ConfirmPublicKey(payload))
	assert.Equal(t, 1, allow.KnownKeyCount())

	token, err := allow.GenerateToken()
	require.NoError(t, err)
	assert.True(t, allow.VerifySignature(token, signToken(t, priv, token)))
}

func TestConfirmPublicKeyDefaultPolicy(t *testing.T) {
	priv := genKey(t)
	payload, err := EncodeKey(&priv.PublicKey, "")
	require.NoError(t, err)

	auto, err := New(Config{Required: true, AllowNewKeys: true}, nil)
	require.NoError(t, err)
	assert.True(t, auto.ConfirmPublicKey(payload))

	strict, err := New(Config{Required: true}, nil)
	require.NoError(t, err)
	assert.False(t, strict.ConfirmPublicKey(payload))
}

func TestBadTokenLengthRejected(t *testing.T) {
	a, err := New(Config{Required: true}, nil)
	require.NoError(t, err)
	assert.False(t, a.VerifySignature([]byte("short"), []byte("sig")))
}
