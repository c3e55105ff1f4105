package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_Deterministic(t *testing.T) {
	key1, err := DeriveKey("server-secret")
	require.NoError(t, err)
	key2, err := DeriveKey("server-secret")
	require.NoError(t, err)

	// 같은 입력 -> 같은 키
	assert.Equal(t, key1, key2)
	assert.Len(t, key1, 32)
}

func TestDeriveKey_EmptySecret(t *testing.T) {
	_, err := DeriveKey("")
	assert.ErrorIs(t, err, ErrKeyMissing)
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key, err := DeriveKey("server-secret")
	require.NoError(t, err)

	plaintext := []byte("egov-portal-password")
	ciphertext, nonce, err := Encrypt(plaintext, key)
	require.NoError(t, err)
	assert.Len(t, nonce, 12)
	assert.NotEqual(t, plaintext, ciphertext)

	decrypted, err := Decrypt(ciphertext, nonce, key)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestDecrypt_WrongKey(t *testing.T) {
	key1, _ := DeriveKey("secret-one")
	key2, _ := DeriveKey("secret-two")

	ciphertext, nonce, err := Encrypt([]byte("egov-portal-password"), key1)
	require.NoError(t, err)

	_, err = Decrypt(ciphertext, nonce, key2)
	assert.Error(t, err)
}

func TestEncrypt_FreshNonce(t *testing.T) {
	key, _ := DeriveKey("server-secret")

	_, nonce1, err := Encrypt([]byte("same input"), key)
	require.NoError(t, err)
	_, nonce2, err := Encrypt([]byte("same input"), key)
	require.NoError(t, err)

	// 같은 평문이라도 nonce는 매번 달라야 함
	assert.NotEqual(t, nonce1, nonce2)
}
