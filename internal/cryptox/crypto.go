/* e-gov 포털 비밀번호 저장용 AES-GCM 암호화 유틸리티 */

package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
)

var ErrKeyMissing = errors.New("encryption key is not configured")

// DeriveKey는 환경 변수의 문자열 키에서 32바이트 AES 키를 파생한다.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrKeyMissing
	}
	hash := sha256.Sum256([]byte(secret))
	return hash[:], nil
}

// Encrypt는 평문을 AES-GCM으로 암호화하고 암호문과 12바이트 nonce를 반환한다.
// nonce는 암호화마다 새로 생성됨
func Encrypt(plaintext, key []byte) (ciphertext, nonce []byte, err error) {
	nonce = make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)
	return ciphertext, nonce, nil
}

// Decrypt는 Encrypt로 만든 암호문을 복호화한다. 키와 nonce가 같아야 함
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return aesgcm.Open(nil, nonce, ciphertext, nil)
}
