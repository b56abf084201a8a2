package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"io"

	"github.com/pkg/errors"
)

// passwordCipher builds the AES-256-GCM AEAD for key; the sealed form is
// base64(nonce || ciphertext).
func passwordCipher(key string) (cipher.AEAD, error) {
	if key == "" {
		return nil, errors.Errorf("%s is not set", EncryptionKeyEnv)
	}
	if len(key) != 32 {
		return nil, errors.Errorf("%s must be 32 bytes, got %d", EncryptionKeyEnv, len(key))
	}
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return nil, errors.Wrap(err, "aes cipher")
	}
	return cipher.NewGCM(block)
}

func decryptPassword(sealed, key string) (string, error) {
	aead, err := passwordCipher(key)
	if err != nil {
		return "", err
	}
	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", errors.Wrap(err, "decode password")
	}
	n := aead.NonceSize()
	if len(data) < n {
		return "", errors.New("encrypted password too short")
	}
	plain, err := aead.Open(nil, data[:n], data[n:], nil)
	if err != nil {
		return "", errors.Wrap(err, "open password")
	}
	return string(plain), nil
}

// EncryptPassword produces the enc:... form accepted in db.password.
func EncryptPassword(plain, key string) (string, error) {
	aead, err := passwordCipher(key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Wrap(err, "encrypt password")
	}
	sealed := aead.Seal(nonce, nonce, []byte(plain), nil)
	return encryptedPrefix + base64.StdEncoding.EncodeToString(sealed), nil
}
