package secret

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/hkdf"
)

// Prefix marks values produced by Encrypt. Stored values without it are
// treated as plaintext so keys saved before encryption was enabled keep working.
const Prefix = "EURDENC_"

var (
	ErrMissingSecrets = errors.New("secret store requires both auth key and salt")
	ErrMalformed      = errors.New("malformed encrypted value")
)

// Store encrypts small secrets (the merchant API key) for storage at rest
type Store interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(stored string) (string, error)
	IsEncrypted(stored string) bool
}

// AESStore is AES-256-CBC with PKCS#7 padding and a random IV per value.
// Output is Prefix + base64(iv || ciphertext).
type AESStore struct {
	key []byte
}

// NewAESStore derives the 32-byte key from the two host secrets via HKDF-SHA256
func NewAESStore(authKey, salt string) (*AESStore, error) {
	if authKey == "" || salt == "" {
		return nil, ErrMissingSecrets
	}

	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(authKey), []byte(salt), []byte("eurd-payments api key"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}

	return &AESStore{key: key}, nil
}

func (s *AESStore) IsEncrypted(stored string) bool {
	return strings.HasPrefix(stored, Prefix)
}

func (s *AESStore) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	out := make([]byte, aes.BlockSize+len(padded))
	iv := out[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return Prefix + base64.StdEncoding.EncodeToString(out), nil
}

func (s *AESStore) Decrypt(stored string) (string, error) {
	if !s.IsEncrypted(stored) {
		return stored, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, Prefix))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(raw) < 2*aes.BlockSize || len(raw)%aes.BlockSize != 0 {
		return "", ErrMalformed
	}

	block, err := aes.NewCipher(s.key)
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	iv, body := raw[:aes.BlockSize], raw[aes.BlockSize:]
	plain := make([]byte, len(body))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, body)

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrMalformed
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrMalformed
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrMalformed
		}
	}
	return data[:len(data)-n], nil
}
