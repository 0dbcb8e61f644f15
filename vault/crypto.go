package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

const (
	seedLen  = 32
	saltLen  = 16
	nonceLen = 12
)

// deriveKey stretches the persisted random seed into the AES-256 key using
// argon2id. The salt is generated alongside the seed and persisted with it.
func deriveKey(seed, salt []byte) []byte {
	return argon2.IDKey(seed, salt, 1, 64*1024, 4, 32)
}

// encryptedBlob is the on-disk form of an encrypted record. JSON encoding
// base64s both fields.
type encryptedBlob struct {
	Ciphertext []byte `json:"ciphertext"`
	IV         []byte `json:"iv"`
}

// encryptRecord serializes v to JSON and encrypts it with AES-GCM under
// key. A fresh random 12-byte IV is generated per call; IVs are never
// reused with the same key.
func encryptRecord(v any, key []byte) (*encryptedBlob, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	iv := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncrypt, err)
	}

	return &encryptedBlob{
		Ciphertext: aesgcm.Seal(nil, iv, plaintext, nil),
		IV:         iv,
	}, nil
}

// decryptRecord authenticates and decrypts blob, unmarshaling the result
// into v. A tag mismatch or malformed ciphertext yields ErrDecrypt.
func decryptRecord(blob *encryptedBlob, key []byte, v any) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	if len(blob.IV) != aesgcm.NonceSize() {
		return fmt.Errorf("%w: bad iv length %d", ErrDecrypt, len(blob.IV))
	}

	plaintext, err := aesgcm.Open(nil, blob.IV, blob.Ciphertext, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	if err := json.Unmarshal(plaintext, v); err != nil {
		return fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return nil
}
