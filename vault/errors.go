package vault

import "errors"

// Common errors returned by the vault.
var (
	// ErrEncrypt is returned when encrypting the sensitive record fails.
	ErrEncrypt = errors.New("failed to encrypt credentials")

	// ErrDecrypt is returned when the stored ciphertext cannot be
	// authenticated or decrypted. Callers treat this as "no usable
	// credential", not as a hard failure.
	ErrDecrypt = errors.New("failed to decrypt credentials")

	// ErrInvalidKeyMaterial is returned when the persisted key file has
	// an unexpected size.
	ErrInvalidKeyMaterial = errors.New("invalid key material")
)
