package vault

import (
	"crypto/rand"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestVault(t *testing.T, mode Mode) *Vault {
	t.Helper()
	v, err := New(t.TempDir(), mode, zerolog.Nop())
	require.NoError(t, err)
	return v
}

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, key)
	require.NoError(t, err)
	return key
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	key := randomKey(t)

	record := sensitiveRecord{Username: "admin", Password: "s3cret"}

	blob, err := encryptRecord(record, key)
	require.NoError(t, err)
	assert.Len(t, blob.IV, nonceLen)
	assert.NotContains(t, string(blob.Ciphertext), "s3cret")

	var got sensitiveRecord
	require.NoError(t, decryptRecord(blob, key, &got))
	assert.Equal(t, record, got)
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	blob, err := encryptRecord(sensitiveRecord{Username: "admin"}, randomKey(t))
	require.NoError(t, err)

	var got sensitiveRecord
	err = decryptRecord(blob, randomKey(t), &got)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecrypt)
	// Never a wrong-but-plausible record.
	assert.Empty(t, got.Username)
}

func TestEncryptGeneratesFreshIV(t *testing.T) {
	key := randomKey(t)

	a, err := encryptRecord(sensitiveRecord{Username: "admin"}, key)
	require.NoError(t, err)
	b, err := encryptRecord(sensitiveRecord{Username: "admin"}, key)
	require.NoError(t, err)

	assert.NotEqual(t, a.IV, b.IV, "IVs must never repeat under the same key")
}

func TestEnsureKeyIdempotent(t *testing.T) {
	v := newTestVault(t, ModeEncrypted)

	const n = 8
	keys := make([][]byte, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key, err := v.EnsureKey()
			assert.NoError(t, err)
			keys[i] = key
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Equal(t, keys[0], keys[i])
	}

	// A fresh vault over the same directory derives the same key.
	v2, err := New(v.Dir(), ModeEncrypted, zerolog.Nop())
	require.NoError(t, err)
	key2, err := v2.EnsureKey()
	require.NoError(t, err)
	assert.Equal(t, keys[0], key2)
}

func TestEnsureKeyRejectsTruncatedMaterial(t *testing.T) {
	v := newTestVault(t, ModeEncrypted)
	require.NoError(t, os.WriteFile(filepath.Join(v.Dir(), keyFile), []byte("short"), 0o600))

	_, err := v.EnsureKey()
	assert.ErrorIs(t, err, ErrInvalidKeyMaterial)
}

func TestCredentialSplit(t *testing.T) {
	v := newTestVault(t, ModeEncrypted)

	creds := ServerCredentials{
		URL:        "http://localhost:8080",
		Username:   "admin",
		Password:   "hunter2",
		UseHTTPS:   true,
		CustomPort: 9090,
	}
	require.NoError(t, v.StoreCredentials(creds))

	// The public record never contains the sensitive fields.
	pub, err := os.ReadFile(filepath.Join(v.Dir(), serverFile))
	require.NoError(t, err)
	assert.NotContains(t, string(pub), "admin")
	assert.NotContains(t, string(pub), "hunter2")

	// The encrypted record never contains them in the clear either.
	enc, err := os.ReadFile(filepath.Join(v.Dir(), encryptedFile))
	require.NoError(t, err)
	assert.NotContains(t, string(enc), "hunter2")

	got, err := v.Credentials()
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestCredentialsDegradeOnDecryptFailure(t *testing.T) {
	v := newTestVault(t, ModeEncrypted)

	require.NoError(t, v.StoreCredentials(ServerCredentials{
		URL:      "http://localhost:8080",
		Username: "admin",
		Password: "hunter2",
	}))

	// Corrupt the ciphertext.
	path := filepath.Join(v.Dir(), encryptedFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"ciphertext":"Z2FyYmFnZQ==","iv":"AAAAAAAAAAAAAAAA"}`), 0o600))

	got, err := v.Credentials()
	require.NoError(t, err, "decrypt failure degrades, never errors")
	assert.Equal(t, "http://localhost:8080", got.URL)
	assert.Empty(t, got.Username)
	assert.Empty(t, got.Password)
}

func TestCredentialsAbsent(t *testing.T) {
	v := newTestVault(t, ModeEncrypted)

	got, err := v.Credentials()
	require.NoError(t, err)
	assert.Equal(t, ServerCredentials{}, got)
}

func TestClear(t *testing.T) {
	v := newTestVault(t, ModeEncrypted)

	require.NoError(t, v.StoreCredentials(ServerCredentials{
		URL:      "http://localhost:8080",
		Username: "admin",
	}))
	require.NoError(t, v.Clear())

	got, err := v.Credentials()
	require.NoError(t, err)
	assert.Equal(t, ServerCredentials{}, got)

	// Clearing twice is fine.
	require.NoError(t, v.Clear())
}

func TestPlaintextMode(t *testing.T) {
	v := newTestVault(t, ModePlaintext)

	creds := ServerCredentials{
		URL:      "http://localhost:8080",
		Username: "admin",
		Password: "hunter2",
	}
	require.NoError(t, v.StoreCredentials(creds))

	// No encrypted record is ever written in plaintext mode.
	_, err := os.Stat(filepath.Join(v.Dir(), encryptedFile))
	assert.True(t, os.IsNotExist(err))

	got, err := v.Credentials()
	require.NoError(t, err)
	assert.Equal(t, creds, got)
}

func TestStoreCredentialsReplacesInFull(t *testing.T) {
	v := newTestVault(t, ModeEncrypted)

	require.NoError(t, v.StoreCredentials(ServerCredentials{
		URL:        "http://old:8080",
		Username:   "old",
		Password:   "oldpass",
		CustomPort: 1234,
	}))
	require.NoError(t, v.StoreCredentials(ServerCredentials{
		URL:      "http://new:8080",
		Username: "new",
	}))

	got, err := v.Credentials()
	require.NoError(t, err)
	assert.Equal(t, "http://new:8080", got.URL)
	assert.Equal(t, "new", got.Username)
	assert.Empty(t, got.Password)
	assert.Zero(t, got.CustomPort)
}
