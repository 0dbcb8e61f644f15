package vault

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// Mode selects how the sensitive record is stored.
type Mode int

const (
	// ModeEncrypted stores username/password encrypted with AES-GCM.
	ModeEncrypted Mode = iota
	// ModePlaintext stores username/password as plain JSON. Intended for
	// environments where the vault directory is already protected.
	ModePlaintext
)

const (
	keyFile       = "key.bin"
	serverFile    = "server.json"
	encryptedFile = "credentials.enc"
	plaintextFile = "credentials.json"
)

// ServerCredentials is the full credential record handed to and from the
// vault. Username and Password are sensitive; the remaining fields are
// public.
type ServerCredentials struct {
	URL        string `json:"url"`
	Username   string `json:"username,omitempty"`
	Password   string `json:"password,omitempty"`
	UseHTTPS   bool   `json:"use_https"`
	CustomPort int    `json:"custom_port,omitempty"`
}

// publicRecord is the plaintext half of the split credential store.
type publicRecord struct {
	URL        string `json:"url"`
	UseHTTPS   bool   `json:"use_https"`
	CustomPort int    `json:"custom_port,omitempty"`
}

// sensitiveRecord is the half that never touches the public store.
type sensitiveRecord struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Vault persists server credentials under a single directory.
type Vault struct {
	dir    string
	mode   Mode
	logger zerolog.Logger

	keyMu sync.Mutex
	key   []byte
}

// New creates a vault rooted at dir, creating the directory if needed.
// If dir is empty the vault lives under the user config directory.
func New(dir string, mode Mode, logger zerolog.Logger) (*Vault, error) {
	if dir == "" {
		cfgDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config directory: %w", err)
		}
		dir = filepath.Join(cfgDir, "sendarr")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	return &Vault{dir: dir, mode: mode, logger: logger}, nil
}

// Dir returns the vault directory.
func (v *Vault) Dir() string {
	return v.dir
}

// EnsureKey returns the AES key for this installation, generating and
// persisting fresh key material (32-byte seed plus 16-byte salt) on first
// use. Concurrent callers are serialized; exactly one key is ever
// persisted.
func (v *Vault) EnsureKey() ([]byte, error) {
	v.keyMu.Lock()
	defer v.keyMu.Unlock()

	if v.key != nil {
		return v.key, nil
	}

	path := filepath.Join(v.dir, keyFile)
	material, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		material = make([]byte, seedLen+saltLen)
		if _, err := io.ReadFull(rand.Reader, material); err != nil {
			return nil, fmt.Errorf("failed to generate key material: %w", err)
		}
		if err := os.WriteFile(path, material, 0o600); err != nil {
			return nil, fmt.Errorf("failed to persist key material: %w", err)
		}
		v.logger.Debug().Str("path", path).Msg("Generated new encryption key material")
	} else if err != nil {
		return nil, fmt.Errorf("failed to read key material: %w", err)
	}

	if len(material) != seedLen+saltLen {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrInvalidKeyMaterial, len(material), seedLen+saltLen)
	}

	v.key = deriveKey(material[:seedLen], material[seedLen:])
	return v.key, nil
}

// StoreCredentials replaces the stored record in full. The public fields
// go to the plaintext server record; username and password go to the
// sensitive store, encrypted unless the vault runs in ModePlaintext.
func (v *Vault) StoreCredentials(creds ServerCredentials) error {
	pub := publicRecord{
		URL:        creds.URL,
		UseHTTPS:   creds.UseHTTPS,
		CustomPort: creds.CustomPort,
	}
	if err := v.writeJSON(serverFile, pub, 0o644); err != nil {
		return fmt.Errorf("failed to store server record: %w", err)
	}

	sens := sensitiveRecord{Username: creds.Username, Password: creds.Password}

	if v.mode == ModePlaintext {
		if err := v.writeJSON(plaintextFile, sens, 0o600); err != nil {
			return fmt.Errorf("failed to store credentials: %w", err)
		}
		// Drop any stale encrypted record from a previous mode.
		_ = os.Remove(filepath.Join(v.dir, encryptedFile))
		return nil
	}

	key, err := v.EnsureKey()
	if err != nil {
		return err
	}
	blob, err := encryptRecord(sens, key)
	if err != nil {
		return err
	}
	if err := v.writeJSON(encryptedFile, blob, 0o600); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}
	_ = os.Remove(filepath.Join(v.dir, plaintextFile))
	return nil
}

// Credentials reads the public record and overlays the sensitive record
// on top of it. A missing or undecryptable sensitive record degrades to
// the public fields alone: the caller gets a record without username or
// password rather than an error.
func (v *Vault) Credentials() (ServerCredentials, error) {
	var creds ServerCredentials

	var pub publicRecord
	err := v.readJSON(serverFile, &pub)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return creds, fmt.Errorf("failed to read server record: %w", err)
	}
	creds.URL = pub.URL
	creds.UseHTTPS = pub.UseHTTPS
	creds.CustomPort = pub.CustomPort

	sens, ok := v.readSensitive()
	if ok {
		creds.Username = sens.Username
		creds.Password = sens.Password
	}
	return creds, nil
}

// readSensitive loads the sensitive record for the active mode. Decrypt
// failures are reported via the logger and treated as absent data.
func (v *Vault) readSensitive() (sensitiveRecord, bool) {
	var sens sensitiveRecord

	if v.mode == ModePlaintext {
		if err := v.readJSON(plaintextFile, &sens); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				v.logger.Warn().Err(err).Msg("Failed to read stored credentials")
			}
			return sensitiveRecord{}, false
		}
		return sens, true
	}

	var blob encryptedBlob
	if err := v.readJSON(encryptedFile, &blob); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			v.logger.Warn().Err(err).Msg("Failed to read encrypted credentials")
		}
		return sensitiveRecord{}, false
	}

	key, err := v.EnsureKey()
	if err != nil {
		v.logger.Warn().Err(err).Msg("Failed to load encryption key")
		return sensitiveRecord{}, false
	}

	if err := decryptRecord(&blob, key, &sens); err != nil {
		v.logger.Warn().Err(err).Msg("Stored credentials could not be decrypted, treating as absent")
		return sensitiveRecord{}, false
	}
	return sens, true
}

// Clear removes both the public and the sensitive records. The key
// material is kept so future stores reuse the same key.
func (v *Vault) Clear() error {
	for _, name := range []string{serverFile, encryptedFile, plaintextFile} {
		if err := os.Remove(filepath.Join(v.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to clear %s: %w", name, err)
		}
	}
	return nil
}

func (v *Vault) writeJSON(name string, value any, perm os.FileMode) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(v.dir, name), data, perm)
}

func (v *Vault) readJSON(name string, value any) error {
	data, err := os.ReadFile(filepath.Join(v.dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, value)
}
