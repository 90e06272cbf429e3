// Package auth handles login against the ERP, remembered credentials and
// the cached-session fast path.
package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/nacl/secretbox"
)

// credentialTTL is how long a remembered password stays usable before the
// user must log in manually again.
const credentialTTL = 30 * 24 * time.Hour

// ErrCredentialExpired means a remembered credential is past its TTL.
var ErrCredentialExpired = errors.New("stored credential expired")

// ErrNoCredential means no credential is stored for the username.
var ErrNoCredential = errors.New("no stored credential")

type storedCredential struct {
	Nonce      []byte    `json:"nonce"`
	Ciphertext []byte    `json:"ciphertext"`
	SavedAt    time.Time `json:"saved_at"`
}

type credentialFile struct {
	Credentials map[string]storedCredential `json:"credentials"`
}

// CredentialStore persists passwords encrypted with a locally held key so
// returning users skip the password prompt.
type CredentialStore struct {
	dir    string
	key    [32]byte
	logger *zap.Logger
}

// NewCredentialStore opens the store under dir, creating the directory and
// the encryption key on first use.
func NewCredentialStore(dir string, logger *zap.Logger) (*CredentialStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credential dir: %w", err)
	}

	s := &CredentialStore{dir: dir, logger: logger}
	if err := s.loadOrCreateKey(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *CredentialStore) keyPath() string  { return filepath.Join(s.dir, "credentials.key") }
func (s *CredentialStore) filePath() string { return filepath.Join(s.dir, "credentials.json") }

func (s *CredentialStore) loadOrCreateKey() error {
	raw, err := os.ReadFile(s.keyPath())
	if err == nil && len(raw) == len(s.key) {
		copy(s.key[:], raw)
		return nil
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read encryption key: %w", err)
	}

	if _, err := rand.Read(s.key[:]); err != nil {
		return fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(s.keyPath(), s.key[:], 0o600); err != nil {
		return fmt.Errorf("failed to write encryption key: %w", err)
	}
	s.logger.Info("credential encryption key created")
	return nil
}

// Save encrypts and stores the password for the username, resetting its TTL.
func (s *CredentialStore) Save(username, password string) error {
	file, err := s.readFile()
	if err != nil {
		return err
	}

	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := secretbox.Seal(nil, []byte(password), &nonce, &s.key)

	file.Credentials[username] = storedCredential{
		Nonce:      nonce[:],
		Ciphertext: sealed,
		SavedAt:    time.Now(),
	}
	return s.writeFile(file)
}

// Load returns the stored password for the username. Expired entries are
// removed and reported as ErrCredentialExpired.
func (s *CredentialStore) Load(username string) (string, error) {
	file, err := s.readFile()
	if err != nil {
		return "", err
	}

	cred, ok := file.Credentials[username]
	if !ok {
		return "", ErrNoCredential
	}
	if time.Since(cred.SavedAt) > credentialTTL {
		delete(file.Credentials, username)
		if err := s.writeFile(file); err != nil {
			s.logger.Warn("failed to drop expired credential", zap.Error(err))
		}
		return "", ErrCredentialExpired
	}

	if len(cred.Nonce) != 24 {
		return "", errors.New("corrupt credential entry")
	}
	var nonce [24]byte
	copy(nonce[:], cred.Nonce)
	plain, ok := secretbox.Open(nil, cred.Ciphertext, &nonce, &s.key)
	if !ok {
		return "", errors.New("credential decryption failed")
	}
	return string(plain), nil
}

// Delete removes the stored credential for the username.
func (s *CredentialStore) Delete(username string) error {
	file, err := s.readFile()
	if err != nil {
		return err
	}
	if _, ok := file.Credentials[username]; !ok {
		return nil
	}
	delete(file.Credentials, username)
	return s.writeFile(file)
}

func (s *CredentialStore) readFile() (*credentialFile, error) {
	file := &credentialFile{Credentials: make(map[string]storedCredential)}

	raw, err := os.ReadFile(s.filePath())
	if os.IsNotExist(err) {
		return file, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential file: %w", err)
	}
	if err := json.Unmarshal(raw, file); err != nil {
		return nil, fmt.Errorf("corrupt credential file: %w", err)
	}
	if file.Credentials == nil {
		file.Credentials = make(map[string]storedCredential)
	}
	return file, nil
}

func (s *CredentialStore) writeFile(file *credentialFile) error {
	raw, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("failed to encode credential file: %w", err)
	}
	if err := os.WriteFile(s.filePath(), raw, 0o600); err != nil {
		return fmt.Errorf("failed to write credential file: %w", err)
	}
	return nil
}
