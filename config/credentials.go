package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// Security methods for credential storage
const (
	SecurityPlainText = "plaintext"
	SecuritySSHKey    = "ssh_key"
)

// Fixed message signed by the SSH key to derive the encryption key.
// Changing this invalidates all stored credentials.
const keyDerivationMessage = "parley-credential-encryption-v1"

// CredentialStore manages provider API keys on disk. Keys are stored in
// credentials.json under the data directory, either in plaintext or
// encrypted with AES-GCM using a key derived from an SSH key signature.
type CredentialStore struct {
	path   string
	method string
	aesKey []byte
	creds  map[string]string
}

type credentialFile struct {
	Method      string            `json:"method"`
	Credentials map[string]string `json:"credentials"`
}

// NewCredentialStore opens or creates the credential store for dataDir.
// When method is SecuritySSHKey, sshKeyPath must point to a private key;
// encrypted stores cannot be opened without it.
func NewCredentialStore(dataDir, method, sshKeyPath string) (*CredentialStore, error) {
	cs := &CredentialStore{
		path:   filepath.Join(dataDir, "credentials.json"),
		method: method,
		creds:  make(map[string]string),
	}

	if method == SecuritySSHKey {
		key, err := deriveKeyFromSSH(ExpandPath(sshKeyPath))
		if err != nil {
			return nil, fmt.Errorf("failed to derive encryption key: %w", err)
		}
		cs.aesKey = key
	}

	if err := cs.load(); err != nil {
		return nil, err
	}
	return cs, nil
}

// Get returns the stored credential for a provider slug, or "" if unset.
func (cs *CredentialStore) Get(slug string) string {
	return cs.creds[slug]
}

// Set stores a credential and persists the store.
func (cs *CredentialStore) Set(slug, value string) error {
	cs.creds[slug] = value
	return cs.save()
}

// Delete removes a credential and persists the store.
func (cs *CredentialStore) Delete(slug string) error {
	delete(cs.creds, slug)
	return cs.save()
}

// Slugs returns the provider slugs that have stored credentials.
func (cs *CredentialStore) Slugs() []string {
	slugs := make([]string, 0, len(cs.creds))
	for slug := range cs.creds {
		slugs = append(slugs, slug)
	}
	return slugs
}

func (cs *CredentialStore) load() error {
	data, err := os.ReadFile(cs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read credentials: %w", err)
	}

	var file credentialFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse credentials: %w", err)
	}

	if file.Method == SecuritySSHKey && cs.aesKey == nil {
		return fmt.Errorf("credentials are encrypted but no SSH key is configured")
	}

	for slug, value := range file.Credentials {
		if file.Method == SecuritySSHKey {
			plain, err := cs.decrypt(value)
			if err != nil {
				return fmt.Errorf("failed to decrypt credential for %s: %w", slug, err)
			}
			cs.creds[slug] = plain
		} else {
			cs.creds[slug] = value
		}
	}
	return nil
}

func (cs *CredentialStore) save() error {
	file := credentialFile{
		Method:      cs.method,
		Credentials: make(map[string]string, len(cs.creds)),
	}

	for slug, value := range cs.creds {
		if cs.method == SecuritySSHKey {
			enc, err := cs.encrypt(value)
			if err != nil {
				return fmt.Errorf("failed to encrypt credential for %s: %w", slug, err)
			}
			file.Credentials[slug] = enc
		} else {
			file.Credentials[slug] = value
		}
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := EnsureDir(filepath.Dir(cs.path)); err != nil {
		return err
	}
	return os.WriteFile(cs.path, data, 0600)
}

func (cs *CredentialStore) encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(cs.aesKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (cs *CredentialStore) decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(cs.aesKey)
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(sealed) < gcm.NonceSize() {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// deriveKeyFromSSH derives a deterministic 32-byte AES key by signing a
// fixed message with the private key and hashing the signature. The same
// key file always yields the same encryption key.
func deriveKeyFromSSH(keyPath string) ([]byte, error) {
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key %s: %w", keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		passphrase := os.Getenv("PARLEY_SSH_PASSPHRASE")
		if passphrase == "" {
			return nil, fmt.Errorf("failed to parse SSH key (set PARLEY_SSH_PASSPHRASE for encrypted keys): %w", err)
		}
		signer, err = ssh.ParsePrivateKeyWithPassphrase(data, []byte(passphrase))
		if err != nil {
			return nil, fmt.Errorf("failed to parse SSH key: %w", err)
		}
	}

	// deterministicReader makes Ed25519 and RSA-PSS signatures stable
	// across invocations.
	sig, err := signer.Sign(deterministicReader{}, []byte(keyDerivationMessage))
	if err != nil {
		return nil, fmt.Errorf("failed to sign derivation message: %w", err)
	}

	key := sha256.Sum256(sig.Blob)
	return key[:], nil
}

type deterministicReader struct{}

func (deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}
