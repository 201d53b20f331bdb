package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Provider persists the single local secret.
type Provider interface {
	// LoadSecret returns the stored secret, or false if there is none.
	LoadSecret() (Secret, bool)
	// PersistSecret overwrites the stored secret.
	PersistSecret(Secret) error
	// ClearSecret removes the stored secret. It is idempotent.
	ClearSecret() error
}

// DefaultKeyFile is where the client keeps its secret unless told otherwise.
const DefaultKeyFile = "gophdeck.key"

// FileProvider stores the secret in a single file readable only by the owner.
type FileProvider struct {
	Path string
}

// NewFileProvider returns a FileProvider for path, or DefaultKeyFile if empty.
func NewFileProvider(path string) *FileProvider {
	if path == "" {
		path = DefaultKeyFile
	}
	return &FileProvider{Path: path}
}

// LoadSecret never fails: a missing, unreadable or blank file means absent.
func (p *FileProvider) LoadSecret() (Secret, bool) {
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return "", false
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "", false
	}
	return Secret(s), true
}

func (p *FileProvider) PersistSecret(s Secret) error {
	if dir := filepath.Dir(p.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create key dir: %w", err)
		}
	}
	tmp := p.Path + ".tmp"
	if err := os.WriteFile(tmp, []byte(string(s)+"\n"), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	if err := os.Rename(tmp, p.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace key file: %w", err)
	}
	return nil
}

func (p *FileProvider) ClearSecret() error {
	if err := os.Remove(p.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove key file: %w", err)
	}
	return nil
}

// MemoryProvider keeps the secret in memory only.
type MemoryProvider struct {
	mu     sync.Mutex
	secret Secret
}

func (p *MemoryProvider) LoadSecret() (Secret, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.secret, p.secret != ""
}

func (p *MemoryProvider) PersistSecret(s Secret) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.secret = s
	return nil
}

func (p *MemoryProvider) ClearSecret() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.secret = ""
	return nil
}
