// Package identity keeps the signed-in user of the command line client. It
// is a convenience cache, not a security boundary.
package identity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kazz187/pomofocus/internal/user"
)

// ErrNotSignedIn is returned by Load when no identity has been saved.
var ErrNotSignedIn = errors.New("not signed in")

type Identity struct {
	Email string `yaml:"email"`
	Name  string `yaml:"name"`
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load() (*Identity, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotSignedIn
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}
	var id Identity
	if err := yaml.Unmarshal(data, &id); err != nil {
		return nil, fmt.Errorf("failed to parse identity %s: %w", s.path, err)
	}
	if id.Email == "" {
		return nil, ErrNotSignedIn
	}
	return &id, nil
}

// Save normalizes and writes id, replacing any previous identity.
func (s *Store) Save(id Identity) (*Identity, error) {
	id.Email = user.NormalizeEmail(id.Email)
	id.Name = user.NormalizeName(id.Name)
	if id.Email == "" || id.Name == "" {
		return nil, errors.New("name and email are required")
	}
	data, err := yaml.Marshal(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal identity: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create identity dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write identity: %w", err)
	}
	return &id, nil
}

// Clear removes the saved identity. Clearing twice is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove identity: %w", err)
	}
	return nil
}
