// Package profile implements JSON file storage for resolved profiles.
package profile

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.trai.ch/modman/internal/core/domain"
	"go.trai.ch/zerr"
)

// Store implements ports.ProfileStore using a file-per-profile strategy.
// Encoded profiles are cached by path; every Get decodes a fresh copy.
type Store struct {
	mu    sync.RWMutex
	cache map[string][]byte
}

// NewStore creates a new profile store.
func NewStore() *Store {
	return &Store{cache: make(map[string][]byte)}
}

// Get retrieves the profile with the given name.
func (s *Store) Get(root, name string) (*domain.Profile, error) {
	filename, err := s.getFilename(root, name)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.cache[filename]
	s.mu.RUnlock()

	if !ok {
		//nolint:gosec // Path is constructed from the state directory and a validated name
		data, err = os.ReadFile(filename)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, nil
			}
			return nil, zerr.With(zerr.Wrap(err, domain.ErrProfileReadFailed.Error()), "path", filename)
		}
	}

	var p domain.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrProfileUnmarshalFailed.Error()), "path", filename)
	}
	normalize(&p)

	if !ok {
		s.mu.Lock()
		s.cache[filename] = data
		s.mu.Unlock()
	}
	return &p, nil
}

// Put stores the profile.
func (s *Store) Put(root string, p *domain.Profile) error {
	filename, err := s.getFilename(root, p.Name)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrProfileMarshalFailed.Error())
	}

	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	// Written to a temp file and renamed into place.
	tmp := filename + ".tmp"
	//nolint:gosec // Path is constructed from the state directory and a validated name
	if err := os.WriteFile(tmp, data, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrProfileWriteFailed.Error()), "path", tmp)
	}
	if err := os.Rename(tmp, filename); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrProfileWriteFailed.Error()), "path", filename)
	}

	s.mu.Lock()
	s.cache[filename] = data
	s.mu.Unlock()
	return nil
}

func (s *Store) getFilename(root, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, ".") || filepath.Base(name) != name {
		return "", zerr.With(domain.ErrInvalidProfileName, "profile", name)
	}
	return filepath.Join(domain.ProfilesPath(root), name+".json"), nil
}

// normalize restores canonical option values after JSON decoding.
func normalize(p *domain.Profile) {
	for k, v := range p.Options {
		p.Options[k] = domain.NormalizeValue(v)
	}
	for _, cfg := range p.Configs {
		for k, v := range cfg.Options {
			cfg.Options[k] = domain.NormalizeValue(v)
		}
	}
	for _, st := range p.Status {
		for _, issues := range st.Issues {
			for i := range issues {
				issues[i].Value = domain.NormalizeValue(issues[i].Value)
			}
		}
	}
}
