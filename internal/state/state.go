// Package state persists the last-sync hashes between client runs. The
// store is a small JSON index next to the scripts, keyed by script name.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the index file kept in the script root.
const FileName = ".scriptsync.state.json"

// Store holds the per-script sync facts that must survive process exit.
type Store struct {
	path string

	// Hashes maps script name to the MD5 hex digest captured at the
	// last successful sync.
	Hashes map[string]string `json:"hashes"`
}

// Load reads the store under root, returning an empty store when none
// exists yet.
func Load(root string) (*Store, error) {
	s := &Store{
		path:   filepath.Join(root, FileName),
		Hashes: make(map[string]string),
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	if s.Hashes == nil {
		s.Hashes = make(map[string]string)
	}
	return s, nil
}

// Get returns the stored hash for a script name.
func (s *Store) Get(name string) string {
	return s.Hashes[name]
}

// Set records the hash for a script name. Empty hashes clear the entry.
func (s *Store) Set(name, hash string) {
	if hash == "" {
		delete(s.Hashes, name)
		return
	}
	s.Hashes[name] = hash
}

// Save writes the store back to disk.
func (s *Store) Save() error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return nil
}
