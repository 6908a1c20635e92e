// Package fingerprint holds the persisted baseline that staleness is
// judged against: one digest per artifact for its content and one for
// the command that produces it.
package fingerprint

import (
	"encoding/json"
	"os"

	"github.com/arthur-debert/kiln/pkg/errors"
)

// Store maps artifact identities to content and command digests.
// During a run it is a plain in-memory value; persistence happens once
// at load and at most once at commit.
type Store struct {
	Files    map[string]string `json:"files"`
	Commands map[string]string `json:"commands"`
}

// NewStore returns an empty store
func NewStore() *Store {
	return &Store{
		Files:    make(map[string]string),
		Commands: make(map[string]string),
	}
}

// FileDigest returns the recorded content digest for an identity
func (s *Store) FileDigest(identity string) (string, bool) {
	d, ok := s.Files[identity]
	return d, ok
}

// CommandDigest returns the recorded command digest for an identity
func (s *Store) CommandDigest(identity string) (string, bool) {
	d, ok := s.Commands[identity]
	return d, ok
}

// SetFileDigest records a content digest for an identity
func (s *Store) SetFileDigest(identity, digest string) {
	s.Files[identity] = digest
}

// SetCommandDigest records a command digest for an identity
func (s *Store) SetCommandDigest(identity, digest string) {
	s.Commands[identity] = digest
}

// Refresh recomputes both digests for an identity from the current
// on-disk state and command text. The executor calls this after every
// successful step so the committed snapshot describes what the command
// actually produced, not what the resolver saw before it ran.
func (s *Store) Refresh(identity, path, command string, d Digester) error {
	fileDigest, err := d.File(path)
	if err != nil {
		return err
	}
	s.Files[identity] = fileDigest
	s.Commands[identity] = d.Command(command)
	return nil
}

// FileWriter abstracts the durable write so the store does not care how
// bytes reach the disk. fsops.Ops satisfies it.
type FileWriter interface {
	WriteFileAtomic(path string, data []byte, mode os.FileMode) error
}

// Load reads a store from path. A missing database yields an empty
// store; a present but unreadable or malformed one is an error.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewStore(), nil
		}
		return nil, errors.Wrapf(err, errors.ErrStoreRead, "cannot read fingerprint database %s", path)
	}

	store := NewStore()
	if err := json.Unmarshal(data, store); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreRead, "malformed fingerprint database %s", path)
	}
	if store.Files == nil {
		store.Files = make(map[string]string)
	}
	if store.Commands == nil {
		store.Commands = make(map[string]string)
	}
	return store, nil
}

// Save writes the store to path, fully replacing prior content.
// The write goes through the atomic writer so a crash mid-save never
// corrupts the baseline.
func (s *Store) Save(path string, w FileWriter) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrStoreWrite, "cannot encode fingerprint database")
	}
	data = append(data, '\n')
	if err := w.WriteFileAtomic(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrStoreWrite, "cannot write fingerprint database %s", path)
	}
	return nil
}
