package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/danieljhkim/subpkg/internal/fsops"
)

// ErrSchemaVersion is returned for a record written by an incompatible version.
var ErrSchemaVersion = errors.New("unsupported build record schema version")

// Store provides an interface for persisting the build record.
type Store interface {
	// Load loads the build record.
	// Returns os.ErrNotExist if no record has been written.
	Load() (*BuildRecord, error)

	// Save saves the build record atomically.
	Save(rec *BuildRecord) error

	// Delete deletes the build record.
	Delete() error
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	fs   fsops.FS
	file string
}

// NewFileStore creates a new FileStore writing to file.
func NewFileStore(fs fsops.FS, file string) *FileStore {
	return &FileStore{fs: fs, file: file}
}

// Load loads the build record.
func (s *FileStore) Load() (*BuildRecord, error) {
	data, err := s.fs.ReadFile(s.file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read build record: %w", err)
	}

	var rec BuildRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal build record: %w", err)
	}
	if rec.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrSchemaVersion, rec.SchemaVersion)
	}
	return &rec, nil
}

// Save saves the build record atomically.
func (s *FileStore) Save(rec *BuildRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal build record: %w", err)
	}
	if err := s.fs.AtomicWrite(s.file, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write build record: %w", err)
	}
	return nil
}

// Delete deletes the build record. A missing record is not an error.
func (s *FileStore) Delete() error {
	if err := s.fs.Remove(s.file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete build record: %w", err)
	}
	return nil
}
