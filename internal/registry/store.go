package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SchemaVersion is the registry document version this build reads and
// writes. Documents with a newer version are loaded read-only.
const SchemaVersion = 1

// document is the on-disk JSON shape of the registry.
type document struct {
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
	Records   []Record  `json:"records"`
}

// Store persists the registry as a single JSON document. Writes hold an
// exclusive lock and go through a temp-file rename; reads are shared.
type Store struct {
	path     string
	mu       sync.RWMutex
	readOnly bool
}

// NewStore creates a store backed by the given path. The file is created
// lazily on first write.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// load reads the document from disk. A missing file yields an empty
// document. Callers must hold at least a read lock.
func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Version: SchemaVersion}, nil
		}
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}
	if doc.Version > SchemaVersion {
		fmt.Fprintf(os.Stderr, "[agentguard] warning: registry schema version %d is newer than supported %d; falling back to read-only\n",
			doc.Version, SchemaVersion)
		s.readOnly = true
	}
	return &doc, nil
}

// save writes the document atomically. Callers must hold the write lock.
func (s *Store) save(doc *document) error {
	if s.readOnly {
		return ErrReadOnly
	}
	doc.Version = SchemaVersion
	doc.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create registry dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace registry: %w", err)
	}
	return nil
}

// Read runs fn with a snapshot of the records under a shared lock.
func (s *Store) Read(fn func(records []Record) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	return fn(doc.Records)
}

// Update runs fn against the records under the exclusive lock and persists
// the result. Concurrent updates on the same key linearise here; the last
// writer wins.
func (s *Store) Update(fn func(records []Record) ([]Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.load()
	if err != nil {
		return err
	}
	updated, err := fn(doc.Records)
	if err != nil {
		return err
	}
	doc.Records = updated
	return s.save(doc)
}
