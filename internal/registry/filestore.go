package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ppiankov/vaultgate/internal/model"
)

// validKey matches alphanumeric, dash, underscore, and dot characters
// only. Record keys are derived from scope and digest, but the check
// stays as a path-traversal backstop.
var validKey = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

func validateKey(key string) error {
	if key == "" {
		return fmt.Errorf("key must not be empty")
	}
	if strings.Contains(key, "..") {
		return fmt.Errorf("key must not contain '..'")
	}
	if !validKey.MatchString(key) {
		return fmt.Errorf("key contains invalid characters")
	}
	return nil
}

// FileStore keeps one JSON file per approval record. Writes are atomic
// (tmp file + rename) so a concurrent reader never observes a partial
// record. Reads go through an in-memory cache; an external Watcher
// invalidates it when another process touches the directory.
type FileStore struct {
	dir   string
	cache map[string]Record
	mu    sync.Mutex
}

// NewFileStore creates a FileStore backed by the given directory.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("cannot create registry directory: %w", err)
	}
	return &FileStore{dir: dir, cache: make(map[string]Record)}, nil
}

// DefaultDir returns the default registry directory.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "vaultgate-approvals")
	}
	return filepath.Join(home, ".vaultgate", "approvals")
}

// Dir returns the watched directory.
func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Put(rec Record) error {
	key := recordKey(rec.Scope, rec.Digest)
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}

	path := s.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return err
	}
	s.cache[key] = rec
	return nil
}

func (s *FileStore) Get(scope model.Scope, digest model.Digest) (*Record, error) {
	key := recordKey(scope, digest)
	if err := validateKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.cache[key]; ok {
		cp := rec
		return &cp, nil
	}

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("corrupt record %q: %w", key, err)
	}
	s.cache[key] = rec
	cp := rec
	return &cp, nil
}

func (s *FileStore) Delete(scope model.Scope, digest model.Digest) error {
	key := recordKey(scope, digest)
	if err := validateKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cache, key)
	if err := os.Remove(s.path(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *FileStore) List() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var records []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *FileStore) Close() error {
	return nil
}

// Invalidate drops the read cache. Called by the Watcher when record
// files change on disk outside this process.
func (s *FileStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]Record)
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func recordKey(scope model.Scope, digest model.Digest) string {
	return scope.Key() + "." + digest.Hex()
}
