package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KVStore is a synchronous string key-value store. Values are opaque strings.
type KVStore interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(key, value string) error
}

// fileKVStore keeps all slots in a single JSON object file. Writes go through
// a temp file and a rename under an exclusive flock on a sibling lock file,
// so a concurrent Set never leaves a torn file. The last writer wins.
type fileKVStore struct {
	path string
}

// NewFileKVStore creates a KVStore backed by the JSON file at path.
// The file and its parent directory are created on first Set.
func NewFileKVStore(path string) KVStore {
	return &fileKVStore{path: path}
}

func (s *fileKVStore) lockPath() string {
	return s.path + ".lock"
}

func (s *fileKVStore) readSlots() (map[string]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading storage file: %w", err)
	}
	if len(data) == 0 {
		return map[string]string{}, nil
	}
	slots := map[string]string{}
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("parsing storage file %s: %w", s.path, err)
	}
	return slots, nil
}

func (s *fileKVStore) Get(key string) (string, bool, error) {
	slots, err := s.readSlots()
	if err != nil {
		return "", false, err
	}
	v, ok := slots[key]
	return v, ok, nil
}

func (s *fileKVStore) Set(key, value string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating storage directory: %w", err)
	}

	unlock, err := lockFile(s.lockPath())
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	slots, err := s.readSlots()
	if err != nil {
		return err
	}
	slots[key] = value

	data, err := json.MarshalIndent(slots, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling storage file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp storage file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp storage file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp storage file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing storage file: %w", err)
	}
	return nil
}

// memoryKVStore is an in-process KVStore used for tests and ephemeral runs.
type memoryKVStore struct {
	mu    sync.Mutex
	slots map[string]string
}

// NewMemoryKVStore creates an empty in-memory KVStore.
func NewMemoryKVStore() KVStore {
	return &memoryKVStore{slots: make(map[string]string)}
}

func (s *memoryKVStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.slots[key]
	return v, ok, nil
}

func (s *memoryKVStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = value
	return nil
}
