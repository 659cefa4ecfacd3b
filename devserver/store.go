package devserver

import "sync"

// Entry is a stored value together with its content kind, so reads can be
// served with the same form they were written in.
type Entry struct {
	Data []byte
	JSON bool
}

// Store is the persistence backend of the dev server.
type Store interface {
	Close() error
	Get(namespace, key string) (Entry, bool, error)
	Set(namespace, key string, entry Entry) error
	Delete(namespace, key string) error
}

// Memory is a map-backed Store. It is the default backend and is safe for
// concurrent use.
type Memory struct {
	mu sync.RWMutex
	m  map[string]Entry
}

var _ Store = &Memory{}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]Entry)}
}

func (s *Memory) Close() error {
	return nil
}

func (s *Memory) Get(namespace, key string) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.m[storeKey(namespace, key)]
	return entry, ok, nil
}

func (s *Memory) Set(namespace, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.m[storeKey(namespace, key)] = entry
	return nil
}

func (s *Memory) Delete(namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, storeKey(namespace, key))
	return nil
}

// storeKey joins a namespace and key into one map key. The NUL separator
// keeps ("ab", "c") and ("a", "bc") distinct.
func storeKey(namespace, key string) string {
	return namespace + "\x00" + key
}
