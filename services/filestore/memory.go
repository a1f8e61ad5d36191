package filestore

import (
	"context"
	"sync"

	"github.com/submitly/backend/core"
)

const memoryScheme = "memory://"

// MemoryStore keeps files in memory. Used in tests and when no bucket is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	files map[string]memoryFile
}

type memoryFile struct {
	ContentType string
	Data        []byte
}

var _ core.FileStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{files: make(map[string]memoryFile)}
}

func (s *MemoryStore) Store(_ context.Context, data []byte, contentType string) (string, error) {
	url := memoryScheme + objectName(contentType)
	s.mu.Lock()
	s.files[url] = memoryFile{ContentType: contentType, Data: append([]byte(nil), data...)}
	s.mu.Unlock()
	return url, nil
}

// Get returns the content and type stored at url.
func (s *MemoryStore) Get(url string) ([]byte, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[url]
	return f.Data, f.ContentType, ok
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
