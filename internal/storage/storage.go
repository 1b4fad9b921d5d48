package storage

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2"
)

const (
	DefaultCacheSize = 1000
	DefaultTTL       = 5 * time.Minute
)

// Flash kinds, used as CSS classes by the templates.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

type Flash struct {
	Kind    string
	Message string
}

// FlashStorage keeps one-shot messages between a redirect and the page it
// leads to.
type FlashStorage interface {
	Put(flash Flash) string
	Pop(key string) (Flash, bool)
}

type flashEntry struct {
	flash     Flash
	createdAt time.Time
}

// MemoryStorage is a size-bounded in-process FlashStorage. Entries expire
// after ttl and are evicted least recently used first when full.
type MemoryStorage struct {
	mu sync.Mutex

	flashes *lru.Cache[string, flashEntry]
	ttl     time.Duration
	now     func() time.Time
}

var _ FlashStorage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a store holding at most size entries.
func NewMemoryStorage(size int, ttl time.Duration) (*MemoryStorage, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	flashes, err := lru.New[string, flashEntry](size)
	if err != nil {
		return nil, err
	}

	return &MemoryStorage{
		flashes: flashes,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Put stores flash and returns the key to retrieve it with.
func (s *MemoryStorage) Put(flash Flash) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cleanupExpired()

	key := uuid.NewString()
	s.flashes.Add(key, flashEntry{flash: flash, createdAt: s.now()})
	return key
}

// Pop returns and removes the flash for key. Expired entries are not
// returned.
func (s *MemoryStorage) Pop(key string) (Flash, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.flashes.Peek(key)
	if !ok {
		return Flash{}, false
	}
	s.flashes.Remove(key)

	if s.expired(entry) {
		return Flash{}, false
	}
	return entry.flash, true
}

func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.flashes.Len()
}

func (s *MemoryStorage) expired(entry flashEntry) bool {
	return s.now().Sub(entry.createdAt) > s.ttl
}

// cleanupExpired drops expired entries from the old end of the cache.
// Callers hold mu.
func (s *MemoryStorage) cleanupExpired() {
	for {
		key, entry, ok := s.flashes.GetOldest()
		if !ok || !s.expired(entry) {
			return
		}
		s.flashes.Remove(key)
	}
}
