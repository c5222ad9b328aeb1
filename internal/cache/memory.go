package cache

import (
	"container/list"
	"context"
	"sync"
)

// MemoryStore keeps entries in process. With a positive capacity the least
// recently used entry is dropped once the capacity is reached.
type MemoryStore struct {
	capacity int

	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List
}

type memoryItem struct {
	key   string
	entry Entry
}

// NewMemoryStore creates a store. A capacity of zero or less means unbounded.
func NewMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	el, ok := s.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	s.order.MoveToFront(el)
	return el.Value.(*memoryItem).entry, true, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		el.Value.(*memoryItem).entry = entry
		s.order.MoveToFront(el)
		return nil
	}

	for s.capacity > 0 && len(s.entries) >= s.capacity {
		s.evictOldest()
	}

	s.entries[key] = s.order.PushFront(&memoryItem{key: key, entry: entry})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if el, ok := s.entries[key]; ok {
		s.order.Remove(el)
		delete(s.entries, key)
	}
	return nil
}

func (s *MemoryStore) Len(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) evictOldest() {
	el := s.order.Back()
	if el == nil {
		return
	}
	s.order.Remove(el)
	delete(s.entries, el.Value.(*memoryItem).key)
}
