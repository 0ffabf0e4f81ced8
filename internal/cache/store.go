package cache

import (
	"container/list"
	"sync"
	"time"
)

const (
	DefaultMaxEntries = 100
	DefaultTTL        = 300 * time.Second
)

// entry stores a cached value with its insertion and expiration timestamps.
type entry[K comparable, V any] struct {
	key       K
	value     V
	createdAt time.Time
	expiresAt time.Time
}

func (e *entry[K, V]) expired(at time.Time) bool {
	return at.After(e.expiresAt)
}

// Options controls construction of a Store.
type Options struct {
	// MaxEntries bounds the number of stored entries. Zero means DefaultMaxEntries.
	MaxEntries int

	// TTL is applied when Set is called with a non-positive ttl. Zero means DefaultTTL.
	TTL time.Duration

	// Clock overrides the time source. Nil means time.Now.
	Clock func() time.Time
}

// Store is a map-backed cache bounded by entry count. When full, the
// least-recently-inserted entry is evicted to make room for a new key.
// Expiration is lazy on access, or eager via PurgeExpired.
type Store[K comparable, V any] struct {
	mu sync.Mutex

	maxEntries int
	ttl        time.Duration
	clock      func() time.Time

	items map[K]*list.Element
	order *list.List // front = oldest insertion
}

// NewStore constructs a new Store with the given options.
func NewStore[K comparable, V any](opts Options) *Store[K, V] {
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return now() }
	}
	return &Store[K, V]{
		maxEntries: opts.MaxEntries,
		ttl:        opts.TTL,
		clock:      clock,
		items:      make(map[K]*list.Element, opts.MaxEntries),
		order:      list.New(),
	}
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// Get implements Cache.Get.
func (s *Store[K, V]) Get(key K) (V, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero V
	el, ok := s.items[key]
	if !ok {
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	if e.expired(s.clock()) {
		s.removeElement(el)
		return zero, false
	}
	return e.value, true
}

// Set implements Cache.Set. Overwriting a key moves it to the newest position.
func (s *Store[K, V]) Set(key K, value V, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ttl <= 0 {
		ttl = s.ttl
	}
	ts := s.clock()
	e := &entry[K, V]{
		key:       key,
		value:     value,
		createdAt: ts,
		expiresAt: ts.Add(ttl),
	}

	if el, ok := s.items[key]; ok {
		el.Value = e
		s.order.MoveToBack(el)
		return
	}

	for s.order.Len() >= s.maxEntries {
		s.removeElement(s.order.Front())
	}
	s.items[key] = s.order.PushBack(e)
}

// Delete implements Cache.Delete.
func (s *Store[K, V]) Delete(key K) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.items[key]; ok {
		s.removeElement(el)
	}
}

// Has implements Cache.Has.
func (s *Store[K, V]) Has(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	el, ok := s.items[key]
	if !ok {
		return false
	}
	return !el.Value.(*entry[K, V]).expired(s.clock())
}

// Len implements Cache.Len. It counts only non-expired entries.
func (s *Store[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.clock()
	count := 0
	for el := s.order.Front(); el != nil; el = el.Next() {
		if !el.Value.(*entry[K, V]).expired(ts) {
			count++
		}
	}
	return count
}

// Clear implements Cache.Clear.
func (s *Store[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[K]*list.Element, s.maxEntries)
	s.order.Init()
}

// PurgeExpired implements Cache.PurgeExpired.
func (s *Store[K, V]) PurgeExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts := s.clock()
	for el := s.order.Front(); el != nil; {
		next := el.Next()
		if el.Value.(*entry[K, V]).expired(ts) {
			s.removeElement(el)
		}
		el = next
	}
}

// MaxEntries returns the configured capacity.
func (s *Store[K, V]) MaxEntries() int { return s.maxEntries }

// TTL returns the default entry lifetime.
func (s *Store[K, V]) TTL() time.Duration { return s.ttl }

// removeElement must be called with s.mu held.
func (s *Store[K, V]) removeElement(el *list.Element) {
	s.order.Remove(el)
	delete(s.items, el.Value.(*entry[K, V]).key)
}

// Ensure Store implements Cache at compile time.
var _ Cache[string, any] = (*Store[string, any])(nil)
