package configstore

import (
	"sync"

	"github.com/Beka01247/shopbuilder/internal/domain"
)

// Listener receives the configuration after every successful mutation.
// Listeners run synchronously on the mutating goroutine and must not mutate the store.
type Listener func(cfg domain.Configuration)

// Store holds the current configuration of one context (an editor session or a storefront).
// Readers always get deep copies.
type Store struct {
	// writeMu serializes mutation together with notification, so listeners
	// observe changes in the order they were applied.
	writeMu sync.Mutex

	mu        sync.RWMutex
	cfg       domain.Configuration
	err       error
	listeners map[uint64]Listener
	nextID    uint64
}

func New() *Store {
	return &Store{
		listeners: make(map[uint64]Listener),
	}
}

// Get returns a copy of the current configuration, or nil before the first set.
func (s *Store) Get() domain.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cfg.Clone()
}

// Err returns the error recorded by the last failed load, cleared by Set.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.err
}

func (s *Store) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Set replaces the configuration wholesale and clears the error state.
func (s *Store) Set(cfg domain.Configuration) {
	s.mutate(func(domain.Configuration) (domain.Configuration, bool) {
		s.err = nil
		next := cfg.Clone()
		if next == nil {
			next = domain.Configuration{}
		}
		return next, true
	})
}

// Patch merges partial into the current configuration. On an empty store it behaves as Set.
func (s *Store) Patch(partial domain.PartialConfiguration) {
	s.mutate(func(current domain.Configuration) (domain.Configuration, bool) {
		if current == nil {
			return partial.Clone(), true
		}
		return Merge(current, partial), true
	})
}

// PatchTheme merges into the theme object. It is a no-op on an empty store.
func (s *Store) PatchTheme(partial map[string]any) bool {
	return s.patchNested(domain.KeyTheme, partial)
}

// PatchBrand merges into the brand object. It is a no-op on an empty store.
func (s *Store) PatchBrand(partial map[string]any) bool {
	return s.patchNested(domain.KeyBrand, partial)
}

func (s *Store) patchNested(key string, partial map[string]any) bool {
	return s.mutate(func(current domain.Configuration) (domain.Configuration, bool) {
		if current == nil {
			return nil, false
		}
		nested := current.Object(key)
		if nested == nil {
			nested = map[string]any{}
		}
		return Merge(current, domain.PartialConfiguration{key: mergeObject(nested, partial)}), true
	})
}

// Subscribe registers a listener and returns its cancel function.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) mutate(fn func(current domain.Configuration) (domain.Configuration, bool)) bool {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next, ok := fn(s.cfg)
	if !ok {
		s.mu.Unlock()
		return false
	}
	if next == nil {
		next = domain.Configuration{}
	}
	s.cfg = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(next.Clone())
	}

	return true
}
