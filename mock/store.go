package mock

import "github.com/fwojciec/ragchat"

// Interface compliance check.
var _ ragchat.KeyValueStore = (*Store)(nil)

// Store is a test double for ragchat.KeyValueStore.
// Set the function fields for the methods you need.
type Store struct {
	GetFn    func(key string) (string, bool, error)
	SetFn    func(key, value string) error
	RemoveFn func(key string) error
}

// Get delegates to GetFn.
func (s *Store) Get(key string) (string, bool, error) {
	return s.GetFn(key)
}

// Set delegates to SetFn.
func (s *Store) Set(key, value string) error {
	return s.SetFn(key, value)
}

// Remove delegates to RemoveFn.
func (s *Store) Remove(key string) error {
	return s.RemoveFn(key)
}

// MapStore returns a Store backed by m.
func MapStore(m map[string]string) *Store {
	return &Store{
		GetFn: func(key string) (string, bool, error) {
			v, ok := m[key]
			return v, ok, nil
		},
		SetFn: func(key, value string) error {
			m[key] = value
			return nil
		},
		RemoveFn: func(key string) error {
			delete(m, key)
			return nil
		},
	}
}
