// Package memstore is an in-process key-value backend. Nothing survives the
// process; used by tests and `--backend memory` runs.
package memstore

type Store struct {
	m map[string]string
}

func New() *Store {
	return &Store{m: map[string]string{}}
}

func (s *Store) Get(key string) (string, bool, error) {
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *Store) Set(key, value string) error {
	s.m[key] = value
	return nil
}

func (s *Store) Close() error { return nil }
