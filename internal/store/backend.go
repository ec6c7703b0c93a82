package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/tada/internal/config"
	"github.com/Makepad-fr/tada/internal/store/jsonstore"
	"github.com/Makepad-fr/tada/internal/store/memstore"
	"github.com/Makepad-fr/tada/internal/store/sqlitestore"
)

// Backend is the key-value storage the list is persisted to.
// Values are opaque strings; a missing key reports ok == false.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Close() error
}

const (
	jsonFileName   = "todos.json"
	sqliteFileName = "todos.sqlite"
)

// Open builds the backend named by cfg. Relative or empty paths resolve
// against the working directory.
func Open(cfg config.Storage) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return memstore.New(), nil
	case config.BackendSQLite:
		p, err := dataPath(cfg.Path, sqliteFileName)
		if err != nil {
			return nil, err
		}
		return sqlitestore.Open(p)
	case config.BackendJSON, "":
		p, err := dataPath(cfg.Path, jsonFileName)
		if err != nil {
			return nil, err
		}
		return jsonstore.New(p), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

func dataPath(p, fallback string) (string, error) {
	if p == "" {
		p = fallback
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	return filepath.Join(wd, p), nil
}
