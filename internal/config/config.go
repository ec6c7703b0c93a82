// Package config resolves tada settings from flags, TADA_* env vars and an
// optional config file, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	OrderNewestFirst = "newest-first"
	OrderOldestFirst = "oldest-first"

	// DefaultKey is the single storage key the list lives under.
	DefaultKey = "myList"
)

// Keys, shared with the flag bindings in internal/cli.
const (
	KeyBackend  = "storage.backend"
	KeyPath     = "storage.path"
	KeyListKey  = "storage.key"
	KeyOrder    = "view.order"
	KeyTheme    = "ui.theme"
	KeyColor    = "ui.color"
	KeyLogFile  = "log.file"
	KeyLogLevel = "log.level"
)

type Storage struct {
	Backend string
	Path    string // empty: backend default in the working directory
	Key     string
}

type View struct {
	Order string
}

type UI struct {
	Theme string // classic | neon | mono
	Color string // auto | always | never
}

type Log struct {
	File  string // empty: logging disabled
	Level string
}

type Config struct {
	Storage Storage
	View    View
	UI      UI
	Log     Log
}

// New returns a viper instance with defaults, env binding and config search
// paths set. file overrides the search when non-empty.
func New(file string) *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyBackend, BackendJSON)
	v.SetDefault(KeyPath, "")
	v.SetDefault(KeyListKey, DefaultKey)
	v.SetDefault(KeyOrder, OrderNewestFirst)
	v.SetDefault(KeyTheme, "classic")
	v.SetDefault(KeyColor, "auto")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyLogLevel, "info")

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("tada")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tada")
	}

	// TADA_STORAGE_BACKEND, TADA_LOG_FILE, ...
	v.SetEnvPrefix("TADA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the config file (if any) and decodes the effective settings.
// A missing config file is not an error; an explicitly named one is.
func Load(v *viper.Viper) (Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Storage: Storage{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString(KeyBackend))),
			Path:    strings.TrimSpace(v.GetString(KeyPath)),
			Key:     strings.TrimSpace(v.GetString(KeyListKey)),
		},
		View: View{Order: strings.ToLower(strings.TrimSpace(v.GetString(KeyOrder)))},
		UI: UI{
			Theme: strings.ToLower(strings.TrimSpace(v.GetString(KeyTheme))),
			Color: strings.ToLower(strings.TrimSpace(v.GetString(KeyColor))),
		},
		Log: Log{
			File:  strings.TrimSpace(v.GetString(KeyLogFile)),
			Level: strings.ToLower(strings.TrimSpace(v.GetString(KeyLogLevel))),
		},
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values no component knows how to serve.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendJSON, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q (want json, sqlite or memory)", c.Storage.Backend)
	}
	if c.Storage.Key == "" {
		return errors.New("storage key must not be empty")
	}
	switch c.View.Order {
	case OrderNewestFirst, OrderOldestFirst:
	default:
		return fmt.Errorf("unknown view order %q (want newest-first or oldest-first)", c.View.Order)
	}
	switch c.UI.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("unknown color mode %q (want auto, always or never)", c.UI.Color)
	}
	return nil
}
