package types

import (
	"errors"
	"log"
	"path/filepath"
)

// Config holds backend selection and parameters for Backend.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	// Path is the resolved absolute path of the store file.
	Path string `json:"path" yaml:"path"`
	// Logger receives lifecycle messages. Nil discards them.
	Logger *log.Logger `json:"-" yaml:"-"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrPathEmpty      = errors.New("store path must not be empty")
	ErrPathRelative   = errors.New("store path must be absolute")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Path == "" {
		return ErrPathEmpty
	}
	if !filepath.IsAbs(c.Path) {
		return ErrPathRelative
	}
	return nil
}
