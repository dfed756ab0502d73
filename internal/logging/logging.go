// Package logging builds the *log.Logger handed to the store.
package logging

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Prefix starts every log line.
const Prefix = "[taskboard] "

// Rotation limits of the log file.
const (
	MaxSizeMB  = 10
	MaxBackups = 3
	MaxAgeDays = 28
)

// Options selects the log destination.
type Options struct {
	// File is the log file path. Empty logs to Stderr.
	File string
	// Debug adds file:line to every entry.
	Debug bool
	// Stderr is the fallback writer; nil means os.Stderr.
	Stderr io.Writer
}

// New returns a logger and a closer that releases the log file. The closer
// is never nil.
func New(opts Options) (*log.Logger, io.Closer, error) {
	flags := log.LstdFlags
	if opts.Debug {
		flags |= log.Lshortfile
	}

	if opts.File == "" {
		w := opts.Stderr
		if w == nil {
			w = os.Stderr
		}
		return log.New(w, Prefix, flags), nopCloser{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, nil, err
	}
	rotator := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    MaxSizeMB,
		MaxBackups: MaxBackups,
		MaxAge:     MaxAgeDays,
	}
	return log.New(rotator, Prefix, flags), rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
