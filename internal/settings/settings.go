// Package settings provides typed access to the option store. The store
// keeps every value as an opaque string; this package owns the encoding of
// the keys whose domain is known.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cast"

	"github.com/mesh-intelligence/taskboard/pkg/types"
)

// Kind is the value domain of a known option key.
type Kind int

// Option kinds.
const (
	KindString Kind = iota
	KindBool
	KindInt
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	}
	return "string"
}

// knownKinds lists the keys with a known domain. Keys not listed are
// strings.
var knownKinds = map[string]Kind{
	types.OptionSyncActive:    KindBool,
	types.OptionNotifications: KindBool,
	types.OptionFirstStart:    KindBool,
	types.OptionLastOpenBoard: KindInt,
}

// KindOf returns the value domain of key.
func KindOf(key string) Kind {
	return knownKinds[key]
}

// Validate checks that value is acceptable for key and returns its canonical
// string form ("true"/"false" for booleans, base 10 for integers).
func Validate(key, value string) (string, error) {
	switch KindOf(key) {
	case KindBool:
		v, err := cast.ToBoolE(value)
		if err != nil {
			return "", fmt.Errorf("option %s wants a bool: %w", key, types.ErrInvalidData)
		}
		return strconv.FormatBool(v), nil
	case KindInt:
		v, err := cast.ToInt64E(value)
		if err != nil {
			return "", fmt.Errorf("option %s wants an integer: %w", key, types.ErrInvalidData)
		}
		return strconv.FormatInt(v, 10), nil
	}
	return value, nil
}

// Settings wraps an option store with typed accessors.
type Settings struct {
	store types.OptionStore
}

// New returns Settings backed by store.
func New(store types.OptionStore) *Settings {
	return &Settings{store: store}
}

// String returns the raw value of key, or def when the key is absent.
func (s *Settings) String(ctx context.Context, key, def string) (string, error) {
	v, found, err := s.store.GetOption(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return def, nil
	}
	return v, nil
}

// Set writes value under key after validating it for the key's domain.
// The key is created when absent.
func (s *Settings) Set(ctx context.Context, key, value string) error {
	value, err := Validate(key, value)
	if err != nil {
		return err
	}
	err = s.store.UpdateOption(ctx, key, value)
	if errors.Is(err, types.ErrNotFound) {
		return s.store.CreateOption(ctx, key, value)
	}
	return err
}

// Bool returns key parsed as a boolean. An absent or empty key is false.
func (s *Settings) Bool(ctx context.Context, key string) (bool, error) {
	v, err := s.String(ctx, key, "")
	if err != nil || v == "" {
		return false, err
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return false, fmt.Errorf("option %s holds %q: %w", key, v, types.ErrInvalidData)
	}
	return b, nil
}

// SetBool stores v under key as "true" or "false".
func (s *Settings) SetBool(ctx context.Context, key string, v bool) error {
	return s.Set(ctx, key, strconv.FormatBool(v))
}

// Int64 returns key parsed as an integer. found is false when the key is
// absent or empty.
func (s *Settings) Int64(ctx context.Context, key string) (v int64, found bool, err error) {
	raw, err := s.String(ctx, key, "")
	if err != nil || raw == "" {
		return 0, false, err
	}
	v, err = cast.ToInt64E(raw)
	if err != nil {
		return 0, false, fmt.Errorf("option %s holds %q: %w", key, raw, types.ErrInvalidData)
	}
	return v, true, nil
}

// FirstStart reports whether the application has not completed its first
// run yet.
func (s *Settings) FirstStart(ctx context.Context) (bool, error) {
	return s.Bool(ctx, types.OptionFirstStart)
}

// CompleteFirstStart clears the first-run flag.
func (s *Settings) CompleteFirstStart(ctx context.Context) error {
	return s.SetBool(ctx, types.OptionFirstStart, false)
}

// Sync returns the sync toggle and URL. Both are stored but inert: no sync
// protocol exists.
func (s *Settings) Sync(ctx context.Context) (active bool, url string, err error) {
	if active, err = s.Bool(ctx, types.OptionSyncActive); err != nil {
		return false, "", err
	}
	url, err = s.String(ctx, types.OptionSyncURL, "")
	return active, url, err
}

// LastOpenBoard returns the id of the board opened last, if any.
func (s *Settings) LastOpenBoard(ctx context.Context) (int64, bool, error) {
	return s.Int64(ctx, types.OptionLastOpenBoard)
}

// SetLastOpenBoard records id as the board opened last.
func (s *Settings) SetLastOpenBoard(ctx context.Context, id int64) error {
	return s.Set(ctx, types.OptionLastOpenBoard, strconv.FormatInt(id, 10))
}

// ClearLastOpenBoard forgets the board opened last.
func (s *Settings) ClearLastOpenBoard(ctx context.Context) error {
	err := s.store.RemoveOption(ctx, types.OptionLastOpenBoard)
	if errors.Is(err, types.ErrNotFound) {
		return nil
	}
	return err
}
