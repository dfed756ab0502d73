package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTheme(t *testing.T) {
	for in, want := range map[string]Theme{
		"":       ThemeSystem,
		"system": ThemeSystem,
		"light":  ThemeLight,
		"dark":   ThemeDark,
	} {
		got, err := ParseTheme(in)
		require.NoError(t, err, "theme %q", in)
		assert.Equal(t, want, got)
	}

	_, err := ParseTheme("sepia")
	assert.ErrorIs(t, err, ErrInvalidTheme)
}

func TestDefaultOptionsUniqueKeys(t *testing.T) {
	seen := make(map[string]bool)
	for _, o := range DefaultOptions {
		assert.False(t, seen[o.Key], "duplicate default option %q", o.Key)
		seen[o.Key] = true
	}
	assert.True(t, seen[OptionFirstStart])
	assert.False(t, seen[OptionLastOpenBoard])
}
