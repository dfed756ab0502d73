package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Stderr(t *testing.T) {
	var buf bytes.Buffer
	logger, closer, err := New(Options{Stderr: &buf})
	require.NoError(t, err)
	defer closer.Close()

	logger.Printf("opened %s", "store")
	assert.Contains(t, buf.String(), Prefix)
	assert.Contains(t, buf.String(), "opened store")
}

func TestNew_DebugAddsLocation(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := New(Options{Stderr: &buf, Debug: true})
	require.NoError(t, err)

	logger.Print("x")
	assert.Contains(t, buf.String(), "logging_test.go:")
}

func TestNew_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "taskboard.log")
	logger, closer, err := New(Options{File: path})
	require.NoError(t, err)

	logger.Print("to file")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
