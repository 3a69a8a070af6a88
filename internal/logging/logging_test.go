// ABOUTME: Tests for logger setup
// ABOUTME: Log-file creation and the TUI file-only mode
package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCreatesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")

	closeLog, err := Setup(path, false, false)
	require.NoError(t, err)
	defer closeLog()

	log.Info().Msg("hello")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "log line should be mirrored to the file")
}

func TestSetupTUIWritesOnlyToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")

	closeLog, err := Setup(path, true, true)
	require.NoError(t, err)
	defer closeLog()

	log.Debug().Msg("tui mode")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "tui mode")
}

func TestSetupBadPath(t *testing.T) {
	_, err := Setup("/dev/null/not-a-dir/node.log", false, false)
	assert.Error(t, err)
}
