// ABOUTME: Tests for the persisted boot counter
// ABOUTME: Covers increments across restarts and silent recovery from bad state
package bootcount

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementAcrossRestarts(t *testing.T) {
	dir := t.TempDir()

	// Each Increment models one boot.
	assert.Equal(t, 1, NewStore(dir).Increment())
	assert.Equal(t, 2, NewStore(dir).Increment())
	assert.Equal(t, 3, NewStore(dir).Increment())
}

func TestIncrementWithCorruptState(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, os.WriteFile(s.Path(), []byte("not a number"), 0o644))

	assert.Equal(t, 1, s.Increment(), "corrupt state defaults to the baseline")
	assert.Equal(t, 2, s.Increment())
}

func TestIncrementWithNegativeState(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	require.NoError(t, os.WriteFile(s.Path(), []byte("-7"), 0o644))

	assert.Equal(t, 1, s.Increment())
}

func TestIncrementUnwritableDirStillCounts(t *testing.T) {
	// A store rooted somewhere unusable must still return a count.
	s := NewStore("/dev/null/not-a-dir")
	assert.Equal(t, 1, s.Increment())
}
