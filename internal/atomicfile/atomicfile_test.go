package atomicfile_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripwhizz/tripsync/internal/atomicfile"
)

func TestWriteJSON_CreatesDirsAndReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")

	require.NoError(t, atomicfile.WriteJSON(path, map[string]string{"a": "1"}, 0o600))
	require.NoError(t, atomicfile.WriteJSON(path, map[string]string{"a": "2"}, 0o600))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got map[string]string
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "2", got["a"])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWriteJSON_MarshalError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")

	err := atomicfile.WriteJSON(path, map[string]any{"ch": make(chan int)}, 0o600)

	require.Error(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}
