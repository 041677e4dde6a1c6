package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", prefsFile)

	p := LoadFrom(path)
	assert.Equal(t, "", p.String(KeyLastSaveDir))
	assert.Equal(t, 2, p.Int(KeyCameraDevice, 2))

	p.SetString(KeyLastSaveDir, "/tmp/snaps")
	p.SetFloat(KeyCameraDevice, 1)
	p.SetFloat(KeyWindowWidth, 1024.5)
	require.NoError(t, p.Save())

	loaded := LoadFrom(path)
	assert.Equal(t, "/tmp/snaps", loaded.String(KeyLastSaveDir))
	assert.Equal(t, 1, loaded.Int(KeyCameraDevice, 0))
	assert.Equal(t, 1024.5, loaded.FloatWithFallback(KeyWindowWidth, 0))
	assert.Equal(t, 768.0, loaded.FloatWithFallback(KeyWindowHeight, 768))
}

func TestCorruptFileYieldsEmptyPrefs(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	p := LoadFrom(path)
	assert.Equal(t, "", p.String(KeyLastSaveDir))
}

func TestWrongTypeIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), prefsFile)
	require.NoError(t, os.WriteFile(path, []byte(`{"lastSaveDir": 3, "cameraDevice": "x"}`), 0o644))

	p := LoadFrom(path)
	assert.Equal(t, "", p.String(KeyLastSaveDir))
	assert.Equal(t, 4, p.Int(KeyCameraDevice, 4))
}
