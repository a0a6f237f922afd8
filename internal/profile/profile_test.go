package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Alex
telegram: "@alex"
role: runner
hobbies: trail running, chess
`), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, Profile{
		Name:     "Alex",
		Telegram: "@alex",
		Role:     "runner",
		Hobbies:  "trail running, chess",
	}, p)
}

func TestLoad_MissingFileYieldsEmptyCard(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Profile{}, p)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}
