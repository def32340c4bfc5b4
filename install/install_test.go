package install

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plugland/plugd/plugdb"
	"github.com/plugland/plugd/updating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInstaller(t *testing.T) (*DirInstaller, *plugdb.DB, string) {
	t.Helper()

	db, err := plugdb.Open(t.TempDir())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	pluginDir := filepath.Join(t.TempDir(), "plugins")

	installer := NewDirInstaller(&Config{
		PluginDir: pluginDir,
		DB:        db,
	})

	return installer, db, pluginDir
}

func TestInstallCopiesArtifactAndRecordsVersion(t *testing.T) {
	installer, db, pluginDir := newTestInstaller(t)

	artifact := filepath.Join(t.TempDir(), "artifact")
	require.NoError(t, os.WriteFile(artifact, []byte("plugin payload"), 0644))

	candidate := updating.Candidate{Name: "greeter", DisplayName: "Greeter"}
	meta := updating.Metadata{Version: "1.2.0"}

	require.NoError(t, installer.Install(candidate, meta, artifact))

	payload, err := os.ReadFile(filepath.Join(pluginDir, "greeter"))
	require.NoError(t, err)
	assert.Equal(t, "plugin payload", string(payload))

	plugin, err := db.GetPlugin("greeter")
	require.NoError(t, err)
	require.NotNil(t, plugin)
	assert.Equal(t, "1.2.0", plugin.Version)
	assert.False(t, plugin.InstalledAt.IsZero())
}

func TestInstallOverwritesPreviousVersion(t *testing.T) {
	installer, db, pluginDir := newTestInstaller(t)

	candidate := updating.Candidate{Name: "greeter"}

	artifact := filepath.Join(t.TempDir(), "artifact")

	require.NoError(t, os.WriteFile(artifact, []byte("v1"), 0644))
	require.NoError(t, installer.Install(candidate, updating.Metadata{Version: "1.0.0"}, artifact))

	require.NoError(t, os.WriteFile(artifact, []byte("v2"), 0644))
	require.NoError(t, installer.Install(candidate, updating.Metadata{Version: "2.0.0"}, artifact))

	payload, err := os.ReadFile(filepath.Join(pluginDir, "greeter"))
	require.NoError(t, err)
	assert.Equal(t, "v2", string(payload))

	plugin, err := db.GetPlugin("greeter")
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", plugin.Version)
}

func TestInstallMissingArtifact(t *testing.T) {
	installer, db, _ := newTestInstaller(t)

	candidate := updating.Candidate{Name: "greeter"}

	err := installer.Install(candidate, updating.Metadata{Version: "1.0.0"}, filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	var installErr *Error
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "greeter", installErr.Name)

	// A failed install must not record a version.
	plugin, err := db.GetPlugin("greeter")
	require.NoError(t, err)
	assert.Nil(t, plugin)
}
