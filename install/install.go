package install

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/plugland/plugd/plugdb"
	"github.com/plugland/plugd/updating"
)

// Error wraps any failure while installing a verified artifact.
type Error struct {
	Name string
	Err  error
}

func (e *Error) Error() string {
	return "install of " + e.Name + " failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DirInstaller copies verified artifacts into the plugin directory and
// records the installed version in the database.
type DirInstaller struct {
	pluginDir string
	db        *plugdb.DB
	log       Logger
}

// Compile time check for protocol compatibility
var _ updating.Installer = (*DirInstaller)(nil)

type Config struct {
	PluginDir string
	DB        *plugdb.DB
	Logger    Logger
}

func NewDirInstaller(config *Config) *DirInstaller {
	installer := &DirInstaller{
		pluginDir: config.PluginDir,
		db:        config.DB,
	}

	if config.Logger != nil {
		installer.log = config.Logger
	} else {
		installer.log = noopLogger{}
	}

	return installer
}

func (i *DirInstaller) Install(candidate updating.Candidate, meta updating.Metadata, path string) error {
	if err := os.MkdirAll(i.pluginDir, 0755); err != nil {
		return &Error{Name: candidate.Name, Err: err}
	}

	target := filepath.Join(i.pluginDir, candidate.Name)

	i.log.Debugf("Installing %v to %v", candidate.Name, target)

	if err := copyFile(path, target); err != nil {
		return &Error{Name: candidate.Name, Err: err}
	}

	err := i.db.SetPlugin(&plugdb.Plugin{
		Name:        candidate.Name,
		Version:     meta.Version,
		InstalledAt: time.Now(),
	})
	if err != nil {
		return &Error{Name: candidate.Name, Err: err}
	}

	return nil
}

func copyFile(src string, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}

	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)

	if cerr := out.Close(); err == nil {
		err = cerr
	}

	return err
}
