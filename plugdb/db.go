package plugdb

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

var (
	pluginsBucket  = []byte("plugins")
	settingsBucket = []byte("settings")

	nameKey = []byte("name")
)

// DB persistently stores the installed plugin versions and daemon
// settings.
type DB struct {
	*bbolt.DB
}

func Open(dataDir string) (*DB, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, errors.Errorf("Could not create data directory: %v", err)
	}

	path := filepath.Join(dataDir, "plug.db")

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Errorf("Could not open %v: %v", path, err)
	}

	return &DB{DB: db}, nil
}
