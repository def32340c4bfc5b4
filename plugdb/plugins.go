package plugdb

import (
	"encoding/json"
	"time"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

// Plugin records one installed plugin.
type Plugin struct {
	Name        string    `json:"name"`
	Version     string    `json:"version"`
	InstalledAt time.Time `json:"installedAt"`
}

func (db *DB) SetPlugin(plugin *Plugin) error {
	return db.setJSON(pluginsBucket, []byte(plugin.Name), plugin)
}

// GetPlugin returns the installed plugin record or nil when the plugin
// was never installed.
func (db *DB) GetPlugin(name string) (*Plugin, error) {
	plugin := &Plugin{}

	found, err := db.getJSON(pluginsBucket, []byte(name), plugin)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return plugin, nil
}

func (db *DB) GetPlugins() ([]*Plugin, error) {
	var plugins []*Plugin

	err := db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(pluginsBucket)
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, payload []byte) error {
			plugin := &Plugin{}

			if err := json.Unmarshal(payload, plugin); err != nil {
				return errors.Errorf("Could not unmarshal plugin %v: %v", string(k), err)
			}

			plugins = append(plugins, plugin)
			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return plugins, nil
}
