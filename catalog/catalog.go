package catalog

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-errors/errors"
	"github.com/plugland/plugd/plugdb"
	"github.com/plugland/plugd/updating"
)

// Source produces the list of pending plugin updates for one run.
type Source interface {
	PendingUpdates(ctx context.Context) (updating.Queue, error)
}

// Manifest is the remote document describing the latest plugin versions.
type Manifest struct {
	Plugins []ManifestEntry `json:"plugins"`
}

type ManifestEntry struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Version     string `json:"version"`
	URL         string `json:"url"`
	SHA256      string `json:"sha256"`
	Size        int64  `json:"size"`
}

// HTTPSource fetches a manifest over HTTP and diffs it against the
// versions recorded in the local database. Manifest order is preserved so
// the progress numbering of a run stays stable.
type HTTPSource struct {
	url    string
	client *http.Client
	db     *plugdb.DB
	log    Logger
}

// Compile time check for protocol compatibility
var _ Source = (*HTTPSource)(nil)

type Config struct {
	// URL of the plugin manifest.
	URL    string
	Client *http.Client
	DB     *plugdb.DB
	Logger Logger
}

func NewHTTPSource(config *Config) *HTTPSource {
	source := &HTTPSource{
		url:    config.URL,
		client: http.DefaultClient,
		db:     config.DB,
	}

	if config.Client != nil {
		source.client = config.Client
	}

	if config.Logger != nil {
		source.log = config.Logger
	} else {
		source.log = noopLogger{}
	}

	return source
}

func (s *HTTPSource) PendingUpdates(ctx context.Context) (updating.Queue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, errors.Errorf("Could not build manifest request: %v", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, errors.Errorf("Could not fetch manifest: %v", err)
	}

	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, errors.Errorf("Manifest request failed with status %v", res.Status)
	}

	manifest := Manifest{}
	if err := json.NewDecoder(res.Body).Decode(&manifest); err != nil {
		return nil, errors.Errorf("Could not decode manifest: %v", err)
	}

	var queue updating.Queue

	for _, entry := range manifest.Plugins {
		installed, err := s.db.GetPlugin(entry.Name)
		if err != nil {
			return nil, err
		}

		if installed != nil && installed.Version == entry.Version {
			s.log.Debugf("Plugin %v is up to date at %v", entry.Name, entry.Version)
			continue
		}

		displayName := entry.DisplayName
		if displayName == "" {
			displayName = entry.Name
		}

		queue = append(queue, updating.Pending{
			Candidate: updating.Candidate{
				Name:        entry.Name,
				DisplayName: displayName,
				URL:         entry.URL,
				SHA256:      entry.SHA256,
			},
			Meta: updating.Metadata{
				Version: entry.Version,
				Size:    entry.Size,
			},
		})
	}

	s.log.Infof("Found %v pending updates", len(queue))

	return queue, nil
}
