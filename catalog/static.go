package catalog

import (
	"context"

	"github.com/plugland/plugd/updating"
)

// StaticSource serves a fixed queue, mainly for tests and development.
type StaticSource struct {
	queue updating.Queue
}

// Compile time check for protocol compatibility
var _ Source = (*StaticSource)(nil)

func NewStaticSource(queue updating.Queue) *StaticSource {
	return &StaticSource{queue: queue}
}

func (s *StaticSource) PendingUpdates(ctx context.Context) (updating.Queue, error) {
	return s.queue, nil
}
