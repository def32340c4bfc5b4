package plugdlog

import (
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
)

const defaultLimit = 200

// PlugLog is a logrus hook keeping a bounded in-memory tail of the
// daemon's log so the API can expose recent lines.
type PlugLog struct {
	mtx     sync.Mutex
	entries []string
	limit   int
}

// Compile time check for protocol compatibility
var _ log.Hook = (*PlugLog)(nil)

func New() *PlugLog {
	return &PlugLog{
		limit: defaultLimit,
	}
}

func (l *PlugLog) Levels() []log.Level {
	return log.AllLevels
}

func (l *PlugLog) Fire(entry *log.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.entries = append(l.entries, strings.TrimRight(line, "\n"))

	if len(l.entries) > l.limit {
		l.entries = l.entries[len(l.entries)-l.limit:]
	}

	return nil
}

// Tail returns a copy of the most recent log lines, oldest first.
func (l *PlugLog) Tail() []string {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	tail := make([]string, len(l.entries))
	copy(tail, l.entries)

	return tail
}
