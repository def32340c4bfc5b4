package restart

import "github.com/plugland/plugd/updating"

// NoopRestarter stands in on machines where replacing the process is not
// wanted, like during development. Restart returns right away so the
// daemon continues instead.
type NoopRestarter struct {
	log Logger
}

// Compile time check for protocol compatibility
var _ updating.Restarter = (*NoopRestarter)(nil)

func NewNoopRestarter(config *Config) *NoopRestarter {
	restarter := &NoopRestarter{}

	if config.Logger != nil {
		restarter.log = config.Logger
	} else {
		restarter.log = noopLogger{}
	}

	return restarter
}

func (r *NoopRestarter) Restart() error {
	r.log.Infof("Skipping restart, continuing without one")

	return nil
}
