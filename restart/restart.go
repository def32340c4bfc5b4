package restart

import (
	"os"
	"syscall"

	"github.com/go-errors/errors"
	"github.com/plugland/plugd/updating"
)

// ExecRestarter replaces the running process with a fresh instance of the
// same binary and arguments. Restart does not return on success.
type ExecRestarter struct {
	log Logger
}

// Compile time check for protocol compatibility
var _ updating.Restarter = (*ExecRestarter)(nil)

type Config struct {
	Logger Logger
}

func NewExecRestarter(config *Config) *ExecRestarter {
	restarter := &ExecRestarter{}

	if config.Logger != nil {
		restarter.log = config.Logger
	} else {
		restarter.log = noopLogger{}
	}

	return restarter
}

func (r *ExecRestarter) Restart() error {
	exe, err := os.Executable()
	if err != nil {
		return errors.Errorf("Could not resolve own binary: %v", err)
	}

	r.log.Infof("Replacing process with %v", exe)

	if err := syscall.Exec(exe, os.Args, os.Environ()); err != nil {
		return errors.Errorf("Could not exec %v: %v", exe, err)
	}

	return nil
}
