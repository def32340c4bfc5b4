package api

import (
	"net"
	"net/http"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/plugland/plugd/daemon"
	"github.com/plugland/plugd/plugdlog"
)

type Config struct {
	PlugLog *plugdlog.PlugLog
	Version string
	Log     Logger
}

type Api struct {
	daemon  *daemon.Daemon
	router  *mux.Router
	plugLog *plugdlog.PlugLog
	version string
	log     Logger
}

// Compile time check for protocol compatibility
var _ daemon.Api = (*Api)(nil)

func New(config *Config) *Api {
	api := &Api{
		router:  mux.NewRouter(),
		plugLog: config.PlugLog,
		version: config.Version,
	}

	if config.Log != nil {
		api.log = config.Log
	} else {
		api.log = noopLogger{}
	}

	api.router.Handle("/api/v1/status", api.handleGetStatus()).Methods(http.MethodGet)

	api.router.Handle("/api/v1/update", api.handleGetUpdate()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/update/confirm", api.handlePostConfirm()).Methods(http.MethodPost)
	api.router.Handle("/api/v1/update/events", api.handleGetUpdateEvents()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/updates", api.handlePostCycle()).Methods(http.MethodPost)

	api.router.Handle("/api/v1/logs", api.handleGetLogs()).Methods(http.MethodGet)

	return api
}

func (a *Api) SetDaemon(daemon *daemon.Daemon) {
	a.daemon = daemon
}

func (a *Api) Serve(l net.Listener) error {
	err := http.Serve(l, a.router)
	if err != nil {
		return errors.Errorf("Unable to serve api: %v", err)
	}

	return nil
}
