package api

import (
	"net/http"
)

type getStatusResponse struct {
	Version string `json:"version"`
	Stage   string `json:"stage"`
}

func (a *Api) handleGetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := &getStatusResponse{
			Version: a.version,
			Stage:   a.daemon.Stage().String(),
		}

		a.jsonResponse(w, res, http.StatusOK)
	}
}
