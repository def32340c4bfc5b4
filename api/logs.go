package api

import (
	"net/http"
)

type getLogsResponse struct {
	Lines []string `json:"lines"`
}

func (a *Api) handleGetLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := &getLogsResponse{
			Lines: []string{},
		}

		if a.plugLog != nil {
			res.Lines = a.plugLog.Tail()
		}

		a.jsonResponse(w, res, http.StatusOK)
	}
}
