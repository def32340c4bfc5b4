package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type getUpdateResponse struct {
	Stage                   string `json:"stage"`
	Message                 string `json:"message"`
	SubMessage              string `json:"subMessage"`
	AwaitingRestartConfirm  bool   `json:"awaitingRestartConfirm"`
	AwaitingContinueConfirm bool   `json:"awaitingContinueConfirm"`
	ReadyToAdvance          bool   `json:"readyToAdvance"`
}

func (a *Api) handleGetUpdate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := a.daemon.SessionSnapshot()
		if snapshot == nil {
			a.jsonError(w, "No update cycle ran yet", http.StatusNotFound)
			return
		}

		a.jsonResponse(w, &getUpdateResponse{
			Stage:                   a.daemon.Stage().String(),
			Message:                 snapshot.Message,
			SubMessage:              snapshot.SubMessage,
			AwaitingRestartConfirm:  snapshot.AwaitingRestartConfirm,
			AwaitingContinueConfirm: snapshot.AwaitingContinueConfirm,
			ReadyToAdvance:          snapshot.ReadyToAdvance,
		}, http.StatusOK)
	}
}

func (a *Api) handlePostConfirm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.daemon.Confirm()

		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *Api) handlePostCycle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := a.daemon.StartCycle(); err != nil {
			a.jsonError(w, err.Error(), http.StatusConflict)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}
}

func (a *Api) handleGetUpdateEvents() http.HandlerFunc {
	upgrader := &websocket.Upgrader{}

	return func(w http.ResponseWriter, r *http.Request) {
		client := a.daemon.SubscribeSession()
		if client == nil {
			a.jsonError(w, "No update cycle ran yet", http.StatusNotFound)
			return
		}

		defer client.Cancel()

		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			a.log.Errorf("Could not upgrade connection: %v", err)
			return
		}

		// read pump
		go func() {
			defer c.Close()

			c.SetReadLimit(512)
			c.SetReadDeadline(time.Now().Add(60 * time.Second))
			c.SetPongHandler(func(string) error {
				c.SetReadDeadline(time.Now().Add(60 * time.Second))
				return nil
			})

			for {
				_, _, err := c.ReadMessage()
				if err != nil {
					if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
						a.log.Errorf("unexpected websocket closure: %v", err)
					}
					break
				}
			}
		}()

		// write pump
		ticker := time.NewTicker(54 * time.Second)
		defer ticker.Stop()
		defer c.Close()

		for {
			select {
			case snapshot, ok := <-client.Snapshots:
				c.SetWriteDeadline(time.Now().Add(10 * time.Second))

				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}

				err := c.WriteJSON(&getUpdateResponse{
					Stage:                   a.daemon.Stage().String(),
					Message:                 snapshot.Message,
					SubMessage:              snapshot.SubMessage,
					AwaitingRestartConfirm:  snapshot.AwaitingRestartConfirm,
					AwaitingContinueConfirm: snapshot.AwaitingContinueConfirm,
					ReadyToAdvance:          snapshot.ReadyToAdvance,
				})
				if err != nil {
					return
				}

			case <-ticker.C:
				c.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}
}
