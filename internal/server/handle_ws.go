package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// TourMessage is written to the WebSocket: the state after a transition, or
// an error when the event was rejected.
type TourMessage struct {
	Type       string         `json:"type"`
	FirstVisit bool           `json:"first_visit,omitempty"`
	State      *TourState     `json:"state,omitempty"`
	Error      *ErrorResponse `json:"error,omitempty"`
}

// handleTourWS lets a device drive a tour over one connection. Each
// TourEventRequest it sends is answered with a TourMessage; a rejected event
// does not close the connection.
func handleTourWS(ts *tourService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tourID := chi.URLParam(r, "tourID")

		st, err := ts.state(r.Context(), tourID)
		if err != nil {
			writeTourError(w, ts, err)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			ts.logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Hour)
		defer cancel()

		if err := wsjson.Write(ctx, conn, TourMessage{Type: "state", State: &st}); err != nil {
			ts.logger.Debug("websocket write failed", "error", err)
			return
		}

		for {
			var req TourEventRequest
			if err := wsjson.Read(ctx, conn, &req); err != nil {
				ts.logger.Debug("websocket read ended", "tour_id", tourID, "error", err)
				return
			}

			msg := TourMessage{Type: "transition"}
			resp, err := ts.apply(ctx, tourID, req)
			if err != nil {
				_, errResp := ts.tourError(err)
				msg = TourMessage{Type: "rejected", Error: &errResp}
			} else {
				msg.FirstVisit = resp.FirstVisit
				msg.State = &resp.State
			}

			if err := wsjson.Write(ctx, conn, msg); err != nil {
				ts.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}
