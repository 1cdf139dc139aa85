package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// handleTourStream streams a tour's transitions as Server-Sent Events. The
// current state is sent first so observers need no separate fetch. The
// subscription is taken before that state is read so no transition in
// between is lost.
func handleTourStream(ts *tourService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tourID := chi.URLParam(r, "tourID")

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		ch := ts.broker.Subscribe(tourID)
		defer ts.broker.Unsubscribe(tourID, ch)

		st, err := ts.state(r.Context(), tourID)
		if err != nil {
			writeTourError(w, ts, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		initial, _ := json.Marshal(TourEvent{Type: "state", TourID: tourID, State: &st})
		fmt.Fprintf(w, "event: state\ndata: %s\n\n", initial)
		flusher.Flush()

		ping := time.NewTicker(30 * time.Second)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case data := <-ch:
				fmt.Fprintf(w, "event: state\ndata: %s\n\n", data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
