package server

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

type CreateTourRequest struct {
	ProjectID string `json:"project_id"`
}

func writeTourError(w http.ResponseWriter, ts *tourService, err error) {
	status, resp := ts.tourError(err)
	writeJSON(w, status, resp)
}

func handleCreateTour(ts *tourService, author Author) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTourRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.ProjectID = strings.TrimSpace(req.ProjectID)
		if req.ProjectID == "" {
			writeError(w, http.StatusBadRequest, "project_id is required")
			return
		}

		_, preview := author.fromRequest(r)
		st, err := ts.start(r.Context(), req.ProjectID, preview)
		if err != nil {
			writeTourError(w, ts, err)
			return
		}
		writeJSON(w, http.StatusCreated, st)
	}
}

func handleGetTour(ts *tourService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := ts.state(r.Context(), chi.URLParam(r, "tourID"))
		if err != nil {
			writeTourError(w, ts, err)
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

func handleTourEvent(ts *tourService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TourEventRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		resp, err := ts.apply(r.Context(), chi.URLParam(r, "tourID"), req)
		if err != nil {
			writeTourError(w, ts, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func handleDeleteTour(ts *tourService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := ts.end(r.Context(), chi.URLParam(r, "tourID")); err != nil {
			writeTourError(w, ts, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
