package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/playperu/geohunt/internal/hunt"
)

// ProjectPatch carries the writable project fields. Absent fields are left
// unchanged on update and take their defaults on create.
type ProjectPatch struct {
	Title              *string                  `json:"title,omitempty"`
	Description        *string                  `json:"description,omitempty"`
	Instructions       *string                  `json:"instructions,omitempty"`
	InitialClue        *string                  `json:"initial_clue,omitempty"`
	HomescreenDisplay  *hunt.HomescreenDisplay  `json:"homescreen_display,omitempty"`
	ParticipantScoring *hunt.ParticipantScoring `json:"participant_scoring,omitempty"`
	IsPublished        *bool                    `json:"is_published,omitempty"`
}

func (p ProjectPatch) apply(row *ProjectRow) {
	if p.Title != nil {
		row.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		row.Description = *p.Description
	}
	if p.Instructions != nil {
		row.Instructions = *p.Instructions
	}
	if p.InitialClue != nil {
		row.InitialClue = *p.InitialClue
	}
	if p.HomescreenDisplay != nil {
		row.HomescreenDisplay = *p.HomescreenDisplay
	}
	if p.ParticipantScoring != nil {
		row.ParticipantScoring = *p.ParticipantScoring
	}
	if p.IsPublished != nil {
		row.IsPublished = *p.IsPublished
	}
}

func (p *ProjectRow) validate() string {
	if p.Title == "" {
		return "title is required"
	}
	if _, err := hunt.ParseHomescreenDisplay(string(p.HomescreenDisplay)); err != nil {
		return err.Error()
	}
	if _, err := hunt.ParseParticipantScoring(string(p.ParticipantScoring)); err != nil {
		return err.Error()
	}
	return ""
}

func handleListProjects(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query(), projectColumns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		projects, err := store.ListProjects(r.Context(), f)
		if err != nil {
			logger.Error("listing projects", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if projects == nil {
			projects = []ProjectRow{}
		}
		writeJSON(w, http.StatusOK, projects)
	}
}

func handleCreateProject(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch ProjectPatch
		if err := readJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, bodyError(err))
			return
		}

		row := ProjectRow{
			HomescreenDisplay:  hunt.DisplayInitialClue,
			ParticipantScoring: hunt.ScoringNotScored,
			Owner:              authorFrom(r),
		}
		patch.apply(&row)
		if msg := row.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		project, err := store.CreateProject(r.Context(), row)
		if err != nil {
			logger.Error("creating project", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		logger.Info("project created", "project_id", project.ID, "owner", project.Owner)
		writeRows(w, r, http.StatusCreated, []ProjectRow{project})
	}
}

func handleUpdateProjects(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query(), projectColumns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(f) == 0 {
			writeError(w, http.StatusBadRequest, "a filter is required")
			return
		}

		var patch ProjectPatch
		if err := readJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, bodyError(err))
			return
		}

		projects, err := store.UpdateProjects(r.Context(), f, patch)
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Msg)
			return
		}
		if err != nil {
			logger.Error("updating projects", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeRows(w, r, http.StatusOK, projects)
	}
}

func handleDeleteProjects(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query(), projectColumns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(f) == 0 {
			writeError(w, http.StatusBadRequest, "a filter is required")
			return
		}

		projects, err := store.DeleteProjects(r.Context(), f)
		if err != nil {
			logger.Error("deleting projects", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		for _, p := range projects {
			logger.Info("project deleted", "project_id", p.ID)
		}
		writeRows(w, r, http.StatusOK, projects)
	}
}
