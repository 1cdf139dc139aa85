package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/playperu/geohunt/internal/hunt"
)

// LocationPatch carries the writable location fields. ProjectID is only
// honoured on create.
type LocationPatch struct {
	ProjectID   *string        `json:"project_id,omitempty"`
	Name        *string        `json:"location_name,omitempty"`
	Trigger     *hunt.Trigger  `json:"location_trigger,omitempty"`
	Position    *hunt.Position `json:"location_position,omitempty"`
	ScorePoints *int           `json:"score_points,omitempty"`
	Clue        *string        `json:"clue,omitempty"`
	Content     *string        `json:"location_content,omitempty"`
}

func (p LocationPatch) apply(row *LocationRow) {
	if p.Name != nil {
		row.Name = strings.TrimSpace(*p.Name)
	}
	if p.Trigger != nil {
		row.Trigger = *p.Trigger
	}
	if p.Position != nil {
		row.Position = *p.Position
	}
	if p.ScorePoints != nil {
		row.ScorePoints = *p.ScorePoints
	}
	if p.Clue != nil {
		row.Clue = *p.Clue
	}
	if p.Content != nil {
		row.Content = *p.Content
	}
}

func (l *LocationRow) validate() string {
	if l.ProjectID == "" {
		return "project_id is required"
	}
	if l.Name == "" {
		return "location_name is required"
	}
	if err := l.hunt().Validate(); err != nil {
		return err.Error()
	}
	return ""
}

func handleListLocations(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query(), locationColumns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		locations, err := store.ListLocations(r.Context(), f)
		if err != nil {
			logger.Error("listing locations", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		if locations == nil {
			locations = []LocationRow{}
		}
		writeJSON(w, http.StatusOK, locations)
	}
}

func handleCreateLocation(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch LocationPatch
		if err := readJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, bodyError(err))
			return
		}
		if patch.ProjectID == nil {
			writeError(w, http.StatusBadRequest, "project_id is required")
			return
		}
		if patch.Trigger == nil {
			writeError(w, http.StatusBadRequest, "location_trigger is required")
			return
		}
		if patch.Position == nil {
			writeError(w, http.StatusBadRequest, "location_position is required")
			return
		}

		row := LocationRow{ProjectID: *patch.ProjectID}
		patch.apply(&row)
		if msg := row.validate(); msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}

		location, err := store.CreateLocation(r.Context(), row)
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Msg)
			return
		}
		if err != nil {
			logger.Error("creating location", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeRows(w, r, http.StatusCreated, []LocationRow{location})
	}
}

func handleUpdateLocations(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query(), locationColumns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(f) == 0 {
			writeError(w, http.StatusBadRequest, "a filter is required")
			return
		}

		var patch LocationPatch
		if err := readJSON(r, &patch); err != nil {
			writeError(w, http.StatusBadRequest, bodyError(err))
			return
		}

		locations, err := store.UpdateLocations(r.Context(), f, patch)
		var verr *ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Msg)
			return
		}
		if err != nil {
			logger.Error("updating locations", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeRows(w, r, http.StatusOK, locations)
	}
}

func handleDeleteLocations(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query(), locationColumns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if len(f) == 0 {
			writeError(w, http.StatusBadRequest, "a filter is required")
			return
		}

		locations, err := store.DeleteLocations(r.Context(), f)
		if err != nil {
			logger.Error("deleting locations", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeRows(w, r, http.StatusOK, locations)
	}
}

// QRCodeItem is one printable QR code. Payload is the exact text to encode.
type QRCodeItem struct {
	LocationID   string `json:"location_id"`
	LocationName string `json:"location_name"`
	Payload      string `json:"payload"`
}

func handleListQRCodes(logger *slog.Logger, store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := parseFilter(r.URL.Query(), locationColumns)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		locations, err := store.ListLocations(r.Context(), f)
		if err != nil {
			logger.Error("listing locations for qr", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		codes := make([]QRCodeItem, 0, len(locations))
		for _, l := range locations {
			payload, err := hunt.EncodeQR(l.hunt())
			if err != nil {
				logger.Error("encoding qr payload", "location_id", l.ID, "error", err)
				writeError(w, http.StatusInternalServerError, "internal error")
				return
			}
			codes = append(codes, QRCodeItem{
				LocationID:   l.ID,
				LocationName: l.Name,
				Payload:      string(payload),
			})
		}
		writeJSON(w, http.StatusOK, codes)
	}
}
