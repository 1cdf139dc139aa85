package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/playperu/geohunt/internal/hunt"
)

var (
	errProjectNotFound    = errors.New("project not found")
	errProjectUnpublished = errors.New("project is not published")
	errInvalidEvent       = errors.New("invalid event")
)

type TourEventRequest struct {
	Kind     hunt.EventKind `json:"kind"`
	Position string         `json:"position,omitempty"`
	Payload  string         `json:"payload,omitempty"`
}

// event converts the request into an engine event. A QR payload that cannot
// be decoded identifies no location, so it is reported as a non-match.
func (r TourEventRequest) event() (hunt.Event, error) {
	switch r.Kind {
	case hunt.EventGoHome:
		return hunt.GoHome(), nil
	case hunt.EventGeofenceEntry:
		pos, err := hunt.ParsePosition(r.Position)
		if err != nil {
			return hunt.Event{}, err
		}
		return hunt.GeofenceEntry(pos), nil
	case hunt.EventQRScan:
		qr, err := hunt.DecodeQR([]byte(r.Payload))
		if err != nil {
			return hunt.Event{}, fmt.Errorf("%w: %v", hunt.ErrNoMatchingLocation, err)
		}
		return hunt.QRScan(qr), nil
	}
	return hunt.Event{}, fmt.Errorf("%w: unknown kind %q", errInvalidEvent, r.Kind)
}

type HomeInfo struct {
	Display       hunt.HomescreenDisplay `json:"display"`
	InitialClue   string                 `json:"initial_clue,omitempty"`
	LocationNames []string               `json:"location_names,omitempty"`
}

type LocationInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Clue    string `json:"clue"`
	Content string `json:"content"`
}

// TourState is what a participant's screen needs. Earned and Possible are
// omitted for projects that are not scored.
type TourState struct {
	ID           string                  `json:"id"`
	ProjectID    string                  `json:"project_id"`
	Title        string                  `json:"title"`
	Instructions string                  `json:"instructions"`
	View         string                  `json:"view"`
	Home         *HomeInfo               `json:"home,omitempty"`
	Location     *LocationInfo           `json:"location,omitempty"`
	VisitedCount int                     `json:"visited_count"`
	TotalCount   int                     `json:"total_count"`
	Scoring      hunt.ParticipantScoring `json:"scoring"`
	Earned       *int                    `json:"earned,omitempty"`
	Possible     *int                    `json:"possible,omitempty"`
	Preview      bool                    `json:"preview"`
}

type TransitionResponse struct {
	FirstVisit bool      `json:"first_visit"`
	State      TourState `json:"state"`
}

func tourState(t Tour, s *hunt.Session) (TourState, error) {
	p := s.Project()
	visible, err := p.ScoreVisible()
	if err != nil {
		return TourState{}, err
	}
	status := s.Status()

	st := TourState{
		ID:           t.ID,
		ProjectID:    p.ID,
		Title:        p.Title,
		Instructions: p.Instructions,
		VisitedCount: status.VisitedCount,
		TotalCount:   status.TotalCount,
		Scoring:      p.ParticipantScoring,
		Preview:      t.Preview,
	}

	view := s.CurrentView()
	if view.IsHome() {
		home, err := s.Home()
		if err != nil {
			return TourState{}, err
		}
		st.View = "home"
		st.Home = &HomeInfo{
			Display:       home.Display,
			InitialClue:   home.InitialClue,
			LocationNames: home.LocationNames,
		}
	} else {
		l, ok := s.Location(view.LocationID)
		if !ok {
			return TourState{}, fmt.Errorf("tour %s: view on unknown location %q", t.ID, view.LocationID)
		}
		st.View = "location"
		st.Location = &LocationInfo{ID: l.ID, Name: l.Name, Clue: l.Clue, Content: l.Content}
	}

	if visible {
		st.Earned = &status.Earned
		st.Possible = &status.Possible
	}
	return st, nil
}

// tourService runs tour operations on top of the project store and the tour
// store. Both the HTTP and WebSocket handlers go through it.
type tourService struct {
	logger  *slog.Logger
	store   Store
	tours   TourStore
	matcher hunt.Matcher
	broker  *Broker
}

// start loads the project and its locations once and freezes them into a new
// tour. Unpublished projects need preview rights.
func (ts *tourService) start(ctx context.Context, projectID string, preview bool) (TourState, error) {
	project, err := ts.store.GetProject(ctx, projectID)
	if errors.Is(err, ErrNotFound) {
		return TourState{}, errProjectNotFound
	}
	if err != nil {
		return TourState{}, err
	}
	if !project.IsPublished && !preview {
		return TourState{}, errProjectUnpublished
	}

	locations, err := ts.store.ListLocations(ctx, Filter{"project_id": projectID})
	if err != nil {
		return TourState{}, err
	}

	t := Tour{
		ID:        uuid.NewString(),
		Project:   project,
		Locations: locations,
		Preview:   !project.IsPublished,
		CreatedAt: nowUTC(),
	}
	s, err := t.session(ts.matcher)
	if err != nil {
		return TourState{}, err
	}
	st, err := tourState(t, s)
	if err != nil {
		return TourState{}, err
	}
	if err := ts.tours.CreateTour(ctx, t); err != nil {
		return TourState{}, err
	}

	ts.logger.Info("tour started", "tour_id", t.ID, "project_id", projectID,
		"locations", len(locations), "preview", t.Preview)
	return st, nil
}

func (ts *tourService) state(ctx context.Context, id string) (TourState, error) {
	t, err := ts.tours.GetTour(ctx, id)
	if err != nil {
		return TourState{}, err
	}
	s, err := t.session(ts.matcher)
	if err != nil {
		return TourState{}, err
	}
	return tourState(t, s)
}

// apply feeds one event to the tour. A rejected event leaves the stored tour
// untouched.
func (ts *tourService) apply(ctx context.Context, id string, req TourEventRequest) (TransitionResponse, error) {
	ev, err := req.event()
	if err != nil {
		return TransitionResponse{}, err
	}

	var (
		sess *hunt.Session
		tr   hunt.Transition
	)
	t, err := ts.tours.ModifyTour(ctx, id, func(t *Tour) error {
		s, err := t.session(ts.matcher)
		if err != nil {
			return err
		}
		tr, err = s.Apply(ev)
		if err != nil {
			return err
		}
		t.record(s)
		sess = s
		return nil
	})
	if err != nil {
		var amb *hunt.AmbiguousMatchError
		if errors.As(err, &amb) {
			ts.logger.Warn("ambiguous location match", "tour_id", id, "kind", req.Kind, "location_ids", amb.LocationIDs)
		}
		return TransitionResponse{}, err
	}

	st, err := tourState(t, sess)
	if err != nil {
		return TransitionResponse{}, err
	}
	if tr.FirstVisit {
		ts.logger.Info("location visited", "tour_id", id, "location_id", tr.View.LocationID,
			"visited", tr.VisitedCount, "total", tr.TotalCount)
	}

	ts.broker.Publish(id, TourEvent{Type: "transition", TourID: id, FirstVisit: tr.FirstVisit, State: &st})
	return TransitionResponse{FirstVisit: tr.FirstVisit, State: st}, nil
}

func (ts *tourService) end(ctx context.Context, id string) error {
	if err := ts.tours.DeleteTour(ctx, id); err != nil {
		return err
	}
	ts.broker.Publish(id, TourEvent{Type: "ended", TourID: id})
	ts.logger.Info("tour ended", "tour_id", id)
	return nil
}

// tourError maps a tour failure to a status and response body. Unexpected
// errors are logged here.
func (ts *tourService) tourError(err error) (int, ErrorResponse) {
	var cfgErr *hunt.ConfigurationError
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: "tour not found"}
	case errors.Is(err, errProjectNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	case errors.Is(err, errProjectUnpublished):
		return http.StatusForbidden, ErrorResponse{Error: err.Error()}
	case errors.Is(err, hunt.ErrNoMatchingLocation):
		return http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Reason: "no_matching_location"}
	case errors.Is(err, hunt.ErrAmbiguousMatch):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Reason: "ambiguous_match"}
	case errors.Is(err, hunt.ErrInvalidPosition):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Reason: "invalid_position"}
	case errors.Is(err, errInvalidEvent):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Reason: "invalid_event"}
	case errors.As(err, &cfgErr):
		ts.logger.Error("project misconfigured", "field", cfgErr.Field, "value", cfgErr.Value)
		return http.StatusInternalServerError, ErrorResponse{Error: err.Error(), Reason: "configuration_error"}
	}
	ts.logger.Error("tour operation failed", "error", err)
	return http.StatusInternalServerError, ErrorResponse{Error: "internal error"}
}
