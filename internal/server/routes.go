package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/geohunt/internal/hunt"
)

// Deps are the collaborators the routes need.
type Deps struct {
	Store   Store
	Tours   TourStore
	Matcher hunt.Matcher
	Author  Author
}

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	broker := NewBroker()
	ts := &tourService{
		logger:  logger,
		store:   deps.Store,
		tours:   deps.Tours,
		matcher: deps.Matcher,
		broker:  broker,
	}

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("GeoHunt API", "/openapi.json", "/docs"))

	// Authoring routes, bearer token required.
	r.Group(func(r chi.Router) {
		r.Use(authorMiddleware(deps.Author))

		r.Get("/api/project", handleListProjects(logger, deps.Store))
		r.Post("/api/project", handleCreateProject(logger, deps.Store))
		r.Patch("/api/project", handleUpdateProjects(logger, deps.Store))
		r.Delete("/api/project", handleDeleteProjects(logger, deps.Store))

		r.Get("/api/location", handleListLocations(logger, deps.Store))
		r.Post("/api/location", handleCreateLocation(logger, deps.Store))
		r.Patch("/api/location", handleUpdateLocations(logger, deps.Store))
		r.Delete("/api/location", handleDeleteLocations(logger, deps.Store))

		r.Get("/api/qr", handleListQRCodes(logger, deps.Store))
	})

	// Participant routes. The tour id is the only credential.
	r.Post("/api/tours", handleCreateTour(ts, deps.Author))
	r.Route("/api/tours/{tourID}", func(r chi.Router) {
		r.Get("/", handleGetTour(ts))
		r.Delete("/", handleDeleteTour(ts))
		r.Post("/events", handleTourEvent(ts))
		r.Get("/stream", handleTourStream(ts))
		r.Get("/ws", handleTourWS(ts))
	})
}
