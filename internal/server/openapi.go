package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

type projectFilter struct {
	ID          string `query:"id" description:"eq.<id>"`
	Owner       string `query:"owner" description:"eq.<owner>"`
	IsPublished string `query:"is_published" description:"eq.true or eq.false"`
}

type locationFilter struct {
	ID        string `query:"id" description:"eq.<id>"`
	ProjectID string `query:"project_id" description:"eq.<project id>"`
}

type preferHeader struct {
	Prefer string `header:"Prefer" description:"return=representation to receive the affected rows"`
}

type projectWrite struct {
	projectFilter
	preferHeader
	ProjectPatch
}

type locationWrite struct {
	locationFilter
	preferHeader
	LocationPatch
}

type tourPath struct {
	TourID string `path:"tourID"`
}

type tourEventInput struct {
	tourPath
	TourEventRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "GeoHunt API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Authoring and tour API for location-based scavenger hunts.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(map[string]struct {
		Status string `json:"status"`
	}{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getHealthz)

	// GET /api/project
	listProjects, _ := r.NewOperationContext(http.MethodGet, "/api/project")
	listProjects.SetSummary("List projects")
	listProjects.SetDescription("Returns projects matching every eq. filter. Requires Bearer token.")
	listProjects.AddReqStructure(projectFilter{})
	listProjects.AddRespStructure([]ProjectRow{}, openapi.WithHTTPStatus(http.StatusOK))
	listProjects.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	listProjects.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listProjects)

	// POST /api/project
	createProject, _ := r.NewOperationContext(http.MethodPost, "/api/project")
	createProject.SetSummary("Create project")
	createProject.SetDescription("Creates a project owned by the author. Requires Bearer token.")
	createProject.AddReqStructure(struct {
		preferHeader
		ProjectPatch
	}{})
	createProject.AddRespStructure([]ProjectRow{}, openapi.WithHTTPStatus(http.StatusCreated))
	createProject.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createProject.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createProject)

	// PATCH /api/project
	updateProjects, _ := r.NewOperationContext(http.MethodPatch, "/api/project")
	updateProjects.SetSummary("Update projects")
	updateProjects.SetDescription("Applies a partial update to every matching project. Requires Bearer token.")
	updateProjects.AddReqStructure(projectWrite{})
	updateProjects.AddRespStructure([]ProjectRow{}, openapi.WithHTTPStatus(http.StatusOK))
	updateProjects.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateProjects.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(updateProjects)

	// DELETE /api/project
	deleteProjects, _ := r.NewOperationContext(http.MethodDelete, "/api/project")
	deleteProjects.SetSummary("Delete projects")
	deleteProjects.SetDescription("Deletes every matching project with its locations. Requires Bearer token.")
	deleteProjects.AddReqStructure(struct {
		projectFilter
		preferHeader
	}{})
	deleteProjects.AddRespStructure([]ProjectRow{}, openapi.WithHTTPStatus(http.StatusOK))
	deleteProjects.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	deleteProjects.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteProjects)

	// GET /api/location
	listLocations, _ := r.NewOperationContext(http.MethodGet, "/api/location")
	listLocations.SetSummary("List locations")
	listLocations.SetDescription("Returns locations in catalog order. Requires Bearer token.")
	listLocations.AddReqStructure(locationFilter{})
	listLocations.AddRespStructure([]LocationRow{}, openapi.WithHTTPStatus(http.StatusOK))
	listLocations.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	listLocations.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listLocations)

	// POST /api/location
	createLocation, _ := r.NewOperationContext(http.MethodPost, "/api/location")
	createLocation.SetSummary("Create location")
	createLocation.SetDescription("Appends a location to a project's catalog. Requires Bearer token.")
	createLocation.AddReqStructure(struct {
		preferHeader
		LocationPatch
	}{})
	createLocation.AddRespStructure([]LocationRow{}, openapi.WithHTTPStatus(http.StatusCreated))
	createLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createLocation.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(createLocation)

	// PATCH /api/location
	updateLocations, _ := r.NewOperationContext(http.MethodPatch, "/api/location")
	updateLocations.SetSummary("Update locations")
	updateLocations.SetDescription("Applies a partial update to every matching location. Requires Bearer token.")
	updateLocations.AddReqStructure(locationWrite{})
	updateLocations.AddRespStructure([]LocationRow{}, openapi.WithHTTPStatus(http.StatusOK))
	updateLocations.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	updateLocations.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(updateLocations)

	// DELETE /api/location
	deleteLocations, _ := r.NewOperationContext(http.MethodDelete, "/api/location")
	deleteLocations.SetSummary("Delete locations")
	deleteLocations.SetDescription("Deletes every matching location. Requires Bearer token.")
	deleteLocations.AddReqStructure(struct {
		locationFilter
		preferHeader
	}{})
	deleteLocations.AddRespStructure([]LocationRow{}, openapi.WithHTTPStatus(http.StatusOK))
	deleteLocations.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	deleteLocations.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteLocations)

	// GET /api/qr
	listQR, _ := r.NewOperationContext(http.MethodGet, "/api/qr")
	listQR.SetSummary("List QR payloads")
	listQR.SetDescription("Returns the text to print into each location's QR code. Requires Bearer token.")
	listQR.AddReqStructure(locationFilter{})
	listQR.AddRespStructure([]QRCodeItem{}, openapi.WithHTTPStatus(http.StatusOK))
	listQR.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(listQR)

	// POST /api/tours
	createTour, _ := r.NewOperationContext(http.MethodPost, "/api/tours")
	createTour.SetSummary("Start tour")
	createTour.SetDescription("Starts a tour of a published project. Unpublished projects need the author's Bearer token.")
	createTour.AddReqStructure(CreateTourRequest{})
	createTour.AddRespStructure(TourState{}, openapi.WithHTTPStatus(http.StatusCreated))
	createTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	createTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(createTour)

	// GET /api/tours/{tourID}
	getTour, _ := r.NewOperationContext(http.MethodGet, "/api/tours/{tourID}")
	getTour.SetSummary("Get tour")
	getTour.SetDescription("Returns the current view, progress and score.")
	getTour.AddReqStructure(tourPath{})
	getTour.AddRespStructure(TourState{}, openapi.WithHTTPStatus(http.StatusOK))
	getTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getTour)

	// POST /api/tours/{tourID}/events
	postEvent, _ := r.NewOperationContext(http.MethodPost, "/api/tours/{tourID}/events")
	postEvent.SetSummary("Apply event")
	postEvent.SetDescription("Applies a home, geofence_entry or qr_scan event. Rejected events leave the tour unchanged. " +
		"A geofence position that is not a finite decimal \"(lat, long)\" pair is rejected with 400 and reason invalid_position.")
	postEvent.AddReqStructure(tourEventInput{})
	postEvent.AddRespStructure(TransitionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postEvent.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postEvent)

	// DELETE /api/tours/{tourID}
	deleteTour, _ := r.NewOperationContext(http.MethodDelete, "/api/tours/{tourID}")
	deleteTour.SetSummary("End tour")
	deleteTour.AddReqStructure(tourPath{})
	deleteTour.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteTour.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(deleteTour)

	// GET /api/tours/{tourID}/stream
	getStream, _ := r.NewOperationContext(http.MethodGet, "/api/tours/{tourID}/stream")
	getStream.SetSummary("SSE event stream")
	getStream.SetDescription("Server-Sent Events stream of the tour's state, starting with the current one. " +
		"When the tour is deleted an \"ended\" event carrying only tour_id is sent.")
	getStream.AddReqStructure(tourPath{})
	getStream.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getStream)

	// GET /api/tours/{tourID}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/tours/{tourID}/ws")
	getWS.SetSummary("Tour WebSocket")
	getWS.SetDescription("Upgrades to a WebSocket. Send TourEventRequest messages, receive TourMessage replies.")
	getWS.AddReqStructure(tourPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("application/json"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
