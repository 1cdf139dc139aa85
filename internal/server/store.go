package server

import (
	"context"
	"errors"

	"github.com/playperu/geohunt/internal/hunt"
)

var ErrNotFound = errors.New("not found")

// ProjectRow is a project as the authoring API reads and writes it.
type ProjectRow struct {
	ID                 string                  `json:"id"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	Instructions       string                  `json:"instructions"`
	InitialClue        string                  `json:"initial_clue"`
	HomescreenDisplay  hunt.HomescreenDisplay  `json:"homescreen_display"`
	ParticipantScoring hunt.ParticipantScoring `json:"participant_scoring"`
	IsPublished        bool                    `json:"is_published"`
	Owner              string                  `json:"owner"`
	CreatedAt          string                  `json:"created_at"`
}

func (p ProjectRow) hunt() hunt.Project {
	return hunt.Project{
		ID:                 p.ID,
		Title:              p.Title,
		Description:        p.Description,
		Instructions:       p.Instructions,
		InitialClue:        p.InitialClue,
		HomescreenDisplay:  p.HomescreenDisplay,
		ParticipantScoring: p.ParticipantScoring,
		IsPublished:        p.IsPublished,
		Owner:              p.Owner,
	}
}

// LocationRow keeps the column names the authoring UI has always used.
type LocationRow struct {
	ID          string        `json:"id"`
	ProjectID   string        `json:"project_id"`
	Name        string        `json:"location_name"`
	Trigger     hunt.Trigger  `json:"location_trigger"`
	Position    hunt.Position `json:"location_position"`
	ScorePoints int           `json:"score_points"`
	Clue        string        `json:"clue"`
	Content     string        `json:"location_content"`
}

func (l LocationRow) hunt() hunt.Location {
	return hunt.Location{
		ID:          l.ID,
		ProjectID:   l.ProjectID,
		Name:        l.Name,
		Trigger:     l.Trigger,
		Position:    l.Position,
		ScorePoints: l.ScorePoints,
		Clue:        l.Clue,
		Content:     l.Content,
	}
}

func catalog(rows []LocationRow) []hunt.Location {
	locs := make([]hunt.Location, len(rows))
	for i, l := range rows {
		locs[i] = l.hunt()
	}
	return locs
}

// Filter holds column = value conditions, all of which must hold.
type Filter map[string]string

// Store is the persistence collaborator for projects and locations.
// Update and Delete act on every row the filter selects and return the rows
// as they are afterwards (or were, for Delete).
type Store interface {
	Ping(ctx context.Context) error

	ListProjects(ctx context.Context, f Filter) ([]ProjectRow, error)
	GetProject(ctx context.Context, id string) (ProjectRow, error)
	CreateProject(ctx context.Context, p ProjectRow) (ProjectRow, error)
	UpdateProjects(ctx context.Context, f Filter, patch ProjectPatch) ([]ProjectRow, error)
	DeleteProjects(ctx context.Context, f Filter) ([]ProjectRow, error)

	ListLocations(ctx context.Context, f Filter) ([]LocationRow, error)
	CreateLocation(ctx context.Context, l LocationRow) (LocationRow, error)
	UpdateLocations(ctx context.Context, f Filter, patch LocationPatch) ([]LocationRow, error)
	DeleteLocations(ctx context.Context, f Filter) ([]LocationRow, error)
}
