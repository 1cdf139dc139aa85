package server

import (
	"context"
	"log/slog"

	"github.com/playperu/geohunt/internal/hunt"
)

// demoLocations sit on the UQ St Lucia campus, walking distance apart.
var demoLocations = []LocationRow{
	{
		Name:        "Great Court",
		Trigger:     hunt.TriggerEntry,
		Position:    hunt.Position{Lat: -27.4977, Lng: 153.0129},
		ScorePoints: 10,
		Clue:        "Start where the sandstone cloisters frame the lawn.",
		Content:     "<p>The Great Court has been the heart of the campus since the 1930s.</p>",
	},
	{
		Name:        "Forgan Smith Tower",
		Trigger:     hunt.TriggerQR,
		Position:    hunt.Position{Lat: -27.4968, Lng: 153.0131},
		ScorePoints: 5,
		Clue:        "Look up at the clock and find the code by the main doors.",
		Content:     "<p>Named after a former premier, the tower overlooks the river.</p>",
	},
	{
		Name:        "UQ Lakes",
		Trigger:     hunt.TriggerEntryOrQR,
		Position:    hunt.Position{Lat: -27.5005, Lng: 153.0165},
		ScorePoints: 15,
		Clue:        "Follow the ducks south to the water.",
		Content:     "<p>You made it to the lakes. Watch out for the geese.</p>",
	},
}

// SeedDemo creates a published demo project when the store has no projects.
// Idempotent: does nothing if any project exists.
func SeedDemo(ctx context.Context, logger *slog.Logger, store Store, owner string) error {
	existing, err := store.ListProjects(ctx, Filter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	project, err := store.CreateProject(ctx, ProjectRow{
		Title:              "St Lucia Campus Hunt",
		Description:        "Demo project created on first start.",
		Instructions:       "Walk to each location. Some unlock when you arrive, others need their QR code scanned.",
		InitialClue:        "Begin at the oldest lawn on campus.",
		HomescreenDisplay:  hunt.DisplayInitialClue,
		ParticipantScoring: hunt.ScoringScannedQRCount,
		IsPublished:        true,
		Owner:              owner,
	})
	if err != nil {
		return err
	}

	for _, l := range demoLocations {
		l.ProjectID = project.ID
		if _, err := store.CreateLocation(ctx, l); err != nil {
			return err
		}
	}

	logger.Info("demo project seeded", "project_id", project.ID, "locations", len(demoLocations))
	return nil
}
