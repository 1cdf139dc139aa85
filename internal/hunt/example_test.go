package hunt_test

import (
	"fmt"

	"github.com/playperu/geohunt/internal/hunt"
)

func ExampleSession() {
	project := hunt.Project{
		ID:                 "p1",
		HomescreenDisplay:  hunt.DisplayInitialClue,
		ParticipantScoring: hunt.ScoringScannedQRCount,
		InitialClue:        "Find the oak tree",
	}
	catalog := []hunt.Location{
		{ID: "gate", Name: "Gate", Trigger: hunt.TriggerEntry, Position: hunt.Position{Lat: 0, Lng: 0}, ScorePoints: 10},
		{ID: "statue", Name: "Statue", Trigger: hunt.TriggerQR, Position: hunt.Position{Lat: 1, Lng: 1}, ScorePoints: 5},
	}

	s, err := hunt.NewSession(project, catalog, hunt.NewMatcher(hunt.DefaultRadiusMeters))
	if err != nil {
		panic(err)
	}

	code, _ := hunt.EncodeQR(catalog[1])
	payload, _ := hunt.DecodeQR(code)

	for _, ev := range []hunt.Event{
		hunt.GeofenceEntry(hunt.Position{Lat: 0, Lng: 0}),
		hunt.QRScan(payload),
		hunt.GeofenceEntry(hunt.Position{Lat: 0, Lng: 0}),
		hunt.GoHome(),
	} {
		tr, err := s.Apply(ev)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s: home=%t first=%t %d/%d\n", ev.Kind, tr.View.IsHome(), tr.FirstVisit, tr.Earned, tr.Possible)
	}

	home, _ := s.Home()
	fmt.Println(home.InitialClue, s.HasVisited("statue"))
	// Output:
	// geofence_entry: home=false first=true 10/15
	// qr_scan: home=false first=true 15/15
	// geofence_entry: home=false first=false 15/15
	// home: home=true first=false 15/15
	// Find the oak tree true
}
