package hunt_test

import (
	"errors"
	"testing"

	"github.com/playperu/geohunt/internal/hunt"
)

func scenarioCatalog() []hunt.Location {
	return []hunt.Location{
		{ID: "1", Name: "Oak", Trigger: hunt.TriggerEntry, Position: hunt.Position{Lat: 0, Lng: 0}, ScorePoints: 10},
		{ID: "2", Name: "Fountain", Trigger: hunt.TriggerQR, Position: hunt.Position{Lat: 1, Lng: 1}, ScorePoints: 5},
	}
}

func scoredProject() hunt.Project {
	return hunt.Project{
		ID:                 "p1",
		Title:              "Campus",
		InitialClue:        "Find the oak tree",
		HomescreenDisplay:  hunt.DisplayInitialClue,
		ParticipantScoring: hunt.ScoringScannedQRCount,
	}
}

func newSession(t *testing.T, catalog []hunt.Location) *hunt.Session {
	t.Helper()
	s, err := hunt.NewSession(scoredProject(), catalog, hunt.NewMatcher(30))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return s
}

func TestSessionScenario(t *testing.T) {
	s := newSession(t, scenarioCatalog())

	if !s.CurrentView().IsHome() {
		t.Fatalf("initial view = %+v, want home", s.CurrentView())
	}

	tr, err := s.Apply(hunt.GeofenceEntry(hunt.Position{Lat: 0, Lng: 0}))
	if err != nil {
		t.Fatalf("geofence entry: %v", err)
	}
	if tr.View != hunt.AtLocation("1") || tr.Earned != 10 || tr.Possible != 15 || !tr.FirstVisit {
		t.Fatalf("after geofence: %+v", tr)
	}

	tr, err = s.Apply(hunt.QRScan(hunt.QRPayload{LocationID: "2"}))
	if err != nil {
		t.Fatalf("qr scan: %v", err)
	}
	if tr.View != hunt.AtLocation("2") || tr.Earned != 15 || tr.VisitedCount != 2 {
		t.Fatalf("after qr: %+v", tr)
	}

	tr, err = s.Apply(hunt.GeofenceEntry(hunt.Position{Lat: 0, Lng: 0}))
	if err != nil {
		t.Fatalf("re-entry: %v", err)
	}
	if tr.View != hunt.AtLocation("1") || tr.Earned != 15 || tr.VisitedCount != 2 || tr.FirstVisit {
		t.Fatalf("after re-entry: %+v", tr)
	}
	if tr.TotalCount != 2 {
		t.Errorf("total count = %d, want 2", tr.TotalCount)
	}
}

func TestSessionRevisitDoesNotDoubleCount(t *testing.T) {
	s := newSession(t, scenarioCatalog())
	ev := hunt.QRScan(hunt.QRPayload{LocationID: "2"})

	first, err := s.Apply(ev)
	if err != nil {
		t.Fatalf("first visit: %v", err)
	}
	if _, err := s.Apply(hunt.GoHome()); err != nil {
		t.Fatalf("go home: %v", err)
	}
	second, err := s.Apply(ev)
	if err != nil {
		t.Fatalf("second visit: %v", err)
	}

	if second.Earned != first.Earned || second.VisitedCount != first.VisitedCount {
		t.Errorf("second visit changed score: first %+v, second %+v", first, second)
	}
}

func TestSessionNoMatchLeavesStateUnchanged(t *testing.T) {
	s := newSession(t, scenarioCatalog())
	if _, err := s.Apply(hunt.GeofenceEntry(hunt.Position{Lat: 0, Lng: 0})); err != nil {
		t.Fatalf("setup: %v", err)
	}
	before := s.Status()

	_, err := s.Apply(hunt.GeofenceEntry(hunt.Position{Lat: 45, Lng: 45}))
	if !errors.Is(err, hunt.ErrNoMatchingLocation) {
		t.Fatalf("err = %v, want ErrNoMatchingLocation", err)
	}

	if after := s.Status(); after != before {
		t.Errorf("state changed: before %+v, after %+v", before, after)
	}
}

func TestSessionAmbiguousMatch(t *testing.T) {
	catalog := []hunt.Location{
		{ID: "a", Name: "Gate", Trigger: hunt.TriggerEntry, Position: hunt.Position{Lat: 10, Lng: 10}, ScorePoints: 1},
		{ID: "b", Name: "Gate sign", Trigger: hunt.TriggerEntryOrQR, Position: hunt.Position{Lat: 10, Lng: 10.0001}, ScorePoints: 2},
	}
	s := newSession(t, catalog)

	_, err := s.Apply(hunt.GeofenceEntry(hunt.Position{Lat: 10, Lng: 10}))
	if !errors.Is(err, hunt.ErrAmbiguousMatch) {
		t.Fatalf("err = %v, want ErrAmbiguousMatch", err)
	}
	var amb *hunt.AmbiguousMatchError
	if !errors.As(err, &amb) {
		t.Fatalf("err is not *AmbiguousMatchError: %T", err)
	}
	if len(amb.LocationIDs) != 2 || amb.LocationIDs[0] != "a" || amb.LocationIDs[1] != "b" {
		t.Errorf("ids = %v, want [a b]", amb.LocationIDs)
	}
	if st := s.Status(); st.VisitedCount != 0 || !st.View.IsHome() {
		t.Errorf("state changed after ambiguous match: %+v", st)
	}
}

func TestSessionGoHomeIsIdempotent(t *testing.T) {
	s := newSession(t, scenarioCatalog())
	for i := 0; i < 2; i++ {
		tr, err := s.Apply(hunt.GoHome())
		if err != nil {
			t.Fatalf("go home #%d: %v", i, err)
		}
		if !tr.View.IsHome() || tr.Earned != 0 {
			t.Errorf("go home #%d: %+v", i, tr)
		}
	}
}

func TestSessionPossibleIsInvariant(t *testing.T) {
	s := newSession(t, scenarioCatalog())
	events := []hunt.Event{
		hunt.GeofenceEntry(hunt.Position{Lat: 0, Lng: 0}),
		hunt.GoHome(),
		hunt.GeofenceEntry(hunt.Position{Lat: 50, Lng: 50}),
		hunt.QRScan(hunt.QRPayload{LocationID: "2"}),
	}

	lastEarned := 0
	for _, ev := range events {
		s.Apply(ev)
		st := s.Status()
		if st.Possible != 15 {
			t.Errorf("possible = %d after %s, want 15", st.Possible, ev.Kind)
		}
		if st.Earned > st.Possible {
			t.Errorf("earned %d exceeds possible %d", st.Earned, st.Possible)
		}
		if st.Earned < lastEarned {
			t.Errorf("earned decreased from %d to %d", lastEarned, st.Earned)
		}
		lastEarned = st.Earned
	}
}

func TestSessionEmptyCatalog(t *testing.T) {
	p := scoredProject()
	p.HomescreenDisplay = hunt.DisplayAllLocations
	s, err := hunt.NewSession(p, nil, hunt.NewMatcher(0))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}

	st := s.Status()
	if st.Possible != 0 || st.TotalCount != 0 {
		t.Errorf("status = %+v, want zero", st)
	}
	home, err := s.Home()
	if err != nil {
		t.Fatalf("home: %v", err)
	}
	if len(home.LocationNames) != 0 {
		t.Errorf("location names = %v, want empty", home.LocationNames)
	}
	if _, err := s.Apply(hunt.QRScan(hunt.QRPayload{LocationID: "x"})); !errors.Is(err, hunt.ErrNoMatchingLocation) {
		t.Errorf("err = %v, want ErrNoMatchingLocation", err)
	}
}

func TestNewSessionRejectsBadCatalog(t *testing.T) {
	tests := []struct {
		name    string
		catalog []hunt.Location
	}{
		{
			name: "duplicate id",
			catalog: []hunt.Location{
				{ID: "1", Trigger: hunt.TriggerQR},
				{ID: "1", Trigger: hunt.TriggerQR},
			},
		},
		{
			name:    "negative points",
			catalog: []hunt.Location{{ID: "1", Trigger: hunt.TriggerQR, ScorePoints: -1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := hunt.NewSession(scoredProject(), tt.catalog, hunt.NewMatcher(30)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRestoreSession(t *testing.T) {
	s := newSession(t, scenarioCatalog())
	s.Apply(hunt.QRScan(hunt.QRPayload{LocationID: "2"}))

	restored, err := hunt.RestoreSession(scoredProject(), scenarioCatalog(), hunt.NewMatcher(30), s.State())
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.Status() != s.Status() {
		t.Errorf("restored status = %+v, want %+v", restored.Status(), s.Status())
	}
	if !restored.HasVisited("2") {
		t.Error("expected location 2 to be visited")
	}

	_, err = hunt.RestoreSession(scoredProject(), scenarioCatalog(), hunt.NewMatcher(30), hunt.State{Visited: []string{"missing"}})
	if err == nil {
		t.Error("expected error for unknown visited id")
	}
}
