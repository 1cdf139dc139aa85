package hunt

import (
	"fmt"
	"slices"
)

// View is the screen a tour is on: Home when LocationID is empty, otherwise
// the location with that id.
type View struct {
	LocationID string
}

// IsHome reports whether v is the home screen.
func (v View) IsHome() bool { return v.LocationID == "" }

// AtLocation returns the view of the location with the given id.
func AtLocation(id string) View { return View{LocationID: id} }

// Transition is the outcome of a successfully applied event.
type Transition struct {
	View         View
	FirstVisit   bool
	Earned       int
	Possible     int
	VisitedCount int
	TotalCount   int
}

// State is the mutable part of a Session, as needed to resume it later.
// Visited is in visit order.
type State struct {
	Visited []string
	View    View
}

// Session tracks one participant's run through a project. It is not safe
// for concurrent use; callers serialize events per session.
type Session struct {
	project  Project
	catalog  []Location
	byID     map[string]int
	matcher  Matcher
	visited  map[string]struct{}
	order    []string
	view     View
	possible int
}

// NewSession starts a tour on the Home view. The catalog is copied and its
// order is kept as given.
func NewSession(p Project, catalog []Location, m Matcher) (*Session, error) {
	s := &Session{
		project: p,
		catalog: slices.Clone(catalog),
		byID:    make(map[string]int, len(catalog)),
		matcher: m,
		visited: make(map[string]struct{}),
	}
	for i, l := range s.catalog {
		if _, dup := s.byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate location id %q", l.ID)
		}
		if l.ScorePoints < 0 {
			return nil, fmt.Errorf("location %q: score_points must be >= 0, got %d", l.ID, l.ScorePoints)
		}
		s.byID[l.ID] = i
	}
	_, s.possible = Score(s.catalog, nil)
	return s, nil
}

// RestoreSession rebuilds a session from a saved State.
func RestoreSession(p Project, catalog []Location, m Matcher, st State) (*Session, error) {
	s, err := NewSession(p, catalog, m)
	if err != nil {
		return nil, err
	}
	for _, id := range st.Visited {
		if _, ok := s.byID[id]; !ok {
			return nil, fmt.Errorf("restoring session: unknown visited location %q", id)
		}
		s.visit(id)
	}
	if !st.View.IsHome() {
		if _, ok := s.byID[st.View.LocationID]; !ok {
			return nil, fmt.Errorf("restoring session: unknown view location %q", st.View.LocationID)
		}
	}
	s.view = st.View
	return s, nil
}

// Apply consumes one event. On error the session is unchanged.
func (s *Session) Apply(ev Event) (Transition, error) {
	if ev.Kind == EventGoHome {
		s.view = View{}
		return s.transition(false), nil
	}

	ids := s.matcher.MatchAll(s.catalog, ev)
	switch len(ids) {
	case 0:
		return Transition{}, ErrNoMatchingLocation
	case 1:
	default:
		return Transition{}, &AmbiguousMatchError{LocationIDs: ids}
	}

	id := ids[0]
	first := s.visit(id)
	s.view = AtLocation(id)
	return s.transition(first), nil
}

func (s *Session) visit(id string) bool {
	if _, ok := s.visited[id]; ok {
		return false
	}
	s.visited[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *Session) transition(first bool) Transition {
	earned, _ := Score(s.catalog, s.visited)
	return Transition{
		View:         s.view,
		FirstVisit:   first,
		Earned:       earned,
		Possible:     s.possible,
		VisitedCount: len(s.visited),
		TotalCount:   len(s.catalog),
	}
}

// CurrentView returns the screen the tour is on.
func (s *Session) CurrentView() View { return s.view }

// Status reports the current score and progress without applying an event.
func (s *Session) Status() Transition { return s.transition(false) }

// State returns a snapshot that RestoreSession can resume from.
func (s *Session) State() State {
	return State{Visited: slices.Clone(s.order), View: s.view}
}

// Project returns the project the session was started for.
func (s *Session) Project() Project { return s.project }

// Location returns the catalog entry with the given id.
func (s *Session) Location(id string) (Location, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Location{}, false
	}
	return s.catalog[i], true
}

// Home resolves the home screen for the session's project and catalog.
func (s *Session) Home() (HomeContent, error) {
	return ResolveHome(s.project, s.catalog)
}

// HasVisited reports whether the location with the given id was unlocked.
func (s *Session) HasVisited(id string) bool {
	_, ok := s.visited[id]
	return ok
}
