package server

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/playperu/geohunt/internal/hunt"
)

var ErrTourExists = errors.New("tour already exists")

// Tour is one participant's session as persisted between requests. The
// project and its locations are frozen when the tour starts.
type Tour struct {
	ID             string        `json:"id"`
	Project        ProjectRow    `json:"project"`
	Locations      []LocationRow `json:"locations"`
	Visited        []string      `json:"visited"`
	ViewLocationID string        `json:"view_location_id,omitempty"`
	Preview        bool          `json:"preview"`
	CreatedAt      string        `json:"created_at"`
}

// session rebuilds the engine state held in t.
func (t *Tour) session(m hunt.Matcher) (*hunt.Session, error) {
	return hunt.RestoreSession(t.Project.hunt(), catalog(t.Locations), m, hunt.State{
		Visited: t.Visited,
		View:    hunt.View{LocationID: t.ViewLocationID},
	})
}

// record copies the mutable engine state back into t.
func (t *Tour) record(s *hunt.Session) {
	st := s.State()
	t.Visited = st.Visited
	t.ViewLocationID = st.View.LocationID
}

func (t Tour) clone() Tour {
	t.Locations = slices.Clone(t.Locations)
	t.Visited = slices.Clone(t.Visited)
	return t
}

// TourStore persists tours. ModifyTour runs fn as an atomic
// read-modify-write; when fn returns an error nothing is written.
type TourStore interface {
	CreateTour(ctx context.Context, t Tour) error
	GetTour(ctx context.Context, id string) (Tour, error)
	ModifyTour(ctx context.Context, id string, fn func(*Tour) error) (Tour, error)
	DeleteTour(ctx context.Context, id string) error
}

// MemoryTours keeps tours in process. Entries expire ttl after their last
// write.
type MemoryTours struct {
	mu    sync.Mutex
	tours map[string]memoryTour
	ttl   time.Duration
	now   func() time.Time
}

type memoryTour struct {
	tour    Tour
	expires time.Time
}

var _ TourStore = (*MemoryTours)(nil)

func NewMemoryTours(ttl time.Duration) *MemoryTours {
	return &MemoryTours{
		tours: make(map[string]memoryTour),
		ttl:   ttl,
		now:   time.Now,
	}
}

// get must be called with mu held.
func (m *MemoryTours) get(id string) (Tour, bool) {
	e, ok := m.tours[id]
	if !ok {
		return Tour{}, false
	}
	if !m.now().Before(e.expires) {
		delete(m.tours, id)
		return Tour{}, false
	}
	return e.tour, true
}

func (m *MemoryTours) put(t Tour) {
	m.tours[t.ID] = memoryTour{tour: t.clone(), expires: m.now().Add(m.ttl)}
}

func (m *MemoryTours) CreateTour(_ context.Context, t Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for id, e := range m.tours {
		if !now.Before(e.expires) {
			delete(m.tours, id)
		}
	}
	if _, ok := m.tours[t.ID]; ok {
		return ErrTourExists
	}
	m.put(t)
	return nil
}

func (m *MemoryTours) GetTour(_ context.Context, id string) (Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.get(id)
	if !ok {
		return Tour{}, ErrNotFound
	}
	return t.clone(), nil
}

func (m *MemoryTours) ModifyTour(_ context.Context, id string, fn func(*Tour) error) (Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.get(id)
	if !ok {
		return Tour{}, ErrNotFound
	}
	t = t.clone()
	if err := fn(&t); err != nil {
		return Tour{}, err
	}
	m.put(t)
	return t.clone(), nil
}

func (m *MemoryTours) DeleteTour(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.get(id); !ok {
		return ErrNotFound
	}
	delete(m.tours, id)
	return nil
}
