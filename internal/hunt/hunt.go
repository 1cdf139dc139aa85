// Package hunt implements tour progression and scoring for location-based
// scavenger hunts. It has zero external dependencies and performs no I/O:
// callers load a Project and its Locations first, then drive a Session.
package hunt

import "fmt"

// HomescreenDisplay selects what the idle screen shows.
type HomescreenDisplay string

const (
	DisplayInitialClue  HomescreenDisplay = "Display initial clue"
	DisplayAllLocations HomescreenDisplay = "Display all locations"
)

// ParseHomescreenDisplay returns a *ConfigurationError for unknown values.
func ParseHomescreenDisplay(s string) (HomescreenDisplay, error) {
	switch d := HomescreenDisplay(s); d {
	case DisplayInitialClue, DisplayAllLocations:
		return d, nil
	}
	return "", &ConfigurationError{Field: "homescreen_display", Value: s}
}

// UnmarshalText rejects anything ParseHomescreenDisplay rejects.
func (d *HomescreenDisplay) UnmarshalText(b []byte) error {
	v, err := ParseHomescreenDisplay(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParticipantScoring is a project's scoring mode.
type ParticipantScoring string

const (
	ScoringNotScored      ParticipantScoring = "Not Scored"
	ScoringScannedQRCount ParticipantScoring = "Number of Scanned QR Codes"
)

// ParseParticipantScoring returns a *ConfigurationError for unknown values.
func ParseParticipantScoring(s string) (ParticipantScoring, error) {
	switch m := ParticipantScoring(s); m {
	case ScoringNotScored, ScoringScannedQRCount:
		return m, nil
	}
	return "", &ConfigurationError{Field: "participant_scoring", Value: s}
}

// UnmarshalText rejects anything ParseParticipantScoring rejects.
func (m *ParticipantScoring) UnmarshalText(b []byte) error {
	v, err := ParseParticipantScoring(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Trigger is the activation rule that unlocks a location.
type Trigger string

const (
	TriggerEntry     Trigger = "Location Entry"
	TriggerQR        Trigger = "QR Code Scan"
	TriggerEntryOrQR Trigger = "Both Location Entry and QR Code Scan"
)

// ParseTrigger returns a *ConfigurationError for unknown values.
func ParseTrigger(s string) (Trigger, error) {
	switch t := Trigger(s); t {
	case TriggerEntry, TriggerQR, TriggerEntryOrQR:
		return t, nil
	}
	return "", &ConfigurationError{Field: "location_trigger", Value: s}
}

// UnmarshalText rejects anything ParseTrigger rejects.
func (t *Trigger) UnmarshalText(b []byte) error {
	v, err := ParseTrigger(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Project is an authored tour: its texts, home screen and scoring mode.
type Project struct {
	ID                 string
	Title              string
	Description        string // author-only, never shown to participants
	Instructions       string
	InitialClue        string
	HomescreenDisplay  HomescreenDisplay
	ParticipantScoring ParticipantScoring
	IsPublished        bool
	Owner              string
}

// ScoreVisible reports whether participants should see points for p.
func (p Project) ScoreVisible() (bool, error) {
	switch p.ParticipantScoring {
	case ScoringNotScored:
		return false, nil
	case ScoringScannedQRCount:
		return true, nil
	}
	return false, &ConfigurationError{Field: "participant_scoring", Value: string(p.ParticipantScoring)}
}

// Location is one stop of a project's catalog.
type Location struct {
	ID          string
	ProjectID   string
	Name        string
	Trigger     Trigger
	Position    Position
	ScorePoints int
	Clue        string
	Content     string
}

// Validate checks the invariants a Location must hold before it can join a
// catalog.
func (l Location) Validate() error {
	if _, err := ParseTrigger(string(l.Trigger)); err != nil {
		return err
	}
	if l.ScorePoints < 0 {
		return fmt.Errorf("location %q: score_points must be >= 0, got %d", l.ID, l.ScorePoints)
	}
	if !l.Position.Valid() {
		return fmt.Errorf("location %q: %w", l.ID, ErrInvalidPosition)
	}
	return nil
}
