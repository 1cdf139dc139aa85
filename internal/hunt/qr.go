package hunt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QRPayload is the record printed into a location's QR code.
//
// Codes printed by older authoring clients carry only the name and position;
// LocationID is set on everything EncodeQR produces.
type QRPayload struct {
	LocationID       string `json:"location_id,omitempty"`
	LocationName     string `json:"location_name"`
	LocationPosition string `json:"location_position"`
}

// EncodeQR renders the payload for l's QR code.
func EncodeQR(l Location) ([]byte, error) {
	if !l.Position.Valid() {
		return nil, fmt.Errorf("encoding qr for %q: %w", l.ID, ErrInvalidPosition)
	}
	return json.Marshal(QRPayload{
		LocationID:       l.ID,
		LocationName:     l.Name,
		LocationPosition: l.Position.String(),
	})
}

// DecodeQR parses scanned QR text. A parseable position is rewritten into
// the canonical "(lat, long)" form; an unparseable one is kept verbatim and
// will not match any location.
func DecodeQR(data []byte) (QRPayload, error) {
	var p QRPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return QRPayload{}, fmt.Errorf("decoding qr payload: %w", err)
	}
	p.LocationID = strings.TrimSpace(p.LocationID)
	if p.LocationID == "" && p.LocationName == "" {
		return QRPayload{}, fmt.Errorf("decoding qr payload: no location_id or location_name")
	}
	if pos, err := ParsePosition(p.LocationPosition); err == nil {
		p.LocationPosition = pos.String()
	}
	return p, nil
}

// EventKind is the wire name of an event.
type EventKind string

const (
	EventGoHome        EventKind = "home"
	EventGeofenceEntry EventKind = "geofence_entry"
	EventQRScan        EventKind = "qr_scan"
)

// Event is one activation fed to Session.Apply.
type Event struct {
	Kind     EventKind
	Position Position  // GeofenceEntry only
	QR       QRPayload // QRScan only
}

// GoHome returns the event that returns a tour to its home screen.
func GoHome() Event { return Event{Kind: EventGoHome} }

// GeofenceEntry returns the event for arriving at p.
func GeofenceEntry(p Position) Event {
	return Event{Kind: EventGeofenceEntry, Position: p}
}

// QRScan returns the event for scanning a decoded QR payload.
func QRScan(p QRPayload) Event {
	return Event{Kind: EventQRScan, QR: p}
}
