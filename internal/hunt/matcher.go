package hunt

// DefaultRadiusMeters is the geofence radius used when none is configured.
const DefaultRadiusMeters = 30.0

// Matcher decides whether an event satisfies a location's trigger.
type Matcher struct {
	RadiusMeters float64
}

// NewMatcher returns a Matcher with the given geofence radius, falling back
// to DefaultRadiusMeters when it is not positive.
func NewMatcher(radiusMeters float64) Matcher {
	if radiusMeters <= 0 {
		radiusMeters = DefaultRadiusMeters
	}
	return Matcher{RadiusMeters: radiusMeters}
}

// Matches reports whether ev unlocks l under l's trigger. Home events and
// unknown triggers never match.
func (m Matcher) Matches(l Location, ev Event) bool {
	switch l.Trigger {
	case TriggerEntry:
		return m.entryMatches(l, ev)
	case TriggerQR:
		return qrMatches(l, ev)
	case TriggerEntryOrQR:
		return m.entryMatches(l, ev) || qrMatches(l, ev)
	}
	return false
}

func (m Matcher) entryMatches(l Location, ev Event) bool {
	if ev.Kind != EventGeofenceEntry {
		return false
	}
	if !ev.Position.Valid() || !l.Position.Valid() {
		return false
	}
	return Distance(l.Position, ev.Position) <= m.RadiusMeters
}

// qrMatches prefers the embedded identifier. Only payloads without one fall
// back to exact name and position equality.
func qrMatches(l Location, ev Event) bool {
	if ev.Kind != EventQRScan {
		return false
	}
	if ev.QR.LocationID != "" {
		return ev.QR.LocationID == l.ID
	}
	if ev.QR.LocationName != l.Name {
		return false
	}
	pos, err := ParsePosition(ev.QR.LocationPosition)
	if err != nil {
		return false
	}
	return pos == l.Position
}

// MatchAll returns the ids of every location in catalog that ev matches,
// in catalog order.
func (m Matcher) MatchAll(catalog []Location, ev Event) []string {
	var ids []string
	for _, l := range catalog {
		if m.Matches(l, ev) {
			ids = append(ids, l.ID)
		}
	}
	return ids
}
