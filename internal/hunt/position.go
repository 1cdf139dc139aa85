package hunt

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Position is a WGS84 coordinate. Its text form is "(lat, long)".
type Position struct {
	Lat float64
	Lng float64
}

// Valid reports whether both coordinates are finite.
func (p Position) Valid() bool {
	return !math.IsNaN(p.Lat) && !math.IsInf(p.Lat, 0) &&
		!math.IsNaN(p.Lng) && !math.IsInf(p.Lng, 0)
}

// String formats p with the shortest float representation that parses back
// to the same value, so ParsePosition(p.String()) == p.
func (p Position) String() string {
	return "(" + strconv.FormatFloat(p.Lat, 'f', -1, 64) + ", " +
		strconv.FormatFloat(p.Lng, 'f', -1, 64) + ")"
}

// decimalRe is the coordinate grammar. It leaves out the hex, infinity and
// NaN forms strconv.ParseFloat would otherwise take.
var decimalRe = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func parseCoord(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !decimalRe.MatchString(s) {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseFloat(s, 64)
}

// ParsePosition reads "(lat, long)". Older authoring clients stored the
// coordinates without parentheses, so "lat, long" is accepted as well.
func ParsePosition(s string) (Position, error) {
	body := strings.TrimSpace(s)
	if strings.HasPrefix(body, "(") != strings.HasSuffix(body, ")") {
		return Position{}, fmt.Errorf("%w: unbalanced parentheses in %q", ErrInvalidPosition, s)
	}
	body = strings.TrimSuffix(strings.TrimPrefix(body, "("), ")")

	latStr, lngStr, ok := strings.Cut(body, ",")
	if !ok {
		return Position{}, fmt.Errorf("%w: %q", ErrInvalidPosition, s)
	}
	lat, err := parseCoord(latStr)
	if err != nil {
		return Position{}, fmt.Errorf("%w: latitude in %q", ErrInvalidPosition, s)
	}
	lng, err := parseCoord(lngStr)
	if err != nil {
		return Position{}, fmt.Errorf("%w: longitude in %q", ErrInvalidPosition, s)
	}

	p := Position{Lat: lat, Lng: lng}
	if !p.Valid() {
		return Position{}, fmt.Errorf("%w: non-finite coordinate in %q", ErrInvalidPosition, s)
	}
	return p, nil
}

// MarshalText implements encoding.TextMarshaler using the "(lat, long)" form.
func (p Position) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, ErrInvalidPosition
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler via ParsePosition.
func (p *Position) UnmarshalText(b []byte) error {
	v, err := ParsePosition(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

const earthRadiusMeters = 6371000.0

// Distance returns the great-circle distance between a and b in meters.
func Distance(a, b Position) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
