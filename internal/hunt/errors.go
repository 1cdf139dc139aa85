package hunt

import (
	"errors"
	"fmt"
	"strings"
)

// Rejections returned by Session.Apply and the parsers. A rejected event
// leaves the session unchanged.
var (
	ErrNoMatchingLocation = errors.New("no matching location")
	ErrAmbiguousMatch     = errors.New("ambiguous location match")
	ErrInvalidPosition    = errors.New("invalid position")
)

// ConfigurationError reports an unknown value for a closed project or
// location enumeration.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

// AmbiguousMatchError lists the locations an event matched when it should
// have matched exactly one. It usually means two locations share a position
// or a name.
type AmbiguousMatchError struct {
	LocationIDs []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%s: %s", ErrAmbiguousMatch, strings.Join(e.LocationIDs, ", "))
}

func (e *AmbiguousMatchError) Is(target error) bool {
	return target == ErrAmbiguousMatch
}
