package server

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// parseFilter reads equality conditions written as "column=eq.value". Only
// the eq operator is supported; "select" is accepted and ignored.
func parseFilter(q url.Values, allowed []string) (Filter, error) {
	f := Filter{}
	for col, vals := range q {
		if col == "select" {
			continue
		}
		if !slices.Contains(allowed, col) {
			return nil, fmt.Errorf("cannot filter on %q", col)
		}
		if len(vals) != 1 {
			return nil, fmt.Errorf("%s: expected one condition", col)
		}
		v, ok := strings.CutPrefix(vals[0], "eq.")
		if !ok {
			return nil, fmt.Errorf("%s: only eq. conditions are supported", col)
		}
		f[col] = v
	}
	if v, ok := f["is_published"]; ok && v != "true" && v != "false" {
		return nil, fmt.Errorf("is_published: expected true or false")
	}
	return f, nil
}
