package country

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
)

// ErrNotFound is returned when a query matches no non-dependency record.
var ErrNotFound = eris.New("country: not found")

// Resolve selects the country features matching query. Matching is
// case-insensitive: an exact sovereignty-name match is tried first, then a
// substring match. Dependency records never match. Multiple features may be
// returned when a sovereignty spans disputed or duplicated records; callers
// treat the selection as possibly multi-feature.
func Resolve(features []Feature, query string) ([]Feature, error) {
	fold := cases.Fold()
	q := fold.String(strings.TrimSpace(query))

	exact := make([]Feature, 0, 1)
	var partial []Feature
	for _, f := range features {
		if f.Type == TypeDependency {
			continue
		}
		name := fold.String(f.Sovereignty)
		if name == q {
			exact = append(exact, f)
		} else if strings.Contains(name, q) {
			partial = append(partial, f)
		}
	}

	if len(exact) > 0 {
		return exact, nil
	}
	if len(partial) > 0 {
		return partial, nil
	}
	return nil, eris.Wrapf(ErrNotFound, "country: no match for %q", query)
}
