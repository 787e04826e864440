package components

import (
	"errors"
	"fmt"
	"sort"

	"github.com/agnivade/levenshtein"
)

// Error taxonomy. Every failure returned by the simulation wraps one of these.
var (
	ErrConfiguration    = errors.New("configuration error")
	ErrPlacement        = errors.New("placement error")
	ErrValidation       = errors.New("validation error")
	ErrUnknownParameter = errors.New("unknown parameter")
)

// maxSuggestDistance bounds how far a misspelt name may be from a valid one
// before we stop suggesting it.
const maxSuggestDistance = 3

// UnknownParameterError reports a parameter name that does not exist for the
// target species or terrain.
type UnknownParameterError struct {
	Target     string // species name or terrain symbol
	Name       string // the rejected parameter name
	Suggestion string // closest valid name, empty if none is close
}

func (e *UnknownParameterError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown parameter %q for %s (did you mean %q?)", e.Name, e.Target, e.Suggestion)
	}
	return fmt.Sprintf("unknown parameter %q for %s", e.Name, e.Target)
}

// Is lets errors.Is match ErrUnknownParameter.
func (e *UnknownParameterError) Is(target error) bool {
	return target == ErrUnknownParameter
}

// newUnknownParameter builds an UnknownParameterError with the closest valid
// name as suggestion.
func newUnknownParameter(target, name string, valid []string) *UnknownParameterError {
	return &UnknownParameterError{
		Target:     target,
		Name:       name,
		Suggestion: closestName(name, valid),
	}
}

// closestName returns the valid name with the smallest edit distance to name.
// Ties resolve alphabetically so suggestions are stable.
func closestName(name string, valid []string) string {
	sorted := make([]string, len(valid))
	copy(sorted, valid)
	sort.Strings(sorted)

	best := ""
	bestDist := maxSuggestDistance + 1
	for _, v := range sorted {
		d := levenshtein.ComputeDistance(name, v)
		if d < bestDist {
			best, bestDist = v, d
		}
	}
	return best
}
