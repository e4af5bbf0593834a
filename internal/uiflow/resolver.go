package uiflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound indicates that no candidate in a selector resolved to a
// visible, enabled element. Callers detect it with errors.Is.
var ErrNotFound = errors.New("no selector candidate matched")

// CandidateResult records why one candidate did not produce a usable element.
type CandidateResult struct {
	Candidate Candidate
	// Outcome is "missing", "hidden", "disabled", or an error string.
	Outcome string
}

// NotFoundError carries the per-candidate outcomes of an exhausted resolve.
type NotFoundError struct {
	Results []CandidateResult
}

func (e *NotFoundError) Error() string {
	if len(e.Results) == 0 {
		return ErrNotFound.Error()
	}
	parts := make([]string, 0, len(e.Results))
	for _, res := range e.Results {
		parts = append(parts, fmt.Sprintf("%s (%s)", res.Candidate, res.Outcome))
	}
	return fmt.Sprintf("%s: tried %s", ErrNotFound.Error(), strings.Join(parts, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Match pairs a resolved element with the candidate that located it.
type Match struct {
	Element   Element
	Candidate Candidate
}

// Resolve tries candidates strictly in order and returns the first element
// that is present, visible, and enabled. Hidden or disabled matches do not
// count; resolution moves to the next candidate. When every candidate is
// exhausted the returned error wraps ErrNotFound. Resolve never retries; a
// single pass over the candidate list is the whole contract.
func Resolve(ctx context.Context, surface Surface, candidates []Candidate) (Match, error) {
	if surface == nil {
		return Match{}, ErrSurfaceUnavailable
	}

	results := make([]CandidateResult, 0, len(candidates))
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return Match{}, err
		}

		elements, err := surface.Find(ctx, candidate)
		if err != nil {
			if errors.Is(err, ErrSurfaceUnavailable) {
				return Match{}, err
			}
			results = append(results, CandidateResult{Candidate: candidate, Outcome: err.Error()})
			continue
		}
		if len(elements) == 0 {
			results = append(results, CandidateResult{Candidate: candidate, Outcome: "missing"})
			continue
		}

		outcome := "hidden"
		for _, element := range elements {
			visible, err := element.Visible(ctx)
			if err != nil {
				if errors.Is(err, ErrSurfaceUnavailable) {
					return Match{}, err
				}
				outcome = err.Error()
				continue
			}
			if !visible {
				continue
			}
			enabled, err := element.Enabled(ctx)
			if err != nil {
				if errors.Is(err, ErrSurfaceUnavailable) {
					return Match{}, err
				}
				outcome = err.Error()
				continue
			}
			if !enabled {
				outcome = "disabled"
				continue
			}
			return Match{Element: element, Candidate: candidate}, nil
		}
		results = append(results, CandidateResult{Candidate: candidate, Outcome: outcome})
	}

	return Match{}, &NotFoundError{Results: results}
}
