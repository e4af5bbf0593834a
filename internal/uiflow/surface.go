package uiflow

import (
	"context"
	"errors"
)

// ErrSurfaceUnavailable indicates the UI surface itself is gone (browser or
// page crashed, connection lost). This is distinct from an element not being
// found: a missing element means the page disagrees with the flow, a missing
// surface means nothing can be asked of the page at all.
var ErrSurfaceUnavailable = errors.New("ui surface unavailable")

// Element is a located UI element. Implementations report interactability at
// the time of the call; the page may change between calls.
type Element interface {
	Visible(ctx context.Context) (bool, error)
	Enabled(ctx context.Context) (bool, error)
	Click(ctx context.Context) error
}

// Surface abstracts the live page the flow runs against. Find returns all
// elements matching the candidate in document order; an empty slice with a
// nil error means nothing matched.
type Surface interface {
	Find(ctx context.Context, candidate Candidate) ([]Element, error)
}
