package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"

	"reelforge/internal/uiflow"
)

// pageSurface adapts the session's working page to uiflow.Surface. It reads
// the page pointer on every call so tab switches take effect immediately.
type pageSurface struct {
	session *Session
}

func (p *pageSurface) Find(ctx context.Context, candidate uiflow.Candidate) ([]uiflow.Element, error) {
	page := p.session.currentPage()
	if page == nil {
		return nil, uiflow.ErrSurfaceUnavailable
	}
	page = page.Context(ctx)

	q := candidateQuery(candidate)
	var (
		found rod.Elements
		err   error
	)
	switch q.kind {
	case queryCSS:
		found, err = page.Elements(q.expr)
	default:
		found, err = page.ElementsX(q.expr)
	}
	if err != nil {
		return nil, p.session.classify(err, fmt.Sprintf("find %s", candidate))
	}

	elements := make([]uiflow.Element, 0, len(found))
	for _, el := range found {
		elements = append(elements, &pageElement{session: p.session, el: el})
	}
	return elements, nil
}

// pageElement wraps one located DOM node.
type pageElement struct {
	session *Session
	el      *rod.Element
}

func (e *pageElement) Visible(ctx context.Context) (bool, error) {
	visible, err := e.el.Context(ctx).Visible()
	if err != nil {
		return false, e.session.classify(err, "visibility check")
	}
	return visible, nil
}

// Enabled treats the DOM disabled property and aria-disabled as equivalent;
// the editor uses both depending on the control.
func (e *pageElement) Enabled(ctx context.Context) (bool, error) {
	res, err := e.el.Context(ctx).Eval(
		`() => !(this.disabled === true || this.getAttribute("aria-disabled") === "true")`,
	)
	if err != nil {
		return false, e.session.classify(err, "enabled check")
	}
	return res.Value.Bool(), nil
}

func (e *pageElement) Click(ctx context.Context) error {
	target := e.el.Context(ctx)
	if err := target.ScrollIntoView(); err != nil {
		return e.session.classify(err, "scroll into view")
	}
	if err := target.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return e.session.classify(err, "click")
	}
	return nil
}
