package uiflow

import (
	"fmt"
	"strings"
)

// MatchKind selects the strategy used to locate an element.
type MatchKind string

const (
	// MatchCSS locates elements by CSS selector.
	MatchCSS MatchKind = "css"
	// MatchText locates elements whose rendered text equals the value.
	MatchText MatchKind = "text"
	// MatchTextContains locates elements whose rendered text contains the value.
	MatchTextContains MatchKind = "text_contains"
)

// Candidate describes one way to locate a UI element. A selector is an
// ordered list of candidates; earlier entries are preferred.
type Candidate struct {
	Kind  MatchKind
	Value string
	// Tag restricts text matches to a specific element tag ("" = any).
	Tag string
	// Role restricts text matches to elements with this ARIA role.
	Role string
	// Within restricts matches to descendants of elements with this ARIA role.
	Within string
}

// CSS builds a CSS selector candidate.
func CSS(selector string) Candidate {
	return Candidate{Kind: MatchCSS, Value: selector}
}

// Text builds an exact-text candidate, optionally scoped to a tag.
func Text(value, tag string) Candidate {
	return Candidate{Kind: MatchText, Value: value, Tag: tag}
}

// TextRole builds an exact-text candidate scoped to an ARIA role.
func TextRole(value, role string) Candidate {
	return Candidate{Kind: MatchText, Value: value, Role: role}
}

// TextWithin builds an exact-text candidate scoped to a containing region role.
func TextWithin(value, within string) Candidate {
	return Candidate{Kind: MatchText, Value: value, Within: within}
}

// TextContains builds a substring-text candidate, optionally scoped to a tag.
func TextContains(value, tag string) Candidate {
	return Candidate{Kind: MatchTextContains, Value: value, Tag: tag}
}

// String renders the candidate for log lines.
func (c Candidate) String() string {
	var b strings.Builder
	switch c.Kind {
	case MatchCSS:
		fmt.Fprintf(&b, "css %q", c.Value)
	case MatchTextContains:
		fmt.Fprintf(&b, "text contains %q", c.Value)
	default:
		fmt.Fprintf(&b, "text %q", c.Value)
	}
	if c.Tag != "" {
		fmt.Fprintf(&b, " on %s", c.Tag)
	}
	if c.Role != "" {
		fmt.Fprintf(&b, " role=%s", c.Role)
	}
	if c.Within != "" {
		fmt.Fprintf(&b, " within %s", c.Within)
	}
	return b.String()
}
