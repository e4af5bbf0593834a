package browser

import (
	"fmt"
	"strings"

	"reelforge/internal/uiflow"
)

type queryKind int

const (
	queryCSS queryKind = iota
	queryXPath
)

type query struct {
	kind queryKind
	expr string
}

// candidateQuery translates a selector candidate into the CSS or XPath
// expression handed to the devtools protocol. Text candidates become XPath
// because CSS cannot match on rendered text.
func candidateQuery(c uiflow.Candidate) query {
	if c.Kind == uiflow.MatchCSS {
		return query{kind: queryCSS, expr: c.Value}
	}

	var b strings.Builder
	if c.Within != "" {
		fmt.Fprintf(&b, "//*[@role=%s]", xpathString(c.Within))
	}
	switch {
	case c.Role != "":
		fmt.Fprintf(&b, "//*[@role=%s]", xpathString(c.Role))
	case c.Tag != "":
		b.WriteString("//" + c.Tag)
	default:
		b.WriteString("//*")
	}
	if c.Kind == uiflow.MatchTextContains {
		fmt.Fprintf(&b, "[contains(normalize-space(.), %s)]", xpathString(c.Value))
	} else {
		fmt.Fprintf(&b, "[normalize-space(.)=%s]", xpathString(c.Value))
	}
	return query{kind: queryXPath, expr: b.String()}
}

// xpathString renders s as an XPath 1.0 string literal. XPath has no escape
// sequences, so values containing both quote characters need concat().
func xpathString(s string) string {
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	parts := strings.Split(s, `"`)
	pieces := make([]string, 0, len(parts)*2)
	for i, part := range parts {
		if i > 0 {
			pieces = append(pieces, `'"'`)
		}
		if part != "" {
			pieces = append(pieces, `"`+part+`"`)
		}
	}
	return "concat(" + strings.Join(pieces, ", ") + ")"
}
