package generating

import "reelforge/internal/uiflow"

// editorTabFragment identifies the project tab the editor opens after
// generation starts.
const editorTabFragment = "/editor"

var promptCandidates = []uiflow.Candidate{
	uiflow.CSS(`textarea[placeholder*="idea"]`),
	uiflow.CSS(`textarea[placeholder*="describe"]`),
	uiflow.CSS("textarea"),
}

var generateCandidates = []uiflow.Candidate{
	uiflow.Text("Generate", "button"),
	uiflow.TextContains("Generate", "button"),
	uiflow.CSS(`[aria-label*="Generate"]`),
}

var popupCloseCandidates = []uiflow.Candidate{
	uiflow.CSS(`[aria-label="Close"]`),
	uiflow.CSS(`[aria-label="close"]`),
	uiflow.CSS(".modal-close"),
	uiflow.TextWithin("Not now", "dialog"),
	uiflow.TextWithin("Skip", "dialog"),
}

// completionCandidates are the controls that only exist once the editor has
// finished rendering the generated project.
var completionCandidates = []uiflow.Candidate{
	uiflow.Text("Export", "button"),
	uiflow.TextContains("Export", "button"),
	uiflow.CSS(`[aria-label*="Export"]`),
	uiflow.TextContains("Download", "button"),
}

// optionCandidates locates a form option by its configured label.
func optionCandidates(label string) []uiflow.Candidate {
	return []uiflow.Candidate{
		uiflow.Text(label, "button"),
		uiflow.Text(label, "div"),
		uiflow.Text(label, "span"),
		uiflow.TextContains(label, ""),
	}
}
