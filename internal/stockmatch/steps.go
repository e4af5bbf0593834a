package stockmatch

import (
	"time"

	"reelforge/internal/config"
	"reelforge/internal/uiflow"
)

// The step table is fixed. Selector candidates are ordered by preference;
// only the final wait is configurable.
var (
	scenesCandidates = []uiflow.Candidate{
		uiflow.Text("Scenes", "button"),
		uiflow.Text("Scenes", "div"),
		uiflow.CSS(`[aria-label*="Scenes"]`),
	}
	mediaTabCandidates = []uiflow.Candidate{
		uiflow.Text("Media", "button"),
		uiflow.TextRole("Media", "tab"),
	}
	// The short "Match" label is tried before the full "Match stock media"
	// label; the editor shows the short form in current builds and the long
	// form only in older ones.
	matchCandidates = []uiflow.Candidate{
		uiflow.Text("Match", "button"),
		uiflow.Text("Match stock media", "button"),
	}
	continueCandidates = []uiflow.Candidate{
		uiflow.Text("Continue", "button"),
		uiflow.TextWithin("Continue", "dialog"),
	}
)

// Steps builds the stock-match flow for the configured wait duration.
func Steps(cfg config.StockMatch) []uiflow.Step {
	return []uiflow.Step{
		{Name: "open scenes panel", Action: uiflow.ActionClick, Candidates: scenesCandidates},
		{Name: "open media tab", Action: uiflow.ActionClick, Candidates: mediaTabCandidates},
		{Name: "start stock match", Action: uiflow.ActionClick, Candidates: matchCandidates},
		{Name: "confirm stock match", Action: uiflow.ActionClick, Candidates: continueCandidates},
		{Name: "wait for matching", Action: uiflow.ActionWait, Wait: time.Duration(cfg.WaitSeconds) * time.Second},
	}
}
