package exporting

import "reelforge/internal/uiflow"

var exportOpenCandidates = []uiflow.Candidate{
	uiflow.Text("Export", "button"),
	uiflow.TextContains("Export", "button"),
	uiflow.CSS(`[aria-label*="Export"]`),
}

var filenameCandidates = []uiflow.Candidate{
	uiflow.CSS(`[role="dialog"] input[type="text"]`),
	uiflow.CSS(`[role="dialog"] input`),
	uiflow.CSS(`input[placeholder*="name"]`),
}

// The last two entries are positional fallbacks for dialog skins that label
// the confirm button something unexpected.
var confirmCandidates = []uiflow.Candidate{
	uiflow.TextWithin("Export", "dialog"),
	uiflow.TextWithin("Download", "dialog"),
	uiflow.CSS(`[role="dialog"] button.primary`),
	uiflow.CSS(`[role="dialog"] button:last-of-type`),
}
