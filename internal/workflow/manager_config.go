package workflow

import "reelforge/internal/queue"

// ConfigureStages registers the concrete stage handlers the workflow will run.
func (m *Manager) ConfigureStages(set StageSet) {
	browser := &laneState{kind: laneBrowser, name: string(laneBrowser), notificationsEnabled: true}
	local := &laneState{kind: laneLocal, name: string(laneLocal), notificationsEnabled: true}

	if set.Generator != nil {
		browser.stages = append(browser.stages, pipelineStage{
			name:             "generator",
			handler:          set.Generator,
			startStatus:      queue.StatusPending,
			processingStatus: queue.StatusGenerating,
			doneStatus:       queue.StatusGenerated,
		})
	}
	// The matcher is optional; when absent the exporter picks up generated items.
	exporterStart := queue.StatusGenerated
	if set.Matcher != nil {
		browser.stages = append(browser.stages, pipelineStage{
			name:             "matcher",
			handler:          set.Matcher,
			startStatus:      queue.StatusGenerated,
			processingStatus: queue.StatusMatching,
			doneStatus:       queue.StatusMatched,
		})
		exporterStart = queue.StatusMatched
	}
	if set.Exporter != nil {
		browser.stages = append(browser.stages, pipelineStage{
			name:             "exporter",
			handler:          set.Exporter,
			startStatus:      exporterStart,
			processingStatus: queue.StatusExporting,
			doneStatus:       queue.StatusExported,
		})
	}
	uploaderStart := queue.StatusExported
	if set.Editor != nil {
		local.stages = append(local.stages, pipelineStage{
			name:             "editor",
			handler:          set.Editor,
			startStatus:      queue.StatusExported,
			processingStatus: queue.StatusEditing,
			doneStatus:       queue.StatusEdited,
		})
		uploaderStart = queue.StatusEdited
	}
	if set.Uploader != nil {
		local.stages = append(local.stages, pipelineStage{
			name:             "uploader",
			handler:          set.Uploader,
			startStatus:      uploaderStart,
			processingStatus: queue.StatusUploading,
			doneStatus:       queue.StatusCompleted,
		})
	}

	lanes := make(map[laneKind]*laneState)
	order := make([]laneKind, 0, 2)

	if len(browser.stages) > 0 {
		browser.finalize()
		lanes[browser.kind] = browser
		order = append(order, browser.kind)
	}
	if len(local.stages) > 0 {
		local.finalize()
		lanes[local.kind] = local
		order = append(order, local.kind)
	}

	for _, lane := range lanes {
		if lane == nil {
			continue
		}
		lane.runReclaimer = len(lane.processingStatuses) > 0
	}

	m.mu.Lock()
	m.lanes = lanes
	m.laneOrder = order
	m.mu.Unlock()
}
