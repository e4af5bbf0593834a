// Package stockmatch runs the editor's stock media matching flow once per
// job, between generation and export. The flow is a fixed click sequence
// ending in a configurable settle wait.
//
// Step failures are deliberately non-fatal: matching improves the output but
// the video exports fine without it, so the item moves on with a warning.
// Losing the browser is different and fails the job.
package stockmatch
