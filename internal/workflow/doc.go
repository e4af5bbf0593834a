// Package workflow advances queue items through the configured processing
// stages.
//
// The Manager polls the queue, reclaims stale work via heartbeats, and feeds
// items into registered stage handlers (generator, matcher, exporter, editor,
// uploader) while capturing progress and failure metadata. It also aggregates
// queue stats, calls stage health checks, and emits queue-level notifications
// when processing starts or completes.
//
// The workflow runs two independent lanes: browser (generation, stock
// matching, export) and local (editing, upload). Browser stages share one
// editor session and run strictly one item at a time; the local lane only
// touches downloaded files and the upload API, so item B can upload while
// item A generates.
//
// Add new lifecycle stages by extending StageSet, updating the queue status
// enums, and teaching the manager how to transition items; this package is the
// authoritative home for that coordination logic.
package workflow
