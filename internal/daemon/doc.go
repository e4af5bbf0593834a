// Package daemon coordinates the long-running Reelforge process and system
// integration points.
//
// It wires configuration, queue storage, and the workflow manager into a
// single lifecycle with flock-based locking to prevent multiple instances.
// The daemon exposes queue maintenance helpers, manages manual job and file
// ingestion, syncs the sheet job source on demand, and emits dependency
// health summaries.
//
// Keep orchestration logic here: individual workflow stages should live in
// their respective packages while the daemon focuses on startup, shutdown,
// and high level coordination.
package daemon
