// Package api defines the transport-friendly queue and status payloads shared
// by the IPC surface and the CLI. Conversions normalize timestamps, expose the
// processing lane, and keep stage health ordering deterministic so CLI output
// is stable across runs.
package api
