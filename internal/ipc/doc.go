// Package ipc exposes daemon control over a Unix domain socket using
// JSON-RPC. The CLI is the only intended client; payload types mirror the
// api package DTOs so presentation code stays transport-agnostic.
package ipc
