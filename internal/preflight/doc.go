// Package preflight provides readiness checks for filesystem paths and
// external inputs that Reelforge depends on.
//
// These checks run in two contexts:
//   - The workflow manager calls RunAll before processing each queue item.
//     If any check fails, the lane halts rather than failing items one by one.
//   - The CLI "reelforge status" command uses individual check functions
//     (CheckDirectoryAccess, CheckUploadToken) to display readiness.
//
// Each check is gated by its config toggle -- disabled features are skipped.
package preflight
