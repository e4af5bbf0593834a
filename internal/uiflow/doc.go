// Package uiflow locates elements in a live web page through prioritized
// selector candidates and drives fixed linear click/wait sequences against
// them.
//
// The two entry points are Resolve, which walks a candidate list in order
// and returns the first visible and enabled match, and Runner.Run, which
// executes a step table and stops at the first failure. Both operate on the
// Surface interface so flows can be tested without a browser.
package uiflow
