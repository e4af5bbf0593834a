// Package generating drives the editor's AI creation form: it opens the
// editor with a restored session, fills the prompt, applies the configured
// style options, starts generation, and follows the project tab the editor
// opens. Completion is detected by polling for export controls; the poll cap
// is deliberately non-fatal because slow generations usually finish anyway.
package generating
