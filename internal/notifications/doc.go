// Package notifications sends push notifications for pipeline milestones
// through ntfy. Per-event toggles in the notifications config section gate
// each message; an unconfigured topic yields a noop service so callers never
// branch on whether notifications are enabled.
package notifications
