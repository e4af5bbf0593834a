// Package sheets pulls generation jobs from a published spreadsheet CSV.
// The source is either an HTTP(S) URL (a Google Sheets "publish to web" CSV
// link) or a local file path, which keeps tests and offline use simple.
// Rows are deduplicated into the queue through their source reference.
package sheets
