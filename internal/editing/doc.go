// Package editing post-processes exported videos locally with ffmpeg: a
// slight speed-up, silence removal, and loudness normalization, all applied
// in one pass. When editing is disabled the stage passes the exported file
// through untouched so the rest of the pipeline never branches.
package editing
