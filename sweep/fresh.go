package sweep

import "time"

// FreshnessWindow is how long after publication a video still triggers
// a notification. Older videos are skipped even when they were never
// seen before.
const FreshnessWindow = 2 * time.Hour

// Fresh reports whether a video published at the given time is still
// inside the freshness window. A video aged exactly the window is
// stale.
func Fresh(publishedAt, now time.Time) bool {
	return now.Sub(publishedAt) < FreshnessWindow
}
