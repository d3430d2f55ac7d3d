package client

import "time"

// formatTimestamp renders a turn timestamp for display, e.g.
// "Apr 4, 2024 12:00 PM".
func formatTimestamp(t time.Time) string {
	return t.Format("Jan 2, 2006 3:04 PM")
}
