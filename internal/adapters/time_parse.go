package adapters

import (
	"strings"
	"time"
)

// storedTimeLayouts covers what sync_runs may contain: values written by
// RecordRun, and SQLite's CURRENT_TIMESTAMP for rows inserted by hand.
var storedTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.DateTime,
}

func parseTimeFlexible(value string) time.Time {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}
	}
	for _, layout := range storedTimeLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

// storedTimeFormat pads the fraction so stored values sort lexically.
const storedTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

func formatStoredTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(storedTimeFormat)
}
