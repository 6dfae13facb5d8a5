// Package shared provides small helpers used by more than one layer of
// repo-mirror.
package shared

import (
	"fmt"
	"strings"
)

// HTTPStatusError creates a formatted error for non-2xx HTTP responses.
func HTTPStatusError(status int, url string) error {
	return fmt.Errorf("status=%d url=%s", status, url)
}

// NonEmptyTrimmed trims every value and drops the ones left empty, keeping
// the original order.
func NonEmptyTrimmed(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
