package handlers

import "strconv"

// parseLimit parses a limit query parameter, falling back to def when the
// value is missing or unusable. Limits are capped at 500.
func parseLimit(raw string, def int) int {
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > 500 {
		return 500
	}
	return n
}
