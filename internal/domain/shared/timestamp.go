package shared

import "time"

// ISOMillis is the wire format for readiness timestamps: UTC with millisecond
// resolution and a trailing Z. Lexicographic comparison of two such strings is
// equivalent to comparing the instants they denote, which is what lets the
// event queue order ships by plain string priority.
const ISOMillis = "2006-01-02T15:04:05.000Z"

// FormatISO renders t as an ISO-8601 UTC millisecond string
func FormatISO(t time.Time) string {
	return t.UTC().Format(ISOMillis)
}

// ParseISO parses an ISO-8601 UTC timestamp (trailing Z, with or without
// fractional seconds). Returns the zero time on empty input.
func ParseISO(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(ISOMillis, ts); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, ts)
}

// ParseISOOr parses ts, falling back to def when ts is empty or malformed
func ParseISOOr(ts string, def time.Time) time.Time {
	t, err := ParseISO(ts)
	if err != nil || t.IsZero() {
		return def
	}
	return t
}

// MaxTime returns the later of two instants
func MaxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// SystemSymbolOf extracts the system symbol from a waypoint symbol
// by dropping everything after the last hyphen.
// Example: "X1-AB12-C3D4" -> "X1-AB12"
func SystemSymbolOf(waypointSymbol string) string {
	for i := len(waypointSymbol) - 1; i >= 0; i-- {
		if waypointSymbol[i] == '-' {
			return waypointSymbol[:i]
		}
	}
	return waypointSymbol
}
