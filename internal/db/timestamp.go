package db

import "time"

// timeLayout is RFC 3339 with a fixed-width nanosecond fraction.
// RFC3339Nano trims trailing zeros, so its lexicographic order diverges
// from time order; every created_at/updated_at column is compared as
// text by SQLite, so string order must equal time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTimestamp accepts any RFC 3339 fraction width, so rows written
// before the fixed-width layout still decode.
func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
