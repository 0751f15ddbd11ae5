package sqlite

import (
	"fmt"
	"strings"
	"time"
)

// timeLayout is fixed-width so stored timestamps compare correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// nowUTC is truncated to the stored precision so values returned from writes
// equal values read back later.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint")
}
