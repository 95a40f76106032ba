package devices

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrStoreUnavailable is an exported constant or variable used by the session integrity core.
var ErrStoreUnavailable = errors.New("device store unavailable")

// Record is one recently-seen device.
type Record struct {
	UserAgent  string
	IPAddress  string
	LastSeenAt time.Time
}

// Tracker is the injected device-history backend. Touch upserts the record
// keyed by (userAgent, ip) with last-writer-wins on the timestamp.
type Tracker interface {
	Touch(ctx context.Context, userID, userAgent, ip string, seenAt time.Time) error
	List(ctx context.Context, userID string) ([]Record, error)
}

// The field separator never appears in an IP, and User-Agent values with
// newlines are sanitized before keying.
const fieldSep = "\n"

func fieldKey(userAgent, ip string) string {
	return strings.ReplaceAll(userAgent, fieldSep, " ") + fieldSep + ip
}

func splitFieldKey(field string) (userAgent, ip string) {
	idx := strings.LastIndex(field, fieldSep)
	if idx < 0 {
		return field, ""
	}
	return field[:idx], field[idx+1:]
}
