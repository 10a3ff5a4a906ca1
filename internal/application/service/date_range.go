package service

import (
	"strings"
	"time"

	"github.com/sangkips/pos-api/pkg/apperror"
)

// DateLayout is the format of startDate and endDate query parameters
const DateLayout = "2006-01-02"

// endOfDay returns 23:59:59.999 on t's calendar day
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(999*time.Millisecond), t.Location())
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// parseDay parses a YYYY-MM-DD (or RFC3339) value as a day in loc
func parseDay(field, raw string, loc *time.Location) (time.Time, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false, nil
	}
	if t, err := time.ParseInLocation(DateLayout, raw, loc); err == nil {
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(loc), true, nil
	}
	return time.Time{}, false, apperror.NewFieldError(field, field+" must be YYYY-MM-DD")
}

// resolveDateRange turns optional start and end days into an inclusive
// [start 00:00, end 23:59:59.999] window in loc. A missing end falls back to
// today (or the start day when it lies ahead), a missing start falls back to
// the end day, and both missing means today.
func resolveDateRange(start, end string, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	from, hasFrom, err := parseDay("startDate", start, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, hasTo, err := parseDay("endDate", end, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	today := now.In(loc)
	switch {
	case !hasFrom && !hasTo:
		from, to = today, today
	case !hasFrom:
		from = to
	case !hasTo:
		to = today
		if to.Before(from) {
			to = from
		}
	}

	from, to = startOfDay(from), endOfDay(to)
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperror.NewFieldError("endDate", "endDate must not be before startDate")
	}
	return from, to, nil
}
