package council

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate reads the date formats seen on membership start and end dates.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ActiveInYear reports whether [start, end] intersects year. A missing or unreadable start
// date is never active, a missing or unreadable end date is open ended.
func ActiveInYear(row MembershipRow, year int) bool {
	if row.StartDate == nil {
		return false
	}
	start, ok := ParseDate(*row.StartDate)
	if !ok || start.Year() > year {
		return false
	}
	if row.EndDate == nil {
		return true
	}
	end, ok := ParseDate(*row.EndDate)
	if !ok {
		return true
	}
	return end.Year() >= year
}

// startYear returns the year of the row's start date.
func startYear(row MembershipRow) (int, bool) {
	if row.StartDate == nil {
		return 0, false
	}
	start, ok := ParseDate(*row.StartDate)
	if !ok {
		return 0, false
	}
	return start.Year(), true
}
