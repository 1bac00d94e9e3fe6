// Package verify resolves when a record was last confirmed to be true.
//
// A field survey is stronger evidence than an edit timestamp, so explicit
// check_date and survey:date tags take precedence over the record's last
// edit or publication time.
package verify

import (
	"regexp"
	"strconv"
	"time"

	"github.com/osmhh/treesync/pkg/constants"
)

var datePattern = regexp.MustCompile(`^\s*([0-9]{4})-([0-9]{2})(?:-([0-9]{2}))?\s*$`)

// DateTags are consulted in order; the first parseable one wins.
var DateTags = []string{constants.TagCheckDate, constants.TagSurveyDate}

// LastVerified returns the start of the day named by the first parseable
// date tag, interpreted in loc, or fallback if no tag can be used.
// A nil loc means UTC.
func LastVerified(tags map[string]string, fallback time.Time, loc *time.Location) time.Time {
	for _, key := range DateTags {
		if t, ok := ParseDate(tags[key], loc); ok {
			return t
		}
	}
	return fallback
}

// ParseDate parses "YYYY-MM-DD" or "YYYY-MM" (first of the month) as
// midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	m := datePattern.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day := 1
	if m[3] != "" {
		day, _ = strconv.Atoi(m[3])
	}
	if month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
