package tasks

import (
	"fmt"
	"strings"
	"time"
)

var dueLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDue reads a due date typed by a user. It accepts RFC 3339, a local
// date with optional HH:MM, "today" and "tomorrow". Dates without a time
// mean midnight in loc. "none" and "" return nil.
func ParseDue(s string, now time.Time, loc *time.Location) (*time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "none":
		return nil, nil
	case "today", "tomorrow":
		y, m, d := now.In(loc).Date()
		if strings.EqualFold(s, "tomorrow") {
			d++
		}
		t := time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()
		return &t, nil
	}

	for _, layout := range dueLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, fmt.Errorf("unrecognised due date %q (try 2025-01-31, \"2025-01-31 18:00\" or tomorrow)", s)
}
