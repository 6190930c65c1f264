package matchday

import (
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/domain/match"
)

// FilterToday keeps matches of favorite tournaments whose start falls on the
// same calendar date as now, both read in loc.
func FilterToday(matches []match.Match, favorites TournamentSet, loc *time.Location, now time.Time) []match.Match {
	if loc == nil {
		loc = time.UTC
	}
	today := calendarDate(now.In(loc))

	out := make([]match.Match, 0, len(matches))
	for _, m := range matches {
		if !favorites.Has(m.League) {
			continue
		}
		if calendarDate(m.StartTime.In(loc)) != today {
			continue
		}
		out = append(out, m)
	}
	return out
}

type date struct {
	year  int
	month time.Month
	day   int
}

func calendarDate(t time.Time) date {
	y, m, d := t.Date()
	return date{year: y, month: m, day: d}
}
