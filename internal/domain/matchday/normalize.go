package matchday

import (
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/domain/match"
	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
)

// Feeds send either full RFC3339 or minute precision ("2026-10-19T09:30Z").
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04Z07:00",
}

// Normalize converts every competition into a match, using the current UTC
// time when no timestamp parses.
func Normalize(docs []scoreboard.Document) []match.Match {
	return NormalizeAt(docs, time.Now().UTC())
}

// NormalizeAt is Normalize with an explicit fallback timestamp.
//
// A competition with notes yields a single-sided match from the first note.
// Otherwise two or more competitors yield a two-sided match from the first
// two. Anything else is dropped.
func NormalizeAt(docs []scoreboard.Document, fallback time.Time) []match.Match {
	out := make([]match.Match, 0)

	for _, doc := range docs {
		for _, ev := range doc.Events {
			tournament := TournamentName(ev, doc.Source)
			for _, grp := range ev.Groupings {
				for _, comp := range grp.Competitions {
					m, ok := normalizeCompetition(tournament, ev, comp, fallback)
					if ok {
						out = append(out, m)
					}
				}
			}
		}
	}

	return out
}

func normalizeCompetition(tournament string, ev scoreboard.Event, comp scoreboard.Competition, fallback time.Time) (match.Match, bool) {
	startTime := ResolveStartTime(comp.Date.String(), ev.Date.String(), fallback)
	status := comp.Status.Type.Description.String()

	if len(comp.Notes) > 0 {
		return match.Match{
			League:    tournament,
			Kind:      match.KindSingleSided,
			Home:      comp.Notes[0].Text.String(),
			Status:    status,
			StartTime: startTime,
		}, true
	}

	if len(comp.Competitors) < 2 {
		return match.Match{}, false
	}

	home, away := comp.Competitors[0], comp.Competitors[1]
	return match.Match{
		League:    tournament,
		Kind:      match.KindTwoSided,
		Home:      CompetitorName(home),
		Away:      CompetitorName(away),
		Score:     JoinScore(home.Score.String(), away.Score.String()),
		Status:    status,
		StartTime: startTime,
	}, true
}

// JoinScore renders "home-away", or the pending sentinel when both are empty.
func JoinScore(home, away string) string {
	if home == "" && away == "" {
		return match.ScorePending
	}
	return home + "-" + away
}

// ResolveStartTime parses the competition date, then the event date. Only
// the first non-empty value is tried; a parse failure falls back directly.
func ResolveStartTime(competitionDate, eventDate string, fallback time.Time) time.Time {
	raw := competitionDate
	if raw == "" {
		raw = eventDate
	}
	if raw == "" {
		return fallback
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return fallback
}
