package matchday

import (
	"sort"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/riskibarqy/tennis-reminder/internal/domain/match"
	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
)

// ParticipantSet holds upper-cased participant names.
type ParticipantSet map[string]struct{}

// Sorted returns the names in lexical order.
func (s ParticipantSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TournamentIndex maps a tournament display name to everyone seen in it.
type TournamentIndex map[string]ParticipantSet

// BuildIndex indexes every competitor of every competition by tournament.
// A tournament gets an entry as soon as one of its competitions is seen,
// even if that competition lists nobody.
func BuildIndex(docs []scoreboard.Document) TournamentIndex {
	upper := cases.Upper(language.Und)
	index := make(TournamentIndex)

	for _, doc := range docs {
		for _, ev := range doc.Events {
			tournament := TournamentName(ev, doc.Source)
			for _, grp := range ev.Groupings {
				for _, comp := range grp.Competitions {
					participants, ok := index[tournament]
					if !ok {
						participants = make(ParticipantSet)
						index[tournament] = participants
					}
					for _, c := range comp.Competitors {
						participants[upper.String(CompetitorName(c))] = struct{}{}
					}
				}
			}
		}
	}

	return index
}

// TournamentName resolves name, then short name, then the source id.
func TournamentName(ev scoreboard.Event, source string) string {
	if ev.Name != "" {
		return ev.Name.String()
	}
	if ev.ShortName != "" {
		return ev.ShortName.String()
	}
	return source
}

// CompetitorName resolves athlete, then generic, then team display name.
func CompetitorName(c scoreboard.Competitor) string {
	if c.Athlete.DisplayName != "" {
		return c.Athlete.DisplayName.String()
	}
	if c.DisplayName != "" {
		return c.DisplayName.String()
	}
	if c.Team.DisplayName != "" {
		return c.Team.DisplayName.String()
	}
	return match.UnknownCompetitor
}
