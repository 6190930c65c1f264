package matchday

import (
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/domain/match"
	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
)

// SelectToday runs index, favorite detection, normalization and the date
// filter over docs. now is used both as the reference day and as the
// fallback start time of records without a usable timestamp.
func SelectToday(docs []scoreboard.Document, favorites []string, loc *time.Location, now time.Time) []match.Match {
	tournaments := DetectFavorites(BuildIndex(docs), favorites)
	if len(tournaments) == 0 {
		return []match.Match{}
	}
	return FilterToday(NormalizeAt(docs, now.UTC()), tournaments, loc, now)
}
