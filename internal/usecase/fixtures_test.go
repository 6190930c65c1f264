package usecase

import (
	"context"
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// 10:00 IST on 2026-10-19.
var fixedNow = time.Date(2026, 10, 19, 4, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func scoreboardDoc(source, tournament string, pairs ...[2]string) scoreboard.Document {
	comps := make([]scoreboard.Competition, 0, len(pairs))
	for _, pair := range pairs {
		comps = append(comps, scoreboard.Competition{
			Date: "2026-10-19T09:30Z",
			Competitors: []scoreboard.Competitor{
				{Athlete: scoreboard.Athlete{DisplayName: scoreboard.Text(pair[0])}},
				{Athlete: scoreboard.Athlete{DisplayName: scoreboard.Text(pair[1])}},
			},
		})
	}
	return scoreboard.Document{
		Source: source,
		Events: []scoreboard.Event{{
			Name:      scoreboard.Text(tournament),
			Groupings: []scoreboard.Grouping{{Competitions: comps}},
		}},
	}
}

type panicProvider struct{ source string }

func (p panicProvider) Source() string { return p.source }

func (p panicProvider) FetchScoreboard(context.Context) (scoreboard.Document, error) {
	panic("decoder exploded")
}

type fetchRecorder struct {
	pipelines []string
}

func (r *fetchRecorder) ObservePipeline(trigger string, _ time.Duration, _ int) {
	r.pipelines = append(r.pipelines, trigger)
}

func (r *fetchRecorder) ObserveFetch(string, time.Duration, error) {}
