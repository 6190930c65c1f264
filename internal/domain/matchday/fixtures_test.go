package matchday

import (
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func athlete(name, score string) scoreboard.Competitor {
	return scoreboard.Competitor{
		Athlete: scoreboard.Athlete{DisplayName: scoreboard.Text(name)},
		Score:   scoreboard.Score(score),
	}
}

func competition(date, status string, competitors ...scoreboard.Competitor) scoreboard.Competition {
	return scoreboard.Competition{
		Date:        scoreboard.Timestamp(date),
		Competitors: competitors,
		Status:      scoreboard.Status{Type: scoreboard.StatusType{Description: scoreboard.Text(status)}},
	}
}

func event(name string, comps ...scoreboard.Competition) scoreboard.Event {
	return scoreboard.Event{
		Name:      scoreboard.Text(name),
		Groupings: []scoreboard.Grouping{{Competitions: comps}},
	}
}

func atpDocument() scoreboard.Document {
	return scoreboard.Document{
		Source: "ATP",
		Events: []scoreboard.Event{
			event("Shanghai Masters",
				competition("2026-10-19T09:30Z", "In Progress", athlete("Jannik Sinner", "6"), athlete("Ben Shelton", "4")),
				competition("2026-10-19T11:00Z", "Scheduled", athlete("Taylor Fritz", ""), athlete("Holger Rune", "")),
			),
			event("Stockholm Open",
				competition("2026-10-19T10:00Z", "Scheduled", athlete("Casper Ruud", ""), athlete("Tommy Paul", "")),
			),
		},
	}
}

func wtaDocument() scoreboard.Document {
	return scoreboard.Document{
		Source: "WTA",
		Events: []scoreboard.Event{
			event("Wuhan Open",
				competition("2026-10-19T06:00Z", "Final", athlete("Aryna Sabalenka", "6"), athlete("Coco Gauff", "3")),
			),
		},
	}
}
