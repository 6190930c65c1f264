package match

import "time"

// ScorePending replaces the score when neither side has one yet.
const ScorePending = "TBD"

// UnknownCompetitor names a side whose feed record carries no display name.
const UnknownCompetitor = "TBD"

type Kind string

const (
	// KindTwoSided is a head-to-head match between Home and Away.
	KindTwoSided Kind = "two_sided"
	// KindSingleSided is an informational line (bye, walkover, order of play
	// note) carried in Home. Away and Score are empty.
	KindSingleSided Kind = "single_sided"
)

// Match is one normalized competition. StartTime always carries a location.
type Match struct {
	League    string
	Kind      Kind
	Home      string
	Away      string
	Score     string
	Status    string
	StartTime time.Time
}

func (m Match) IsTwoSided() bool {
	return m.Kind == KindTwoSided
}

// HasScore reports whether a bracketed score should be shown.
func (m Match) HasScore() bool {
	return m.IsTwoSided() && m.Score != "" && m.Score != ScorePending
}
