package matchday

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/riskibarqy/tennis-reminder/internal/domain/match"
	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
)

func TestFilterToday(t *testing.T) {
	Convey("Given a match at 23:59:59 reference-local time", t, func() {
		late := match.Match{
			League: "Shanghai Masters", Kind: match.KindTwoSided, Home: "Jannik Sinner", Away: "Ben Shelton",
			StartTime: time.Date(2026, 10, 19, 23, 59, 59, 0, ist),
		}
		favorites := TournamentSet{"Shanghai Masters": {}}

		Convey("When now is the same calendar date", func() {
			now := time.Date(2026, 10, 19, 8, 0, 0, 0, ist)

			Convey("Then it is kept", func() {
				So(FilterToday([]match.Match{late}, favorites, ist, now), ShouldHaveLength, 1)
			})
		})

		Convey("When now crosses into the next date", func() {
			now := time.Date(2026, 10, 20, 0, 0, 1, 0, ist)

			Convey("Then it is dropped", func() {
				So(FilterToday([]match.Match{late}, favorites, ist, now), ShouldBeEmpty)
			})
		})

		Convey("When the league is not a favorite", func() {
			now := time.Date(2026, 10, 19, 8, 0, 0, 0, ist)

			Convey("Then it is dropped", func() {
				So(FilterToday([]match.Match{late}, TournamentSet{"Basel": {}}, ist, now), ShouldBeEmpty)
			})
		})
	})

	Convey("Given a UTC timestamp that is tomorrow in the reference zone", t, func() {
		m := match.Match{League: "Basel", StartTime: time.Date(2026, 10, 19, 19, 0, 0, 0, time.UTC)}
		now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

		Convey("Then dates are compared in the reference zone", func() {
			So(FilterToday([]match.Match{m}, TournamentSet{"Basel": {}}, ist, now), ShouldBeEmpty)
			So(FilterToday([]match.Match{m}, TournamentSet{"Basel": {}}, time.UTC, now), ShouldHaveLength, 1)
		})
	})
}

func TestSelectToday(t *testing.T) {
	Convey("Given ATP and WTA documents", t, func() {
		docs := []scoreboard.Document{atpDocument(), wtaDocument()}
		now := time.Date(2026, 10, 19, 10, 0, 0, 0, ist)

		Convey("When favorites include Sinner", func() {
			first := SelectToday(docs, []string{"SINNER", "DJOKOVIC"}, ist, now)
			second := SelectToday(docs, []string{"SINNER", "DJOKOVIC"}, ist, now)

			Convey("Then only today's Shanghai matches remain", func() {
				So(first, ShouldHaveLength, 2)
				for _, m := range first {
					So(m.League, ShouldEqual, "Shanghai Masters")
				}
			})

			Convey("Then repeated runs are identical", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When only the WTA document survived", func() {
			got := SelectToday([]scoreboard.Document{wtaDocument()}, []string{"sabalenka"}, ist, now)

			Convey("Then its matches are still selected", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].Home, ShouldEqual, "Aryna Sabalenka")
			})
		})

		Convey("When no favorites are configured", func() {
			Convey("Then nothing is selected", func() {
				So(SelectToday(docs, nil, ist, now), ShouldBeEmpty)
			})
		})
	})
}
