package matchday

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TournamentSet is a set of tournament display names.
type TournamentSet map[string]struct{}

func (s TournamentSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// DetectFavorites returns the tournaments where any favorite appears as a
// case-insensitive substring of the joined participant names. Blank
// favorites are ignored; no favorites means no tournaments.
func DetectFavorites(index TournamentIndex, favorites []string) TournamentSet {
	out := make(TournamentSet)

	upper := cases.Upper(language.Und)
	needles := make([]string, 0, len(favorites))
	for _, fav := range favorites {
		fav = strings.TrimSpace(fav)
		if fav == "" {
			continue
		}
		needles = append(needles, upper.String(fav))
	}
	if len(needles) == 0 {
		return out
	}

	for tournament, participants := range index {
		joined := strings.Join(participants.Sorted(), " ")
		for _, needle := range needles {
			if strings.Contains(joined, needle) {
				out[tournament] = struct{}{}
				break
			}
		}
	}

	return out
}
