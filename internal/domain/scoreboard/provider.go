package scoreboard

import "context"

// Provider fetches the current scoreboard of one source. Implementations
// bound every call by their own timeout.
type Provider interface {
	Source() string
	FetchScoreboard(ctx context.Context) (Document, error)
}
