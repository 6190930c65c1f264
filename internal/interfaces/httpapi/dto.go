package httpapi

import (
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/usecase"
)

const dayLayout = "2006-01-02"

type subscribeRequest struct {
	RecipientID string `json:"recipient_id" validate:"required,max=128"`
}

type listDTO[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type subscriptionDTO struct {
	RecipientID  string    `json:"recipient_id"`
	Channel      string    `json:"channel"`
	SubscribedAt time.Time `json:"subscribed_at"`
	Created      bool      `json:"created,omitempty"`
	Message      string    `json:"message,omitempty"`
}

type matchDTO struct {
	League    string    `json:"league"`
	Kind      string    `json:"kind"`
	Home      string    `json:"home"`
	Away      string    `json:"away,omitempty"`
	Score     string    `json:"score"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"start_time"`
}

type sourceErrorDTO struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

type todayDTO struct {
	Day          string           `json:"day"`
	Timezone     string           `json:"timezone"`
	Empty        bool             `json:"empty"`
	Matches      []matchDTO       `json:"matches"`
	Chunks       []string         `json:"chunks"`
	SourceErrors []sourceErrorDTO `json:"source_errors,omitempty"`
}

type reminderDTO struct {
	Time     string     `json:"time"`
	Timezone string     `json:"timezone"`
	NextFire *time.Time `json:"next_fire,omitempty"`
}

func toTodayDTO(result usecase.MatchdayResult, loc *time.Location) todayDTO {
	out := todayDTO{
		Day:      result.Day.Format(dayLayout),
		Timezone: loc.String(),
		Empty:    result.Empty,
		Matches:  make([]matchDTO, 0, len(result.Matches)),
		Chunks:   result.Chunks,
	}
	for _, m := range result.Matches {
		out.Matches = append(out.Matches, matchDTO{
			League:    m.League,
			Kind:      string(m.Kind),
			Home:      m.Home,
			Away:      m.Away,
			Score:     m.Score,
			Status:    m.Status,
			StartTime: m.StartTime.In(loc),
		})
	}
	for _, row := range result.SourceErrors {
		out.SourceErrors = append(out.SourceErrors, sourceErrorDTO{Source: row.Source, Message: row.Err.Error()})
	}
	return out
}
