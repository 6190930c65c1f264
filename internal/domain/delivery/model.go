package delivery

import "time"

type Status string

const (
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of delivering one fire to one recipient.
type Result struct {
	Recipient string
	Status    Status
	// Chunks counts the chunks accepted by the sink before any failure.
	Chunks int
	Error  string
	At     time.Time
}

// Report aggregates one fire. Results keep subscriber snapshot order.
type Report struct {
	FireID      string
	PlannedAt   time.Time
	Matches     int
	SkippedFire bool
	Results     []Result
	Sent        int
	Failed      int
}

// Tally recomputes Sent and Failed from Results.
func (r *Report) Tally() {
	r.Sent, r.Failed = 0, 0
	for _, res := range r.Results {
		switch res.Status {
		case StatusSent:
			r.Sent++
		case StatusFailed:
			r.Failed++
		}
	}
}
