package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func TestNextFireIn_RollsOverWhenTargetPassed(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 18, 42, 0, 0, ist)
	got := NextFireIn(now, 18, 41, ist)
	want := 23*time.Hour + 59*time.Minute
	if got != want {
		t.Fatalf("unexpected wait: got=%s want=%s", got, want)
	}
}

func TestNextFireIn_TargetEqualToNowRollsToTomorrow(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 18, 41, 0, 0, ist)
	if got := NextFireIn(now, 18, 41, ist); got != 24*time.Hour {
		t.Fatalf("expected a full day wait, got=%s", got)
	}
}

func TestNextFireIn_TargetLaterToday(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 18, 40, 30, 0, ist)
	if got := NextFireIn(now, 18, 41, ist); got != 30*time.Second {
		t.Fatalf("unexpected wait: got=%s", got)
	}
}

func TestNextFireAt_UsesReferenceZone(t *testing.T) {
	t.Parallel()

	// 13:00 UTC is 18:30 IST, so 18:41 IST is still ahead today.
	now := time.Date(2026, 10, 19, 13, 0, 0, 0, time.UTC)
	next := NextFireAt(now, 18, 41, ist)
	if next.Day() != 19 || next.Hour() != 18 || next.Minute() != 41 {
		t.Fatalf("unexpected next fire: %s", next)
	}
	if next.Location() != ist {
		t.Fatalf("expected next fire in reference zone, got %s", next.Location())
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []Config{
		{Hour: 24, Location: ist},
		{Hour: 1, Minute: 60, Location: ist},
		{Hour: 1},
		{Hour: 1, Location: ist, Buffer: -time.Second},
	}
	for i, cfg := range cases {
		if err := cfg.Validate(); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
	next     []time.Time
}

func (o *recordingObserver) ObserveFire(outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
}

func (o *recordingObserver) SetNextFire(at time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next = append(o.next, at)
}

func TestDaily_RunContinuesAfterFailures(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 10, 19, 18, 42, 0, 0, ist)
	observer := &recordingObserver{}
	d, err := NewDaily(Config{Hour: 18, Minute: 41, Location: ist, Buffer: DefaultBuffer}, logging.NewNop(),
		WithObserver(observer),
		WithClock(func() time.Time { return clock }),
	)
	if err != nil {
		t.Fatalf("new daily: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fires := 0
	var waits []time.Duration
	d.newTimer = func(wait time.Duration) (<-chan time.Time, func() bool) {
		waits = append(waits, wait)
		if fires >= 3 {
			return nil, func() bool { return true }
		}
		ch := make(chan time.Time, 1)
		clock = clock.Add(wait)
		ch <- clock
		return ch, func() bool { return false }
	}

	var planned []time.Time
	job := func(_ context.Context, at time.Time) error {
		fires++
		planned = append(planned, at)
		switch fires {
		case 1:
			return errors.New("feed down")
		case 2:
			panic("boom")
		default:
			cancel()
			return nil
		}
	}

	if err := d.Run(ctx, job); err != nil {
		t.Fatalf("run: %v", err)
	}

	if fires != 3 {
		t.Fatalf("expected 3 fires, got %d", fires)
	}
	for i := 1; i < len(planned); i++ {
		if gap := planned[i].Sub(planned[i-1]); gap != 24*time.Hour {
			t.Fatalf("fire %d: expected daily cadence, got gap=%s", i, gap)
		}
	}
	if waits[0] != 23*time.Hour+59*time.Minute {
		t.Fatalf("unexpected first wait: %s", waits[0])
	}
	if waits[1] != DefaultBuffer {
		t.Fatalf("expected post-fire buffer, got %s", waits[1])
	}

	observer.mu.Lock()
	defer observer.mu.Unlock()
	want := []string{"error", "panic", "ok"}
	if len(observer.outcomes) != len(want) {
		t.Fatalf("unexpected outcomes: %v", observer.outcomes)
	}
	for i := range want {
		if observer.outcomes[i] != want[i] {
			t.Fatalf("outcome %d: got=%s want=%s", i, observer.outcomes[i], want[i])
		}
	}
	if d.NextFire().IsZero() {
		t.Fatalf("expected next fire to be recorded")
	}
}

func TestDaily_RunReArmsWhenWallClockIsBehind(t *testing.T) {
	t.Parallel()

	clock := time.Date(2026, 10, 19, 18, 0, 0, 0, ist)
	d, err := NewDaily(Config{Hour: 18, Minute: 41, Location: ist}, logging.NewNop(),
		WithClock(func() time.Time { return clock }),
	)
	if err != nil {
		t.Fatalf("new daily: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var waits []time.Duration
	d.newTimer = func(wait time.Duration) (<-chan time.Time, func() bool) {
		waits = append(waits, wait)
		ch := make(chan time.Time, 1)
		switch len(waits) {
		case 1:
			// Wall clock stepped back ten minutes while the timer ran.
			clock = clock.Add(wait - 10*time.Minute)
		case 2:
			clock = clock.Add(wait)
		default:
			return nil, func() bool { return true }
		}
		ch <- clock
		return ch, func() bool { return false }
	}

	var planned []time.Time
	job := func(_ context.Context, at time.Time) error {
		planned = append(planned, at)
		if clock.Before(at) {
			t.Errorf("job fired early: now=%s planned=%s", clock, at)
		}
		cancel()
		return nil
	}

	if err := d.Run(ctx, job); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(planned) != 1 {
		t.Fatalf("expected one fire, got %d", len(planned))
	}
	if want := time.Date(2026, 10, 19, 18, 41, 0, 0, ist); !planned[0].Equal(want) {
		t.Fatalf("unexpected planned fire %s", planned[0])
	}
	if len(waits) < 2 || waits[0] != 41*time.Minute || waits[1] != 10*time.Minute {
		t.Fatalf("expected a re-arm for the remaining ten minutes, got waits=%v", waits)
	}
}

func TestDaily_RunStopsOnCancel(t *testing.T) {
	t.Parallel()

	d, err := NewDaily(Config{Hour: 6, Minute: 0, Location: time.UTC}, logging.NewNop())
	if err != nil {
		t.Fatalf("new daily: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx, func(context.Context, time.Time) error {
			t.Errorf("job must not run")
			return nil
		})
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("scheduler did not stop")
	}
}

func TestDaily_RunRequiresJob(t *testing.T) {
	t.Parallel()

	d, err := NewDaily(Config{Hour: 6, Location: time.UTC}, logging.NewNop())
	if err != nil {
		t.Fatalf("new daily: %v", err)
	}
	if err := d.Run(context.Background(), nil); err == nil {
		t.Fatalf("expected error for nil job")
	}
}
