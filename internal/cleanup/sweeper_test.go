package cleanup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var errBackendDown = errors.New("backend down")

// newIdleSweeper returns a sweeper whose background loop effectively never
// fires, so tests drive sweeps deterministically through RunOnce.
func newIdleSweeper(t *testing.T, cfg Config, queue *Queue, hooks Hooks) *Sweeper {
	t.Helper()
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}
	s := NewSweeper(cfg, queue, hooks)
	t.Cleanup(s.Close)
	return s
}

func TestSweepRemovesOnSuccess(t *testing.T) {
	q := NewQueue()
	q.Enqueue("s1", time.Now())
	q.Enqueue("s2", time.Now())

	var succeeded []string
	s := newIdleSweeper(t, Config{MaxRetryCount: 3}, q, Hooks{
		Cleanup:   func(context.Context, string) error { return nil },
		OnSuccess: func(id string) { succeeded = append(succeeded, id) },
	})

	s.RunOnce(context.Background())

	if q.Size() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Size())
	}
	if len(succeeded) != 2 {
		t.Fatalf("expected 2 successes, got %d", len(succeeded))
	}
}

func TestSweepRetriesThenDeadLetters(t *testing.T) {
	q := NewQueue()
	q.Enqueue("s1", time.Now())

	const maxRetry = 3
	var failures int
	var letters []DeadLetter
	s := newIdleSweeper(t, Config{MaxRetryCount: maxRetry}, q, Hooks{
		Cleanup:      func(context.Context, string) error { return errBackendDown },
		OnFailure:    func(string, uint32, error) { failures++ },
		OnDeadLetter: func(l DeadLetter) { letters = append(letters, l) },
	})

	for i := 0; i < maxRetry; i++ {
		if q.Size() != 1 {
			t.Fatalf("sweep %d: item left queue early, size=%d", i, q.Size())
		}
		s.RunOnce(context.Background())
	}

	if q.Size() != 0 {
		t.Fatalf("item not retired after %d failed sweeps, size=%d", maxRetry, q.Size())
	}
	if failures != maxRetry {
		t.Fatalf("expected %d failures, got %d", maxRetry, failures)
	}
	if len(letters) != 1 || letters[0].SessionID != "s1" || letters[0].Retries != maxRetry {
		t.Fatalf("unexpected dead letters: %+v", letters)
	}
	if got := s.DeadLetters(); len(got) != 1 || got[0].LastError != errBackendDown.Error() {
		t.Fatalf("dead letter not retained: %+v", got)
	}

	// Retired items are never retried.
	s.RunOnce(context.Background())
	if failures != maxRetry {
		t.Fatalf("retired item was retried")
	}
}

// Queue size must be bounded by the retry budget regardless of the external
// failure rate: with a deterministic failure pattern, every failing item is
// gone after MaxRetryCount sweeps and the queue never grows with total
// historical deletions.
func TestSweepQueueBoundedUnderFailures(t *testing.T) {
	q := NewQueue()

	const items = 500
	const maxRetry = 4

	// Every third item fails forever; the rest succeed on first attempt.
	fails := func(id string) bool {
		var n int
		fmt.Sscanf(id, "d-%d", &n)
		return n%3 == 0
	}

	s := newIdleSweeper(t, Config{MaxRetryCount: maxRetry, DeadLetterSize: items}, q, Hooks{
		Cleanup: func(_ context.Context, id string) error {
			if fails(id) {
				return errBackendDown
			}
			return nil
		},
	})

	for i := 0; i < items; i++ {
		q.Enqueue(fmt.Sprintf("d-%d", i), time.Now())
	}
	if q.Size() != items {
		t.Fatalf("expected %d pending, got %d", items, q.Size())
	}

	failing := 0
	for i := 0; i < items; i++ {
		if fails(fmt.Sprintf("d-%d", i)) {
			failing++
		}
	}

	for sweep := 1; sweep <= maxRetry; sweep++ {
		s.RunOnce(context.Background())
		if size := q.Size(); sweep < maxRetry && size != failing {
			t.Fatalf("after sweep %d: expected %d pending failures, got %d", sweep, failing, size)
		}
	}

	if q.Size() != 0 {
		t.Fatalf("queue not drained after %d sweeps: %d left", maxRetry, q.Size())
	}
	if got := len(s.DeadLetters()); got != failing {
		t.Fatalf("expected %d dead letters, got %d", failing, got)
	}
}

func TestSweepStopsOnCancelledContext(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 10; i++ {
		q.Enqueue(fmt.Sprintf("s%d", i), time.Now())
	}

	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	s := newIdleSweeper(t, Config{MaxRetryCount: 3}, q, Hooks{
		Cleanup: func(context.Context, string) error {
			attempts++
			if attempts == 3 {
				cancel()
			}
			return nil
		},
	})

	s.RunOnce(ctx)

	if attempts != 3 {
		t.Fatalf("expected 3 attempts before cancellation, got %d", attempts)
	}
	// Unattempted items stay queued with retry counts untouched.
	if q.Size() != 7 {
		t.Fatalf("expected 7 items still pending, got %d", q.Size())
	}
	for _, item := range q.Snapshot() {
		if item.Retries != 0 {
			t.Fatalf("unattempted item has retries=%d", item.Retries)
		}
	}
}

func TestSweeperBackgroundLoopAndClose(t *testing.T) {
	q := NewQueue()
	q.Enqueue("s1", time.Now())

	done := make(chan struct{})
	var once sync.Once
	s := NewSweeper(Config{Interval: 5 * time.Millisecond, MaxRetryCount: 3}, q, Hooks{
		Cleanup: func(context.Context, string) error { return nil },
		OnSuccess: func(string) {
			once.Do(func() { close(done) })
		},
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("background sweep never ran")
	}

	s.Close()
	s.Close() // idempotent
}

func TestDeadLetterRetentionBounded(t *testing.T) {
	q := NewQueue()
	s := newIdleSweeper(t, Config{MaxRetryCount: 1, DeadLetterSize: 8}, q, Hooks{
		Cleanup: func(context.Context, string) error { return errBackendDown },
	})

	for i := 0; i < 50; i++ {
		q.Enqueue(fmt.Sprintf("s%d", i), time.Now())
	}
	s.RunOnce(context.Background())

	letters := s.DeadLetters()
	if len(letters) != 8 {
		t.Fatalf("expected retention cap of 8, got %d", len(letters))
	}
	if letters[len(letters)-1].SessionID != "s49" {
		t.Fatalf("expected newest letter retained, got %s", letters[len(letters)-1].SessionID)
	}
}
