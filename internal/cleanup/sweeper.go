package cleanup

import (
	"context"
	"sync"
	"time"
)

// Config controls sweep cadence and retry budget.
type Config struct {
	Interval       time.Duration
	MaxRetryCount  uint32
	CallTimeout    time.Duration
	DeadLetterSize int
}

// Hooks are the sweeper's outbound edges. Cleanup is the fallible external
// call; the On* callbacks let the owner keep its own counters and audit
// stream in step with queue transitions. Callbacks may be nil.
type Hooks struct {
	Cleanup      func(ctx context.Context, sessionID string) error
	OnSuccess    func(sessionID string)
	OnFailure    func(sessionID string, retries uint32, err error)
	OnDeadLetter func(letter DeadLetter)
}

// Sweeper drains the queue on a fixed interval. Per-item state machine:
// Pending(retry=0) → Pending(retry=k) → removed on success, or retired to
// the dead-letter list once retries reach MaxRetryCount. External calls run
// with no lock held and are bounded by CallTimeout.
type Sweeper struct {
	cfg   Config
	queue *Queue
	hooks Hooks

	mu      sync.Mutex
	letters []DeadLetter

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSweeper creates a sweeper and starts its background loop.
func NewSweeper(cfg Config, queue *Queue, hooks Hooks) *Sweeper {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.MaxRetryCount == 0 {
		cfg.MaxRetryCount = 1
	}
	if cfg.DeadLetterSize <= 0 {
		cfg.DeadLetterSize = 128
	}

	s := &Sweeper{
		cfg:   cfg,
		queue: queue,
		hooks: hooks,
		done:  make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx)
		case <-s.done:
			cancel()
			return
		}
	}
}

// RunOnce performs a single sweep pass: one external cleanup attempt per
// currently pending item. Work is O(current queue size). A cancelled ctx
// stops the pass between items; items not yet attempted simply stay queued
// with their retry counts untouched.
func (s *Sweeper) RunOnce(ctx context.Context) {
	for _, item := range s.queue.Snapshot() {
		if ctx.Err() != nil {
			return
		}

		err := s.attempt(ctx, item.SessionID)
		if err == nil {
			if _, ok := s.queue.Ack(item.SessionID); ok && s.hooks.OnSuccess != nil {
				s.hooks.OnSuccess(item.SessionID)
			}
			continue
		}

		retries, ok := s.queue.Fail(item.SessionID)
		if !ok {
			continue
		}
		if s.hooks.OnFailure != nil {
			s.hooks.OnFailure(item.SessionID, retries, err)
		}

		if retries >= s.cfg.MaxRetryCount {
			if _, ok := s.queue.Retire(item.SessionID); ok {
				letter := DeadLetter{
					SessionID: item.SessionID,
					Retries:   retries,
					LastError: err.Error(),
					RetiredAt: time.Now(),
				}
				s.record(letter)
				if s.hooks.OnDeadLetter != nil {
					s.hooks.OnDeadLetter(letter)
				}
			}
		}
	}
}

func (s *Sweeper) attempt(ctx context.Context, sessionID string) error {
	if s.hooks.Cleanup == nil {
		return nil
	}
	if s.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.CallTimeout)
		defer cancel()
	}
	return s.hooks.Cleanup(ctx, sessionID)
}

func (s *Sweeper) record(letter DeadLetter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.letters = append(s.letters, letter)
	if len(s.letters) > s.cfg.DeadLetterSize {
		s.letters = s.letters[len(s.letters)-s.cfg.DeadLetterSize:]
	}
}

// DeadLetters returns a copy of the retained dead letters, oldest first.
func (s *Sweeper) DeadLetters() []DeadLetter {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]DeadLetter, len(s.letters))
	copy(out, s.letters)
	return out
}

// Close stops the background loop and waits for an in-flight pass to finish.
// Safe to call more than once.
func (s *Sweeper) Close() {
	if s == nil {
		return
	}
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}
