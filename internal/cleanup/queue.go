package cleanup

import (
	"sync"
	"time"
)

// Item is one pending external-store deletion. Retries is monotonically
// non-decreasing for as long as the item stays queued.
type Item struct {
	SessionID  string
	Retries    uint32
	EnqueuedAt time.Time
}

// DeadLetter records an item retired after exhausting its retry budget.
type DeadLetter struct {
	SessionID string
	Retries   uint32
	LastError string
	RetiredAt time.Time
}

// Queue is the pending-deletion work queue. It has its own critical section,
// independent of the session store's; the two are only ever combined inside
// delete_session-style transitions, which acquire the store section first
// and this one second. The sweep only ever touches this section, so the
// fixed order cannot deadlock.
type Queue struct {
	mu    sync.Mutex
	order []string
	items map[string]*Item
}

// NewQueue creates an empty [Queue].
func NewQueue() *Queue {
	return &Queue{
		items: make(map[string]*Item),
	}
}

// Enqueue adds a pending deletion with a zero retry count. Re-enqueueing an
// id that is already pending is a no-op; session ids are unique, so this
// only arises when a host retries a delete it already issued.
func (q *Queue) Enqueue(sessionID string, now time.Time) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.items[sessionID]; exists {
		return
	}
	q.items[sessionID] = &Item{SessionID: sessionID, EnqueuedAt: now}
	q.order = append(q.order, sessionID)
}

// Size returns the number of live pending items.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Snapshot returns the pending items in enqueue order. The sweep iterates
// this copy so external calls run without the queue lock held.
func (q *Queue) Snapshot() []Item {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Item, 0, len(q.items))
	for _, id := range q.order {
		if item, ok := q.items[id]; ok {
			out = append(out, *item)
		}
	}
	return out
}

// Ack removes a successfully cleaned item.
func (q *Queue) Ack(sessionID string) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.removeLocked(sessionID)
}

// Fail increments the retry counter in place and returns the new count.
// Returns ok=false if the item left the queue in the meantime.
func (q *Queue) Fail(sessionID string) (retries uint32, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item, exists := q.items[sessionID]
	if !exists {
		return 0, false
	}
	item.Retries++
	return item.Retries, true
}

// Retire removes an item that has exhausted its retry budget.
func (q *Queue) Retire(sessionID string) (Item, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.removeLocked(sessionID)
}

func (q *Queue) removeLocked(sessionID string) (Item, bool) {
	item, exists := q.items[sessionID]
	if !exists {
		return Item{}, false
	}
	delete(q.items, sessionID)
	q.compactLocked()
	return *item, true
}

// order grows with enqueues and only references live items; compact once
// the dead prefix dominates so Snapshot stays O(live items).
func (q *Queue) compactLocked() {
	if len(q.order) < 32 || len(q.order) < len(q.items)*2 {
		return
	}
	live := q.order[:0]
	for _, id := range q.order {
		if _, ok := q.items[id]; ok {
			live = append(live, id)
		}
	}
	q.order = live
}
