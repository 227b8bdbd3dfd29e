package cleanup

import (
	"fmt"
	"testing"
	"time"
)

func TestQueueEnqueueIdempotent(t *testing.T) {
	q := NewQueue()
	now := time.Now()

	q.Enqueue("s1", now)
	q.Enqueue("s1", now)

	if got := q.Size(); got != 1 {
		t.Fatalf("expected size 1, got %d", got)
	}
}

func TestQueueFailMonotonicRetries(t *testing.T) {
	q := NewQueue()
	q.Enqueue("s1", time.Now())

	for want := uint32(1); want <= 4; want++ {
		retries, ok := q.Fail("s1")
		if !ok {
			t.Fatalf("item disappeared")
		}
		if retries != want {
			t.Fatalf("expected retries %d, got %d", want, retries)
		}
	}

	if _, ok := q.Fail("missing"); ok {
		t.Fatalf("Fail on missing item reported ok")
	}
}

func TestQueueAckRemoves(t *testing.T) {
	q := NewQueue()
	q.Enqueue("s1", time.Now())
	q.Enqueue("s2", time.Now())

	item, ok := q.Ack("s1")
	if !ok || item.SessionID != "s1" {
		t.Fatalf("ack failed: %+v ok=%v", item, ok)
	}
	if q.Size() != 1 {
		t.Fatalf("expected size 1 after ack, got %d", q.Size())
	}
	if _, ok := q.Ack("s1"); ok {
		t.Fatalf("double ack reported ok")
	}
}

func TestQueueSnapshotPreservesEnqueueOrder(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 5; i++ {
		q.Enqueue(fmt.Sprintf("s%d", i), time.Now())
	}
	q.Ack("s2")

	snap := q.Snapshot()
	want := []string{"s0", "s1", "s3", "s4"}
	if len(snap) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(snap))
	}
	for i, id := range want {
		if snap[i].SessionID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, snap[i].SessionID)
		}
	}
}

func TestQueueOrderCompaction(t *testing.T) {
	q := NewQueue()
	for i := 0; i < 1000; i++ {
		id := fmt.Sprintf("s%d", i)
		q.Enqueue(id, time.Now())
		q.Ack(id)
	}

	if q.Size() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Size())
	}
	if len(q.order) > 64 {
		t.Fatalf("order slice not compacted: %d stale entries", len(q.order))
	}
}
