package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/session"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "gs-test"), mr
}

func testRecord(id string) session.Record {
	now := time.Unix(1700000000, 0).UTC()
	return session.Record{
		SessionID:       id,
		UserID:          "user-9",
		Username:        "dana",
		IsAuthenticated: true,
		Metadata:        map[string]string{"device": "cli"},
		AccessCount:     7,
		LoginTime:       now,
		LastActivity:    now.Add(2 * time.Minute),
	}
}

func TestSaveFetchRoundtrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	rec := testRecord("sess-1")
	if err := store.Save(ctx, rec, 42, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Fetch(ctx, "sess-1")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got.Version != 42 {
		t.Fatalf("version = %d, want 42", got.Version)
	}
	if got.Record.Username != "dana" || got.Record.AccessCount != 7 {
		t.Fatalf("record mismatch: %+v", got.Record)
	}
	if got.Record.Metadata["device"] != "cli" {
		t.Fatalf("metadata lost: %+v", got.Record.Metadata)
	}
	if !got.Record.LoginTime.Equal(rec.LoginTime) {
		t.Fatalf("login time = %v, want %v", got.Record.LoginTime, rec.LoginTime)
	}
}

func TestFetchMissing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Fetch(context.Background(), "no-such")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCleanupIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRecord("sess-2"), 1, 0); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Cleanup(ctx, "sess-2"); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	// Second delete of a missing key must also succeed.
	if err := store.Cleanup(ctx, "sess-2"); err != nil {
		t.Fatalf("Cleanup (repeat): %v", err)
	}

	if _, err := store.Fetch(ctx, "sess-2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after cleanup", err)
	}
}

func TestSaveRespectsTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, testRecord("sess-3"), 1, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	if _, err := store.Fetch(ctx, "sess-3"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after expiry", err)
	}
}

func TestFetchUnavailable(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, err := store.Fetch(context.Background(), "sess-4")
	if !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("err = %v, want ErrRedisUnavailable", err)
	}
}

func TestFetchCorruptPayload(t *testing.T) {
	store, mr := newTestStore(t)

	if err := mr.Set("gs-test:sess-5", "not-a-record"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err := store.Fetch(context.Background(), "sess-5")
	if !errors.Is(err, session.ErrRecordCorrupt) {
		t.Fatalf("err = %v, want ErrRecordCorrupt", err)
	}
}

func TestPing(t *testing.T) {
	store, mr := newTestStore(t)

	if _, err := store.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	mr.Close()
	if _, err := store.Ping(context.Background()); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("err = %v, want ErrRedisUnavailable", err)
	}
}
