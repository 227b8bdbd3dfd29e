package session

import (
	"errors"
	"testing"
	"time"
)

func TestEncodeDecodeEntry(t *testing.T) {
	rec := Record{
		SessionID:       "sid-1",
		UserID:          "u42",
		Username:        "alice",
		IsAuthenticated: true,
		Metadata:        map[string]string{"theme": "dark", "locale": "en"},
		AccessCount:     17,
		LoginTime:       time.Unix(1700000000, 0).UTC(),
		LastActivity:    time.Unix(1700000100, 0).UTC(),
	}

	blob, err := EncodeEntry(rec, 9)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	got, version, err := DecodeEntry(blob)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if version != 9 {
		t.Fatalf("expected version 9, got %d", version)
	}
	if got.SessionID != rec.SessionID || got.UserID != rec.UserID || got.Username != rec.Username {
		t.Fatalf("identity fields mismatch: %+v", got)
	}
	if !got.IsAuthenticated || got.AccessCount != 17 {
		t.Fatalf("flags/count mismatch: %+v", got)
	}
	if len(got.Metadata) != 2 || got.Metadata["theme"] != "dark" {
		t.Fatalf("metadata mismatch: %v", got.Metadata)
	}
	if !got.LoginTime.Equal(rec.LoginTime) || !got.LastActivity.Equal(rec.LastActivity) {
		t.Fatalf("timestamps mismatch: %v / %v", got.LoginTime, got.LastActivity)
	}
}

func TestDecodeEntryRejectsTruncatedBlob(t *testing.T) {
	blob, err := EncodeEntry(testRecord("s1"), 1)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	for _, cut := range []int{0, 1, len(blob) / 2, len(blob) - 1} {
		if _, _, err := DecodeEntry(blob[:cut]); !errors.Is(err, ErrRecordCorrupt) {
			t.Fatalf("truncation at %d not rejected: %v", cut, err)
		}
	}
}

func TestDecodeEntryRejectsUnknownFormat(t *testing.T) {
	blob, _ := EncodeEntry(testRecord("s1"), 1)
	blob[0] = 0xFF
	if _, _, err := DecodeEntry(blob); !errors.Is(err, ErrRecordCorrupt) {
		t.Fatalf("unknown format byte not rejected: %v", err)
	}
}

func TestEncodeEntryRejectsOversizedFields(t *testing.T) {
	rec := testRecord("s1")
	rec.UserID = string(make([]byte, 256))
	if _, err := EncodeEntry(rec, 0); err == nil {
		t.Fatalf("oversized userID accepted")
	}
}
