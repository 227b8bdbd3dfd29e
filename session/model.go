package session

import "time"

// Record defines a public type used by goSession APIs.
//
// Record instances handed to callers are always deep copies of the store's
// live entry; mutating a returned Record never affects stored state.
type Record struct {
	SessionID string
	UserID    string
	Username  string

	IsAuthenticated bool
	Metadata        map[string]string

	AccessCount  uint64
	LoginTime    time.Time
	LastActivity time.Time
}

// Clone returns a deep copy of the record, including the metadata map.
func (r Record) Clone() Record {
	out := r
	if r.Metadata != nil {
		out.Metadata = make(map[string]string, len(r.Metadata))
		for k, v := range r.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Stats defines a public type used by goSession APIs.
//
// Stats is a point-in-time copy of the store's counters. ActiveSessions
// always equals the live cardinality of the store at the moment the copy was
// taken; both are read in the same critical section.
type Stats struct {
	TotalSessions  uint64
	ActiveSessions uint64
	CacheHits      uint64
	CacheMisses    uint64
	FailedCleanups uint64
}
