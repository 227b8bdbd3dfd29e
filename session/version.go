package session

// NewerVersion reports whether a version fetched from the authoritative
// store may replace the cached version. The comparison is strict: a fetch
// that is stale or ties with the cached version must be discarded, so a slow
// fetch can never clobber a newer concurrent write. Freshness is decided
// here, at commit time, never by timestamps or arrival order.
func NewerVersion(source, cached uint64) bool {
	return source > cached
}
