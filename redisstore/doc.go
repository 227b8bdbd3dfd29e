// Package redisstore provides a Redis-backed implementation of the
// goSession Database collaborator: the authoritative store sessions are
// refreshed from and cleaned up against. Records travel as the compact
// binary encoding from the session package, with the source version inside
// the payload so a fetch is a single round-trip.
package redisstore
