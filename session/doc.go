// Package session implements the versioned in-process session store. The
// store owns the single synchronization domain for session data: entries and
// the statistics that describe them live behind one lock, so no observer can
// ever see a store/stats pair that disagree.
package session
