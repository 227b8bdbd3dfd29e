// Package cleanup implements the bounded-retry deletion queue and the
// background sweep that reconciles deleted sessions against the external
// store. Items leave the queue on cleanup success or after exhausting their
// retry budget; the queue can never grow with total historical failures.
package cleanup
