package client

import (
	"time"

	"github.com/gooscar/icq2000/wire"
)

// rateClassTracker holds the moving average state for one server
// rate-limit class (SPEC_FULL.md §5, "Rate info tracking"), reusing the
// teacher's CheckRateLimit formula (wire/rate_limit.go) rather than
// reimplementing the exponential moving average.
type rateClassTracker struct {
	class         wire.RateClass
	avg           int64
	lastCheckedAt time.Time
	status        wire.RateLimitStatus
}

// noteSend records that a SNAC belonging to classID was just sent and
// emits RateInfoChangeEvent only when the class's status actually
// crosses a boundary (Clear/Alert/Limit/Disconnect).
func (c *Client) noteSend(classID wire.RateLimitClassID) {
	tracker, ok := c.rateClasses[classID]
	if !ok {
		return
	}
	now := c.now()
	if tracker.lastCheckedAt.IsZero() {
		tracker.lastCheckedAt = now
		return
	}
	status, avg := wire.CheckRateLimit(tracker.lastCheckedAt, now, tracker.class, tracker.avg)
	tracker.avg = avg
	tracker.lastCheckedAt = now
	if status != tracker.status {
		tracker.status = status
		c.emit(RateInfoChangeEvent{Class: classID, Status: status})
	}
}
