package wire

import "time"

// RateClass is the server-advertised configuration for one rate-limiting
// bucket, received via SNAC General/RateParamsReply (spec.md §4.6, "add
// ICBM parameter" login step; SPEC_FULL.md §5 rate info tracking).
type RateClass struct {
	ID              RateLimitClassID
	WindowSize      int64
	ClearLevel      int64
	AlertLevel      int64
	LimitLevel      int64
	DisconnectLevel int64
	MaxLevel        int64
}

type (
	RateLimitStatus  int
	RateLimitClassID uint16
)

const (
	RateLimitStatusDisconnect RateLimitStatus = iota + 1
	RateLimitStatusLimited
	RateLimitStatusAlert
	RateLimitStatusClear
)

func (s RateLimitStatus) String() string {
	switch s {
	case RateLimitStatusDisconnect:
		return "disconnect"
	case RateLimitStatusLimited:
		return "limited"
	case RateLimitStatusAlert:
		return "alert"
	case RateLimitStatusClear:
		return "clear"
	default:
		return "unknown"
	}
}

// CheckRateLimit updates the exponential moving average for a rate class
// given the elapsed time since the last SNAC in that class, and reports
// the resulting status. Grounded on the teacher's wire/rate_limit.go
// moving-average formula.
func CheckRateLimit(last, now time.Time, class RateClass, curAvg int64) (status RateLimitStatus, newAvg int64) {
	delta := now.Sub(last).Milliseconds()

	curAvg = (curAvg*(class.WindowSize-1) + delta) / class.WindowSize
	if curAvg > class.MaxLevel {
		curAvg = class.MaxLevel
	}

	switch {
	case curAvg < class.DisconnectLevel:
		return RateLimitStatusDisconnect, curAvg
	case curAvg < class.LimitLevel:
		return RateLimitStatusLimited, curAvg
	case curAvg < class.AlertLevel:
		return RateLimitStatusAlert, curAvg
	}
	return RateLimitStatusClear, curAvg
}
