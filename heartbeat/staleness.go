package heartbeat

import (
	"fmt"
	"math"
	"time"
)

const (
	// DefaultMaxAge bounds how old the heartbeat timestamp may be.
	DefaultMaxAge = 60 * time.Second

	// DefaultRxTimeout bounds how long ago data may last have arrived. It is
	// roughly twice the server's own reconnect watchdog period.
	DefaultRxTimeout = 600 * time.Second
)

// Limits holds the staleness thresholds.
type Limits struct {
	MaxAge    time.Duration
	RxTimeout time.Duration
}

// DefaultLimits returns the default thresholds.
func DefaultLimits() Limits {
	return Limits{MaxAge: DefaultMaxAge, RxTimeout: DefaultRxTimeout}
}

// Condition names the health condition a record failed.
type Condition int

const (
	ConditionNone Condition = iota
	ConditionFreshness
	ConditionConnection
	ConditionReader
	ConditionRxFlow
)

func (c Condition) String() string {
	switch c {
	case ConditionNone:
		return "none"
	case ConditionFreshness:
		return "freshness"
	case ConditionConnection:
		return "connection"
	case ConditionReader:
		return "reader"
	case ConditionRxFlow:
		return "rx-flow"
	default:
		return "unknown"
	}
}

// Ages returns seconds elapsed since the record timestamp and since the last
// received data. A timestamp later than now yields +Inf for that age and sets
// the matching skew flag.
func Ages(rec Record, now time.Time) (age, rxAge float64, skew Skew) {
	n := unixSeconds(now)
	age, skew.Timestamp = elapsed(n, rec.Timestamp)
	rxAge, skew.LastRx = elapsed(n, rec.LastRx)
	return age, rxAge, skew
}

// Skew reports which timestamps were in the future.
type Skew struct {
	Timestamp bool
	LastRx    bool
}

// Any reports whether either timestamp was in the future.
func (s Skew) Any() bool {
	return s.Timestamp || s.LastRx
}

func elapsed(now, then float64) (float64, bool) {
	if then > now {
		return math.Inf(1), true
	}
	return now - then, false
}

// Assessment is the verdict on one record.
type Assessment struct {
	Healthy bool
	Failed  Condition
	Reason  string
	Age     float64
	RxAge   float64
	Skew    Skew
	Record  Record
}

// Evaluate applies the four health conditions in order and stops at the
// first failure: freshness, connection status, reader liveness, data flow.
func Evaluate(rec Record, now time.Time, limits Limits) Assessment {
	if limits.MaxAge <= 0 {
		limits.MaxAge = DefaultMaxAge
	}
	if limits.RxTimeout <= 0 {
		limits.RxTimeout = DefaultRxTimeout
	}

	age, rxAge, skew := Ages(rec, now)
	a := Assessment{Age: age, RxAge: rxAge, Skew: skew, Record: rec}

	switch {
	case age > limits.MaxAge.Seconds():
		a.Failed = ConditionFreshness
		a.Reason = fmt.Sprintf("Heartbeat file too old: age %s > %s",
			FormatAge(age), FormatAge(limits.MaxAge.Seconds()))
	case !rec.Connected:
		a.Failed = ConditionConnection
		a.Reason = fmt.Sprintf("Server reports disconnected: status %q", rec.Status)
	case !rec.ReaderAlive:
		a.Failed = ConditionReader
		a.Reason = "Reader thread not alive"
	case rxAge > limits.RxTimeout.Seconds():
		a.Failed = ConditionRxFlow
		a.Reason = fmt.Sprintf("No data received recently (zombie connection): rx age %s > %s",
			FormatAge(rxAge), FormatAge(limits.RxTimeout.Seconds()))
	default:
		a.Healthy = true
		a.Reason = fmt.Sprintf("Heartbeat fresh: age %s, rx age %s, status %s",
			FormatAge(age), FormatAge(rxAge), rec.Status)
	}

	return a
}

// FormatAge renders an age in seconds, spelling out infinite ages.
func FormatAge(seconds float64) string {
	if math.IsInf(seconds, 1) {
		return "inf (timestamp in the future)"
	}
	return fmt.Sprintf("%.1fs", seconds)
}
