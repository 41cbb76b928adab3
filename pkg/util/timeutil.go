package util

import "time"

// NowUTC returns the current time in UTC. Components that need a fixed clock in tests keep
// it in a func field defaulting to NowUTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ElapsedMillis reports whole milliseconds since start.
func ElapsedMillis(start time.Time) int64 {
	return time.Since(start).Milliseconds()
}
