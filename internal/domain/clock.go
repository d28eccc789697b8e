package domain

import "time"

// Clock provides the current time. Services take a Clock instead of calling
// time.Now directly so tests can pin timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
