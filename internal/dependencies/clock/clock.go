package clock

import (
	"time"

	"cloud.google.com/go/civil"
)

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
	Today() civil.Date
}

// RealClock implements Clock using the system clock in UTC
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Today returns the current UTC calendar date
func (c *RealClock) Today() civil.Date {
	return civil.DateOf(c.Now())
}
