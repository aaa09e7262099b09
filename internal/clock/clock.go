// Package clock provides the fixed UTC+7 civil calendar every streak and
// attendance decision is anchored to, independent of the host timezone.
package clock

import "time"

const utcOffsetHours = 7

var vietnamZone = time.FixedZone("UTC+7", utcOffsetHours*60*60)

type Clock struct {
	now func() time.Time
}

// New returns a clock reading the wall clock.
func New() *Clock {
	return &Clock{now: time.Now}
}

// NewFixed returns a clock frozen at the given instant, for tests.
func NewFixed(instant time.Time) *Clock {
	return &Clock{now: func() time.Time { return instant }}
}

func (c *Clock) Now() time.Time {
	return c.now()
}

// Today returns the current civil date as YYYY-MM-DD.
func (c *Clock) Today() string {
	return c.now().In(vietnamZone).Format("2006-01-02")
}

// Yesterday returns the previous civil date as YYYY-MM-DD.
func (c *Clock) Yesterday() string {
	return c.now().In(vietnamZone).AddDate(0, 0, -1).Format("2006-01-02")
}

// CurrentMonth returns the current civil month as YYYY-MM.
func (c *Clock) CurrentMonth() string {
	return c.now().In(vietnamZone).Format("2006-01")
}

// MonthOf extracts the YYYY-MM prefix of a civil date string.
func MonthOf(date string) string {
	if len(date) < 7 {
		return date
	}
	return date[:7]
}
