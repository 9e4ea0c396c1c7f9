package support

import "time"

// Clock supplies "now" and the venue time zone every day boundary is taken in.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// Today returns the current instant in the configured location.
func (c Clock) Today() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return now().In(c.Loc())
}

func (c Clock) Loc() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}
