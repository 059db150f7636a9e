package control

import "time"

// WeekdayWindow builds a recovery window predicate that is active on one
// weekday between startHour (inclusive) and endHour (exclusive), in the
// local timezone of the supplied time.
//
// Deployments with a different recovery schedule supply their own
// predicate; the controller only ever asks "is the window active now".
func WeekdayWindow(weekday time.Weekday, startHour, endHour int) func(time.Time) bool {
	return func(t time.Time) bool {
		return t.Weekday() == weekday && t.Hour() >= startHour && t.Hour() < endHour
	}
}
