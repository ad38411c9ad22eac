// Package scheduling computes valid pickup/dropoff dates for a route's
// weekday, lead-time, and SLA constraints, and keeps the pair in sync
// when either side changes.
package scheduling

import (
	"errors"
	"time"
)

// DefaultSearchHorizonDays bounds the forward day-by-day search.
const DefaultSearchHorizonDays = 42

// DefaultMinLeadDays is the minimum gap between today and the earliest
// schedulable date.
const DefaultMinLeadDays = 1

// ErrNoDateInHorizon is returned when no allowed date exists within the
// search horizon.
var ErrNoDateInHorizon = errors.New("no allowed date within search horizon")

// Window is a resolved pickup/dropoff date pair.
type Window struct {
	Pickup  time.Time
	Dropoff time.Time
}

// Normalize pins t to local noon. Business dates are stored at noon so
// UTC serialization cannot shift them across a day boundary.
func Normalize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, t.Location())
}

// WeekdayAllowed reports whether d's weekday is in the allowed set.
// An empty set allows every weekday.
func WeekdayAllowed(weekdays []time.Weekday, d time.Time) bool {
	if len(weekdays) == 0 {
		return true
	}
	wd := d.Weekday()
	for _, allowed := range weekdays {
		if wd == allowed {
			return true
		}
	}
	return false
}

// ValidPickup reports whether d is a valid pickup date: at least
// leadDays after today and on an allowed weekday.
func ValidPickup(weekdays []time.Weekday, leadDays int, today, d time.Time) bool {
	if d.IsZero() {
		return false
	}
	if daysBetween(today, d) < normalizeLead(leadDays) {
		return false
	}
	return WeekdayAllowed(weekdays, d)
}

// ValidDropoff reports whether d is a valid dropoff date: at least
// slaDays after the pickup, at least leadDays after today, and on an
// allowed weekday.
func ValidDropoff(weekdays []time.Weekday, slaDays, leadDays int, today, pickup, d time.Time) bool {
	if d.IsZero() || pickup.IsZero() {
		return false
	}
	if daysBetween(today, d) < normalizeLead(leadDays) {
		return false
	}
	if daysBetween(pickup, d) < slaDays {
		return false
	}
	return WeekdayAllowed(weekdays, d)
}

// NextAllowed searches forward day-by-day from `from` (inclusive) for
// the next date on an allowed weekday, bounded to horizonDays. The
// boolean is false when the horizon is exhausted.
func NextAllowed(weekdays []time.Weekday, from time.Time, horizonDays int) (time.Time, bool) {
	if horizonDays <= 0 {
		horizonDays = DefaultSearchHorizonDays
	}
	d := Normalize(from)
	for i := 0; i < horizonDays; i++ {
		if WeekdayAllowed(weekdays, d) {
			return d, true
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Time{}, false
}

// ResolveWindow normalizes and reconciles a pickup/dropoff pair.
//
// An invalid pickup snaps forward to the next allowed date. The dropoff
// is recomputed as the next allowed date at least slaDays after the
// pickup, except when the caller has touched it and its current value
// remains valid against the (possibly moved) pickup.
func ResolveWindow(weekdays []time.Weekday, slaDays, leadDays int, today, pickup, dropoff time.Time, dropoffTouched bool, horizonDays int) (Window, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultSearchHorizonDays
	}
	lead := normalizeLead(leadDays)
	today = Normalize(today)

	anchor := today.AddDate(0, 0, lead)
	if !pickup.IsZero() {
		pickup = Normalize(pickup)
		if daysBetween(today, pickup) >= lead {
			anchor = pickup
		}
	}

	resolvedPickup := pickup
	if !ValidPickup(weekdays, lead, today, resolvedPickup) {
		next, ok := NextAllowed(weekdays, anchor, horizonDays)
		if !ok {
			return Window{}, ErrNoDateInHorizon
		}
		resolvedPickup = next
	}

	if !dropoff.IsZero() {
		dropoff = Normalize(dropoff)
	}
	if dropoffTouched && ValidDropoff(weekdays, slaDays, lead, today, resolvedPickup, dropoff) {
		return Window{Pickup: resolvedPickup, Dropoff: dropoff}, nil
	}

	earliest := resolvedPickup.AddDate(0, 0, slaDays)
	if daysBetween(today, earliest) < lead {
		earliest = today.AddDate(0, 0, lead)
	}
	resolvedDropoff, ok := NextAllowed(weekdays, earliest, horizonDays)
	if !ok {
		return Window{}, ErrNoDateInHorizon
	}

	return Window{Pickup: resolvedPickup, Dropoff: resolvedDropoff}, nil
}

func normalizeLead(leadDays int) int {
	if leadDays < DefaultMinLeadDays {
		return DefaultMinLeadDays
	}
	return leadDays
}

// daysBetween returns whole calendar days from a to b. The dates are
// re-anchored at UTC midnight so a DST transition inside the span
// cannot shorten it to a fractional day.
func daysBetween(a, b time.Time) int {
	ua := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	ub := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}
