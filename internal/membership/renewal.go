package membership

import "time"

// RenewalDates is the computed window of a renewed term.
type RenewalDates struct {
	NewStart  time.Time
	NewExpiry time.Time
}

// CalculateRenewal extends a membership by durationMonths calendar months.
// The base date is the current expiry while it is still in the future, so
// early renewal keeps unused days; a lapsed membership restarts from today.
func CalculateRenewal(currentExpiry, today time.Time, durationMonths int) RenewalDates {
	expiry := truncateToDay(currentExpiry)
	base := truncateToDay(today)
	if expiry.After(base) {
		base = expiry
	}

	return RenewalDates{
		NewStart:  base,
		NewExpiry: AddMonthsClamped(base, durationMonths),
	}
}

// AddMonthsClamped adds calendar months, clamping to the last day of the
// target month (Jan 31 + 1 month = Feb 28/29) instead of rolling over the
// way time.AddDate does.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	lastDay := daysInMonth(firstOfTarget.Year(), firstOfTarget.Month())
	if day > lastDay {
		day = lastDay
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
