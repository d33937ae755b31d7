package costing

import (
	"errors"
	"time"
)

// ErrInvalidDateRange is returned by ValidateRange when the campaign window
// is missing or inverted. The computation helpers themselves never fail; they
// degrade to zero months so downstream totals stay finite.
var ErrInvalidDateRange = errors.New("costing: invalid date range")

// ValidateRange checks a campaign window before it reaches the calculators.
func ValidateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return ErrInvalidDateRange
	}
	if dateOf(end).Before(dateOf(start)) {
		return ErrInvalidDateRange
	}
	return nil
}

// TotalMonths converts an inclusive campaign window into a fractional month
// count under the industry 30-day-month convention.
//
// Spans shorter than 28 elapsed days stay in day granularity and are
// normalised against a 30-day month. Longer spans are walked month by month:
// any segment covering a full calendar month counts 30 days regardless of
// that month's actual length (a 31-day January and a 29-day leap February
// both count 30), while partial edge segments contribute their actual day
// counts.
//
// A zero start or end, or an inverted range, yields 0.
func TotalMonths(start, end time.Time) float64 {
	if start.IsZero() || end.IsZero() {
		return 0
	}
	start = dateOf(start)
	end = dateOf(end)
	if end.Before(start) {
		return 0
	}

	elapsed := int(end.Sub(start).Hours() / 24)
	if elapsed < 28 {
		return float64(elapsed+1) / 30
	}

	startMonth := firstOfMonth(start)
	endMonth := firstOfMonth(end)
	totalDays := 0
	for cur := startMonth; !cur.After(endMonth); cur = cur.AddDate(0, 1, 0) {
		first := cur.Equal(startMonth)
		last := cur.Equal(endMonth)
		switch {
		case first && last:
			if start.Day() == 1 && isLastDayOfMonth(end) {
				totalDays += 30
			} else {
				totalDays += end.Day() - start.Day() + 1
			}
		case first:
			if start.Day() == 1 {
				totalDays += 30
			} else {
				totalDays += daysInMonth(cur) - start.Day() + 1
			}
		case last:
			if isLastDayOfMonth(end) {
				totalDays += 30
			} else {
				totalDays += end.Day()
			}
		default:
			totalDays += 30
		}
	}
	return float64(totalDays) / 30
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func daysInMonth(t time.Time) int {
	return firstOfMonth(t).AddDate(0, 1, -1).Day()
}

func isLastDayOfMonth(t time.Time) bool {
	return t.Day() == daysInMonth(t)
}
