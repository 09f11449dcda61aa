package results

import "time"

// Window is an inclusive range of local calendar days in a fixed timezone.
// Instants are stored in UTC but the windowing policy is defined in local
// calendar terms, so membership converts to the window's location first; a
// UTC-only day comparison would misclassify results near local midnight.
type Window struct {
	Start time.Time // midnight of the first included day, in loc
	End   time.Time // midnight of the last included day, in loc
	loc   *time.Location
}

// CurrentWindow returns the trailing days-long window ending today: for the
// default 7 days that is [today-6, today] in loc. It is not aligned to any
// weekday boundary.
func CurrentWindow(now time.Time, loc *time.Location, days int) Window {
	if days < 1 {
		days = 1
	}
	today := dateOf(now.In(loc))
	return Window{
		Start: today.AddDate(0, 0, -(days - 1)),
		End:   today,
		loc:   loc,
	}
}

// Contains reports whether the instant's calendar date in the window's
// timezone falls inside the range, boundaries included.
func (w Window) Contains(instant time.Time) bool {
	d := dateOf(instant.In(w.loc))
	return !d.Before(w.Start) && !d.After(w.End)
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
