package reports

import "time"

// Window is an inclusive time range at millisecond precision; session
// membership is decided by clock-in alone.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow covers local midnight up to (but not including) the next
// midnight for the day containing t.
func DayWindow(t time.Time) Window {
	year, month, day := t.Date()
	start := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 0, 1).Add(-time.Millisecond)}
}

// WeekWindow covers Sunday 00:00:00.000 through the following Saturday
// 23:59:59.999 for the week containing t. Weeks start on Sunday; this
// is a fixed convention, not a setting.
func WeekWindow(t time.Time) Window {
	start := weekStart(t)
	return Window{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Millisecond)}
}

// MonthWindow covers the first of the month through the last moment of
// its final day.
func MonthWindow(t time.Time) Window {
	year, month, _ := t.Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Millisecond)}
}

// WeekID is the natural key of a week: its Sunday's date.
func WeekID(t time.Time) string {
	return weekStart(t).Format("2006-01-02")
}

func weekStart(t time.Time) time.Time {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, t.Location())
	return midnight.AddDate(0, 0, -int(midnight.Weekday()))
}

// weekdayIndex buckets a timestamp into 0..6 with Sunday at 0.
func weekdayIndex(t time.Time) int {
	return int(t.Weekday())
}
