// Package calendar projects the task collection onto local calendar days.
// Every comparison is made on wall-clock year/month/day in a given location,
// never on absolute instants.
package calendar

import (
	"fmt"
	"time"

	"github.com/jinzhu/now"
)

const dateLayout = "2006-01-02"

type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func DayOf(t time.Time, loc *time.Location) Day {
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

// ParseDay reads a due date. A bare date is taken as the calendar date it
// names; a timestamp is converted to loc first. Zone-less timestamps are
// local wall-clock times.
func ParseDay(s string, loc *time.Location) (Day, error) {
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		y, m, d := t.Date()
		return Day{Year: y, Month: m, Day: d}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return DayOf(t, loc), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return DayOf(t, loc), nil
		}
	}
	return Day{}, fmt.Errorf("unrecognised date %q", s)
}

func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognised month %q", s)
	}
	return t.Year(), t.Month(), nil
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Day) InMonth(year int, month time.Month) bool {
	return d.Year == year && d.Month == month
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return now.With(firstOf(year, month, time.UTC)).EndOfMonth().Day()
}

func firstOf(year int, month time.Month, loc *time.Location) time.Time {
	return time.Date(year, month, 1, 0, 0, 0, 0, loc)
}
