package datetime

import "fmt"

const (
	secondsPerMinute   = 60
	secondsPerHour     = 3600
	secondsPerDay      = 86400
	secondsPerYear     = 31536000
	secondsPerLeapYear = 31622400

	originYear = 1970
)

// DateTime holds calendar fields for a UTC instant. Month and Day are
// 1-based, Hour/Minute/Second are 0-based, Weekday is 0-based starting
// at Sunday.
type DateTime struct {
	Year    int
	Month   int
	Day     int
	Hour    int
	Minute  int
	Second  int
	Weekday int
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	if year%4 != 0 {
		return false
	}
	if year%100 != 0 {
		return true
	}
	return year%400 == 0
}

// DaysInMonth returns the number of days in month (1-12) of year.
func DaysInMonth(month, year int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	}
	if IsLeapYear(year) {
		return 29
	}
	return 28
}

func leapYearsBefore(year int) int {
	year--
	return year/4 - year/100 + year/400
}

// yearStart returns the epoch second at which year begins.
func yearStart(year int) int64 {
	leaps := leapYearsBefore(year) - leapYearsBefore(originYear)
	return int64(leaps)*secondsPerLeapYear + int64(year-originYear-leaps)*secondsPerYear
}

// Year returns the calendar year containing the given epoch second.
func Year(timestamp int64) int {
	year := originYear + int(timestamp/secondsPerYear)
	for yearStart(year) > timestamp {
		year--
	}
	return year
}

// Parse decomposes an epoch-seconds timestamp (UTC) into calendar fields.
func Parse(timestamp int64) DateTime {
	var d DateTime

	d.Year = Year(timestamp)
	acc := yearStart(d.Year)

	for m := 1; m <= 12; m++ {
		secondsInMonth := int64(DaysInMonth(m, d.Year)) * secondsPerDay
		if acc+secondsInMonth > timestamp {
			d.Month = m
			break
		}
		acc += secondsInMonth
	}

	for day := 1; day <= DaysInMonth(d.Month, d.Year); day++ {
		if acc+secondsPerDay > timestamp {
			d.Day = day
			break
		}
		acc += secondsPerDay
	}

	d.Hour = int(timestamp / secondsPerHour % 24)
	d.Minute = int(timestamp / secondsPerMinute % 60)
	d.Second = int(timestamp % 60)
	d.Weekday = Weekday(timestamp)

	return d
}

// Weekday returns the day of week (0 = Sunday) for an epoch second.
// The epoch itself, Jan 1 1970, was a Thursday.
func Weekday(timestamp int64) int {
	return int((timestamp/secondsPerDay + 4) % 7)
}

// Unix is the inverse of Parse: it recomposes the epoch second from the
// calendar fields, ignoring Weekday.
func (d DateTime) Unix() int64 {
	timestamp := yearStart(d.Year)

	for m := 1; m < d.Month; m++ {
		timestamp += int64(DaysInMonth(m, d.Year)) * secondsPerDay
	}

	timestamp += int64(d.Day-1) * secondsPerDay
	timestamp += int64(d.Hour) * secondsPerHour
	timestamp += int64(d.Minute) * secondsPerMinute
	timestamp += int64(d.Second)

	return timestamp
}

// String formats the instant as "YYYY/M/DD HH:MM:SS".
func (d DateTime) String() string {
	return fmt.Sprintf("%d/%d/%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}
