// Package dateinfo resolves a calendar date into every derived
// representation the pipeline needs: URL path segments, the archive
// timestamp prefix, and display strings.
package dateinfo

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// Earliest publication date with a retrievable front-page scan.
var MinDate = Date{Year: 2012, Month: 7, Day: 1}

var (
	// ErrInvalidFormat reports a date string that is not YYYY-MM-DD.
	ErrInvalidFormat = errors.New("invalid date format")
	// ErrOutOfRange reports a date before the archive's earliest issue.
	ErrOutOfRange = errors.New("date out of range")
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Date is a calendar day. The zero value is not a valid date.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Parse converts a YYYY-MM-DD string into a Date. It fails with
// ErrInvalidFormat for malformed input and ErrOutOfRange for dates
// earlier than MinDate. No network or filesystem access occurs here.
func Parse(value string) (Date, error) {
	if !datePattern.MatchString(value) {
		return Date{}, fmt.Errorf("%w: %q (want YYYY-MM-DD)", ErrInvalidFormat, value)
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q: %v", ErrInvalidFormat, value, err)
	}
	date := fromTime(parsed)
	if date.Before(MinDate) {
		return Date{}, fmt.Errorf("%w: %s is before %s", ErrOutOfRange, date.ISO(), MinDate.ISO())
	}
	return date, nil
}

// Today returns the current local calendar date.
func Today() Date {
	return fromTime(time.Now())
}

func fromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// Time returns the date at local midnight.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.Local)
}

// ISO formats the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// URLPath returns the YYYY/MM/DD path segment used by the front-page host.
func (d Date) URLPath() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, d.Month, d.Day)
}

// ArchivePrefix returns the prefix that matches this day's publication
// timestamps in archive metadata (ISO date plus the literal "T").
func (d Date) ArchivePrefix() string {
	return d.ISO() + "T"
}

// ArchiveMonthPath returns the YYYY/M path segment of the month-granular
// archive endpoint. The month is deliberately not zero-padded.
func (d Date) ArchiveMonthPath() string {
	return fmt.Sprintf("%04d/%d", d.Year, d.Month)
}

// OrdinalDisplay formats the date as "January 2nd" for the entry header.
func (d Date) OrdinalDisplay() string {
	return fmt.Sprintf("%s %d%s", time.Month(d.Month).String(), d.Day, ordinalSuffix(d.Day))
}

// DisplayLong formats the date as "January 2, 2006", the convention used
// by the historical-events file.
func (d Date) DisplayLong() string {
	return fmt.Sprintf("%s %d, %d", time.Month(d.Month).String(), d.Day, d.Year)
}

// AddDays returns the date shifted by the given number of days.
func (d Date) AddDays(days int) Date {
	return fromTime(d.Time().AddDate(0, 0, days))
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

func ordinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
