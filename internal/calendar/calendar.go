package calendar

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/jpmobiletanaka/holidays-api-go/pkg/dateutil"
)

// DayType classifies a calendar day for one country.
// Weekday-derived defaults are overridden by the long-holiday marks
// wherever a qualifying run covers the day.
type DayType string

const (
	DayTypeOther      DayType = "other"
	DayTypeFriday     DayType = "friday"
	DayTypeSaturday   DayType = "saturday"
	DayTypeSunday     DayType = "sunday"
	DayTypeFirstDay   DayType = "first_day"
	DayTypeMiddleDays DayType = "middle_days"
	DayTypeLastDay    DayType = "last_day"
)

var (
	// ErrInvalidRange is returned when date_from is after date_to
	ErrInvalidRange = errors.New("date_from is after date_to")

	// ErrInvalidThreshold is returned when the long-holiday threshold is below 1
	ErrInvalidThreshold = errors.New("min long holiday days must be >= 1")

	// ErrUnknownCountry is returned when a requested country code never
	// appears in the holiday data and no weekend fallback is requested
	ErrUnknownCountry = errors.New("country code not present in holiday data")

	// ErrEmptySequence is returned when a zero-length day sequence reaches the labeler
	ErrEmptySequence = errors.New("empty day sequence")
)

// FlagMatrix is the sparse holiday input: date key (YYYY-MM-DD) ->
// country code -> 0/1 day-off flag. Dates without any holiday are absent.
type FlagMatrix map[string]map[string]int

// Flag returns the day-off flag for the given date and country, 0 when absent
func (m FlagMatrix) Flag(date time.Time, country string) int {
	if byCountry, ok := m[dateutil.DateKey(date)]; ok {
		return byCountry[country]
	}
	return 0
}

// Mark records a day-off flag, keeping the maximum when the same
// (date, country) pair is reported more than once.
func (m FlagMatrix) Mark(key, country string, dayOff int) {
	byCountry, ok := m[key]
	if !ok {
		byCountry = make(map[string]int)
		m[key] = byCountry
	}
	if dayOff > byCountry[country] {
		byCountry[country] = dayOff
	} else if _, seen := byCountry[country]; !seen {
		byCountry[country] = dayOff
	}
}

// HasCountry reports whether the country code appears anywhere in the matrix
func (m FlagMatrix) HasCountry(country string) bool {
	for _, byCountry := range m {
		if _, ok := byCountry[country]; ok {
			return true
		}
	}
	return false
}

// Countries returns the sorted set of country codes present in the matrix
func (m FlagMatrix) Countries() []string {
	seen := make(map[string]bool)
	for _, byCountry := range m {
		for code := range byCountry {
			seen[code] = true
		}
	}

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Calendar is the dense, gap-free result: one entry per day in the
// requested range, with per-country day-off flags and day types.
// Immutable once built.
type Calendar struct {
	Dates     []time.Time // ascending UTC midnights, no gaps
	Countries []string    // requested order
	Flags     map[string][]int
	DayTypes  map[string][]DayType
}

// Len returns the number of days in the calendar
func (c *Calendar) Len() int {
	return len(c.Dates)
}

// Header returns the column names of the tabular form:
// date, <country>_day_type..., <country>...
func (c *Calendar) Header() []string {
	header := []string{"date"}
	for _, code := range c.Countries {
		header = append(header, code+"_day_type")
	}
	header = append(header, c.Countries...)
	return header
}

// Row returns the i-th table row matching Header
func (c *Calendar) Row(i int) []string {
	row := []string{dateutil.DateKey(c.Dates[i])}
	for _, code := range c.Countries {
		row = append(row, string(c.DayTypes[code][i]))
	}
	for _, code := range c.Countries {
		row = append(row, strconv.Itoa(c.Flags[code][i]))
	}
	return row
}

// WriteCSV writes the calendar in tabular form
func (c *Calendar) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(c.Header()); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range c.Dates {
		if err := cw.Write(c.Row(i)); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
