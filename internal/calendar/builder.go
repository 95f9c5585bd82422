package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jpmobiletanaka/holidays-api-go/internal/holidaysapi"
	"github.com/jpmobiletanaka/holidays-api-go/pkg/dateutil"
	"go.uber.org/zap"
)

// DefaultCountries is used when the caller requests no particular
// countries and the source data yields none to infer from.
var DefaultCountries = []string{"jp", "cn", "kr", "tw", "us", "th"}

// DefaultMinLongHolidayDays is the default long-holiday threshold
const DefaultMinLongHolidayDays = 3

// HolidaySource supplies raw holiday records for a date range. Retry,
// backoff and credential renewal are the source's own business; errors
// arrive here already final and are propagated unchanged.
type HolidaySource interface {
	FetchHolidays(ctx context.Context, from, to time.Time) ([]holidaysapi.HolidayRecord, error)
}

// Options control a calendar build
type Options struct {
	// CountryCodes selects the countries to build columns for. Empty means
	// infer the list from the fetched data (DefaultCountries when the
	// data is empty). An explicit code absent from the data is an error
	// unless IncludeWeekends is set.
	CountryCodes []string

	// MinLongHolidayDays is the minimum run length that qualifies as a
	// long holiday. Defaults to DefaultMinLongHolidayDays when 0.
	MinLongHolidayDays int

	// IncludeWeekends forces every Saturday and Sunday to count as a day
	// off in addition to the fetched holidays.
	IncludeWeekends bool
}

// Builder assembles labeled calendars from a holiday source
type Builder struct {
	source HolidaySource
	logger *zap.Logger
}

// NewBuilder creates a calendar builder
func NewBuilder(source HolidaySource, logger *zap.Logger) *Builder {
	return &Builder{
		source: source,
		logger: logger,
	}
}

// ExpandRecords flattens holiday records into the sparse flag matrix,
// expanding each record's date list and keeping the maximum day_off value
// when several records cover the same (date, country) pair.
func ExpandRecords(records []holidaysapi.HolidayRecord) FlagMatrix {
	matrix := make(FlagMatrix)

	for _, rec := range records {
		dayOff := 0
		if rec.DayOff.Bool() {
			dayOff = 1
		}
		for _, d := range rec.Dates {
			matrix.Mark(dateutil.DateKey(d.Time), rec.CountryCode, dayOff)
		}
	}

	return matrix
}

// BuildCalendar fetches holidays for the inclusive [from, to] range and
// produces the dense calendar with per-country day-type labels.
//
// Countries are labeled independently and in parallel; a labeling failure
// for one country fails the build but cannot corrupt the others' results.
func (b *Builder) BuildCalendar(ctx context.Context, from, to time.Time, opts Options) (*Calendar, error) {
	minDays := opts.MinLongHolidayDays
	if minDays == 0 {
		minDays = DefaultMinLongHolidayDays
	}
	if minDays < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, minDays)
	}
	if dateutil.Midnight(from).After(dateutil.Midnight(to)) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, dateutil.DateKey(from), dateutil.DateKey(to))
	}

	records, err := b.source.FetchHolidays(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch holidays: %w", err)
	}

	matrix := ExpandRecords(records)

	countries := opts.CountryCodes
	if len(countries) == 0 {
		countries = matrix.Countries()
		if len(countries) == 0 {
			countries = append([]string(nil), DefaultCountries...)
		}
		b.logger.Debug("Country list inferred from holiday data",
			zap.Strings("countries", countries))
	}

	cal, err := Assemble(from, to, matrix, countries, opts.IncludeWeekends)
	if err != nil {
		return nil, err
	}

	weekdays := make([]time.Weekday, cal.Len())
	for i, d := range cal.Dates {
		weekdays[i] = d.Weekday()
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for _, code := range cal.Countries {
		code := code
		wg.Add(1)
		go func() {
			defer wg.Done()

			labels, err := Categorize(cal.Flags[code], weekdays, minDays)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to label country %q: %w", code, err)
				}
				return
			}
			cal.DayTypes[code] = labels
		}()
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	b.logger.Info("Calendar built",
		zap.String("from", dateutil.DateKey(from)),
		zap.String("to", dateutil.DateKey(to)),
		zap.Int("days", cal.Len()),
		zap.Strings("countries", cal.Countries),
		zap.Int("min_long_holiday_days", minDays),
		zap.Bool("weekends", opts.IncludeWeekends))

	return cal, nil
}
