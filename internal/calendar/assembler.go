package calendar

import (
	"fmt"
	"time"

	"github.com/jpmobiletanaka/holidays-api-go/pkg/dateutil"
)

// Assemble builds the dense calendar for the inclusive [from, to] range.
//
// The date index covers every calendar day in ascending order with no gaps.
// Each requested country gets a 0/1 day-off flag per day: 1 where the sparse
// matrix marks a holiday, 0 elsewhere. When weekends is true, every Saturday
// and Sunday is forced to 1 after the holiday overlay.
//
// An explicitly requested country that never appears in the matrix is an
// error unless the weekend fallback is on, in which case its weekend days
// still carry meaningful flags.
func Assemble(from, to time.Time, matrix FlagMatrix, countries []string, weekends bool) (*Calendar, error) {
	start := dateutil.Midnight(from)
	end := dateutil.Midnight(to)

	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, dateutil.DateKey(start), dateutil.DateKey(end))
	}

	if !weekends {
		for _, code := range countries {
			if !matrix.HasCountry(code) {
				return nil, fmt.Errorf("%w: %q", ErrUnknownCountry, code)
			}
		}
	}

	n := dateutil.DaysBetween(start, end)

	cal := &Calendar{
		Dates:     make([]time.Time, 0, n),
		Countries: append([]string(nil), countries...),
		Flags:     make(map[string][]int, len(countries)),
		DayTypes:  make(map[string][]DayType, len(countries)),
	}
	for _, code := range countries {
		cal.Flags[code] = make([]int, 0, n)
	}

	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		cal.Dates = append(cal.Dates, day)

		weekend := weekends && dateutil.IsWeekend(day)
		for _, code := range countries {
			flag := matrix.Flag(day, code)
			if weekend {
				flag = 1
			}
			cal.Flags[code] = append(cal.Flags[code], flag)
		}
	}

	return cal, nil
}
