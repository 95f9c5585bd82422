package calendar

import (
	"fmt"
	"time"
)

// Categorize labels one country's day sequence.
//
// flags is the ordered 0/1 day-off sequence (index 0 = range start) and
// weekdays the matching weekday per day. minDays is the minimum consecutive
// non-working-day run length that counts as a long holiday.
//
// Two passes over the sequence:
//
//  1. Each day gets a weight: day-off flag plus 1 on Saturday/Sunday. A
//     left-to-right sweep then turns every maximal nonzero stretch into
//     run-length information: inside an open run each day holds its
//     position-within-run count, and when the run closes (a zero day is
//     reached) every day of the just-closed run is rewritten to the total
//     run count. A run still open at the end of the sequence keeps its
//     ascending position counts; that boundary behavior is part of the
//     contract and is asserted in tests.
//
//  2. A second sweep converts weights into labels. Days whose weight meets
//     minDays become middle_days; the transitions into and out of such runs
//     produce first_day and last_day marks, written one index behind the
//     day that triggers them: first_day lands on the day before the run
//     starts, last_day on the run's final day. Downstream consumers depend
//     on the one-behind placement.
//
// Weekday defaults (friday/saturday/sunday/other) survive wherever no
// qualifying run covers the day.
func Categorize(flags []int, weekdays []time.Weekday, minDays int) ([]DayType, error) {
	n := len(flags)
	if n == 0 {
		return nil, ErrEmptySequence
	}
	if minDays < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidThreshold, minDays)
	}
	if len(weekdays) != n {
		return nil, fmt.Errorf("weekday sequence length %d does not match flags length %d", len(weekdays), n)
	}

	labels := make([]DayType, n)
	weight := make([]int, n)
	for i := 0; i < n; i++ {
		labels[i] = weekdayDefault(weekdays[i])

		weight[i] = flags[i]
		if weekdays[i] == time.Saturday || weekdays[i] == time.Sunday {
			weight[i]++
		}
	}

	// Pass 1: run-length propagation. The counter starts from the first
	// day's weight, so a double-weighted first day (holiday on a weekend)
	// seeds the count at 2.
	run := weight[0]
	runStart := 0
	for i := 1; i < n; i++ {
		if weight[i] > 0 {
			if run == 0 {
				runStart = i
			}
			run++
			weight[i] = run
			continue
		}

		if run > 0 {
			for j := runStart; j < i; j++ {
				weight[j] = run
			}
			run = 0
		}
	}

	// Pass 2: boundary labeling
	last := weight[0]
	for i := 1; i < n; i++ {
		v := weight[i]
		switch {
		case v == 0:
			if last >= minDays {
				labels[i-1] = DayTypeLastDay
			}
		case v >= minDays:
			if last == 0 {
				labels[i-1] = DayTypeFirstDay
			}
			labels[i] = DayTypeMiddleDays
		}
		last = v
	}

	return labels, nil
}

func weekdayDefault(w time.Weekday) DayType {
	switch w {
	case time.Friday:
		return DayTypeFriday
	case time.Saturday:
		return DayTypeSaturday
	case time.Sunday:
		return DayTypeSunday
	default:
		return DayTypeOther
	}
}
