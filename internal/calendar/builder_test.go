package calendar

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/jpmobiletanaka/holidays-api-go/internal/holidaysapi"
	"go.uber.org/zap"
)

type fakeSource struct {
	records []holidaysapi.HolidayRecord
	err     error
	calls   int
}

func (f *fakeSource) FetchHolidays(ctx context.Context, from, to time.Time) ([]holidaysapi.HolidayRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func record(country, name string, dayOff bool, dates ...time.Time) holidaysapi.HolidayRecord {
	rec := holidaysapi.HolidayRecord{
		CountryCode: country,
		EnName:      name,
		DayOff:      holidaysapi.FlexibleBool(dayOff),
		Observed:    true,
	}
	for _, d := range dates {
		rec.Dates = append(rec.Dates, holidaysapi.APIDate{Time: d})
	}
	return rec
}

func TestBuildCalendar(t *testing.T) {
	// Mon 2025-01-13 .. Tue 2025-01-21, holidays Wed-Fri. The weekend
	// extends the run to five days and the following Monday closes it.
	source := &fakeSource{records: []holidaysapi.HolidayRecord{
		record("jp", "Some Festival", true,
			date(2025, 1, 15), date(2025, 1, 16), date(2025, 1, 17)),
	}}
	builder := NewBuilder(source, zap.NewNop())

	cal, err := builder.BuildCalendar(context.Background(), date(2025, 1, 13), date(2025, 1, 21), Options{
		CountryCodes:       []string{"jp"},
		MinLongHolidayDays: 3,
	})
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}

	wantFlags := []int{0, 0, 1, 1, 1, 0, 0, 0, 0}
	if !reflect.DeepEqual(cal.Flags["jp"], wantFlags) {
		t.Errorf("Flags = %v, want %v", cal.Flags["jp"], wantFlags)
	}

	wantTypes := []DayType{
		DayTypeOther, DayTypeFirstDay, DayTypeMiddleDays, DayTypeMiddleDays,
		DayTypeMiddleDays, DayTypeMiddleDays, DayTypeLastDay,
		DayTypeOther, DayTypeOther,
	}
	if !reflect.DeepEqual(cal.DayTypes["jp"], wantTypes) {
		t.Errorf("DayTypes = %v, want %v", cal.DayTypes["jp"], wantTypes)
	}
}

func TestBuildCalendarInfersCountries(t *testing.T) {
	source := &fakeSource{records: []holidaysapi.HolidayRecord{
		record("us", "Independence Day", true, date(2025, 7, 4)),
		record("jp", "Marine Day", true, date(2025, 7, 21)),
	}}
	builder := NewBuilder(source, zap.NewNop())

	cal, err := builder.BuildCalendar(context.Background(), date(2025, 7, 1), date(2025, 7, 31), Options{})
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}

	want := []string{"jp", "us"}
	if !reflect.DeepEqual(cal.Countries, want) {
		t.Errorf("Countries = %v, want %v", cal.Countries, want)
	}

	for _, code := range want {
		if len(cal.DayTypes[code]) != 31 {
			t.Errorf("DayTypes[%s] length = %d, want 31", code, len(cal.DayTypes[code]))
		}
	}
}

func TestBuildCalendarWeekendsOnly(t *testing.T) {
	// Empty holiday table with the weekend overlay: every country column
	// must flag every Saturday and Sunday.
	source := &fakeSource{}
	builder := NewBuilder(source, zap.NewNop())

	cal, err := builder.BuildCalendar(context.Background(), date(2025, 3, 3), date(2025, 3, 16), Options{
		CountryCodes:    []string{"jp", "us"},
		IncludeWeekends: true,
	})
	if err != nil {
		t.Fatalf("BuildCalendar() error = %v", err)
	}

	for _, code := range cal.Countries {
		for i, d := range cal.Dates {
			weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
			if weekend && cal.Flags[code][i] != 1 {
				t.Errorf("flag[%s][%d] = %d, want 1", code, i, cal.Flags[code][i])
			}
			if !weekend && cal.Flags[code][i] != 0 {
				t.Errorf("flag[%s][%d] = %d, want 0", code, i, cal.Flags[code][i])
			}
		}
	}
}

func TestBuildCalendarIdempotent(t *testing.T) {
	source := &fakeSource{records: []holidaysapi.HolidayRecord{
		record("kr", "Chuseok", true,
			date(2025, 10, 5), date(2025, 10, 6), date(2025, 10, 7)),
	}}
	builder := NewBuilder(source, zap.NewNop())

	opts := Options{CountryCodes: []string{"kr"}, MinLongHolidayDays: 3, IncludeWeekends: true}

	first, err := builder.BuildCalendar(context.Background(), date(2025, 10, 1), date(2025, 10, 31), opts)
	if err != nil {
		t.Fatalf("first BuildCalendar() error = %v", err)
	}
	second, err := builder.BuildCalendar(context.Background(), date(2025, 10, 1), date(2025, 10, 31), opts)
	if err != nil {
		t.Fatalf("second BuildCalendar() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("BuildCalendar() is not idempotent: results differ for identical input")
	}
}

func TestBuildCalendarValidation(t *testing.T) {
	source := &fakeSource{}
	builder := NewBuilder(source, zap.NewNop())

	_, err := builder.BuildCalendar(context.Background(), date(2025, 2, 1), date(2025, 1, 1), Options{})
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("BuildCalendar() error = %v, want ErrInvalidRange", err)
	}

	_, err = builder.BuildCalendar(context.Background(), date(2025, 1, 1), date(2025, 1, 2), Options{
		MinLongHolidayDays: -1,
	})
	if !errors.Is(err, ErrInvalidThreshold) {
		t.Errorf("BuildCalendar() error = %v, want ErrInvalidThreshold", err)
	}

	// Validation failures must not hit the source
	if source.calls != 0 {
		t.Errorf("source called %d times during validation failures, want 0", source.calls)
	}
}

func TestBuildCalendarPropagatesFetchError(t *testing.T) {
	fetchErr := errors.New("upstream unavailable")
	builder := NewBuilder(&fakeSource{err: fetchErr}, zap.NewNop())

	_, err := builder.BuildCalendar(context.Background(), date(2025, 1, 1), date(2025, 1, 7), Options{})
	if !errors.Is(err, fetchErr) {
		t.Errorf("BuildCalendar() error = %v, want wrapped %v", err, fetchErr)
	}
}

func TestBuildCalendarUnknownCountry(t *testing.T) {
	source := &fakeSource{records: []holidaysapi.HolidayRecord{
		record("jp", "New Year", true, date(2025, 1, 1)),
	}}
	builder := NewBuilder(source, zap.NewNop())

	_, err := builder.BuildCalendar(context.Background(), date(2025, 1, 1), date(2025, 1, 7), Options{
		CountryCodes: []string{"jp", "zz"},
	})
	if !errors.Is(err, ErrUnknownCountry) {
		t.Errorf("BuildCalendar() error = %v, want ErrUnknownCountry", err)
	}
}

func TestExpandRecords(t *testing.T) {
	records := []holidaysapi.HolidayRecord{
		record("jp", "New Year", true, date(2025, 1, 1), date(2025, 1, 2)),
		record("jp", "Observance", false, date(2025, 1, 1)), // duplicate date, not a day off
		record("us", "New Year", true, date(2025, 1, 1)),
	}

	matrix := ExpandRecords(records)

	if got := matrix.Flag(date(2025, 1, 1), "jp"); got != 1 {
		t.Errorf("jp 01-01 = %d, want 1 (max wins over duplicate)", got)
	}
	if got := matrix.Flag(date(2025, 1, 2), "jp"); got != 1 {
		t.Errorf("jp 01-02 = %d, want 1", got)
	}
	if got := matrix.Flag(date(2025, 1, 1), "us"); got != 1 {
		t.Errorf("us 01-01 = %d, want 1", got)
	}
	if got := matrix.Flag(date(2025, 1, 3), "jp"); got != 0 {
		t.Errorf("jp 01-03 = %d, want 0 (absent date)", got)
	}
}
