package holidaysapi

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleBool handles bool fields the Holidays API encodes inconsistently:
// sometimes as true/false, sometimes as 0/1. Both decode to a Go bool.
type FlexibleBool bool

// UnmarshalJSON implements json.Unmarshaler for FlexibleBool
func (f *FlexibleBool) UnmarshalJSON(b []byte) error {
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*f = FlexibleBool(v)
		return nil
	}

	var n float64
	if err := json.Unmarshal(b, &n); err == nil {
		*f = n != 0
		return nil
	}

	return fmt.Errorf("FlexibleBool: cannot unmarshal %s", string(b))
}

// MarshalJSON implements json.Marshaler for FlexibleBool
func (f FlexibleBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(f))
}

// Bool returns the plain bool value
func (f FlexibleBool) Bool() bool {
	return bool(f)
}

// APIDate is a calendar date in the API's YYYY-MM-DD wire format
type APIDate struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler for APIDate
func (d *APIDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("APIDate: cannot parse %q: %w", s, err)
	}

	d.Time = parsed
	return nil
}

// MarshalJSON implements json.Marshaler for APIDate
func (d APIDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Time.Format("2006-01-02"))
}

// APITime handles the API's timestamp variants
type APITime struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler for APITime
func (t *APITime) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000-0700",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}

	var parseErr error
	for _, format := range formats {
		parsed, err := time.Parse(format, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		parseErr = err
	}

	return parseErr
}

// MarshalJSON implements json.Marshaler for APITime
func (t APITime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// HolidayRecord is one holiday as returned by the Holidays API. A record
// describes a single named holiday for a country and lists every date it
// covers within the requested range.
type HolidayRecord struct {
	CountryCode string       `json:"country_code"`
	EnName      string       `json:"en_name"`
	DayOff      FlexibleBool `json:"day_off"`
	Observed    FlexibleBool `json:"observed"`
	CreatedAt   APITime      `json:"created_at"`
	UpdatedAt   APITime      `json:"updated_at"`
	Dates       []APIDate    `json:"dates"`
}

// authRequest is the auth endpoint payload
type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the auth endpoint reply
type authResponse struct {
	Token string `json:"token"`
}
