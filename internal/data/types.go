// internal/data/types.go
package data

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// dateLayout is the wire format for calendar dates: YYYY-MM-DD.
const dateLayout = "2006-01-02"

// ErrInvalidDateFormat is returned when a JSON date value cannot be parsed.
var ErrInvalidDateFormat = errors.New("date must use the YYYY-MM-DD format")

// Date is a calendar date with no time-of-day component. It embeds time.Time
// so callers can still compare and format it, but it always marshals to and
// from the bare YYYY-MM-DD form used on the wire and in the date columns.
type Date struct {
	time.Time
}

// NewDate builds a Date from its year, month and day parts (UTC).
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MarshalJSON renders the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string into the Date.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return ErrInvalidDateFormat
	}
	t, err := time.Parse(dateLayout, s[1:len(s)-1])
	if err != nil {
		return ErrInvalidDateFormat
	}
	d.Time = t
	return nil
}

// Value implements driver.Valuer so a Date can be passed directly as a
// query argument for a date column.
func (d Date) Value() (driver.Value, error) {
	return d.Time, nil
}

// Scan implements sql.Scanner so a date column can be read straight into a
// Date. The postgres driver hands dates back as time.Time values.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.Time = v
		return nil
	case []byte:
		t, err := time.Parse(dateLayout, string(v))
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	case string:
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return err
		}
		d.Time = t
		return nil
	case nil:
		d.Time = time.Time{}
		return nil
	}
	return fmt.Errorf("cannot scan %T into Date", src)
}
