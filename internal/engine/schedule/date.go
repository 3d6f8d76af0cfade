package schedule

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date with no time or zone component. It marshals as
// YYYY-MM-DD, which is also how dates are stored in the donations table.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func Today() Date {
	return DateOf(time.Now().UTC())
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return d.time().Format(dateLayout)
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.time().Before(other.time())
}

func (d Date) After(other Date) bool {
	return other.Before(d)
}

// DaysBetween returns b - a in whole days. Negative when b precedes a.
func DaysBetween(a, b Date) int {
	return int(b.time().Sub(a.time()).Hours() / 24)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("date must be a JSON string")
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements the driver.Valuer interface for Date
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements the sql.Scanner interface for Date
func (d *Date) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*d = DateOf(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
