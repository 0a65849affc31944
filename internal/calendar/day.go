// Package calendar provides a day-precision date type for membership plans,
// hold ranges and sequence keys. Instants are converted with In(t, loc) before
// any interval math.
package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the wire and storage format of a Day.
const Layout = "2006-01-02"

// Day is a calendar date without time-of-day or zone.
// The zero value is not a valid day; check with IsZero.
type Day struct {
	// days since 0001-01-01, offset by one so the zero value is distinguishable
	n int64
}

const secondsPerDay = 24 * 60 * 60

// epoch is 0001-01-01T00:00:00Z in Unix seconds.
var epoch = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

// Date builds a Day from its components. Out-of-range values normalize the
// way time.Date does (e.g. January 32 is February 1).
func Date(year int, month time.Month, day int) Day {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Day{n: (t.Unix()-epoch)/secondsPerDay + 1}
}

// In returns the calendar day that instant t falls on in loc.
func In(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return Date(y, m, d)
}

// Parse reads a Day in YYYY-MM-DD form.
func Parse(s string) (Day, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Day{}, fmt.Errorf("calendar: invalid day %q: %w", s, err)
	}
	return Date(t.Year(), t.Month(), t.Day()), nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) Day {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) IsZero() bool { return d.n == 0 }

// Time returns midnight of d in loc.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, dd := d.utc().Date()
	return time.Date(y, m, dd, 0, 0, 0, 0, loc)
}

func (d Day) utc() time.Time {
	return time.Unix(epoch+(d.n-1)*secondsPerDay, 0).UTC()
}

func (d Day) AddDays(n int) Day {
	if d.IsZero() {
		return d
	}
	return Day{n: d.n + int64(n)}
}

func (d Day) Before(o Day) bool { return d.n < o.n }
func (d Day) After(o Day) bool  { return d.n > o.n }
func (d Day) Equal(o Day) bool  { return d.n == o.n }

// Stamp renders d as YYYYMMDD, the form used inside document numbers.
func (d Day) Stamp() string {
	return d.utc().Format("20060102")
}

func (d Day) String() string {
	if d.IsZero() {
		return ""
	}
	return d.utc().Format(Layout)
}

// InclusiveCount is the number of days in [from, to], or 0 when to < from.
func InclusiveCount(from, to Day) int {
	if to.n < from.n {
		return 0
	}
	return int(to.n-from.n) + 1
}

func Min(a, b Day) Day {
	if a.n <= b.n {
		return a
	}
	return b
}

func Max(a, b Day) Day {
	if a.n >= b.n {
		return a
	}
	return b
}

func (d Day) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*d = Day{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Day{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores a Day in a DATE column.
func (d Day) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan reads a DATE column. Drivers hand back either time.Time or text.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Day{}
		return nil
	case time.Time:
		*d = Date(v.Year(), v.Month(), v.Day())
		return nil
	case string:
		parsed, err := Parse(v[:min(len(v), len(Layout))])
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		return d.Scan(string(v))
	default:
		return fmt.Errorf("calendar: cannot scan %T into Day", src)
	}
}
