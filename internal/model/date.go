package model

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the serialized form of a Date.
const DateLayout = "02/01/06"

var (
	dmyPattern = regexp.MustCompile(`^(\d{1,2})[/\-.\s]+(\d{1,2})[/\-.\s]+(\d{2}|\d{4})$`)
	isoPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate builds a Date in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts day-first dates (01/02/24, 1-2-2024, 01 02 24) and ISO
// dates (2024-02-01). Two-digit years are in the 2000s.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)

	var year, month, day int
	if m := isoPattern.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else if m := dmyPattern.FindStringSubmatch(s); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
	} else {
		return Date{}, fmt.Errorf("unrecognized date %q", s)
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, fmt.Errorf("date out of range %q", s)
	}
	d := NewDate(year, time.Month(month), day)
	// time.Date normalizes 31/02 into March.
	if d.Day() != day || int(d.Month()) != month {
		return Date{}, fmt.Errorf("invalid calendar date %q", s)
	}
	return d, nil
}

// ParseDatePtr returns nil instead of an error.
func ParseDatePtr(s string) *Date {
	d, err := ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}

// String formats the date as DD/MM/YY.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
