package slot

import "fmt"

// Hour is an hour-of-day row in the weekly grid (0..23).
type Hour int

// ParseHour parses a label such as "09:00".
func ParseHour(s string) (Hour, error) {
	if len(s) != 5 || s[2] != ':' || s[3:] != "00" {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidHour)
	}
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidHour)
	}
	h := Hour(int(s[0]-'0')*10 + int(s[1]-'0'))
	if !h.Valid() {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidHour)
	}
	return h, nil
}

// Valid returns true for 0..23.
func (h Hour) Valid() bool {
	return h >= 0 && h <= 23
}

// Label formats the hour as "HH:00".
func (h Hour) Label() string {
	return fmt.Sprintf("%02d:00", int(h))
}

// String implements fmt.Stringer.
func (h Hour) String() string {
	return h.Label()
}

// Range returns the hours from start (inclusive) to end (exclusive).
// "09:00".."12:00" yields 09, 10 and 11.
func Range(start, end string) ([]Hour, error) {
	from, err := ParseHour(start)
	if err != nil {
		return nil, err
	}
	// "24:00" is accepted as an end bound meaning midnight.
	to := Hour(24)
	if end != "24:00" {
		to, err = ParseHour(end)
		if err != nil {
			return nil, err
		}
	}
	if to <= from {
		return nil, fmt.Errorf("end %s must be after start %s", end, start)
	}
	hours := make([]Hour, 0, int(to-from))
	for h := from; h < to; h++ {
		hours = append(hours, h)
	}
	return hours, nil
}
