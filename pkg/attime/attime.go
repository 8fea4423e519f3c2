// Package attime parses the time expressions accepted by profile queries.
//
// A Point is either relative to the moment it is resolved ("now",
// "now-1h", "now-30m") or absolute (unix seconds, unix milliseconds, or
// RFC 3339). The original text is kept so a Point round-trips through a URL
// unchanged.
package attime

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	day   = 24 * time.Hour
	week  = 7 * day
	month = 30 * day
	year  = 365 * day
)

// ErrEmpty is returned when parsing an empty expression.
var ErrEmpty = errors.New("empty time expression")

// Point is a parsed time expression.
type Point struct {
	raw      string
	relative bool
	offset   time.Duration
	abs      time.Time
}

// Now is the relative point "now".
var Now = Point{raw: "now", relative: true}

// Parse parses a time expression.
func Parse(s string) (Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Point{}, ErrEmpty
	}

	if strings.HasPrefix(s, "now") {
		rest := s[len("now"):]
		if rest == "" {
			return Point{raw: s, relative: true}, nil
		}
		sign := time.Duration(1)
		switch rest[0] {
		case '-':
			sign = -1
		case '+':
		default:
			return Point{}, fmt.Errorf("invalid relative expression %q", s)
		}
		d, err := parseOffset(rest[1:])
		if err != nil {
			return Point{}, fmt.Errorf("invalid relative expression %q: %w", s, err)
		}
		return Point{raw: s, relative: true, offset: sign * d}, nil
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n < 0 {
			return Point{}, fmt.Errorf("negative timestamp %q", s)
		}
		// 13+ digits are milliseconds.
		if len(s) >= 13 {
			return Point{raw: s, abs: time.UnixMilli(n).UTC()}, nil
		}
		return Point{raw: s, abs: time.Unix(n, 0).UTC()}, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Point{raw: s, abs: t.UTC()}, nil
	}

	return Point{}, fmt.Errorf("unrecognized time expression %q", s)
}

// MustParse is like Parse but panics on error. Use it for constants.
func MustParse(s string) Point {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseOr parses s and returns fallback if s is not a valid expression.
func ParseOr(s string, fallback Point) Point {
	p, err := Parse(s)
	if err != nil {
		return fallback
	}
	return p
}

// parseOffset parses "<n><unit>" where unit is one of s, m, h, d, w, M, y.
func parseOffset(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("missing unit in %q", s)
	}
	unit := s[len(s)-1]
	n, err := strconv.ParseInt(s[:len(s)-1], 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid amount in %q", s)
	}

	var base time.Duration
	switch unit {
	case 's':
		base = time.Second
	case 'm':
		base = time.Minute
	case 'h':
		base = time.Hour
	case 'd':
		base = day
	case 'w':
		base = week
	case 'M':
		base = month
	case 'y':
		base = year
	default:
		return 0, fmt.Errorf("unknown unit %q", string(unit))
	}
	return time.Duration(n) * base, nil
}

// String returns the expression as it was written.
func (p Point) String() string {
	return p.raw
}

// IsZero reports whether p was never parsed.
func (p Point) IsZero() bool {
	return p.raw == ""
}

// IsRelative reports whether p is resolved against the current time.
func (p Point) IsRelative() bool {
	return p.relative
}

// Time resolves p against now.
func (p Point) Time(now time.Time) time.Time {
	if p.relative {
		return now.Add(p.offset)
	}
	return p.abs
}

// MarshalText implements encoding.TextMarshaler.
func (p Point) MarshalText() ([]byte, error) {
	return []byte(p.raw), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Point) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
