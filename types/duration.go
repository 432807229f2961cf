package types

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Duration wraps time.Duration with support for JSON encoding.
//
// It marshals to a "72h3m0s" style string and unmarshals from either that
// form or a plain number of seconds, which is how timelock contracts and
// indexers report delays.
type Duration struct {
	time.Duration
}

// NewDuration wraps a time.Duration with a Duration.
func NewDuration(d time.Duration) Duration {
	return Duration{Duration: d}
}

// DurationFromSeconds converts an on-chain number of seconds into a Duration,
// saturating at the largest representable duration.
func DurationFromSeconds(s uint64) Duration {
	if s > uint64(math.MaxInt64/int64(time.Second)) {
		return NewDuration(time.Duration(math.MaxInt64))
	}

	return NewDuration(time.Duration(s) * time.Second) //nolint:gosec // bounded above
}

// ParseDuration parses a duration string in the time.Duration format.
func ParseDuration(s string) (Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return Duration{}, err
	}

	return NewDuration(d), nil
}

// MustParseDuration parses a duration string in the time.Duration format.
// Panics if the string is invalid.
//
// Useful for tests, but should be avoided in production code.
func MustParseDuration(s string) Duration {
	d, err := ParseDuration(s)
	if err != nil {
		panic(err)
	}

	return d
}

// String returns a string representing the duration in the form "72h3m0.5s".
func (d Duration) String() string {
	return d.Duration.String()
}

// MarshalJSON marshals the duration into JSON bytes and implements the json.Marshaler interface.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON unmarshals the duration from JSON bytes and implements the json.Unmarshaler
// interface.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case string:
		var err error
		if d.Duration, err = time.ParseDuration(value); err != nil {
			return err
		}

		return nil
	case float64:
		if value < 0 || value != math.Trunc(value) {
			return fmt.Errorf("invalid duration seconds: %v", value)
		}
		*d = DurationFromSeconds(uint64(value))

		return nil
	default:
		return fmt.Errorf("invalid duration type: %T", v)
	}
}
