package discord

import (
	"bytes"
	"time"

	"emperror.dev/errors"
)

// TimestampFormat is the layout Discord uses for timestamps in JSON.
// Fractional seconds are optional on input.
const TimestampFormat = "2006-01-02T15:04:05.000000+00:00"

// Timestamp is a time.Time with Discord's JSON encoding. The zero value marshals to null.
type Timestamp time.Time

// NewTimestamp converts a time.Time into a Timestamp.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp(t)
}

// NowTimestamp returns the current time as a Timestamp.
func NowTimestamp() Timestamp {
	return NewTimestamp(time.Now())
}

func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

func (t Timestamp) IsValid() bool {
	return !time.Time(t).IsZero()
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.IsValid() {
		return []byte("null"), nil
	}
	return []byte(`"` + time.Time(t).UTC().Format(TimestampFormat) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*t = Timestamp{}
		return nil
	}

	// RFC3339Nano accepts both the fractional and the plain form
	parsed, err := time.Parse(time.RFC3339Nano, string(b))
	if err != nil {
		return errors.Wrapf(err, "parsing timestamp %q", string(b))
	}

	*t = Timestamp(parsed)
	return nil
}
