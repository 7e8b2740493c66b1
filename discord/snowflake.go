package discord

import (
	"bytes"
	"strconv"
	"time"

	"emperror.dev/errors"
)

// Epoch is the Discord epoch, the first millisecond of 2015, in Unix milliseconds.
const Epoch = 1420070400000

// Snowflake is a Discord ID.
// It is always sent as a string, as IDs don't fit in a float64 and some JSON consumers choke on them.
type Snowflake uint64

// NullSnowflake is the zero snowflake, marshaled as null.
const NullSnowflake Snowflake = 0

// ParseSnowflake parses a snowflake from a decimal string.
func ParseSnowflake(s string) (Snowflake, error) {
	if s == "" || s == "null" {
		return NullSnowflake, nil
	}

	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parsing snowflake %q", s)
	}
	return Snowflake(u), nil
}

// MustParseSnowflake is ParseSnowflake but panics on error. Meant for constants and tests.
func MustParseSnowflake(s string) Snowflake {
	sf, err := ParseSnowflake(s)
	if err != nil {
		panic(err)
	}
	return sf
}

// SnowflakeFromTime returns the lowest snowflake that could have been created at t.
// Useful for the before/after bounds of paginated endpoints.
func SnowflakeFromTime(t time.Time) Snowflake {
	ms := t.UnixMilli() - Epoch
	if ms < 0 {
		return 0
	}
	return Snowflake(uint64(ms) << 22)
}

func (s Snowflake) String() string {
	return strconv.FormatUint(uint64(s), 10)
}

// IsValid returns true if the snowflake is not zero.
func (s Snowflake) IsValid() bool {
	return s != 0
}

// Time returns the time the snowflake was created at.
func (s Snowflake) Time() time.Time {
	return time.UnixMilli(int64(s>>22) + Epoch).UTC()
}

// Increment returns the per-process increment of the snowflake.
func (s Snowflake) Increment() uint16 {
	return uint16(s & 0xFFF)
}

func (s Snowflake) MarshalJSON() ([]byte, error) {
	if !s.IsValid() {
		return []byte("null"), nil
	}
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Snowflake) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*s = NullSnowflake
		return nil
	}

	u, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return errors.Wrapf(err, "unmarshaling snowflake %q", string(b))
	}

	*s = Snowflake(u)
	return nil
}

type ChannelID Snowflake

func (s ChannelID) String() string                { return Snowflake(s).String() }
func (s ChannelID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s ChannelID) Time() time.Time               { return Snowflake(s).Time() }
func (s ChannelID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *ChannelID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type GuildID Snowflake

func (s GuildID) String() string                { return Snowflake(s).String() }
func (s GuildID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s GuildID) Time() time.Time               { return Snowflake(s).Time() }
func (s GuildID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *GuildID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type MessageID Snowflake

func (s MessageID) String() string                { return Snowflake(s).String() }
func (s MessageID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s MessageID) Time() time.Time               { return Snowflake(s).Time() }
func (s MessageID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *MessageID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type UserID Snowflake

func (s UserID) String() string                { return Snowflake(s).String() }
func (s UserID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s UserID) Time() time.Time               { return Snowflake(s).Time() }
func (s UserID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *UserID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type EmojiID Snowflake

func (s EmojiID) String() string                { return Snowflake(s).String() }
func (s EmojiID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s EmojiID) Time() time.Time               { return Snowflake(s).Time() }
func (s EmojiID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *EmojiID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type RoleID Snowflake

func (s RoleID) String() string                { return Snowflake(s).String() }
func (s RoleID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s RoleID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *RoleID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type WebhookID Snowflake

func (s WebhookID) String() string                { return Snowflake(s).String() }
func (s WebhookID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s WebhookID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *WebhookID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type AppID Snowflake

func (s AppID) String() string                { return Snowflake(s).String() }
func (s AppID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s AppID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *AppID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type InteractionID Snowflake

func (s InteractionID) String() string                { return Snowflake(s).String() }
func (s InteractionID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s InteractionID) Time() time.Time               { return Snowflake(s).Time() }
func (s InteractionID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *InteractionID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type AttachmentID Snowflake

func (s AttachmentID) String() string                { return Snowflake(s).String() }
func (s AttachmentID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s AttachmentID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *AttachmentID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }

type CommandID Snowflake

func (s CommandID) String() string                { return Snowflake(s).String() }
func (s CommandID) IsValid() bool                 { return Snowflake(s).IsValid() }
func (s CommandID) MarshalJSON() ([]byte, error)  { return Snowflake(s).MarshalJSON() }
func (s *CommandID) UnmarshalJSON(b []byte) error { return (*Snowflake)(s).UnmarshalJSON(b) }
