package discord

import (
	"net/url"
	"regexp"
	"strings"

	"emperror.dev/errors"
)

// ErrInvalidEmoji is returned when a string looks like a custom emoji but can't be parsed as one.
const ErrInvalidEmoji = errors.Sentinel("invalid emoji")

// Emoji is either a custom guild emoji or a unicode emoji.
// Unicode emojis only have a name, which is the emoji itself.
type Emoji struct {
	ID       EmojiID  `json:"id"`
	Name     string   `json:"name"`
	Animated bool     `json:"animated,omitempty"`
	RoleIDs  []RoleID `json:"roles,omitempty"`
	User     *User    `json:"user,omitempty"`

	RequireColons bool `json:"require_colons,omitempty"`
	Managed       bool `json:"managed,omitempty"`
	Available     bool `json:"available,omitempty"`
}

var emojiMentionRe = regexp.MustCompile(`^<(a?):([\w~]{1,32}):(\d{15,20})>$`)
var emojiAPIRe = regexp.MustCompile(`^(a:)?([\w~]{1,32}):(\d{15,20})$`)

// ParseEmoji parses an emoji from one of the forms a user or a payload might contain:
// <:name:id>, <a:name:id>, name:id, a:name:id, or a raw unicode emoji.
func ParseEmoji(s string) (Emoji, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Emoji{}, ErrInvalidEmoji
	}

	if groups := emojiMentionRe.FindStringSubmatch(s); groups != nil {
		id, err := ParseSnowflake(groups[3])
		if err != nil {
			return Emoji{}, errors.WithStack(ErrInvalidEmoji)
		}
		return Emoji{ID: EmojiID(id), Name: groups[2], Animated: groups[1] == "a"}, nil
	}

	if groups := emojiAPIRe.FindStringSubmatch(s); groups != nil {
		id, err := ParseSnowflake(groups[3])
		if err != nil {
			return Emoji{}, errors.WithStack(ErrInvalidEmoji)
		}
		return Emoji{ID: EmojiID(id), Name: groups[2], Animated: groups[1] != ""}, nil
	}

	// something that looks like a broken custom emoji
	if strings.HasPrefix(s, "<") || strings.Contains(s, ":") {
		return Emoji{}, errors.WithStack(ErrInvalidEmoji)
	}

	return Emoji{Name: s}, nil
}

// IsCustom returns true if this is a guild emoji.
func (e Emoji) IsCustom() bool {
	return e.ID.IsValid()
}

// IsUnicode returns true if this is a unicode emoji.
func (e Emoji) IsUnicode() bool {
	return !e.ID.IsValid()
}

// APIString returns the emoji in the form used in reaction URLs.
func (e Emoji) APIString() string {
	if e.IsUnicode() {
		return url.PathEscape(e.Name)
	}
	return e.Name + ":" + e.ID.String()
}

// Key returns a key that uniquely identifies the emoji, for use in maps.
// Custom emojis are keyed by ID only, as their name can change.
func (e Emoji) Key() string {
	if e.IsUnicode() {
		return e.Name
	}
	return e.ID.String()
}

// String returns the emoji in a form that can be used in message content.
func (e Emoji) String() string {
	if e.IsUnicode() {
		return e.Name
	}

	if e.Animated {
		return "<a:" + e.Name + ":" + e.ID.String() + ">"
	}
	return "<:" + e.Name + ":" + e.ID.String() + ">"
}

// URL returns the CDN URL for a custom emoji, or an empty string for unicode emojis.
func (e Emoji) URL() string {
	if e.IsUnicode() {
		return ""
	}

	ext := ".png"
	if e.Animated {
		ext = ".gif"
	}
	return BaseCDNURL + "/emojis/" + e.ID.String() + ext
}
