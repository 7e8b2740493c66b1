package discord

import (
	"fmt"
	"strconv"
	"strings"
)

// BaseCDNURL is the root of Discord's CDN.
const BaseCDNURL = "https://cdn.discordapp.com"

// User is a Discord user.
type User struct {
	ID            UserID `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
	GlobalName    string `json:"global_name,omitempty"`
	Avatar        string `json:"avatar,omitempty"`

	Bot    bool `json:"bot,omitempty"`
	System bool `json:"system,omitempty"`

	PublicFlags uint64 `json:"public_flags,omitempty"`
}

// Tag returns the user's username, with the discriminator if they still have one.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// DisplayName returns the global name if set, and the username otherwise.
func (u User) DisplayName() string {
	if u.GlobalName != "" {
		return u.GlobalName
	}
	return u.Username
}

func (u User) Mention() string {
	return "<@" + u.ID.String() + ">"
}

// AvatarURL returns the user's avatar URL.
// Users without an avatar get one of the default avatars.
func (u User) AvatarURL() string {
	if u.Avatar == "" {
		return fmt.Sprintf("%v/embed/avatars/%d.png", BaseCDNURL, u.defaultAvatarIndex())
	}

	ext := ".png"
	if strings.HasPrefix(u.Avatar, "a_") {
		ext = ".gif"
	}
	return BaseCDNURL + "/avatars/" + u.ID.String() + "/" + u.Avatar + ext
}

func (u User) defaultAvatarIndex() uint64 {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return (uint64(u.ID) >> 22) % 6
	}

	d, _ := strconv.ParseUint(u.Discriminator, 10, 64)
	return d % 5
}

// Member is a guild member. User is omitted in some payloads, such as message authors.
type Member struct {
	User         *User       `json:"user,omitempty"`
	Nick         string      `json:"nick,omitempty"`
	Avatar       string      `json:"avatar,omitempty"`
	RoleIDs      []RoleID    `json:"roles"`
	Joined       Timestamp   `json:"joined_at"`
	Deaf         bool        `json:"deaf"`
	Mute         bool        `json:"mute"`
	Pending      bool        `json:"pending,omitempty"`
	Permissions  Permissions `json:"permissions,omitempty"`
	BoostedSince Timestamp   `json:"premium_since,omitempty"`
}
