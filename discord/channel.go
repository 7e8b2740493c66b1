package discord

// ChannelType is the type of a channel.
type ChannelType uint8

const (
	GuildText ChannelType = iota
	DirectMessage
	GuildVoice
	GroupDM
	GuildCategory
	GuildAnnouncement
	_
	_
	_
	_
	GuildAnnouncementThread
	GuildPublicThread
	GuildPrivateThread
	GuildStageVoice
	GuildDirectory
	GuildForum
	GuildMedia
)

// Channel is a guild channel, thread, or private channel.
// Most fields are only set for some channel types.
type Channel struct {
	ID       ChannelID   `json:"id"`
	Type     ChannelType `json:"type"`
	GuildID  GuildID     `json:"guild_id,omitempty"`
	Position int         `json:"position,omitempty"`

	Overwrites []Overwrite `json:"permission_overwrites,omitempty"`

	Name  string `json:"name,omitempty"`
	Topic string `json:"topic,omitempty"`
	NSFW  bool   `json:"nsfw,omitempty"`

	LastMessageID MessageID `json:"last_message_id,omitempty"`

	VoiceBitrate   uint `json:"bitrate,omitempty"`
	VoiceUserLimit uint `json:"user_limit,omitempty"`

	// Slowmode, in seconds
	UserRateLimit int `json:"rate_limit_per_user,omitempty"`

	Recipients     []User    `json:"recipients,omitempty"`
	Icon           string    `json:"icon,omitempty"`
	OwnerID        UserID    `json:"owner_id,omitempty"`
	AppID          AppID     `json:"application_id,omitempty"`
	ParentID       ChannelID `json:"parent_id,omitempty"`
	LastPinTime    Timestamp `json:"last_pin_timestamp,omitempty"`
	RTCRegionID    string    `json:"rtc_region,omitempty"`
	ThreadMessages int       `json:"message_count,omitempty"`
	ThreadMembers  int       `json:"member_count,omitempty"`

	ThreadMetadata *ThreadMetadata `json:"thread_metadata,omitempty"`

	Flags ChannelFlags `json:"flags,omitempty"`
}

type ChannelFlags uint64

const (
	PinnedThread ChannelFlags = 1 << 1
	RequireTag   ChannelFlags = 1 << 4
)

type OverwriteType uint8

const (
	OverwriteRole OverwriteType = iota
	OverwriteMember
)

// Overwrite is a channel permission overwrite.
type Overwrite struct {
	ID    Snowflake     `json:"id"`
	Type  OverwriteType `json:"type"`
	Allow Permissions   `json:"allow"`
	Deny  Permissions   `json:"deny"`
}

type ThreadMetadata struct {
	Archived            bool      `json:"archived"`
	AutoArchiveDuration int       `json:"auto_archive_duration"`
	ArchiveTimestamp    Timestamp `json:"archive_timestamp"`
	Locked              bool      `json:"locked"`
	Invitable           bool      `json:"invitable,omitempty"`
}

// Mention returns the channel mention string.
func (ch Channel) Mention() string {
	return "<#" + ch.ID.String() + ">"
}

// IsGuild returns true if the channel is in a guild.
func (ch Channel) IsGuild() bool {
	return ch.GuildID.IsValid() || !ch.IsPrivate()
}

// IsPrivate returns true if the channel is a DM or group DM.
func (ch Channel) IsPrivate() bool {
	return ch.Type == DirectMessage || ch.Type == GroupDM
}

// IsThread returns true if the channel is a thread.
func (ch Channel) IsThread() bool {
	switch ch.Type {
	case GuildAnnouncementThread, GuildPublicThread, GuildPrivateThread:
		return true
	}
	return false
}

// IsVoice returns true if the channel is a voice or stage channel.
func (ch Channel) IsVoice() bool {
	return ch.Type == GuildVoice || ch.Type == GuildStageVoice
}

// IsTextable returns true if messages can be sent directly in the channel.
func (ch Channel) IsTextable() bool {
	switch ch.Type {
	case GuildText, DirectMessage, GroupDM, GuildAnnouncement, GuildVoice, GuildStageVoice:
		return true
	}
	return ch.IsThread()
}
