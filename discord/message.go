package discord

import (
	"bytes"
	"encoding/json"
	"strconv"

	"emperror.dev/errors"
)

// MaxMessageLength is the maximum length of a message's content.
const MaxMessageLength = 2000

// MessageType is the type of a message.
type MessageType uint8

const (
	DefaultMessage MessageType = iota
	RecipientAddMessage
	RecipientRemoveMessage
	CallMessage
	ChannelNameChangeMessage
	ChannelIconChangeMessage
	ChannelPinnedMessage
	GuildMemberJoinMessage
	NitroBoostMessage
	NitroTier1Message
	NitroTier2Message
	NitroTier3Message
	ChannelFollowAddMessage
	_
	GuildDiscoveryDisqualifiedMessage
	GuildDiscoveryRequalifiedMessage
	GuildDiscoveryGracePeriodInitialWarningMessage
	GuildDiscoveryGracePeriodFinalWarningMessage
	ThreadCreatedMessage
	InlinedReplyMessage
	ChatInputCommandMessage
	ThreadStarterMessage
	GuildInviteReminderMessage
	ContextMenuCommandMessage
	AutoModerationActionMessage
)

type MessageFlags uint32

const (
	CrosspostedMessage MessageFlags = 1 << iota
	MessageIsCrosspost
	SuppressEmbeds
	SourceMessageDeleted
	UrgentMessage
	MessageHasThread
	EphemeralMessage
	MessageLoading
	FailedToMentionSomeRolesInThread
	_
	_
	_
	SuppressNotifications
	IsVoiceMessage
)

// Message is a message sent in a channel.
type Message struct {
	ID        MessageID    `json:"id"`
	ChannelID ChannelID    `json:"channel_id"`
	GuildID   GuildID      `json:"guild_id,omitempty"`
	Type      MessageType  `json:"type"`
	Flags     MessageFlags `json:"flags,omitempty"`

	Author User    `json:"author"`
	Member *Member `json:"member,omitempty"`

	Content string `json:"content"`

	Timestamp       Timestamp `json:"timestamp"`
	EditedTimestamp Timestamp `json:"edited_timestamp"`

	TTS             bool     `json:"tts"`
	MentionEveryone bool     `json:"mention_everyone"`
	Mentions        []User   `json:"mentions"`
	MentionRoleIDs  []RoleID `json:"mention_roles"`

	Attachments []Attachment    `json:"attachments"`
	Embeds      []Embed         `json:"embeds"`
	Reactions   ReactionMapping `json:"reactions,omitempty"`
	Components  Components      `json:"components,omitempty"`

	Nonce  Nonce `json:"nonce,omitempty"`
	Pinned bool  `json:"pinned"`

	WebhookID WebhookID `json:"webhook_id,omitempty"`
	AppID     AppID     `json:"application_id,omitempty"`

	Reference         *MessageReference   `json:"message_reference,omitempty"`
	ReferencedMessage *Message            `json:"referenced_message,omitempty"`
	Interaction       *MessageInteraction `json:"interaction,omitempty"`
}

// URL returns a link to the message.
func (m Message) URL() string {
	guild := "@me"
	if m.GuildID.IsValid() {
		guild = m.GuildID.String()
	}
	return "https://discord.com/channels/" + guild + "/" + m.ChannelID.String() + "/" + m.ID.String()
}

// IsEdited returns true if the message has been edited.
func (m Message) IsEdited() bool {
	return m.EditedTimestamp.IsValid()
}

// IsWebhook returns true if the message was sent by a webhook.
func (m Message) IsWebhook() bool {
	return m.WebhookID.IsValid()
}

// MessageReference points to another message, for replies and crossposts.
type MessageReference struct {
	MessageID MessageID `json:"message_id,omitempty"`
	ChannelID ChannelID `json:"channel_id,omitempty"`
	GuildID   GuildID   `json:"guild_id,omitempty"`

	// Only used when sending. If false, replying to a deleted message errors.
	FailIfNotExists *bool `json:"fail_if_not_exists,omitempty"`
}

// MessageInteraction is sent on messages that are a response to an interaction.
type MessageInteraction struct {
	ID     InteractionID   `json:"id"`
	Type   InteractionType `json:"type"`
	Name   string          `json:"name"`
	User   User            `json:"user"`
	Member *Member         `json:"member,omitempty"`
}

type AllowedMentionType string

const (
	AllowRoleMentions     AllowedMentionType = "roles"
	AllowUserMentions     AllowedMentionType = "users"
	AllowEveryoneMentions AllowedMentionType = "everyone"
)

// AllowedMentions restricts which mentions in a message actually ping.
// An empty, non-nil AllowedMentions disables all mentions.
type AllowedMentions struct {
	Parse       []AllowedMentionType `json:"parse"`
	Roles       []RoleID             `json:"roles,omitempty"`
	Users       []UserID             `json:"users,omitempty"`
	RepliedUser bool                 `json:"replied_user,omitempty"`
}

// Nonce is a message nonce. Discord accepts either a string or an integer.
type Nonce string

func (n Nonce) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

func (n *Nonce) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Nonce(s)
		return nil
	}

	i, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return errors.Wrap(err, "nonce is neither a string nor an integer")
	}
	*n = Nonce(strconv.FormatInt(i, 10))
	return nil
}
