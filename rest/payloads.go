package rest

import (
	"unicode/utf8"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
)

// Request limits
const (
	MaxEmbeds         = 10
	MaxFiles          = 10
	MaxBulkDelete     = 100
	MinBulkDelete     = 2
	MaxReactionsLimit = 100
)

// Errors returned by Validate. They are checked before anything is sent.
const (
	ErrContentTooLong     = errors.Sentinel("message content too long")
	ErrTooManyEmbeds      = errors.Sentinel("too many embeds")
	ErrTooManyActionRows  = errors.Sentinel("too many action rows")
	ErrTooManyFiles       = errors.Sentinel("too many files")
	ErrEmptyMessage       = errors.Sentinel("message has no content, embeds, components, or files")
	ErrBulkDeleteCount    = errors.Sentinel("bulk delete needs between 2 and 100 messages")
	ErrInvalidReactionLim = errors.Sentinel("reaction limit must be between 1 and 100")
)

// SendMessageData is the body of a create message request.
type SendMessageData struct {
	Content         string                    `json:"content,omitempty"`
	TTS             bool                      `json:"tts,omitempty"`
	Nonce           discord.Nonce             `json:"nonce,omitempty"`
	Embeds          []discord.Embed           `json:"embeds,omitempty"`
	Components      discord.Components        `json:"components,omitempty"`
	AllowedMentions *discord.AllowedMentions  `json:"allowed_mentions,omitempty"`
	Reference       *discord.MessageReference `json:"message_reference,omitempty"`
	Flags           discord.MessageFlags      `json:"flags,omitempty"`
	StickerIDs      []discord.Snowflake       `json:"sticker_ids,omitempty"`

	Attachments []discord.PartialAttachment `json:"attachments,omitempty"`
	Files       []discord.File              `json:"-"`
}

// Validate checks the message against Discord's limits.
func (d SendMessageData) Validate() error {
	if d.Content == "" && len(d.Embeds) == 0 && len(d.Components) == 0 && len(d.Files) == 0 && len(d.StickerIDs) == 0 {
		return ErrEmptyMessage
	}
	return validateMessage(d.Content, d.Embeds, d.Components, d.Files)
}

// EditMessageData is the body of an edit message request.
// Nil fields are left unchanged. Set a field to a pointer to its zero value to clear it.
type EditMessageData struct {
	Content         *string                  `json:"content,omitempty"`
	Embeds          *[]discord.Embed         `json:"embeds,omitempty"`
	Components      *discord.Components      `json:"components,omitempty"`
	AllowedMentions *discord.AllowedMentions `json:"allowed_mentions,omitempty"`
	Flags           *discord.MessageFlags    `json:"flags,omitempty"`

	// Attachments is the full list of attachments to keep, plus any new files.
	Attachments *[]discord.PartialAttachment `json:"attachments,omitempty"`
	Files       []discord.File               `json:"-"`
}

func (d EditMessageData) Validate() error {
	var (
		content    string
		embeds     []discord.Embed
		components discord.Components
	)
	if d.Content != nil {
		content = *d.Content
	}
	if d.Embeds != nil {
		embeds = *d.Embeds
	}
	if d.Components != nil {
		components = *d.Components
	}
	return validateMessage(content, embeds, components, d.Files)
}

// ExecuteWebhookData is the body of an execute webhook request, also used for interaction follow-ups.
type ExecuteWebhookData struct {
	Content   string `json:"content,omitempty"`
	Username  string `json:"username,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	TTS       bool   `json:"tts,omitempty"`

	Embeds          []discord.Embed          `json:"embeds,omitempty"`
	Components      discord.Components       `json:"components,omitempty"`
	AllowedMentions *discord.AllowedMentions `json:"allowed_mentions,omitempty"`
	Flags           discord.MessageFlags     `json:"flags,omitempty"`
	ThreadName      string                   `json:"thread_name,omitempty"`

	Attachments []discord.PartialAttachment `json:"attachments,omitempty"`
	Files       []discord.File              `json:"-"`
}

func (d ExecuteWebhookData) Validate() error {
	if d.Content == "" && len(d.Embeds) == 0 && len(d.Components) == 0 && len(d.Files) == 0 {
		return ErrEmptyMessage
	}
	return validateMessage(d.Content, d.Embeds, d.Components, d.Files)
}

func validateMessage(content string, embeds []discord.Embed, components discord.Components, files []discord.File) error {
	if n := utf8.RuneCountInString(content); n > discord.MaxMessageLength {
		return errors.WithMessagef(ErrContentTooLong, "content is %d characters, max %d", n, discord.MaxMessageLength)
	}

	if len(embeds) > MaxEmbeds {
		return errors.WithMessagef(ErrTooManyEmbeds, "%d embeds, max %d", len(embeds), MaxEmbeds)
	}
	total := 0
	for i, e := range embeds {
		if err := e.Validate(); err != nil {
			return errors.WithMessagef(err, "embed %d", i)
		}
		total += e.Length()
	}
	// the 6000 character limit applies to all embeds in a message combined
	if total > discord.MaxEmbedLength {
		return errors.WithMessagef(discord.ErrEmbedTooLong, "embeds total %d characters, max %d", total, discord.MaxEmbedLength)
	}

	if len(components) > discord.MaxActionRows {
		return errors.WithMessagef(ErrTooManyActionRows, "%d action rows, max %d", len(components), discord.MaxActionRows)
	}

	if len(files) > MaxFiles {
		return errors.WithMessagef(ErrTooManyFiles, "%d files, max %d", len(files), MaxFiles)
	}
	return nil
}

// ModifyChannelData is the body of a modify channel request. Nil fields are left unchanged.
type ModifyChannelData struct {
	Name          *string               `json:"name,omitempty"`
	Position      *int                  `json:"position,omitempty"`
	Topic         *string               `json:"topic,omitempty"`
	NSFW          *bool                 `json:"nsfw,omitempty"`
	UserRateLimit *int                  `json:"rate_limit_per_user,omitempty"`
	Overwrites    *[]discord.Overwrite  `json:"permission_overwrites,omitempty"`
	ParentID      *discord.ChannelID    `json:"parent_id,omitempty"`
	Flags         *discord.ChannelFlags `json:"flags,omitempty"`
	Archived      *bool                 `json:"archived,omitempty"`
	Locked        *bool                 `json:"locked,omitempty"`
}

// CreateEmojiData is the body of a create emoji request.
// Image is a data URI, see ImageData.
type CreateEmojiData struct {
	Name  string           `json:"name"`
	Image string           `json:"image"`
	Roles []discord.RoleID `json:"roles,omitempty"`
}

// ModifyEmojiData is the body of a modify emoji request.
type ModifyEmojiData struct {
	Name  *string           `json:"name,omitempty"`
	Roles *[]discord.RoleID `json:"roles,omitempty"`
}
