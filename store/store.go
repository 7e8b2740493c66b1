// Package store defines interfaces for caching Discord entities between requests.
// The REST client reads through these and keeps them up to date as it makes changes,
// so a cache backed by redis or postgres can survive restarts.
package store

import (
	"context"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
)

const ErrNotFound = errors.Sentinel("value not found in store")

type ChannelStore interface {
	Channel(ctx context.Context, channelID discord.ChannelID) (discord.Channel, error)
	Channels(ctx context.Context, guildID discord.GuildID) ([]discord.Channel, error)
	SetChannel(ctx context.Context, ch discord.Channel) error
	// This can easily just wrap SetChannel, this function is separate for optimization reasons
	SetChannels(ctx context.Context, guildID discord.GuildID, chs []discord.Channel) error
	RemoveChannel(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) error
	RemoveChannels(ctx context.Context, guildID discord.GuildID) error
}

type MessageStore interface {
	Message(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) (discord.Message, error)
	SetMessage(ctx context.Context, m discord.Message) error
	RemoveMessages(ctx context.Context, channelID discord.ChannelID, ids ...discord.MessageID) error
}

type EmojiStore interface {
	Emoji(ctx context.Context, guildID discord.GuildID, emojiID discord.EmojiID) (discord.Emoji, error)
	Emojis(ctx context.Context, guildID discord.GuildID) ([]discord.Emoji, error)
	SetEmoji(ctx context.Context, guildID discord.GuildID, e discord.Emoji) error
	SetEmojis(ctx context.Context, guildID discord.GuildID, es []discord.Emoji) error
	RemoveEmoji(ctx context.Context, guildID discord.GuildID, emojiID discord.EmojiID) error
}

// Cabinet bundles the stores used by the REST client. Any of them can be nil to disable caching that type.
type Cabinet struct {
	Channels ChannelStore
	Messages MessageStore
	Emojis   EmojiStore
}

// Store is implemented by backends that can cache everything.
type Store interface {
	ChannelStore
	MessageStore
	EmojiStore
}

// NewCabinet returns a cabinet that uses s for everything.
func NewCabinet(s Store) *Cabinet {
	return &Cabinet{Channels: s, Messages: s, Emojis: s}
}
