// Package memory provides an in-memory store.
package memory

import (
	"sync"
	"time"

	"github.com/ReneKroon/ttlcache/v2"

	"github.com/starshine-sys/cordial/discord"
)

// Defaults for the message cache.
const (
	DefaultMessageTTL  = 30 * time.Minute
	DefaultMaxMessages = 10000
)

type Store struct {
	channels      map[discord.ChannelID]*discord.Channel
	guildChannels map[discord.GuildID][]discord.ChannelID
	channelsMu    sync.RWMutex

	emojis      map[discord.EmojiID]*discord.Emoji
	guildEmojis map[discord.GuildID][]discord.EmojiID
	emojisMu    sync.RWMutex

	messages *ttlcache.Cache
}

// Config configures the message cache. Zero values use the defaults.
type Config struct {
	MessageTTL  time.Duration
	MaxMessages int
}

func New(c Config) *Store {
	if c.MessageTTL <= 0 {
		c.MessageTTL = DefaultMessageTTL
	}
	if c.MaxMessages <= 0 {
		c.MaxMessages = DefaultMaxMessages
	}

	s := &Store{
		channels:      make(map[discord.ChannelID]*discord.Channel),
		guildChannels: make(map[discord.GuildID][]discord.ChannelID),
		emojis:        make(map[discord.EmojiID]*discord.Emoji),
		guildEmojis:   make(map[discord.GuildID][]discord.EmojiID),
		messages:      ttlcache.NewCache(),
	}

	s.messages.SetTTL(c.MessageTTL)
	s.messages.SetCacheSizeLimit(c.MaxMessages)
	// a message that's read often is still stale after the TTL
	s.messages.SkipTTLExtensionOnHit(true)
	return s
}

// Close stops the message cache's expiry goroutine.
func (s *Store) Close() error {
	return s.messages.Close()
}

// remove removes the given value in slice.
func remove[T comparable](slice []T, val T) []T {
	for i := range slice {
		if slice[i] == val {
			return append(slice[:i], slice[i+1:]...)
		}
	}
	return slice
}

// contains returns true if slice contains val.
func contains[T comparable](slice []T, val T) bool {
	for i := range slice {
		if slice[i] == val {
			return true
		}
	}
	return false
}
