package rest

import (
	"context"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

// Cache errors are logged and otherwise ignored: a stale cache shouldn't fail a request that succeeded.

func (c *Client) cacheErr(err error, what string) {
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		c.log.Errorf("Error updating cached %v: %v", what, err)
	}
}

func (c *Client) channels() store.ChannelStore {
	if c.cabinet == nil {
		return nil
	}
	return c.cabinet.Channels
}

func (c *Client) messages() store.MessageStore {
	if c.cabinet == nil {
		return nil
	}
	return c.cabinet.Messages
}

func (c *Client) emojis() store.EmojiStore {
	if c.cabinet == nil {
		return nil
	}
	return c.cabinet.Emojis
}

func (c *Client) cacheChannel(ctx context.Context, ch discord.Channel) {
	if s := c.channels(); s != nil {
		c.cacheErr(s.SetChannel(ctx, ch), "channel")
	}
}

func (c *Client) cacheMessage(ctx context.Context, m discord.Message) {
	if s := c.messages(); s != nil {
		c.cacheErr(s.SetMessage(ctx, m), "message")
	}
}

func (c *Client) uncacheMessages(ctx context.Context, channelID discord.ChannelID, ids ...discord.MessageID) {
	if s := c.messages(); s != nil {
		c.cacheErr(s.RemoveMessages(ctx, channelID, ids...), "message")
	}
}

// updateCachedMessage applies fn to the cached message, if there is one, and stores the result.
func (c *Client) updateCachedMessage(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, fn func(m *discord.Message)) {
	s := c.messages()
	if s == nil {
		return
	}

	m, err := s.Message(ctx, channelID, messageID)
	if err != nil {
		c.cacheErr(err, "message")
		return
	}

	fn(&m)
	c.cacheMessage(ctx, m)
}

// updateCachedReactions is updateCachedMessage for reaction changes.
// The mapping is bound to the current user first, so it knows which reactions are ours.
func (c *Client) updateCachedReactions(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, fn func(r *discord.ReactionMapping, self discord.UserID)) {
	if c.messages() == nil {
		return
	}

	self, err := c.selfID(ctx)
	if err != nil {
		c.log.Errorf("Error getting current user to update cached reactions: %v", err)
		return
	}

	c.updateCachedMessage(ctx, channelID, messageID, func(m *discord.Message) {
		m.Reactions.Bind(self)
		fn(&m.Reactions, self)
	})
}
