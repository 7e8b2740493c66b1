package rest

import (
	"context"

	"github.com/starshine-sys/cordial/discord"
)

// Channel returns a channel by ID. The cache is checked first, if there is one.
func (c *Client) Channel(ctx context.Context, id discord.ChannelID) (ch discord.Channel, err error) {
	if s := c.channels(); s != nil {
		ch, err = s.Channel(ctx, id)
		if err == nil {
			return ch, nil
		}
		c.cacheErr(err, "channel")
	}

	err = c.do(ctx, request{route: RouteChannel, args: []interface{}{id}, major: discord.Snowflake(id)}, &ch)
	if err != nil {
		return ch, err
	}

	c.cacheChannel(ctx, ch)
	return ch, nil
}

// ModifyChannel updates a channel's settings.
func (c *Client) ModifyChannel(ctx context.Context, id discord.ChannelID, data ModifyChannelData, reason string) (ch discord.Channel, err error) {
	err = c.do(ctx, request{
		route:  RouteModifyChannel,
		args:   []interface{}{id},
		major:  discord.Snowflake(id),
		body:   data,
		reason: reason,
	}, &ch)
	if err != nil {
		return ch, err
	}

	c.cacheChannel(ctx, ch)
	return ch, nil
}

// DeleteChannel deletes a guild channel or closes a DM.
func (c *Client) DeleteChannel(ctx context.Context, id discord.ChannelID, reason string) error {
	var ch discord.Channel
	err := c.do(ctx, request{
		route:  RouteDeleteChannel,
		args:   []interface{}{id},
		major:  discord.Snowflake(id),
		reason: reason,
	}, &ch)
	if err != nil {
		return err
	}

	if s := c.channels(); s != nil {
		c.cacheErr(s.RemoveChannel(ctx, ch.GuildID, id), "channel")
	}
	return nil
}

// GuildChannels returns every channel in a guild, not including threads.
func (c *Client) GuildChannels(ctx context.Context, guildID discord.GuildID) (chs []discord.Channel, err error) {
	err = c.do(ctx, request{
		route: RouteGuildChannels,
		args:  []interface{}{guildID},
		major: discord.Snowflake(guildID),
	}, &chs)
	if err != nil {
		return nil, err
	}

	if s := c.channels(); s != nil {
		c.cacheErr(s.SetChannels(ctx, guildID, chs), "channels")
	}
	return chs, nil
}

// TriggerTyping shows the typing indicator in a channel for 10 seconds, or until a message is sent.
func (c *Client) TriggerTyping(ctx context.Context, id discord.ChannelID) error {
	return c.do(ctx, request{route: RouteTriggerTyping, args: []interface{}{id}, major: discord.Snowflake(id)}, nil)
}

// PinnedMessages returns the pinned messages in a channel, newest first.
func (c *Client) PinnedMessages(ctx context.Context, id discord.ChannelID) (msgs []discord.Message, err error) {
	err = c.do(ctx, request{route: RoutePinnedMessages, args: []interface{}{id}, major: discord.Snowflake(id)}, &msgs)
	return msgs, err
}

// PinMessage pins a message.
func (c *Client) PinMessage(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, reason string) error {
	err := c.do(ctx, request{
		route:  RoutePinMessage,
		args:   []interface{}{channelID, messageID},
		major:  discord.Snowflake(channelID),
		reason: reason,
	}, nil)
	if err != nil {
		return err
	}

	c.updateCachedMessage(ctx, channelID, messageID, func(m *discord.Message) { m.Pinned = true })
	return nil
}

// UnpinMessage unpins a message.
func (c *Client) UnpinMessage(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, reason string) error {
	err := c.do(ctx, request{
		route:  RouteUnpinMessage,
		args:   []interface{}{channelID, messageID},
		major:  discord.Snowflake(channelID),
		reason: reason,
	}, nil)
	if err != nil {
		return err
	}

	c.updateCachedMessage(ctx, channelID, messageID, func(m *discord.Message) { m.Pinned = false })
	return nil
}
