package rest

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/starshine-sys/cordial/discord"
)

// ImageData encodes an image as a data URI, as used for emoji and avatar uploads.
// If contentType is empty, it's detected from the data.
func ImageData(contentType string, data []byte) string {
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Emojis returns a guild's custom emojis.
func (c *Client) Emojis(ctx context.Context, guildID discord.GuildID) (es []discord.Emoji, err error) {
	if s := c.emojis(); s != nil {
		es, err = s.Emojis(ctx, guildID)
		if err == nil && len(es) > 0 {
			return es, nil
		}
		c.cacheErr(err, "emojis")
	}

	err = c.do(ctx, request{
		route: RouteGuildEmojis,
		args:  []interface{}{guildID},
		major: discord.Snowflake(guildID),
	}, &es)
	if err != nil {
		return nil, err
	}

	if s := c.emojis(); s != nil {
		c.cacheErr(s.SetEmojis(ctx, guildID, es), "emojis")
	}
	return es, nil
}

// Emoji returns a single custom emoji.
func (c *Client) Emoji(ctx context.Context, guildID discord.GuildID, emojiID discord.EmojiID) (e discord.Emoji, err error) {
	if s := c.emojis(); s != nil {
		e, err = s.Emoji(ctx, guildID, emojiID)
		if err == nil {
			return e, nil
		}
		c.cacheErr(err, "emoji")
	}

	err = c.do(ctx, request{
		route: RouteGuildEmoji,
		args:  []interface{}{guildID, emojiID},
		major: discord.Snowflake(guildID),
	}, &e)
	if err != nil {
		return e, err
	}

	c.cacheEmoji(ctx, guildID, e)
	return e, nil
}

// CreateEmoji creates a custom emoji. Image must be a data URI, see ImageData.
func (c *Client) CreateEmoji(ctx context.Context, guildID discord.GuildID, data CreateEmojiData, reason string) (e discord.Emoji, err error) {
	err = c.do(ctx, request{
		route:  RouteCreateEmoji,
		args:   []interface{}{guildID},
		major:  discord.Snowflake(guildID),
		body:   data,
		reason: reason,
	}, &e)
	if err != nil {
		return e, err
	}

	c.cacheEmoji(ctx, guildID, e)
	return e, nil
}

// ModifyEmoji changes a custom emoji's name or roles.
func (c *Client) ModifyEmoji(ctx context.Context, guildID discord.GuildID, emojiID discord.EmojiID, data ModifyEmojiData, reason string) (e discord.Emoji, err error) {
	err = c.do(ctx, request{
		route:  RouteModifyEmoji,
		args:   []interface{}{guildID, emojiID},
		major:  discord.Snowflake(guildID),
		body:   data,
		reason: reason,
	}, &e)
	if err != nil {
		return e, err
	}

	c.cacheEmoji(ctx, guildID, e)
	return e, nil
}

// DeleteEmoji deletes a custom emoji.
func (c *Client) DeleteEmoji(ctx context.Context, guildID discord.GuildID, emojiID discord.EmojiID, reason string) error {
	err := c.do(ctx, request{
		route:  RouteDeleteEmoji,
		args:   []interface{}{guildID, emojiID},
		major:  discord.Snowflake(guildID),
		reason: reason,
	}, nil)
	if err != nil {
		return err
	}

	if s := c.emojis(); s != nil {
		c.cacheErr(s.RemoveEmoji(ctx, guildID, emojiID), "emoji")
	}
	return nil
}

func (c *Client) cacheEmoji(ctx context.Context, guildID discord.GuildID, e discord.Emoji) {
	if s := c.emojis(); s != nil {
		c.cacheErr(s.SetEmoji(ctx, guildID, e), "emoji")
	}
}
