package rest

import (
	"context"
	"net/url"
	"strconv"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
)

// DefaultReactionsLimit is the number of users returned by Reactions if no limit is given.
const DefaultReactionsLimit = 25

// React adds a reaction as the current user.
func (c *Client) React(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, e discord.Emoji) error {
	err := c.do(ctx, request{
		route: RouteCreateReaction,
		args:  []interface{}{channelID, messageID, e.APIString()},
		major: discord.Snowflake(channelID),
	}, nil)
	if err != nil {
		return err
	}

	c.updateCachedReactions(ctx, channelID, messageID, func(r *discord.ReactionMapping, self discord.UserID) {
		r.Add(e, self)
	})
	return nil
}

// Unreact removes the current user's reaction.
func (c *Client) Unreact(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, e discord.Emoji) error {
	err := c.do(ctx, request{
		route: RouteDeleteOwnReaction,
		args:  []interface{}{channelID, messageID, e.APIString()},
		major: discord.Snowflake(channelID),
	}, nil)
	if err != nil {
		return err
	}

	c.updateCachedReactions(ctx, channelID, messageID, func(r *discord.ReactionMapping, self discord.UserID) {
		r.Remove(e, self)
	})
	return nil
}

// DeleteUserReaction removes another user's reaction.
func (c *Client) DeleteUserReaction(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, e discord.Emoji, userID discord.UserID) error {
	err := c.do(ctx, request{
		route: RouteDeleteUserReaction,
		args:  []interface{}{channelID, messageID, e.APIString(), userID},
		major: discord.Snowflake(channelID),
	}, nil)
	if err != nil {
		return err
	}

	c.updateCachedReactions(ctx, channelID, messageID, func(r *discord.ReactionMapping, _ discord.UserID) {
		r.Remove(e, userID)
	})
	return nil
}

// Reactions returns up to limit users who reacted with an emoji, with IDs after the given user.
// limit is between 1 and 100, and defaults to 25 if 0.
//
// When fetching the first page, the cached message's reactors are filled in,
// and if the page isn't full, the emoji is marked as fully loaded.
func (c *Client) Reactions(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, e discord.Emoji, after discord.UserID, limit int) (users []discord.User, err error) {
	if limit == 0 {
		limit = DefaultReactionsLimit
	}
	if limit < 1 || limit > MaxReactionsLimit {
		return nil, errors.WithMessagef(ErrInvalidReactionLim, "got %d", limit)
	}

	err = c.reactionsPage(ctx, channelID, messageID, e, after, limit, &users)
	if err != nil {
		return nil, err
	}

	// a later page can't say anything about the users before it
	if !after.IsValid() {
		ids := userIDs(users)
		c.updateCachedReactions(ctx, channelID, messageID, func(r *discord.ReactionMapping, _ discord.UserID) {
			r.FillSome(e, ids, limit)
		})
	}
	return users, nil
}

// AllReactions returns every user who reacted with an emoji, and marks the emoji as fully loaded in the cache.
func (c *Client) AllReactions(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, e discord.Emoji) ([]discord.User, error) {
	var (
		all   []discord.User
		after discord.UserID
	)
	for {
		var page []discord.User
		err := c.reactionsPage(ctx, channelID, messageID, e, after, MaxReactionsLimit, &page)
		if err != nil {
			return all, err
		}
		all = append(all, page...)

		if len(page) < MaxReactionsLimit {
			break
		}
		after = page[len(page)-1].ID
	}

	ids := userIDs(all)
	c.updateCachedReactions(ctx, channelID, messageID, func(r *discord.ReactionMapping, _ discord.UserID) {
		r.FillAll(e, ids)
	})
	return all, nil
}

func (c *Client) reactionsPage(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, e discord.Emoji, after discord.UserID, limit int, out *[]discord.User) error {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	if after.IsValid() {
		q.Set("after", after.String())
	}

	return c.do(ctx, request{
		route: RouteGetReactions,
		args:  []interface{}{channelID, messageID, e.APIString()},
		major: discord.Snowflake(channelID),
		query: q,
	}, out)
}

// DeleteAllReactions removes every reaction from a message.
func (c *Client) DeleteAllReactions(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) error {
	err := c.do(ctx, request{
		route: RouteDeleteAllReactions,
		args:  []interface{}{channelID, messageID},
		major: discord.Snowflake(channelID),
	}, nil)
	if err != nil {
		return err
	}

	c.updateCachedMessage(ctx, channelID, messageID, func(m *discord.Message) {
		m.Reactions.Clear()
	})
	return nil
}

// DeleteEmojiReactions removes every reaction with the given emoji from a message.
func (c *Client) DeleteEmojiReactions(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, e discord.Emoji) error {
	err := c.do(ctx, request{
		route: RouteDeleteEmojiReaction,
		args:  []interface{}{channelID, messageID, e.APIString()},
		major: discord.Snowflake(channelID),
	}, nil)
	if err != nil {
		return err
	}

	c.updateCachedMessage(ctx, channelID, messageID, func(m *discord.Message) {
		m.Reactions.RemoveEmoji(e)
	})
	return nil
}

func userIDs(users []discord.User) []discord.UserID {
	ids := make([]discord.UserID, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}
	return ids
}
