package rest

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
)

const (
	// MaxMessagesBefore is the most messages MessagesBefore will fetch.
	MaxMessagesBefore = 1000
	// BulkDeleteMaxAge is how old a message can be before bulk delete refuses it.
	BulkDeleteMaxAge = 14 * 24 * time.Hour
)

// Message returns a message. The cache is checked first, if there is one.
func (c *Client) Message(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) (m discord.Message, err error) {
	if s := c.messages(); s != nil {
		m, err = s.Message(ctx, channelID, messageID)
		if err == nil {
			return m, nil
		}
		c.cacheErr(err, "message")
	}

	err = c.do(ctx, request{
		route: RouteMessage,
		args:  []interface{}{channelID, messageID},
		major: discord.Snowflake(channelID),
	}, &m)
	if err != nil {
		return m, err
	}

	c.cacheMessage(ctx, m)
	return m, nil
}

// MessagesQuery filters a Messages request. Only one of Before, After, and Around can be set.
type MessagesQuery struct {
	Before discord.MessageID
	After  discord.MessageID
	Around discord.MessageID
	// Limit is between 1 and 100, and defaults to 50.
	Limit int
}

func (q MessagesQuery) values() url.Values {
	v := url.Values{}
	switch {
	case q.Before.IsValid():
		v.Set("before", q.Before.String())
	case q.After.IsValid():
		v.Set("after", q.After.String())
	case q.Around.IsValid():
		v.Set("around", q.Around.String())
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

// Messages returns up to 100 messages in a channel, newest first.
// Fetched messages are merged with cached ones, so reactors that are already known stay known.
func (c *Client) Messages(ctx context.Context, channelID discord.ChannelID, q MessagesQuery) (msgs []discord.Message, err error) {
	if q.Limit > 100 {
		q.Limit = 100
	}

	err = c.do(ctx, request{
		route: RouteMessages,
		args:  []interface{}{channelID},
		major: discord.Snowflake(channelID),
		query: q.values(),
	}, &msgs)
	if err != nil {
		return nil, err
	}

	for i := range msgs {
		c.mergeCached(ctx, &msgs[i])
	}
	return msgs, nil
}

// MessagesBefore returns up to limit messages sent before the given message, newest first.
// It makes as many requests as needed. limit is capped at MaxMessagesBefore, and a limit of 0 means the cap.
func (c *Client) MessagesBefore(ctx context.Context, channelID discord.ChannelID, before discord.MessageID, limit int) ([]discord.Message, error) {
	if limit <= 0 || limit > MaxMessagesBefore {
		limit = MaxMessagesBefore
	}

	var all []discord.Message
	for len(all) < limit {
		page := limit - len(all)
		if page > 100 {
			page = 100
		}

		msgs, err := c.Messages(ctx, channelID, MessagesQuery{Before: before, Limit: page})
		if err != nil {
			return all, err
		}
		all = append(all, msgs...)

		if len(msgs) < page {
			break
		}
		before = msgs[len(msgs)-1].ID
	}
	return all, nil
}

// mergeCached replaces a fetched message's reactions with the cached mapping updated to the fetched counts, and stores the result.
func (c *Client) mergeCached(ctx context.Context, m *discord.Message) {
	s := c.messages()
	if s == nil {
		return
	}

	cached, err := s.Message(ctx, m.ChannelID, m.ID)
	if err == nil {
		cached.Reactions.Update(m.Reactions.Reactions())
		m.Reactions = cached.Reactions
	} else {
		c.cacheErr(err, "message")
	}
	c.cacheMessage(ctx, *m)
}

// SendMessage sends a message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID discord.ChannelID, data SendMessageData) (m discord.Message, err error) {
	if err := data.Validate(); err != nil {
		return m, err
	}
	if data.Attachments == nil {
		data.Attachments = AttachmentsFor(data.Files)
	}

	err = c.do(ctx, request{
		route: RouteCreateMessage,
		args:  []interface{}{channelID},
		major: discord.Snowflake(channelID),
		body:  data,
		files: data.Files,
	}, &m)
	if err != nil {
		return m, err
	}

	c.cacheMessage(ctx, m)
	return m, nil
}

// SendContent is a shortcut for sending a message with only content.
func (c *Client) SendContent(ctx context.Context, channelID discord.ChannelID, content string) (discord.Message, error) {
	return c.SendMessage(ctx, channelID, SendMessageData{Content: content})
}

// EditMessage edits a message.
// If Files are given without Attachments, the message's existing attachments are replaced.
func (c *Client) EditMessage(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, data EditMessageData) (m discord.Message, err error) {
	if err := data.Validate(); err != nil {
		return m, err
	}
	if data.Attachments == nil && len(data.Files) > 0 {
		a := AttachmentsFor(data.Files)
		data.Attachments = &a
	}

	err = c.do(ctx, request{
		route: RouteEditMessage,
		args:  []interface{}{channelID, messageID},
		major: discord.Snowflake(channelID),
		body:  data,
		files: data.Files,
	}, &m)
	if err != nil {
		return m, err
	}

	c.mergeCached(ctx, &m)
	return m, nil
}

// DeleteMessage deletes a message.
func (c *Client) DeleteMessage(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID, reason string) error {
	err := c.do(ctx, request{
		route:  RouteDeleteMessage,
		args:   []interface{}{channelID, messageID},
		major:  discord.Snowflake(channelID),
		reason: reason,
	}, nil)
	if err != nil && !HasCode(err, ErrUnknownMessage) {
		return err
	}

	c.uncacheMessages(ctx, channelID, messageID)
	return err
}

// BulkDeleteMessages deletes between 2 and 100 messages in a single request.
// Discord rejects the whole request if any message is older than two weeks, see DeleteMessages.
func (c *Client) BulkDeleteMessages(ctx context.Context, channelID discord.ChannelID, ids []discord.MessageID, reason string) error {
	if len(ids) < MinBulkDelete || len(ids) > MaxBulkDelete {
		return errors.WithMessagef(ErrBulkDeleteCount, "got %d", len(ids))
	}

	err := c.do(ctx, request{
		route: RouteBulkDeleteMessages,
		args:  []interface{}{channelID},
		major: discord.Snowflake(channelID),
		body: struct {
			Messages []discord.MessageID `json:"messages"`
		}{ids},
		reason: reason,
	}, nil)
	if err != nil {
		return err
	}

	c.uncacheMessages(ctx, channelID, ids...)
	return nil
}

// DeleteMessages deletes any number of messages.
// Recent messages are bulk deleted 100 at a time. Messages older than two weeks,
// and a chunk of one, are deleted one by one.
// Every message is attempted; the returned error combines all failures.
func (c *Client) DeleteMessages(ctx context.Context, channelID discord.ChannelID, ids []discord.MessageID, reason string) (err error) {
	// a minute of leeway, so a message doesn't age out between checking it and the request arriving
	cutoff := time.Now().Add(-BulkDeleteMaxAge + time.Minute)

	var recent, old []discord.MessageID
	seen := make(map[discord.MessageID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if id.Time().Before(cutoff) {
			old = append(old, id)
		} else {
			recent = append(recent, id)
		}
	}

	for len(recent) > 0 {
		n := len(recent)
		if n > MaxBulkDelete {
			n = MaxBulkDelete
		}
		chunk := recent[:n]
		recent = recent[n:]

		if len(chunk) == 1 {
			old = append(old, chunk[0])
			continue
		}

		if bulkErr := c.BulkDeleteMessages(ctx, channelID, chunk, reason); bulkErr != nil {
			err = errors.Append(err, errors.WithMessagef(bulkErr, "bulk deleting %d messages", len(chunk)))
		}
	}

	for _, id := range old {
		if ctx.Err() != nil {
			return errors.Append(err, ctx.Err())
		}

		if delErr := c.DeleteMessage(ctx, channelID, id, reason); delErr != nil && !HasCode(delErr, ErrUnknownMessage) {
			err = errors.Append(err, errors.WithMessagef(delErr, "deleting message %v", id))
		}
	}
	return err
}
