package store

import (
	"context"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
)

// Layered is a MessageStore that reads from Cache first, then from Archive.
// Writes and removals go to both.
type Layered struct {
	Cache   MessageStore
	Archive MessageStore
}

var _ MessageStore = (*Layered)(nil)

func (l *Layered) Message(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) (discord.Message, error) {
	m, err := l.Cache.Message(ctx, channelID, messageID)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return m, err
	}

	m, err = l.Archive.Message(ctx, channelID, messageID)
	if err != nil {
		return m, err
	}

	// warm the cache for the next read
	if err := l.Cache.SetMessage(ctx, m); err != nil {
		return m, errors.Wrap(err, "caching archived message")
	}
	return m, nil
}

func (l *Layered) SetMessage(ctx context.Context, m discord.Message) error {
	return errors.Combine(
		l.Cache.SetMessage(ctx, m),
		l.Archive.SetMessage(ctx, m),
	)
}

func (l *Layered) RemoveMessages(ctx context.Context, channelID discord.ChannelID, ids ...discord.MessageID) error {
	return errors.Combine(
		l.Cache.RemoveMessages(ctx, channelID, ids...),
		l.Archive.RemoveMessages(ctx, channelID, ids...),
	)
}
