package memory

import (
	"context"

	"emperror.dev/errors"
	"github.com/ReneKroon/ttlcache/v2"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

var _ store.MessageStore = (*Store)(nil)

func messageKey(channelID discord.ChannelID, messageID discord.MessageID) string {
	return channelID.String() + ":" + messageID.String()
}

// Message returns a cached message.
// The reaction mapping is copied, so changing it doesn't change the cached message.
func (s *Store) Message(_ context.Context, channelID discord.ChannelID, messageID discord.MessageID) (discord.Message, error) {
	v, err := s.messages.Get(messageKey(channelID, messageID))
	if err != nil {
		if errors.Is(err, ttlcache.ErrNotFound) {
			return discord.Message{}, store.ErrNotFound
		}
		return discord.Message{}, errors.Wrap(err, "getting message")
	}

	m, ok := v.(discord.Message)
	if !ok {
		return discord.Message{}, store.ErrNotFound
	}
	m.Reactions = m.Reactions.Clone()
	return m, nil
}

func (s *Store) SetMessage(_ context.Context, m discord.Message) error {
	m.Reactions = m.Reactions.Clone()
	return errors.Wrap(s.messages.Set(messageKey(m.ChannelID, m.ID), m), "setting message")
}

func (s *Store) RemoveMessages(_ context.Context, channelID discord.ChannelID, ids ...discord.MessageID) error {
	for _, id := range ids {
		err := s.messages.Remove(messageKey(channelID, id))
		if err != nil && !errors.Is(err, ttlcache.ErrNotFound) {
			return errors.Wrap(err, "removing message")
		}
	}
	return nil
}
