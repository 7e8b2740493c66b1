package redis

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/mediocregopher/radix/v4"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

func (s *Store) messageKey(channelID discord.ChannelID, messageID discord.MessageID) string {
	return s.key("message", channelID.String(), messageID.String())
}

func (s *Store) Message(ctx context.Context, channelID discord.ChannelID, messageID discord.MessageID) (m discord.Message, err error) {
	var raw []byte

	err = s.client.Do(ctx, radix.Cmd(&raw, "GET", s.messageKey(channelID, messageID)))
	if err != nil {
		return m, err
	}

	if raw == nil {
		return m, store.ErrNotFound
	}

	return m, json.Unmarshal(raw, &m)
}

func (s *Store) SetMessage(ctx context.Context, m discord.Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}

	return s.client.Do(ctx, radix.Cmd(nil, "SET", s.messageKey(m.ChannelID, m.ID), string(b), "PX", ttlMillis(s.messageTTL)))
}

// ttlMillis formats d for PX, rounded up to at least a millisecond.
// Redis rejects an expiry of 0.
func ttlMillis(d time.Duration) string {
	ms := (d + time.Millisecond - 1) / time.Millisecond
	if ms < 1 {
		ms = 1
	}
	return strconv.FormatInt(int64(ms), 10)
}

func (s *Store) RemoveMessages(ctx context.Context, channelID discord.ChannelID, ids ...discord.MessageID) error {
	if len(ids) == 0 {
		return nil
	}

	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, s.messageKey(channelID, id))
	}
	return s.client.Do(ctx, radix.Cmd(nil, "DEL", keys...))
}
