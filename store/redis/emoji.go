package redis

import (
	"context"
	"encoding/json"

	"github.com/mediocregopher/radix/v4"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

func (s *Store) guildEmojisKey(guildID discord.GuildID) string {
	return s.key("guildEmojis", guildID.String())
}

func (s *Store) Emoji(ctx context.Context, guildID discord.GuildID, emojiID discord.EmojiID) (discord.Emoji, error) {
	return hget[discord.Emoji](ctx, s, s.guildEmojisKey(guildID), emojiID.String())
}

func (s *Store) Emojis(ctx context.Context, guildID discord.GuildID) (es []discord.Emoji, err error) {
	emap := map[string][]byte{}

	err = s.client.Do(ctx, radix.Cmd(&emap, "HGETALL", s.guildEmojisKey(guildID)))
	if err != nil {
		return nil, err
	}

	if len(emap) == 0 {
		return nil, store.ErrNotFound
	}

	es = make([]discord.Emoji, 0, len(emap))
	for _, src := range emap {
		var e discord.Emoji
		err = json.Unmarshal(src, &e)
		if err != nil {
			return nil, err
		}

		es = append(es, e)
	}

	return es, nil
}

func (s *Store) SetEmoji(ctx context.Context, guildID discord.GuildID, e discord.Emoji) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	return s.client.Do(ctx, radix.Cmd(nil, "HSET", s.guildEmojisKey(guildID), e.ID.String(), string(b)))
}

// SetEmojis replaces all of a guild's emojis.
func (s *Store) SetEmojis(ctx context.Context, guildID discord.GuildID, es []discord.Emoji) error {
	key := s.guildEmojisKey(guildID)

	p := radix.NewPipeline()
	p.Append(radix.Cmd(nil, "DEL", key))

	if len(es) > 0 {
		args := make([]string, 0, len(es)*2+1)
		args = append(args, key)

		for _, e := range es {
			b, err := json.Marshal(e)
			if err != nil {
				return err
			}

			args = append(args, e.ID.String(), string(b))
		}
		p.Append(radix.Cmd(nil, "HSET", args...))
	}

	return s.client.Do(ctx, p)
}

func (s *Store) RemoveEmoji(ctx context.Context, guildID discord.GuildID, emojiID discord.EmojiID) error {
	return s.client.Do(ctx, radix.Cmd(nil, "HDEL", s.guildEmojisKey(guildID), emojiID.String()))
}
