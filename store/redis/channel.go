package redis

import (
	"context"
	"encoding/json"

	"github.com/mediocregopher/radix/v4"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

// every channel lives in a single hash, and guilds have a set of their channel IDs
func (s *Store) channelsKey() string {
	return s.key("channels")
}

func (s *Store) guildChannelsKey(guildID discord.GuildID) string {
	return s.key("guildChannels", guildID.String())
}

func (s *Store) Channel(ctx context.Context, channelID discord.ChannelID) (discord.Channel, error) {
	return hget[discord.Channel](ctx, s, s.channelsKey(), channelID.String())
}

// Channels returns a guild's channels, in no particular order.
func (s *Store) Channels(ctx context.Context, guildID discord.GuildID) ([]discord.Channel, error) {
	var ids []string
	err := s.client.Do(ctx, radix.Cmd(&ids, "SMEMBERS", s.guildChannelsKey(guildID)))
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return nil, store.ErrNotFound
	}

	return hmget[discord.Channel](ctx, s, s.channelsKey(), ids)
}

func (s *Store) SetChannel(ctx context.Context, ch discord.Channel) error {
	return s.SetChannels(ctx, ch.GuildID, []discord.Channel{ch})
}

func (s *Store) SetChannels(ctx context.Context, guildID discord.GuildID, chs []discord.Channel) error {
	if len(chs) == 0 {
		return nil
	}

	hset := make([]string, 0, len(chs)*2+1)
	hset = append(hset, s.channelsKey())
	sadd := []string{s.guildChannelsKey(guildID)}

	for _, ch := range chs {
		if guildID.IsValid() {
			ch.GuildID = guildID
		}

		b, err := json.Marshal(ch)
		if err != nil {
			return err
		}

		hset = append(hset, ch.ID.String(), string(b))
		sadd = append(sadd, ch.ID.String())
	}

	p := radix.NewPipeline()
	p.Append(radix.Cmd(nil, "HSET", hset...))
	// DMs aren't listed under a guild
	if guildID.IsValid() {
		p.Append(radix.Cmd(nil, "SADD", sadd...))
	}
	return s.client.Do(ctx, p)
}

func (s *Store) RemoveChannel(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) error {
	p := radix.NewPipeline()
	p.Append(radix.Cmd(nil, "HDEL", s.channelsKey(), channelID.String()))
	p.Append(radix.Cmd(nil, "SREM", s.guildChannelsKey(guildID), channelID.String()))
	return s.client.Do(ctx, p)
}

func (s *Store) RemoveChannels(ctx context.Context, guildID discord.GuildID) error {
	var ids []string
	err := s.client.Do(ctx, radix.Cmd(&ids, "SMEMBERS", s.guildChannelsKey(guildID)))
	if err != nil {
		return err
	}

	p := radix.NewPipeline()
	if len(ids) > 0 {
		p.Append(radix.Cmd(nil, "HDEL", append([]string{s.channelsKey()}, ids...)...))
	}
	p.Append(radix.Cmd(nil, "DEL", s.guildChannelsKey(guildID)))
	return s.client.Do(ctx, p)
}
