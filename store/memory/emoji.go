package memory

import (
	"context"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

var _ store.EmojiStore = (*Store)(nil)

func (s *Store) Emojis(_ context.Context, guildID discord.GuildID) (es []discord.Emoji, err error) {
	s.emojisMu.RLock()
	defer s.emojisMu.RUnlock()

	ids, ok := s.guildEmojis[guildID]
	if !ok || len(ids) == 0 {
		return nil, store.ErrNotFound
	}

	for _, id := range ids {
		e, ok := s.emojis[id]
		if ok {
			es = append(es, *e)
		}
	}

	return es, nil
}

func (s *Store) Emoji(_ context.Context, guildID discord.GuildID, emojiID discord.EmojiID) (discord.Emoji, error) {
	s.emojisMu.RLock()
	defer s.emojisMu.RUnlock()

	if !contains(s.guildEmojis[guildID], emojiID) {
		return discord.Emoji{}, store.ErrNotFound
	}

	e, ok := s.emojis[emojiID]
	if !ok {
		return discord.Emoji{}, store.ErrNotFound
	}
	return *e, nil
}

func (s *Store) SetEmoji(_ context.Context, guildID discord.GuildID, e discord.Emoji) error {
	s.emojisMu.Lock()
	defer s.emojisMu.Unlock()

	s.emojis[e.ID] = &e
	if !contains(s.guildEmojis[guildID], e.ID) {
		s.guildEmojis[guildID] = append(s.guildEmojis[guildID], e.ID)
	}
	return nil
}

// SetEmojis replaces a guild's emojis.
func (s *Store) SetEmojis(_ context.Context, guildID discord.GuildID, es []discord.Emoji) error {
	s.emojisMu.Lock()
	defer s.emojisMu.Unlock()

	for _, id := range s.guildEmojis[guildID] {
		delete(s.emojis, id)
	}

	ids := make([]discord.EmojiID, 0, len(es))
	for _, e := range es {
		e := e
		s.emojis[e.ID] = &e
		ids = append(ids, e.ID)
	}
	s.guildEmojis[guildID] = ids

	return nil
}

func (s *Store) RemoveEmoji(_ context.Context, guildID discord.GuildID, emojiID discord.EmojiID) error {
	s.emojisMu.Lock()
	defer s.emojisMu.Unlock()

	delete(s.emojis, emojiID)
	if ids, ok := s.guildEmojis[guildID]; ok {
		s.guildEmojis[guildID] = remove(ids, emojiID)
	}

	return nil
}
