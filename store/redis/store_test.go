package redis

import (
	"context"
	"os"
	"testing"

	"emperror.dev/errors"
	"github.com/google/uuid"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

// newTestStore connects to the redis server in CORDIAL_TEST_REDIS.
// Every test gets its own key prefix.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	addr := os.Getenv("CORDIAL_TEST_REDIS")
	if addr == "" {
		t.Skip("CORDIAL_TEST_REDIS not set")
	}

	s, err := New(context.Background(), Config{
		Addr:   addr,
		Prefix: "cordial-test-" + uuid.New().String() + ":",
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestChannels(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const guild discord.GuildID = 1
	err := s.SetChannels(ctx, guild, []discord.Channel{
		{ID: 10, Name: "general"},
		{ID: 11, Name: "off-topic"},
	})
	if err != nil {
		t.Fatalf("SetChannels: %v", err)
	}
	if err := s.SetChannel(ctx, discord.Channel{ID: 20, Type: discord.DirectMessage}); err != nil {
		t.Fatalf("SetChannel: %v", err)
	}

	ch, err := s.Channel(ctx, 10)
	if err != nil {
		t.Fatalf("Channel: %v", err)
	}
	if ch.Name != "general" || ch.GuildID != guild {
		t.Errorf("unexpected channel %+v", ch)
	}

	chs, err := s.Channels(ctx, guild)
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(chs) != 2 {
		t.Errorf("expected 2 channels, got %d", len(chs))
	}

	if _, err := s.Channel(ctx, 20); err != nil {
		t.Errorf("expected DM channel to be cached, got %v", err)
	}

	if err := s.RemoveChannel(ctx, guild, 10); err != nil {
		t.Fatalf("RemoveChannel: %v", err)
	}
	if _, err := s.Channel(ctx, 10); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := s.RemoveChannels(ctx, guild); err != nil {
		t.Fatalf("RemoveChannels: %v", err)
	}
	if _, err := s.Channels(ctx, guild); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Channel(ctx, 11); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for removed guild channel, got %v", err)
	}
}

func TestEmojis(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	const guild discord.GuildID = 1
	if err := s.SetEmojis(ctx, guild, []discord.Emoji{{ID: 30, Name: "blob"}, {ID: 31, Name: "cat"}}); err != nil {
		t.Fatalf("SetEmojis: %v", err)
	}
	// replaces the previous set
	if err := s.SetEmojis(ctx, guild, []discord.Emoji{{ID: 31, Name: "cat"}}); err != nil {
		t.Fatalf("SetEmojis: %v", err)
	}

	if _, err := s.Emoji(ctx, guild, 30); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.Emoji(ctx, 2, 31); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for other guild, got %v", err)
	}

	if err := s.SetEmoji(ctx, guild, discord.Emoji{ID: 32, Name: "dog"}); err != nil {
		t.Fatalf("SetEmoji: %v", err)
	}
	es, err := s.Emojis(ctx, guild)
	if err != nil {
		t.Fatalf("Emojis: %v", err)
	}
	if len(es) != 2 {
		t.Errorf("expected 2 emojis, got %d", len(es))
	}

	if err := s.RemoveEmoji(ctx, guild, 32); err != nil {
		t.Fatalf("RemoveEmoji: %v", err)
	}
	e, err := s.Emoji(ctx, guild, 31)
	if err != nil || e.Name != "cat" {
		t.Errorf("Emoji = %+v, %v", e, err)
	}
}

func TestMessageReactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	thumbs := discord.Emoji{Name: "👍"}
	m := discord.Message{
		ID:        100,
		ChannelID: 10,
		Content:   "hello",
		Reactions: discord.NewReactionMapping([]discord.Reaction{{Count: 2, Emoji: thumbs}}),
	}
	m.Reactions.Add(thumbs, 5)

	if err := s.SetMessage(ctx, m); err != nil {
		t.Fatalf("SetMessage: %v", err)
	}

	got, err := s.Message(ctx, 10, 100)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	if got.Content != "hello" {
		t.Errorf("content = %q", got.Content)
	}
	if n := got.Reactions.Count(thumbs); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}
	// only counts are stored
	if got.Reactions.Reacted(thumbs, 5) {
		t.Errorf("expected reactor to be unknown after a round trip")
	}

	if err := s.RemoveMessages(ctx, 10, 100, 101); err != nil {
		t.Fatalf("RemoveMessages: %v", err)
	}
	if _, err := s.Message(ctx, 10, 100); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
