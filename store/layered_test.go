package store_test

import (
	"context"
	"testing"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
	"github.com/starshine-sys/cordial/store/memory"
)

func TestLayered(t *testing.T) {
	ctx := context.Background()

	cache := memory.New(memory.Config{})
	defer cache.Close()
	archive := memory.New(memory.Config{})
	defer archive.Close()

	l := &store.Layered{Cache: cache, Archive: archive}

	if err := archive.SetMessage(ctx, discord.Message{ID: 1, ChannelID: 10, Content: "old"}); err != nil {
		t.Fatalf("SetMessage: %v", err)
	}

	t.Run("falls back to archive", func(t *testing.T) {
		m, err := l.Message(ctx, 10, 1)
		if err != nil {
			t.Fatalf("Message: %v", err)
		}
		if m.Content != "old" {
			t.Errorf("content = %q", m.Content)
		}
		if _, err := cache.Message(ctx, 10, 1); err != nil {
			t.Errorf("expected archived message to be cached, got %v", err)
		}
	})

	t.Run("writes to both", func(t *testing.T) {
		if err := l.SetMessage(ctx, discord.Message{ID: 2, ChannelID: 10, Content: "new"}); err != nil {
			t.Fatalf("SetMessage: %v", err)
		}
		for name, s := range map[string]store.MessageStore{"cache": cache, "archive": archive} {
			if _, err := s.Message(ctx, 10, 2); err != nil {
				t.Errorf("%v: %v", name, err)
			}
		}
	})

	t.Run("removes from both", func(t *testing.T) {
		if err := l.RemoveMessages(ctx, 10, 1, 2); err != nil {
			t.Fatalf("RemoveMessages: %v", err)
		}
		if _, err := l.Message(ctx, 10, 2); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}
