package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"emperror.dev/errors"
	"go.uber.org/zap"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
)

// newTestStore connects to the database in CORDIAL_TEST_POSTGRES and clears the messages table.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := os.Getenv("CORDIAL_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("CORDIAL_TEST_POSTGRES not set")
	}

	ctx := context.Background()
	s, err := New(ctx, dsn, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(s.Close)

	if _, err := s.pool.Exec(ctx, "truncate messages"); err != nil {
		t.Fatalf("truncating messages: %v", err)
	}
	return s
}

func testMessage(id discord.MessageID, content string) discord.Message {
	return discord.Message{
		ID:        id,
		ChannelID: 10,
		GuildID:   1,
		Author:    discord.User{ID: 5, Username: "someone"},
		Content:   content,
	}
}

func TestMessages(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i, content := range []string{"first", "second", "third"} {
		if err := s.SetMessage(ctx, testMessage(discord.MessageID(100+i), content)); err != nil {
			t.Fatalf("SetMessage: %v", err)
		}
	}

	t.Run("update", func(t *testing.T) {
		if err := s.SetMessage(ctx, testMessage(100, "edited")); err != nil {
			t.Fatalf("SetMessage: %v", err)
		}
		m, err := s.Message(ctx, 10, 100)
		if err != nil {
			t.Fatalf("Message: %v", err)
		}
		if m.Content != "edited" || m.Author.ID != 5 {
			t.Errorf("unexpected message %+v", m)
		}
	})

	t.Run("wrong channel", func(t *testing.T) {
		if _, err := s.Message(ctx, 11, 100); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("channel messages", func(t *testing.T) {
		msgs, err := s.ChannelMessages(ctx, 10, 102, 0)
		if err != nil {
			t.Fatalf("ChannelMessages: %v", err)
		}
		if len(msgs) != 2 || msgs[0].ID != 101 || msgs[1].ID != 100 {
			t.Errorf("unexpected messages %+v", msgs)
		}
	})

	t.Run("remove", func(t *testing.T) {
		if err := s.RemoveMessages(ctx, 10, 101); err != nil {
			t.Fatalf("RemoveMessages: %v", err)
		}
		if _, err := s.Message(ctx, 10, 101); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		m, deletedAt, err := s.Deleted(ctx, 10, 101)
		if err != nil {
			t.Fatalf("Deleted: %v", err)
		}
		if m.Content != "second" || deletedAt.IsZero() {
			t.Errorf("unexpected deleted message %+v at %v", m, deletedAt)
		}
	})

	t.Run("purge", func(t *testing.T) {
		n, err := s.Purge(ctx, time.Now().Add(time.Minute))
		if err != nil {
			t.Fatalf("Purge: %v", err)
		}
		if n != 1 {
			t.Errorf("purged %d messages, want 1", n)
		}
		if _, _, err := s.Deleted(ctx, 10, 101); !errors.Is(err, store.ErrNotFound) {
			t.Errorf("expected ErrNotFound after purge, got %v", err)
		}
	})
}
