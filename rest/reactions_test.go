package rest

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/store"
	"github.com/starshine-sys/cordial/store/memory"
)

func TestReactionsKeepCacheReconciled(t *testing.T) {
	ctx := context.Background()
	fire := discord.Emoji{Name: "🔥"}

	var meCalls int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method + " " + r.URL.Path {
		case "GET /users/@me":
			atomic.AddInt32(&meCalls, 1)
			writeJSON(w, 200, `{"id":"100","username":"me"}`)
		case "GET /channels/1/messages/2/reactions/🔥":
			if r.URL.Query().Get("limit") != "25" {
				t.Errorf("unexpected limit %q", r.URL.Query().Get("limit"))
			}
			writeJSON(w, 200, `[{"id":"100","username":"me"},{"id":"200","username":"a"},{"id":"300","username":"b"},{"id":"400","username":"c"}]`)
		case "PUT /channels/1/messages/2/reactions/🔥/@me",
			"DELETE /channels/1/messages/2/reactions/🔥/@me",
			"DELETE /channels/1/messages/2/reactions/🔥/300",
			"DELETE /channels/1/messages/2/reactions":
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected request %v %v", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}), Config{}, WithCabinet(store.NewCabinet(newMemoryStore(t))))

	seed := discord.Message{
		ID:        2,
		ChannelID: 1,
		Reactions: discord.NewReactionMapping([]discord.Reaction{{Count: 3, Emoji: fire}}),
	}
	if err := c.Cabinet().Messages.SetMessage(ctx, seed); err != nil {
		t.Fatalf("seeding cache: %v", err)
	}

	cached := func() discord.ReactionMapping {
		t.Helper()
		m, err := c.Message(ctx, 1, 2)
		if err != nil {
			t.Fatalf("Message: %v", err)
		}
		return m.Reactions
	}

	if err := c.React(ctx, 1, 2, fire); err != nil {
		t.Fatalf("React: %v", err)
	}
	r := cached()
	if r.Count(fire) != 4 || !r.Reacted(fire, 100) {
		t.Errorf("after React: count %d, reacted %v", r.Count(fire), r.Reacted(fire, 100))
	}
	if line, _ := r.Line(fire); !line.Me || line.Unknown != 3 {
		t.Errorf("after React: unexpected line %+v", line)
	}

	users, err := c.Reactions(ctx, 1, 2, fire, 0, 0)
	if err != nil {
		t.Fatalf("Reactions: %v", err)
	}
	if len(users) != 4 {
		t.Errorf("expected 4 users, got %d", len(users))
	}
	r = cached()
	if !r.FullyLoaded() || r.Count(fire) != 4 {
		t.Errorf("after Reactions: fully loaded %v, count %d", r.FullyLoaded(), r.Count(fire))
	}

	if err := c.DeleteUserReaction(ctx, 1, 2, fire, 300); err != nil {
		t.Fatalf("DeleteUserReaction: %v", err)
	}
	r = cached()
	if r.Count(fire) != 3 || r.Reacted(fire, 300) {
		t.Errorf("after DeleteUserReaction: count %d", r.Count(fire))
	}

	if err := c.Unreact(ctx, 1, 2, fire); err != nil {
		t.Fatalf("Unreact: %v", err)
	}
	r = cached()
	if line, _ := r.Line(fire); r.Count(fire) != 2 || line.Me {
		t.Errorf("after Unreact: unexpected line %+v", line)
	}

	if err := c.DeleteAllReactions(ctx, 1, 2); err != nil {
		t.Fatalf("DeleteAllReactions: %v", err)
	}
	if r = cached(); r.EmojiCount() != 0 {
		t.Errorf("after DeleteAllReactions: %d emojis left", r.EmojiCount())
	}

	if n := atomic.LoadInt32(&meCalls); n != 1 {
		t.Errorf("current user should be fetched once, got %d", n)
	}
}

func TestMessagesMergeCachedReactions(t *testing.T) {
	ctx := context.Background()
	blob := discord.Emoji{ID: 30, Name: "blob"}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `[{"id":"2","channel_id":"1","content":"hi","reactions":[{"count":2,"me":false,"emoji":{"id":"30","name":"blob"}}]}]`)
	}), Config{}, WithCabinet(store.NewCabinet(newMemoryStore(t))))

	var known discord.ReactionMapping
	known.Add(blob, 200)
	c.Cabinet().Messages.SetMessage(ctx, discord.Message{ID: 2, ChannelID: 1, Reactions: known})

	msgs, err := c.Messages(ctx, 1, MessagesQuery{Limit: 10})
	if err != nil {
		t.Fatalf("Messages: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}

	r := msgs[0].Reactions
	if r.Count(blob) != 2 || !r.Reacted(blob, 200) {
		t.Errorf("known reactor was lost: count %d, lines %+v", r.Count(blob), r.Lines())
	}

	m, _ := c.Cabinet().Messages.Message(ctx, 1, 2)
	if m.Content != "hi" {
		t.Errorf("fetched message wasn't cached, content %q", m.Content)
	}
}

func TestDeleteEmojiReactions(t *testing.T) {
	ctx := context.Background()
	fire := discord.Emoji{Name: "🔥"}
	blob := discord.Emoji{ID: 30, Name: "blob"}

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/channels/1/messages/2/reactions/blob:30" {
			t.Errorf("unexpected request %v %v", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}), Config{}, WithCabinet(store.NewCabinet(newMemoryStore(t))))

	c.Cabinet().Messages.SetMessage(ctx, discord.Message{
		ID:        2,
		ChannelID: 1,
		Reactions: discord.NewReactionMapping([]discord.Reaction{{Count: 1, Emoji: fire}, {Count: 5, Emoji: blob}}),
	})

	if err := c.DeleteEmojiReactions(ctx, 1, 2, blob); err != nil {
		t.Fatalf("DeleteEmojiReactions: %v", err)
	}

	m, _ := c.Message(ctx, 1, 2)
	if m.Reactions.EmojiCount() != 1 || m.Reactions.Count(fire) != 1 {
		t.Errorf("unexpected reactions %+v", m.Reactions.Lines())
	}
}

func newMemoryStore(t *testing.T) *memory.Store {
	s := memory.New(memory.Config{})
	t.Cleanup(func() { s.Close() })
	return s
}
