package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"emperror.dev/errors"

	"github.com/starshine-sys/cordial/discord"
)

func TestSendMessageFiles(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parsing multipart form: %v", err)
		}

		var payload struct {
			Content     string `json:"content"`
			Attachments []struct {
				ID       string `json:"id"`
				Filename string `json:"filename"`
			} `json:"attachments"`
		}
		if err := json.Unmarshal([]byte(r.FormValue("payload_json")), &payload); err != nil {
			t.Fatalf("decoding payload_json: %v", err)
		}
		if payload.Content != "look at this" {
			t.Errorf("unexpected content %q", payload.Content)
		}
		if len(payload.Attachments) != 1 || payload.Attachments[0].ID != "0" || payload.Attachments[0].Filename != "SPOILER_a.txt" {
			t.Errorf("unexpected attachments %+v", payload.Attachments)
		}

		f, hdr, err := r.FormFile("files[0]")
		if err != nil {
			t.Fatalf("getting files[0]: %v", err)
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		if hdr.Filename != "SPOILER_a.txt" || string(b) != "hello" {
			t.Errorf("unexpected file %q with content %q", hdr.Filename, b)
		}

		writeJSON(w, 200, `{"id":"2","channel_id":"1","content":"look at this","attachments":[{"id":"3","filename":"SPOILER_a.txt","size":5,"url":"","proxy_url":""}]}`)
	}), Config{})

	m, err := c.SendMessage(context.Background(), 1, SendMessageData{
		Content: "look at this",
		Files:   []discord.File{{Name: "a.txt", Spoiler: true, Reader: strings.NewReader("hello")}},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(m.Attachments) != 1 || !m.Attachments[0].IsSpoiler() {
		t.Errorf("unexpected attachments %+v", m.Attachments)
	}
}

func TestSendMessageJSON(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		b, _ := io.ReadAll(r.Body)
		if string(b) != `{"content":"hi","allowed_mentions":{"parse":[]}}` {
			t.Errorf("unexpected body %s", b)
		}
		writeJSON(w, 200, `{"id":"2","channel_id":"1","content":"hi"}`)
	}), Config{})

	_, err := c.SendMessage(context.Background(), 1, SendMessageData{
		Content:         "hi",
		AllowedMentions: &discord.AllowedMentions{Parse: []discord.AllowedMentionType{}},
	})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
}

func TestValidate(t *testing.T) {
	var requests int
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}), Config{})

	tooManyRows := make(discord.Components, 6)
	for i := range tooManyRows {
		tooManyRows[i] = discord.ActionRow{}
	}

	for _, tc := range []struct {
		name string
		data SendMessageData
		want error
	}{
		{"empty", SendMessageData{}, ErrEmptyMessage},
		{"content too long", SendMessageData{Content: strings.Repeat("ä", 2001)}, ErrContentTooLong},
		{"too many embeds", SendMessageData{Embeds: make([]discord.Embed, 11)}, ErrTooManyEmbeds},
		{"embeds too long combined", SendMessageData{Embeds: []discord.Embed{
			{Description: strings.Repeat("a", 4000)},
			{Description: strings.Repeat("a", 2001)},
		}}, discord.ErrEmbedTooLong},
		{"too many action rows", SendMessageData{Components: tooManyRows}, ErrTooManyActionRows},
		{"too many files", SendMessageData{Files: make([]discord.File, 11)}, ErrTooManyFiles},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.SendMessage(context.Background(), 1, tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if err := (SendMessageData{Content: strings.Repeat("ä", 2000)}).Validate(); err != nil {
		t.Errorf("2000 characters should be valid, got %v", err)
	}

	if err := c.BulkDeleteMessages(context.Background(), 1, []discord.MessageID{1}, ""); !errors.Is(err, ErrBulkDeleteCount) {
		t.Errorf("expected ErrBulkDeleteCount, got %v", err)
	}
	if _, err := c.Reactions(context.Background(), 1, 2, discord.Emoji{Name: "🔥"}, 0, 101); !errors.Is(err, ErrInvalidReactionLim) {
		t.Errorf("expected ErrInvalidReactionLim, got %v", err)
	}

	if requests != 0 {
		t.Errorf("invalid requests were sent, got %d", requests)
	}
}

type deleteRecorder struct {
	mu     sync.Mutex
	bulk   []int
	single []string
}

func (d *deleteRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/messages/bulk-delete"):
		var body struct {
			Messages []discord.MessageID `json:"messages"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		d.bulk = append(d.bulk, len(body.Messages))
	case r.Method == http.MethodDelete:
		d.single = append(d.single, r.URL.Path)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func TestDeleteMessages(t *testing.T) {
	base := discord.MessageID(discord.SnowflakeFromTime(time.Now()))
	old := discord.MessageID(discord.SnowflakeFromTime(time.Now().Add(-30 * 24 * time.Hour)))

	recent := func(n int) []discord.MessageID {
		ids := make([]discord.MessageID, n)
		for i := range ids {
			ids[i] = base + discord.MessageID(i)
		}
		return ids
	}

	for _, tc := range []struct {
		name       string
		ids        []discord.MessageID
		wantBulk   []int
		wantSingle int
	}{
		{"chunks of 100", recent(150), []int{100, 50}, 0},
		{"one left over", recent(101), []int{100}, 1},
		{"single message", recent(1), nil, 1},
		{"old messages", append(recent(3), old, old+1), []int{3}, 2},
		{"duplicates", append(recent(2), recent(2)...), []int{2}, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rec := &deleteRecorder{}
			c := newTestClient(t, rec, Config{})

			if err := c.DeleteMessages(context.Background(), 1, tc.ids, ""); err != nil {
				t.Fatalf("DeleteMessages: %v", err)
			}

			if fmt.Sprint(rec.bulk) != fmt.Sprint(tc.wantBulk) {
				t.Errorf("bulk deletes = %v, want %v", rec.bulk, tc.wantBulk)
			}
			if len(rec.single) != tc.wantSingle {
				t.Errorf("got %d single deletes, want %d", len(rec.single), tc.wantSingle)
			}
		})
	}
}

func TestDeleteMessagesCombinesErrors(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/2") {
			writeJSON(w, 403, `{"message":"Missing Permissions","code":50013}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}), Config{})

	// these are all too old to bulk delete
	err := c.DeleteMessages(context.Background(), 1, []discord.MessageID{1, 2, 3}, "")
	if !HasCode(err, ErrMissingPermissions) {
		t.Errorf("expected missing permissions, got %v", err)
	}
	if n := len(errors.GetErrors(err)); n != 1 {
		t.Errorf("expected 1 combined error, got %d", n)
	}
}

func TestMessagesBefore(t *testing.T) {
	const total = 250
	var (
		mu    sync.Mutex
		pages []int
	)

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		before, _ := strconv.ParseUint(r.URL.Query().Get("before"), 10, 64)
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		var msgs []string
		for id := before - 1; id > 1000-total && len(msgs) < limit; id-- {
			msgs = append(msgs, fmt.Sprintf(`{"id":"%d","channel_id":"1"}`, id))
		}

		mu.Lock()
		pages = append(pages, len(msgs))
		mu.Unlock()
		writeJSON(w, 200, "["+strings.Join(msgs, ",")+"]")
	}), Config{})

	msgs, err := c.MessagesBefore(context.Background(), 1, 1001, 0)
	if err != nil {
		t.Fatalf("MessagesBefore: %v", err)
	}
	if len(msgs) != total {
		t.Errorf("got %d messages, want %d", len(msgs), total)
	}
	if fmt.Sprint(pages) != "[100 100 50]" {
		t.Errorf("unexpected pages %v", pages)
	}
	if msgs[0].ID != 1000 || msgs[len(msgs)-1].ID != 751 {
		t.Errorf("unexpected range %v..%v", msgs[0].ID, msgs[len(msgs)-1].ID)
	}

	t.Run("limit", func(t *testing.T) {
		msgs, err := c.MessagesBefore(context.Background(), 1, 1001, 120)
		if err != nil {
			t.Fatalf("MessagesBefore: %v", err)
		}
		if len(msgs) != 120 {
			t.Errorf("got %d messages, want 120", len(msgs))
		}
	})
}
