package interactions

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"emperror.dev/errors"
	"go.uber.org/zap"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/rest"
)

const testTimestamp = "1700000000"

func newTestServer(t *testing.T, api http.Handler, config Config) (*Server, ed25519.PrivateKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	if api == nil {
		api = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected API request %v %v", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusInternalServerError)
		})
	}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := rest.NewClient(rest.Config{
		Token:   "abc.def",
		BaseURL: srv.URL,
	}, rest.WithLogger(zap.NewNop().Sugar()))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	config.PublicKey = hex.EncodeToString(pub)
	s, err := New(config, client, WithLogger(zap.NewNop().Sugar()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, priv
}

func signedRequest(priv ed25519.PrivateKey, body string) *http.Request {
	sig := ed25519.Sign(priv, []byte(testTimestamp+body))

	r := httptest.NewRequest(http.MethodPost, DefaultPath, strings.NewReader(body))
	r.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	r.Header.Set("X-Signature-Timestamp", testTimestamp)
	return r
}

func serve(t *testing.T, s *Server, r *http.Request) (*httptest.ResponseRecorder, discord.InteractionResponse) {
	t.Helper()

	w := httptest.NewRecorder()
	s.ServeHTTP(w, r)

	var resp discord.InteractionResponse
	if w.Code == http.StatusOK && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decoding response %q: %v", w.Body.String(), err)
		}
	}
	return w, resp
}

func content(resp discord.InteractionResponse) string {
	if resp.Data == nil || resp.Data.Content == nil {
		return ""
	}
	return *resp.Data.Content
}

const subcommandInteraction = `{"id":"1","application_id":"2","type":2,"token":"tok",` +
	`"member":{"user":{"id":"5","username":"someone"}},` +
	`"data":{"id":"3","name":"config","type":1,"options":[{"name":"%s","type":1}]}}`

func commandInteraction(sub string) string {
	return strings.Replace(subcommandInteraction, "%s", sub, 1)
}

func componentInteraction(customID string) string {
	return `{"id":"1","application_id":"2","type":3,"token":"tok","data":{"custom_id":"` + customID + `","component_type":2}}`
}

func TestNewInvalidKey(t *testing.T) {
	for _, key := range []string{"", "zz", "abcd"} {
		_, err := New(Config{PublicKey: key}, nil)
		if !errors.Is(err, ErrInvalidPublicKey) {
			t.Errorf("key %q: expected ErrInvalidPublicKey, got %v", key, err)
		}
	}
}

func TestSignature(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})
	_, other, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	body := `{"id":"1","application_id":"2","type":1,"token":"tok"}`

	t.Run("wrong key", func(t *testing.T) {
		w, _ := serve(t, s, signedRequest(other, body))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("tampered body", func(t *testing.T) {
		r := signedRequest(priv, body)
		r.Body = io.NopCloser(strings.NewReader(strings.Replace(body, `"type":1`, `"type":2`, 1)))

		w, _ := serve(t, s, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("missing headers", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, DefaultPath, strings.NewReader(body))
		w, _ := serve(t, s, r)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("ping", func(t *testing.T) {
		w, resp := serve(t, s, signedRequest(priv, body))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if resp.Type != discord.PongInteractionResponse {
			t.Errorf("response type = %d, want pong", resp.Type)
		}
	})
}

func TestCommandDispatch(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})

	s.Command("config", func(ev *Event) error {
		return ev.Reply("top level: " + ev.CommandName())
	})
	s.Command("config channels", func(ev *Event) error {
		if u := ev.Sender(); u == nil || u.ID != 5 {
			t.Errorf("unexpected sender %+v", u)
		}
		return ev.Reply("channels")
	})

	for _, tc := range []struct {
		sub  string
		want string
	}{
		{"channels", "channels"},
		{"roles", "top level: config roles"},
	} {
		t.Run(tc.sub, func(t *testing.T) {
			_, resp := serve(t, s, signedRequest(priv, commandInteraction(tc.sub)))
			if resp.Type != discord.MessageInteractionWithSource {
				t.Fatalf("response type = %d", resp.Type)
			}
			if got := content(resp); got != tc.want {
				t.Errorf("content = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnhandledInteraction(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})

	_, resp := serve(t, s, signedRequest(priv, commandInteraction("channels")))
	if resp.Type != discord.MessageInteractionWithSource {
		t.Fatalf("response type = %d", resp.Type)
	}
	if resp.Data.Flags&discord.EphemeralMessage == 0 {
		t.Errorf("expected ephemeral response")
	}
}

func TestComponentPrefix(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})

	s.Component("role:", func(ev *Event) error {
		return ev.UpdateMessage(discord.InteractionResponseData{Content: ptr("role")})
	})
	s.Component("role:add:", func(ev *Event) error {
		d, _ := ev.ComponentData()
		return ev.UpdateMessage(discord.InteractionResponseData{Content: ptr("add " + strings.TrimPrefix(d.CustomID, "role:add:"))})
	})

	for _, tc := range []struct {
		customID string
		want     string
	}{
		{"role:add:123", "add 123"},
		{"role:remove:123", "role"},
	} {
		t.Run(tc.customID, func(t *testing.T) {
			_, resp := serve(t, s, signedRequest(priv, componentInteraction(tc.customID)))
			if resp.Type != discord.UpdateMessage {
				t.Fatalf("response type = %d", resp.Type)
			}
			if got := content(resp); got != tc.want {
				t.Errorf("content = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestHandlerError(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})

	s.Command("config", func(ev *Event) error {
		return errors.New("database on fire")
	})
	s.Command("config channels", func(ev *Event) error {
		var m map[string]int
		m["boom"]++
		return nil
	})

	for _, sub := range []string{"roles", "channels"} {
		t.Run(sub, func(t *testing.T) {
			_, resp := serve(t, s, signedRequest(priv, commandInteraction(sub)))
			if resp.Type != discord.MessageInteractionWithSource {
				t.Fatalf("response type = %d", resp.Type)
			}
			if resp.Data.Flags&discord.EphemeralMessage == 0 {
				t.Errorf("expected ephemeral response")
			}

			c := content(resp)
			if !strings.HasPrefix(c, "Error code: ``") {
				t.Fatalf("unexpected content %q", c)
			}
			id := strings.TrimSuffix(strings.TrimPrefix(c, "Error code: ``"), "``")

			if resp.Data.Embeds == nil || len(*resp.Data.Embeds) != 1 {
				t.Fatalf("expected one embed")
			}
			e := (*resp.Data.Embeds)[0]
			if e.Footer == nil || e.Footer.Text != id {
				t.Errorf("embed footer doesn't match error code %q", id)
			}
			if strings.Contains(c, "database on fire") || strings.Contains(e.Description, "database on fire") {
				t.Errorf("error details leaked to the user")
			}
		})
	}
}

func TestAutoDefer(t *testing.T) {
	edited := make(chan string, 1)
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/webhooks/2/tok/messages/@original" {
			t.Errorf("unexpected API request %v %v", r.Method, r.URL.Path)
		}
		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding edit body: %v", err)
		}
		edited <- body.Content

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"10","channel_id":"11","content":"done"}`)
	})

	s, priv := newTestServer(t, api, Config{DeferAfter: 10 * time.Millisecond})

	release := make(chan struct{})
	s.Command("config", func(ev *Event) error {
		<-release
		if !ev.Responded() {
			t.Errorf("expected the response to be deferred")
		}
		return ev.Reply("done")
	})

	_, resp := serve(t, s, signedRequest(priv, commandInteraction("channels")))
	close(release)

	if resp.Type != discord.DeferredMessageInteractionWithSource {
		t.Errorf("response type = %d, want deferred", resp.Type)
	}

	select {
	case c := <-edited:
		if c != "done" {
			t.Errorf("edited content = %q, want %q", c, "done")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("deferred response was never edited")
	}
}

func TestRespondTwice(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})

	errCh := make(chan error, 1)
	s.Command("config", func(ev *Event) error {
		if err := ev.Reply("first"); err != nil {
			return err
		}
		errCh <- ev.Reply("second")
		return nil
	})

	_, resp := serve(t, s, signedRequest(priv, commandInteraction("channels")))
	if got := content(resp); got != "first" {
		t.Errorf("content = %q, want %q", got, "first")
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, ErrAlreadyResponded) {
			t.Errorf("expected ErrAlreadyResponded, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("handler didn't finish")
	}
}

func TestResponseWithFiles(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})

	s.Command("config", func(ev *Event) error {
		return ev.ReplyComplex(discord.InteractionResponseData{
			Content: ptr("export"),
			Files: []discord.File{
				{Name: "config.json", Reader: strings.NewReader(`{}`)},
			},
		})
	})

	w, _ := serve(t, s, signedRequest(priv, commandInteraction("channels")))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	ct := w.Header().Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		t.Fatalf("Content-Type = %q, want multipart", ct)
	}
	body := w.Body.String()
	for _, want := range []string{`name="payload_json"`, `filename="config.json"`, `"filename":"config.json"`} {
		if !strings.Contains(body, want) {
			t.Errorf("body doesn't contain %s", want)
		}
	}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, Config{})
	s.Command("config", func(ev *Event) error { return nil })

	w := httptest.NewRecorder()
	s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var v struct {
		OK       bool `json:"ok"`
		Commands int  `json:"commands"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !v.OK || v.Commands != 1 {
		t.Errorf("unexpected health response %+v", v)
	}
}

func ptr[T any](v T) *T { return &v }

func TestPanicRecovery(t *testing.T) {
	followUps := make(chan string, 1)
	api := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/webhooks/2/tok" {
			t.Errorf("unexpected API request %v %v", r.Method, r.URL.Path)
		}
		var body struct {
			Content string `json:"content"`
			Flags   int    `json:"flags"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding follow-up body: %v", err)
		}
		if body.Flags&int(discord.EphemeralMessage) == 0 {
			t.Errorf("error follow-up should be ephemeral")
		}
		followUps <- body.Content

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"10","channel_id":"11","content":"error"}`)
	})

	s, priv := newTestServer(t, api, Config{})

	s.Command("config roles", func(ev *Event) error {
		panic("out of cheese")
	})
	s.Command("config channels", func(ev *Event) error {
		if err := ev.Reply("working on it"); err != nil {
			return err
		}
		panic("out of cheese")
	})

	t.Run("before responding", func(t *testing.T) {
		_, resp := serve(t, s, signedRequest(priv, commandInteraction("roles")))
		if resp.Type != discord.MessageInteractionWithSource {
			t.Fatalf("response type = %d", resp.Type)
		}
		if c := content(resp); !strings.HasPrefix(c, "Error code: ``") {
			t.Errorf("unexpected content %q", c)
		}
	})

	t.Run("after responding", func(t *testing.T) {
		_, resp := serve(t, s, signedRequest(priv, commandInteraction("channels")))
		if c := content(resp); c != "working on it" {
			t.Errorf("unexpected content %q", c)
		}

		select {
		case c := <-followUps:
			if !strings.HasPrefix(c, "Error code: ``") {
				t.Errorf("unexpected follow-up %q", c)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("the panic was never reported")
		}
	})
}

func TestNoResponseFallback(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})
	s.Command("config", func(ev *Event) error { return nil })

	_, resp := serve(t, s, signedRequest(priv, commandInteraction("channels")))
	if c := content(resp); c != "Nothing to see here." {
		t.Errorf("content = %q", c)
	}
	if resp.Data.Flags&discord.EphemeralMessage == 0 {
		t.Errorf("expected ephemeral response")
	}
}

func modalInteraction(customID string) string {
	return `{"id":"1","application_id":"2","type":5,"token":"tok","data":{"custom_id":"` + customID + `","components":[]}}`
}

func TestModalPrefix(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})

	s.Component("report:", func(ev *Event) error {
		t.Error("component handler called for a modal")
		return nil
	})
	s.Modal("report:", func(ev *Event) error {
		d, _ := ev.ModalData()
		return ev.ReplyEphemeral("reported " + strings.TrimPrefix(d.CustomID, "report:"))
	})

	_, resp := serve(t, s, signedRequest(priv, modalInteraction("report:123")))
	if resp.Type != discord.MessageInteractionWithSource {
		t.Fatalf("response type = %d", resp.Type)
	}
	if c := content(resp); c != "reported 123" {
		t.Errorf("content = %q", c)
	}

	t.Run("no match", func(t *testing.T) {
		_, resp := serve(t, s, signedRequest(priv, modalInteraction("feedback:1")))
		if c := content(resp); c != "This interaction isn't handled." {
			t.Errorf("content = %q", c)
		}
	})
}

func autocompleteInteraction(name string) string {
	return `{"id":"1","application_id":"2","type":4,"token":"tok",` +
		`"data":{"id":"3","name":"` + name + `","type":1,"options":[{"name":"tag","type":3,"value":"bl","focused":true}]}}`
}

func TestAutocompleteDispatch(t *testing.T) {
	s, priv := newTestServer(t, nil, Config{})

	s.Command("tags", func(ev *Event) error {
		t.Error("command handler called for autocomplete")
		return nil
	})
	s.Autocomplete("tags", func(ev *Event) error {
		d, _ := ev.CommandData()
		focused, ok := d.Focused()
		if !ok {
			t.Error("expected a focused option")
		}

		prefix, _ := focused.String()

		var choices []discord.CommandOptionChoice
		for _, tag := range []string{"blobcat", "blahaj", "cat"} {
			if strings.HasPrefix(tag, prefix) {
				choices = append(choices, discord.CommandOptionChoice{Name: tag, Value: tag})
			}
		}
		return ev.Autocomplete(choices)
	})

	_, resp := serve(t, s, signedRequest(priv, autocompleteInteraction("tags")))
	if resp.Type != discord.AutocompleteResult {
		t.Fatalf("response type = %d", resp.Type)
	}
	if resp.Data == nil || len(resp.Data.Choices) != 2 || resp.Data.Choices[0].Name != "blobcat" {
		t.Errorf("unexpected choices %+v", resp.Data)
	}

	t.Run("unregistered", func(t *testing.T) {
		_, resp := serve(t, s, signedRequest(priv, autocompleteInteraction("notes")))
		if resp.Type != discord.AutocompleteResult {
			t.Fatalf("response type = %d", resp.Type)
		}
		if resp.Data == nil || len(resp.Data.Choices) != 0 {
			t.Errorf("expected no choices, got %+v", resp.Data)
		}
	})
}
