// Package interactions receives interactions over HTTP and dispatches them to handlers.
package interactions

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"emperror.dev/errors"
	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.uber.org/zap"

	"github.com/starshine-sys/cordial/common"
	"github.com/starshine-sys/cordial/common/log"
	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/rest"
)

const (
	DefaultPath       = "/interactions"
	DefaultDeferAfter = 2500 * time.Millisecond

	// interaction tokens are valid for 15 minutes
	tokenLifetime = 15 * time.Minute
	maxBodySize   = 1 << 20
)

const ErrInvalidPublicKey = errors.Sentinel("invalid public key")

// HandlerFunc handles a single interaction.
// If it returns an error, the error is reported and the user is shown an error code.
type HandlerFunc func(ev *Event) error

// Config holds configuration for creating a Server.
type Config struct {
	// PublicKey is the application's public key, hex encoded.
	PublicKey string
	// Path defaults to DefaultPath.
	Path string
	// DeferAfter is how long a handler can take before the server defers the response. Defaults to DefaultDeferAfter.
	DeferAfter time.Duration
}

// Server is an HTTP interactions endpoint.
type Server struct {
	client     *rest.Client
	log        *zap.SugaredLogger
	hub        *sentry.Hub
	stats      Stats
	publicKey  ed25519.PublicKey
	deferAfter time.Duration

	commands     *common.Map[string, HandlerFunc]
	autocomplete *common.Map[string, HandlerFunc]
	components   *common.Map[string, HandlerFunc]
	modals       *common.Map[string, HandlerFunc]

	router chi.Router
}

// Stats counts received interactions. *stats.Client implements it.
type Stats interface {
	Interaction(name string)
}

// Option configures optional parts of a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Server) { s.log = l }
}

// WithSentry reports handler errors to the given hub.
func WithSentry(hub *sentry.Hub) Option {
	return func(s *Server) { s.hub = hub }
}

// WithStats counts interactions in s.
func WithStats(st Stats) Option {
	return func(s *Server) { s.stats = st }
}

// New creates a new server. The client is used for follow-ups and edits.
func New(config Config, client *rest.Client, opts ...Option) (*Server, error) {
	key, err := hex.DecodeString(config.PublicKey)
	if err != nil {
		return nil, errors.WithMessage(ErrInvalidPublicKey, err.Error())
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, errors.WithMessagef(ErrInvalidPublicKey, "key is %d bytes, expected %d", len(key), ed25519.PublicKeySize)
	}

	s := &Server{
		client:       client,
		publicKey:    ed25519.PublicKey(key),
		deferAfter:   config.DeferAfter,
		commands:     common.NewMap[string, HandlerFunc](),
		autocomplete: common.NewMap[string, HandlerFunc](),
		components:   common.NewMap[string, HandlerFunc](),
		modals:       common.NewMap[string, HandlerFunc](),
	}
	if s.deferAfter <= 0 {
		s.deferAfter = DefaultDeferAfter
	}

	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = log.Named("interactions")
	}

	path := config.Path
	if path == "" {
		path = DefaultPath
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Post(path, s.handleInteraction)
	r.Get("/health", s.handleHealth)
	s.router = r

	return s, nil
}

// Command registers a handler for a command. Subcommands can be handled separately
// by registering their full name, such as "config channels".
func (s *Server) Command(name string, h HandlerFunc) {
	if s.commands.Set(name, h) {
		s.log.Warnf("Handler for command %q was overwritten", name)
	}
}

// Autocomplete registers an autocomplete handler for a command.
func (s *Server) Autocomplete(name string, h HandlerFunc) {
	s.autocomplete.Set(name, h)
}

// Component registers a handler for components whose custom ID starts with prefix.
// The longest matching prefix wins.
func (s *Server) Component(prefix string, h HandlerFunc) {
	s.components.Set(prefix, h)
}

// Modal registers a handler for modals whose custom ID starts with prefix.
func (s *Server) Modal(prefix string, h HandlerFunc) {
	s.modals.Set(prefix, h)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("Listening for interactions on %v", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "serving")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.log.Infof("Shutting down interactions server")
	err := srv.Shutdown(shutdownCtx)
	if err != nil {
		return errors.Wrap(err, "shutting down")
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"ok":       true,
		"version":  common.Version(),
		"commands": s.commands.Length(),
	})
}

func (s *Server) handleInteraction(w http.ResponseWriter, r *http.Request) {
	body, ok := s.verify(r)
	if !ok {
		http.Error(w, "Invalid request signature", http.StatusUnauthorized)
		return
	}

	var i discord.Interaction
	if err := json.Unmarshal(body, &i); err != nil {
		s.log.Debugf("Couldn't decode interaction: %v", err)
		http.Error(w, "Invalid interaction", http.StatusBadRequest)
		return
	}

	if i.Type == discord.PingInteraction {
		render.JSON(w, r, discord.InteractionResponse{Type: discord.PongInteractionResponse})
		return
	}

	h, name, ok := s.handlerFor(i)
	if !ok {
		s.log.Debugf("No handler for interaction %v (type %d, %q)", i.ID, i.Type, name)
		s.writeResponse(w, r, unhandledResponse(i.Type))
		return
	}

	if s.stats != nil {
		s.stats.Interaction(name)
	}

	var hub *sentry.Hub
	if s.hub != nil {
		hub = s.hub.Clone()
	}

	ctx, cancel := context.WithTimeout(context.Background(), tokenLifetime)
	ev := newEvent(ctx, i, s.client, hub)
	go s.run(ev, name, h, cancel)

	timer := time.NewTimer(s.deferAfter)
	defer timer.Stop()

	select {
	case resp := <-ev.respCh:
		s.writeResponse(w, r, resp)
	case <-timer.C:
		if ev.claim(autoDeferred) {
			s.log.Debugf("Handler for %q is slow, deferring response", name)
			s.writeResponse(w, r, deferredResponse(i.Type))
			return
		}
		// the handler claimed the response just before the timer fired
		s.writeResponse(w, r, <-ev.respCh)
	case <-r.Context().Done():
		s.log.Debugf("Request for interaction %v was cancelled before a response was sent", i.ID)
	}
}

// verify checks the request's signature, and returns the body if it's valid.
func (s *Server) verify(r *http.Request) ([]byte, bool) {
	sig, err := hex.DecodeString(r.Header.Get("X-Signature-Ed25519"))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return nil, false
	}

	ts := r.Header.Get("X-Signature-Timestamp")
	if ts == "" {
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, false
	}

	msg := make([]byte, 0, len(ts)+len(body))
	msg = append(msg, ts...)
	msg = append(msg, body...)
	return body, ed25519.Verify(s.publicKey, msg, sig)
}

// handlerFor returns the handler for an interaction, and the name it was matched on.
func (s *Server) handlerFor(i discord.Interaction) (HandlerFunc, string, bool) {
	switch d := i.Data.(type) {
	case *discord.CommandInteractionData:
		m := s.commands
		if i.Type == discord.AutocompleteInteraction {
			m = s.autocomplete
		}

		name, _ := d.Leaf()
		for {
			if h, ok := m.Get(name); ok {
				return h, name, true
			}
			idx := strings.LastIndexByte(name, ' ')
			if idx == -1 {
				return nil, name, false
			}
			name = name[:idx]
		}
	case *discord.ComponentInteractionData:
		return findPrefix(s.components, d.CustomID)
	case *discord.ModalInteractionData:
		return findPrefix(s.modals, d.CustomID)
	}
	return nil, "", false
}

func findPrefix(m *common.Map[string, HandlerFunc], customID string) (HandlerFunc, string, bool) {
	longestFirst := func(a, b string) bool {
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	}

	var prefix string
	h, ok := m.Find(longestFirst, func(k string) bool {
		if strings.HasPrefix(customID, k) {
			prefix = k
			return true
		}
		return false
	})
	if !ok {
		return nil, customID, false
	}
	return h, prefix, true
}

func (s *Server) writeResponse(w http.ResponseWriter, r *http.Request, resp discord.InteractionResponse) {
	if resp.Data == nil || len(resp.Data.Files) == 0 {
		render.JSON(w, r, resp)
		return
	}

	if err := rest.ValidateResponse(*resp.Data); err != nil {
		s.log.Errorf("Invalid interaction response: %v", err)
		http.Error(w, "Invalid response", http.StatusInternalServerError)
		return
	}
	if resp.Data.Attachments == nil {
		resp.Data.Attachments = rest.AttachmentsFor(resp.Data.Files)
	}

	b, contentType, err := rest.EncodeBody(resp, resp.Data.Files)
	if err != nil {
		s.log.Errorf("Error encoding interaction response: %v", err)
		http.Error(w, "Error encoding response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

func deferredResponse(t discord.InteractionType) discord.InteractionResponse {
	switch t {
	case discord.ComponentInteraction, discord.ModalInteraction:
		return discord.InteractionResponse{Type: discord.DeferredMessageUpdate}
	case discord.AutocompleteInteraction:
		// autocomplete can't be deferred
		return discord.InteractionResponse{
			Type: discord.AutocompleteResult,
			Data: &discord.InteractionResponseData{Choices: []discord.CommandOptionChoice{}},
		}
	}
	return discord.InteractionResponse{Type: discord.DeferredMessageInteractionWithSource}
}

func unhandledResponse(t discord.InteractionType) discord.InteractionResponse {
	if t == discord.AutocompleteInteraction {
		return deferredResponse(t)
	}
	return messageResponse("This interaction isn't handled.", nil, discord.EphemeralMessage)
}
