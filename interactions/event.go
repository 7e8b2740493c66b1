package interactions

import (
	"context"
	"sync"

	"emperror.dev/errors"
	"github.com/getsentry/sentry-go"

	"github.com/starshine-sys/cordial/discord"
	"github.com/starshine-sys/cordial/rest"
)

const ErrAlreadyResponded = errors.Sentinel("interaction was already responded to")

type responseState uint8

const (
	pending responseState = iota
	responded
	// the handler took too long, and the server deferred the response for it
	autoDeferred
)

// Event is a single interaction being handled.
// Its methods are safe to call from multiple goroutines.
type Event struct {
	discord.Interaction

	Client *rest.Client
	// Hub is a clone of the server's Sentry hub, scoped to this interaction. It's nil if Sentry isn't set up.
	Hub *sentry.Hub

	ctx    context.Context
	mu     sync.Mutex
	state  responseState
	respCh chan discord.InteractionResponse
}

func newEvent(ctx context.Context, i discord.Interaction, client *rest.Client, hub *sentry.Hub) *Event {
	return &Event{
		Interaction: i,
		Client:      client,
		Hub:         hub,
		ctx:         ctx,
		respCh:      make(chan discord.InteractionResponse, 1),
	}
}

// Context is cancelled when the interaction token expires.
func (ev *Event) Context() context.Context {
	return ev.ctx
}

// Respond sends the initial response.
// If the server already deferred the response because the handler was slow, the deferred response is edited instead.
func (ev *Event) Respond(resp discord.InteractionResponse) error {
	ev.mu.Lock()
	switch ev.state {
	case pending:
		ev.state = responded
		ev.mu.Unlock()
		ev.respCh <- resp
		return nil
	case autoDeferred:
		ev.state = responded
		ev.mu.Unlock()
		return ev.editDeferred(resp)
	default:
		ev.mu.Unlock()
		return ErrAlreadyResponded
	}
}

func (ev *Event) editDeferred(resp discord.InteractionResponse) error {
	if resp.Data == nil {
		return nil
	}

	_, err := ev.Client.EditInteractionResponse(ev.ctx, ev.AppID, ev.Token, rest.EditMessageData{
		Content:         resp.Data.Content,
		Embeds:          resp.Data.Embeds,
		Components:      resp.Data.Components,
		AllowedMentions: resp.Data.AllowedMentions,
		Files:           resp.Data.Files,
	})
	return err
}

// claim marks the event as responded, and returns false if it already was.
func (ev *Event) claim(to responseState) bool {
	ev.mu.Lock()
	defer ev.mu.Unlock()

	if ev.state != pending {
		return false
	}
	ev.state = to
	return true
}

// Responded returns true if the initial response was sent, either by the handler or by the server deferring it.
func (ev *Event) Responded() bool {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.state != pending
}

// handled returns true if the handler itself responded.
func (ev *Event) handled() bool {
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return ev.state == responded
}

// Reply responds with a message.
func (ev *Event) Reply(content string, embeds ...discord.Embed) error {
	return ev.Respond(messageResponse(content, embeds, 0))
}

// ReplyEphemeral responds with a message only the user can see.
func (ev *Event) ReplyEphemeral(content string, embeds ...discord.Embed) error {
	return ev.Respond(messageResponse(content, embeds, discord.EphemeralMessage))
}

// ReplyComplex responds with the given message data.
func (ev *Event) ReplyComplex(data discord.InteractionResponseData) error {
	return ev.Respond(discord.InteractionResponse{
		Type: discord.MessageInteractionWithSource,
		Data: &data,
	})
}

// Defer acknowledges the interaction, showing a loading state until the response is edited.
// For component interactions, the original message is left as is.
func (ev *Event) Defer(ephemeral bool) error {
	if ev.Type == discord.ComponentInteraction || ev.Type == discord.ModalInteraction {
		return ev.Respond(discord.InteractionResponse{Type: discord.DeferredMessageUpdate})
	}

	resp := discord.InteractionResponse{Type: discord.DeferredMessageInteractionWithSource}
	if ephemeral {
		resp.Data = &discord.InteractionResponseData{Flags: discord.EphemeralMessage}
	}
	return ev.Respond(resp)
}

// UpdateMessage edits the message a component is attached to.
func (ev *Event) UpdateMessage(data discord.InteractionResponseData) error {
	return ev.Respond(discord.InteractionResponse{
		Type: discord.UpdateMessage,
		Data: &data,
	})
}

// Autocomplete responds to an autocomplete interaction with up to 25 choices.
func (ev *Event) Autocomplete(choices []discord.CommandOptionChoice) error {
	if len(choices) > 25 {
		choices = choices[:25]
	}
	if choices == nil {
		choices = []discord.CommandOptionChoice{}
	}

	return ev.Respond(discord.InteractionResponse{
		Type: discord.AutocompleteResult,
		Data: &discord.InteractionResponseData{Choices: choices},
	})
}

// Modal responds with a popup form.
func (ev *Event) Modal(customID, title string, rows ...discord.Component) error {
	components := discord.Components(rows)
	return ev.Respond(discord.InteractionResponse{
		Type: discord.ModalResponse,
		Data: &discord.InteractionResponseData{
			CustomID:   customID,
			Title:      title,
			Components: &components,
		},
	})
}

// EditResponse edits the initial response.
func (ev *Event) EditResponse(data rest.EditMessageData) (discord.Message, error) {
	return ev.Client.EditInteractionResponse(ev.ctx, ev.AppID, ev.Token, data)
}

// FollowUp sends a follow-up message.
func (ev *Event) FollowUp(data rest.ExecuteWebhookData) (discord.Message, error) {
	return ev.Client.FollowUp(ev.ctx, ev.AppID, ev.Token, data)
}

// CommandName returns the full name of the command, including subcommands, such as "config channels".
func (ev *Event) CommandName() string {
	d, ok := ev.CommandData()
	if !ok {
		return ""
	}
	name, _ := d.Leaf()
	return name
}

// Options returns the options of the invoked subcommand.
func (ev *Event) Options() []discord.InteractionOption {
	d, ok := ev.CommandData()
	if !ok {
		return nil
	}
	_, opts := d.Leaf()
	return opts
}

// Option returns the option with the given name, from the invoked subcommand.
func (ev *Event) Option(name string) (discord.InteractionOption, bool) {
	for _, o := range ev.Options() {
		if o.Name == name {
			return o, true
		}
	}
	return discord.InteractionOption{}, false
}

func messageResponse(content string, embeds []discord.Embed, flags discord.MessageFlags) discord.InteractionResponse {
	data := &discord.InteractionResponseData{Flags: flags}
	if content != "" {
		data.Content = &content
	}
	if len(embeds) > 0 {
		data.Embeds = &embeds
	}

	return discord.InteractionResponse{
		Type: discord.MessageInteractionWithSource,
		Data: data,
	}
}
