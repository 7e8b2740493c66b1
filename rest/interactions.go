package rest

import (
	"context"
	"hash/fnv"

	"github.com/starshine-sys/cordial/discord"
)

// RespondInteraction sends the initial response to an interaction.
// This must happen within 3 seconds of receiving it.
func (c *Client) RespondInteraction(ctx context.Context, id discord.InteractionID, token string, resp discord.InteractionResponse) error {
	var files []discord.File
	if resp.Data != nil {
		if err := ValidateResponse(*resp.Data); err != nil {
			return err
		}

		files = resp.Data.Files
		if resp.Data.Attachments == nil {
			resp.Data.Attachments = AttachmentsFor(files)
		}
	}

	return c.do(ctx, request{
		route: RouteInteractionCallback,
		args:  []interface{}{id, token},
		body:  resp,
		files: files,
	}, nil)
}

// ValidateResponse checks an interaction response against the message limits.
func ValidateResponse(d discord.InteractionResponseData) error {
	var (
		content    string
		embeds     []discord.Embed
		components discord.Components
	)
	if d.Content != nil {
		content = *d.Content
	}
	if d.Embeds != nil {
		embeds = *d.Embeds
	}
	if d.Components != nil {
		components = *d.Components
	}
	return validateMessage(content, embeds, components, d.Files)
}

// InteractionResponse returns the original response to an interaction.
func (c *Client) InteractionResponse(ctx context.Context, appID discord.AppID, token string) (m discord.Message, err error) {
	err = c.do(ctx, request{
		route: RouteGetOriginalResponse,
		args:  []interface{}{appID, token},
		major: tokenKey(token),
	}, &m)
	return m, err
}

// EditInteractionResponse edits the original response to an interaction.
func (c *Client) EditInteractionResponse(ctx context.Context, appID discord.AppID, token string, data EditMessageData) (m discord.Message, err error) {
	if err := data.Validate(); err != nil {
		return m, err
	}
	if data.Attachments == nil && len(data.Files) > 0 {
		a := AttachmentsFor(data.Files)
		data.Attachments = &a
	}

	err = c.do(ctx, request{
		route: RouteEditOriginalResponse,
		args:  []interface{}{appID, token},
		major: tokenKey(token),
		body:  data,
		files: data.Files,
	}, &m)
	return m, err
}

// DeleteInteractionResponse deletes the original response to an interaction.
func (c *Client) DeleteInteractionResponse(ctx context.Context, appID discord.AppID, token string) error {
	return c.do(ctx, request{
		route: RouteDeleteOriginalResponse,
		args:  []interface{}{appID, token},
		major: tokenKey(token),
	}, nil)
}

// FollowUp sends a follow-up message for an interaction.
func (c *Client) FollowUp(ctx context.Context, appID discord.AppID, token string, data ExecuteWebhookData) (m discord.Message, err error) {
	if err := data.Validate(); err != nil {
		return m, err
	}
	if data.Attachments == nil {
		data.Attachments = AttachmentsFor(data.Files)
	}

	err = c.do(ctx, request{
		route: RouteCreateFollowUp,
		args:  []interface{}{appID, token},
		major: tokenKey(token),
		body:  data,
		files: data.Files,
	}, &m)
	return m, err
}

// EditFollowUp edits a follow-up message.
func (c *Client) EditFollowUp(ctx context.Context, appID discord.AppID, token string, messageID discord.MessageID, data EditMessageData) (m discord.Message, err error) {
	if err := data.Validate(); err != nil {
		return m, err
	}
	if data.Attachments == nil && len(data.Files) > 0 {
		a := AttachmentsFor(data.Files)
		data.Attachments = &a
	}

	err = c.do(ctx, request{
		route: RouteEditFollowUp,
		args:  []interface{}{appID, token, messageID},
		major: tokenKey(token),
		body:  data,
		files: data.Files,
	}, &m)
	return m, err
}

// DeleteFollowUp deletes a follow-up message.
func (c *Client) DeleteFollowUp(ctx context.Context, appID discord.AppID, token string, messageID discord.MessageID) error {
	return c.do(ctx, request{
		route: RouteDeleteFollowUp,
		args:  []interface{}{appID, token, messageID},
		major: tokenKey(token),
	}, nil)
}

// tokenKey returns the ratelimit key for an interaction token.
// Follow-ups and edits share a bucket per interaction, not per application.
func tokenKey(token string) discord.Snowflake {
	h := fnv.New64a()
	_, _ = h.Write([]byte(token))
	return discord.Snowflake(h.Sum64())
}
