package rest

import (
	"context"
	"net/url"

	"github.com/starshine-sys/cordial/discord"
)

// Webhook returns a webhook by ID. This needs the Manage Webhooks permission.
func (c *Client) Webhook(ctx context.Context, id discord.WebhookID) (w discord.Webhook, err error) {
	err = c.do(ctx, request{route: RouteWebhook, args: []interface{}{id}, major: discord.Snowflake(id)}, &w)
	return w, err
}

// WebhookWithToken returns a webhook by ID and token, without needing authentication.
func (c *Client) WebhookWithToken(ctx context.Context, id discord.WebhookID, token string) (w discord.Webhook, err error) {
	err = c.do(ctx, request{route: RouteWebhookWithToken, args: []interface{}{id, token}, major: discord.Snowflake(id)}, &w)
	return w, err
}

// ExecuteWebhook sends a message through a webhook.
// If wait is false, Discord doesn't return the message, and the returned message is nil.
func (c *Client) ExecuteWebhook(ctx context.Context, id discord.WebhookID, token string, wait bool, data ExecuteWebhookData) (*discord.Message, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	if data.Attachments == nil {
		data.Attachments = AttachmentsFor(data.Files)
	}

	req := request{
		route: RouteExecuteWebhook,
		args:  []interface{}{id, token},
		major: discord.Snowflake(id),
		body:  data,
		files: data.Files,
	}
	if !wait {
		return nil, c.do(ctx, req, nil)
	}

	req.query = url.Values{"wait": {"true"}}
	var m discord.Message
	if err := c.do(ctx, req, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
