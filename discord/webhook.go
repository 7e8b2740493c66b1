package discord

type WebhookType uint8

const (
	IncomingWebhook WebhookType = iota + 1
	ChannelFollowerWebhook
	ApplicationWebhook
)

// Webhook is a channel webhook.
// Token is only set for incoming webhooks, and only when fetched with the bot's own credentials or the token itself.
type Webhook struct {
	ID        WebhookID   `json:"id"`
	Type      WebhookType `json:"type"`
	GuildID   GuildID     `json:"guild_id,omitempty"`
	ChannelID ChannelID   `json:"channel_id"`
	User      *User       `json:"user,omitempty"`
	Name      string      `json:"name"`
	Avatar    string      `json:"avatar,omitempty"`
	Token     string      `json:"token,omitempty"`
	AppID     AppID       `json:"application_id,omitempty"`
	URL       string      `json:"url,omitempty"`
}
