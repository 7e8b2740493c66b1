package rest

import (
	"fmt"
	"net/http"

	"github.com/starshine-sys/cordial/ratelimit"
)

// Route is a single API endpoint.
// Path is a format string, filled in with the request's path parameters.
type Route struct {
	Name   string
	Method string
	Path   string
	Group  *ratelimit.Group
}

// Format returns the route's path with the given parameters.
func (r *Route) Format(args ...interface{}) string {
	if len(args) == 0 {
		return r.Path
	}
	return fmt.Sprintf(r.Path, args...)
}

// Route names, used as keys in the route table and as labels in metrics.
const (
	RouteMe       = "get_current_user"
	RouteUser     = "get_user"
	RouteCreateDM = "create_dm"

	RouteChannel        = "get_channel"
	RouteModifyChannel  = "modify_channel"
	RouteDeleteChannel  = "delete_channel"
	RouteGuildChannels  = "get_guild_channels"
	RouteTriggerTyping  = "trigger_typing"
	RoutePinnedMessages = "get_pinned_messages"
	RoutePinMessage     = "pin_message"
	RouteUnpinMessage   = "unpin_message"

	RouteMessage            = "get_message"
	RouteMessages           = "get_messages"
	RouteCreateMessage      = "create_message"
	RouteEditMessage        = "edit_message"
	RouteDeleteMessage      = "delete_message"
	RouteBulkDeleteMessages = "bulk_delete_messages"

	RouteCreateReaction      = "create_reaction"
	RouteDeleteOwnReaction   = "delete_own_reaction"
	RouteDeleteUserReaction  = "delete_user_reaction"
	RouteGetReactions        = "get_reactions"
	RouteDeleteAllReactions  = "delete_all_reactions"
	RouteDeleteEmojiReaction = "delete_emoji_reactions"

	RouteGuildEmojis = "list_guild_emojis"
	RouteGuildEmoji  = "get_guild_emoji"
	RouteCreateEmoji = "create_guild_emoji"
	RouteModifyEmoji = "modify_guild_emoji"
	RouteDeleteEmoji = "delete_guild_emoji"

	RouteInteractionCallback    = "create_interaction_response"
	RouteGetOriginalResponse    = "get_original_response"
	RouteEditOriginalResponse   = "edit_original_response"
	RouteDeleteOriginalResponse = "delete_original_response"
	RouteCreateFollowUp         = "create_followup"
	RouteEditFollowUp           = "edit_followup"
	RouteDeleteFollowUp         = "delete_followup"

	RouteWebhook          = "get_webhook"
	RouteWebhookWithToken = "get_webhook_with_token"
	RouteExecuteWebhook   = "execute_webhook"

	RouteCommands               = "get_global_commands"
	RouteBulkOverwriteCommands  = "bulk_overwrite_global_commands"
	RouteDeleteCommand          = "delete_global_command"
	RouteGuildCommands          = "get_guild_commands"
	RouteBulkOverwriteGuildCmds = "bulk_overwrite_guild_commands"
	RouteDeleteGuildCommand     = "delete_guild_command"
)

// newRouteTable builds the routes used by a client.
// Each client gets its own groups, so sizes learned by one client don't leak into another.
func newRouteTable() map[string]*Route {
	var (
		// every reaction route shares one bucket per channel
		reactions    = ratelimit.NewGroup(ratelimit.Channel, false)
		// message deletes have their own bucket
		deletes      = ratelimit.NewGroup(ratelimit.Channel, true)
		messages     = ratelimit.NewGroup(ratelimit.Channel, true)
		emojis       = ratelimit.NewGroup(ratelimit.Guild, true)
		// follow-ups and edits are limited per interaction token
		interactions = ratelimit.NewGroup(ratelimit.Interaction, true)
		commands     = ratelimit.NewGroup(ratelimit.Global, true)
		unlimited    = ratelimit.UnlimitedGroup()
	)

	routes := make(map[string]*Route)
	add := func(name, method, path string, group *ratelimit.Group) {
		routes[name] = &Route{Name: name, Method: method, Path: path, Group: group}
	}
	own := func(limiter ratelimit.Limiter) *ratelimit.Group {
		return ratelimit.NewGroup(limiter, true)
	}

	add(RouteMe, http.MethodGet, "/users/@me", own(ratelimit.Global))
	add(RouteUser, http.MethodGet, "/users/%v", own(ratelimit.Global))
	add(RouteCreateDM, http.MethodPost, "/users/@me/channels", own(ratelimit.Global))

	add(RouteChannel, http.MethodGet, "/channels/%v", own(ratelimit.Channel))
	add(RouteModifyChannel, http.MethodPatch, "/channels/%v", own(ratelimit.Channel))
	add(RouteDeleteChannel, http.MethodDelete, "/channels/%v", own(ratelimit.Channel))
	add(RouteGuildChannels, http.MethodGet, "/guilds/%v/channels", own(ratelimit.Guild))
	add(RouteTriggerTyping, http.MethodPost, "/channels/%v/typing", own(ratelimit.Channel))
	add(RoutePinnedMessages, http.MethodGet, "/channels/%v/pins", own(ratelimit.Channel))
	add(RoutePinMessage, http.MethodPut, "/channels/%v/pins/%v", own(ratelimit.Channel))
	add(RouteUnpinMessage, http.MethodDelete, "/channels/%v/pins/%v", own(ratelimit.Channel))

	add(RouteMessage, http.MethodGet, "/channels/%v/messages/%v", messages)
	add(RouteMessages, http.MethodGet, "/channels/%v/messages", messages)
	add(RouteCreateMessage, http.MethodPost, "/channels/%v/messages", own(ratelimit.Channel))
	add(RouteEditMessage, http.MethodPatch, "/channels/%v/messages/%v", own(ratelimit.Channel))
	add(RouteDeleteMessage, http.MethodDelete, "/channels/%v/messages/%v", deletes)
	add(RouteBulkDeleteMessages, http.MethodPost, "/channels/%v/messages/bulk-delete", deletes)

	add(RouteCreateReaction, http.MethodPut, "/channels/%v/messages/%v/reactions/%v/@me", reactions)
	add(RouteDeleteOwnReaction, http.MethodDelete, "/channels/%v/messages/%v/reactions/%v/@me", reactions)
	add(RouteDeleteUserReaction, http.MethodDelete, "/channels/%v/messages/%v/reactions/%v/%v", reactions)
	add(RouteGetReactions, http.MethodGet, "/channels/%v/messages/%v/reactions/%v", reactions)
	add(RouteDeleteAllReactions, http.MethodDelete, "/channels/%v/messages/%v/reactions", reactions)
	add(RouteDeleteEmojiReaction, http.MethodDelete, "/channels/%v/messages/%v/reactions/%v", reactions)

	add(RouteGuildEmojis, http.MethodGet, "/guilds/%v/emojis", emojis)
	add(RouteGuildEmoji, http.MethodGet, "/guilds/%v/emojis/%v", emojis)
	add(RouteCreateEmoji, http.MethodPost, "/guilds/%v/emojis", own(ratelimit.Guild))
	add(RouteModifyEmoji, http.MethodPatch, "/guilds/%v/emojis/%v", own(ratelimit.Guild))
	add(RouteDeleteEmoji, http.MethodDelete, "/guilds/%v/emojis/%v", own(ratelimit.Guild))

	// interaction callbacks aren't ratelimited
	add(RouteInteractionCallback, http.MethodPost, "/interactions/%v/%v/callback", unlimited)
	add(RouteGetOriginalResponse, http.MethodGet, "/webhooks/%v/%v/messages/@original", interactions)
	add(RouteEditOriginalResponse, http.MethodPatch, "/webhooks/%v/%v/messages/@original", interactions)
	add(RouteDeleteOriginalResponse, http.MethodDelete, "/webhooks/%v/%v/messages/@original", interactions)
	add(RouteCreateFollowUp, http.MethodPost, "/webhooks/%v/%v", interactions)
	add(RouteEditFollowUp, http.MethodPatch, "/webhooks/%v/%v/messages/%v", interactions)
	add(RouteDeleteFollowUp, http.MethodDelete, "/webhooks/%v/%v/messages/%v", interactions)

	add(RouteWebhook, http.MethodGet, "/webhooks/%v", own(ratelimit.Webhook))
	add(RouteWebhookWithToken, http.MethodGet, "/webhooks/%v/%v", own(ratelimit.Webhook))
	add(RouteExecuteWebhook, http.MethodPost, "/webhooks/%v/%v", own(ratelimit.Webhook))

	add(RouteCommands, http.MethodGet, "/applications/%v/commands", commands)
	add(RouteBulkOverwriteCommands, http.MethodPut, "/applications/%v/commands", own(ratelimit.Global))
	add(RouteDeleteCommand, http.MethodDelete, "/applications/%v/commands/%v", own(ratelimit.Global))
	add(RouteGuildCommands, http.MethodGet, "/applications/%v/guilds/%v/commands", own(ratelimit.Guild))
	add(RouteBulkOverwriteGuildCmds, http.MethodPut, "/applications/%v/guilds/%v/commands", own(ratelimit.Guild))
	add(RouteDeleteGuildCommand, http.MethodDelete, "/applications/%v/guilds/%v/commands/%v", own(ratelimit.Guild))

	return routes
}
