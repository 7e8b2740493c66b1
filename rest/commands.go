package rest

import (
	"context"

	"github.com/starshine-sys/cordial/discord"
)

// Commands returns the application's global commands.
func (c *Client) Commands(ctx context.Context, appID discord.AppID) (cmds []discord.Command, err error) {
	err = c.do(ctx, request{route: RouteCommands, args: []interface{}{appID}}, &cmds)
	return cmds, err
}

// BulkOverwriteCommands replaces all of the application's global commands.
// Commands not in the list are deleted.
func (c *Client) BulkOverwriteCommands(ctx context.Context, appID discord.AppID, cmds []discord.Command) (out []discord.Command, err error) {
	if cmds == nil {
		cmds = []discord.Command{}
	}

	err = c.do(ctx, request{route: RouteBulkOverwriteCommands, args: []interface{}{appID}, body: cmds}, &out)
	return out, err
}

// DeleteCommand deletes a global command.
func (c *Client) DeleteCommand(ctx context.Context, appID discord.AppID, id discord.CommandID) error {
	return c.do(ctx, request{route: RouteDeleteCommand, args: []interface{}{appID, id}}, nil)
}

// GuildCommands returns the application's commands in a guild.
func (c *Client) GuildCommands(ctx context.Context, appID discord.AppID, guildID discord.GuildID) (cmds []discord.Command, err error) {
	err = c.do(ctx, request{
		route: RouteGuildCommands,
		args:  []interface{}{appID, guildID},
		major: discord.Snowflake(guildID),
	}, &cmds)
	return cmds, err
}

// BulkOverwriteGuildCommands replaces all of the application's commands in a guild.
func (c *Client) BulkOverwriteGuildCommands(ctx context.Context, appID discord.AppID, guildID discord.GuildID, cmds []discord.Command) (out []discord.Command, err error) {
	if cmds == nil {
		cmds = []discord.Command{}
	}

	err = c.do(ctx, request{
		route: RouteBulkOverwriteGuildCmds,
		args:  []interface{}{appID, guildID},
		major: discord.Snowflake(guildID),
		body:  cmds,
	}, &out)
	return out, err
}

// DeleteGuildCommand deletes a guild command.
func (c *Client) DeleteGuildCommand(ctx context.Context, appID discord.AppID, guildID discord.GuildID, id discord.CommandID) error {
	return c.do(ctx, request{
		route: RouteDeleteGuildCommand,
		args:  []interface{}{appID, guildID, id},
		major: discord.Snowflake(guildID),
	}, nil)
}
