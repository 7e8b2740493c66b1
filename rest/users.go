package rest

import (
	"context"

	"github.com/starshine-sys/cordial/discord"
)

// Me returns the current user. The user's ID is remembered for reaction bookkeeping.
func (c *Client) Me(ctx context.Context) (u discord.User, err error) {
	err = c.do(ctx, request{route: RouteMe}, &u)
	if err != nil {
		return u, err
	}

	c.selfMu.Lock()
	c.self = u.ID
	c.selfMu.Unlock()
	return u, nil
}

// User returns a user by ID.
func (c *Client) User(ctx context.Context, id discord.UserID) (u discord.User, err error) {
	err = c.do(ctx, request{route: RouteUser, args: []interface{}{id}}, &u)
	return u, err
}

// CreateDM opens a DM channel with the given user, or returns the existing one.
func (c *Client) CreateDM(ctx context.Context, recipient discord.UserID) (ch discord.Channel, err error) {
	err = c.do(ctx, request{
		route: RouteCreateDM,
		body: struct {
			RecipientID discord.UserID `json:"recipient_id"`
		}{recipient},
	}, &ch)
	if err != nil {
		return ch, err
	}

	c.cacheChannel(ctx, ch)
	return ch, nil
}
