package box

import (
	"context"
	"net/url"
	"strconv"
)

// CurrentUser returns the user the active token acts as.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers pages through the enterprise's managed users. Requires an
// admin-capable token.
func (c *Client) ListUsers(ctx context.Context, limit, offset int) (*UserCollection, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	return c.listUsers(ctx, query)
}

// SearchUsers filters managed users by name or login prefix.
func (c *Client) SearchUsers(ctx context.Context, term string, limit int) (*UserCollection, error) {
	query := url.Values{"filter_term": {term}}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	return c.listUsers(ctx, query)
}

func (c *Client) listUsers(ctx context.Context, query url.Values) (*UserCollection, error) {
	var users UserCollection
	if err := c.get(ctx, "/users", query, &users); err != nil {
		return nil, err
	}
	return &users, nil
}
