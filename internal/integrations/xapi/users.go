package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"portfolio-feed/internal/domain"
)

// ErrUserNotFound is returned when a lookup response carries no account id.
var ErrUserNotFound = errors.New("xapi: user not found")

type userLookupResponse struct {
	Data *domain.User `json:"data"`
}

// LookupUser resolves a public handle to its account record.
func (c *Client) LookupUser(ctx context.Context, handle string) (domain.User, error) {
	handle = strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if handle == "" {
		return domain.User{}, errors.New("xapi: handle must not be empty")
	}

	raw, err := c.get(ctx, "/2/users/by/username/"+url.PathEscape(handle)+"?user.fields=profile_image_url,name,username")
	if err != nil {
		return domain.User{}, err
	}

	var payload userLookupResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.User{}, fmt.Errorf("xapi: decode user lookup: %w", err)
	}
	if payload.Data == nil || payload.Data.ID == "" {
		return domain.User{}, fmt.Errorf("%w: could not resolve user id for @%s, response: %s", ErrUserNotFound, handle, raw)
	}
	return *payload.Data, nil
}

// ResolveID returns the opaque account id for a handle.
func (c *Client) ResolveID(ctx context.Context, handle string) (string, error) {
	u, err := c.LookupUser(ctx, handle)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}
