package xapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"portfolio-feed/internal/domain"
)

const maxResults = 5

type tweetsResponse struct {
	Data []domain.Post `json:"data"`
}

// RecentPosts returns up to five recent posts, excluding reposts and replies.
// If that yields nothing, it asks once more without the filter and returns
// whatever the second call produced.
func (c *Client) RecentPosts(ctx context.Context, userID string) ([]domain.Post, error) {
	if userID == "" {
		return nil, errors.New("xapi: user id must not be empty")
	}

	posts, err := c.userTweets(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if len(posts) > 0 {
		return posts, nil
	}
	return c.userTweets(ctx, userID, false)
}

func (c *Client) userTweets(ctx context.Context, userID string, excludeReposts bool) ([]domain.Post, error) {
	path := fmt.Sprintf("/2/users/%s/tweets?max_results=%d", url.PathEscape(userID), maxResults)
	if excludeReposts {
		path += "&exclude=retweets,replies"
	}
	path += "&tweet.fields=created_at"

	raw, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var payload tweetsResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("xapi: decode tweets: %w", err)
	}
	if payload.Data == nil {
		return []domain.Post{}, nil
	}
	return payload.Data, nil
}
