package domain

import "time"

// Post is a single point-in-time snapshot of a post as returned by the X API.
type Post struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// User is the subset of account fields returned by lookup-by-handle.
type User struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Username        string `json:"username"`
	ProfileImageURL string `json:"profile_image_url"`
}

// Timeline mirrors the X API tweet-list shape served by the proxy.
type Timeline struct {
	Data []Post `json:"data"`
}

// CreatedTime parses CreatedAt. The zero time is returned for malformed values.
func (p Post) CreatedTime() time.Time {
	t, err := time.Parse(time.RFC3339, p.CreatedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
