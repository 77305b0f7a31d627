package domain

import "time"

// ArtifactKind names the two artifact families written per handle.
type ArtifactKind string

const (
	KindPosts   ArtifactKind = "posts"
	KindProfile ArtifactKind = "profile"
)

// PostArtifact is the persisted post collection for one handle.
type PostArtifact struct {
	FetchedAt time.Time `json:"fetched_at"`
	Username  string    `json:"username"`
	Data      []Post    `json:"data"`
}

// ProfileArtifact is the persisted profile snapshot for one handle.
type ProfileArtifact struct {
	FetchedAt       time.Time `json:"fetched_at"`
	Username        string    `json:"username"`
	Name            string    `json:"name"`
	ProfileImageURL string    `json:"profile_image_url"`
}
