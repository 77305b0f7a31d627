// Package artifact reads and writes the per-handle JSON snapshots consumed by
// the render layer, and decides when they are due for a refresh.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"portfolio-feed/internal/domain"
)

// Store locates artifacts under a single directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("artifact: directory must not be empty")
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// PostsPath returns the post artifact path for handle, e.g. tweets_alice.json.
func (s *Store) PostsPath(handle string) string {
	return filepath.Join(s.dir, PostsFile(handle))
}

// ProfilePath returns the profile artifact path for handle, e.g. user_alice.json.
func (s *Store) ProfilePath(handle string) string {
	return filepath.Join(s.dir, ProfileFile(handle))
}

func (s *Store) Path(kind domain.ArtifactKind, handle string) string {
	if kind == domain.KindProfile {
		return s.ProfilePath(handle)
	}
	return s.PostsPath(handle)
}

func PostsFile(handle string) string {
	return "tweets_" + handle + ".json"
}

func ProfileFile(handle string) string {
	return "user_" + handle + ".json"
}

func (s *Store) WritePosts(a domain.PostArtifact) error {
	if a.Data == nil {
		a.Data = []domain.Post{}
	}
	return writeJSONAtomic(s.PostsPath(a.Username), a)
}

func (s *Store) WriteProfile(a domain.ProfileArtifact) error {
	return writeJSONAtomic(s.ProfilePath(a.Username), a)
}

// ReadPosts returns os.ErrNotExist (wrapped) when no artifact was written yet.
func (s *Store) ReadPosts(handle string) (domain.PostArtifact, error) {
	var a domain.PostArtifact
	if err := readJSON(s.PostsPath(handle), &a); err != nil {
		return domain.PostArtifact{}, err
	}
	return a, nil
}

func (s *Store) ReadProfile(handle string) (domain.ProfileArtifact, error) {
	var a domain.ProfileArtifact
	if err := readJSON(s.ProfilePath(handle), &a); err != nil {
		return domain.ProfileArtifact{}, err
	}
	return a, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("artifact: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("artifact: decode %s: %w", path, err)
	}
	return nil
}

// writeJSONAtomic replaces path wholesale so readers never see a partial file.
func writeJSONAtomic(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("artifact: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("artifact: encode %s: %w", path, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("artifact: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("artifact: rename %s: %w", path, err)
	}
	return nil
}
