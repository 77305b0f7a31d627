// Package render turns stored artifacts into the HTML fragments shown on the
// portfolio page.
package render

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"os"
	"time"

	"portfolio-feed/internal/domain"
)

// DefaultMaxCards is how many posts are shown even when more are stored.
const DefaultMaxCards = 3

// State is what the posts container currently shows.
type State string

const (
	StateLoading    State = "loading"
	StateCards      State = "cards"
	StateNotFound   State = "not_found"
	StateLoadFailed State = "load_failed"
)

// ArtifactReader reads artifacts fresh from storage on every call.
type ArtifactReader interface {
	ReadPosts(handle string) (domain.PostArtifact, error)
	ReadProfile(handle string) (domain.ProfileArtifact, error)
}

type Card struct {
	ID        string
	Date      string
	Text      template.HTML
	StatusURL string
}

type PostsView struct {
	Handle string
	State  State
	Detail string
	Cards  []Card
}

type ProfileView struct {
	Handle   string
	Name     string
	ImageURL string
	Stale    bool
}

type Options struct {
	Location      *time.Location
	MaxCards      int
	FallbackImage string
}

type Renderer struct {
	reader ArtifactReader
	opts   Options
}

func New(reader ArtifactReader, opts Options) (*Renderer, error) {
	if reader == nil {
		return nil, errors.New("render: artifact reader must not be nil")
	}
	if opts.MaxCards <= 0 {
		opts.MaxCards = DefaultMaxCards
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Renderer{reader: reader, opts: opts}, nil
}

// Posts loads the post artifact for handle and builds up to MaxCards cards in
// stored order.
func (r *Renderer) Posts(handle string) PostsView {
	v := PostsView{Handle: handle}
	a, err := r.reader.ReadPosts(handle)
	if err != nil {
		v.State = StateLoadFailed
		if errors.Is(err, os.ErrNotExist) {
			v.Detail = "404"
		}
		return v
	}
	if len(a.Data) == 0 {
		v.State = StateNotFound
		return v
	}

	posts := a.Data
	if len(posts) > r.opts.MaxCards {
		posts = posts[:r.opts.MaxCards]
	}
	v.State = StateCards
	v.Cards = make([]Card, 0, len(posts))
	for _, p := range posts {
		v.Cards = append(v.Cards, Card{
			ID:        p.ID,
			Date:      FormatTime(p.CreatedAt, r.opts.Location),
			Text:      Linkify(p.Text),
			StatusURL: fmt.Sprintf("https://x.com/%s/status/%s", url.PathEscape(handle), url.PathEscape(p.ID)),
		})
	}
	return v
}

// Profile returns the stored profile. Any failure silently yields the
// fallback image so the page keeps whatever it already shows.
func (r *Renderer) Profile(handle string) ProfileView {
	v := ProfileView{Handle: handle, ImageURL: r.opts.FallbackImage, Stale: true}
	a, err := r.reader.ReadProfile(handle)
	if err != nil || a.ProfileImageURL == "" {
		return v
	}
	v.Name = a.Name
	v.ImageURL = a.ProfileImageURL
	v.Stale = false
	return v
}

type widgetData struct {
	Posts   PostsView
	Profile ProfileView
}

// Widget writes the profile header and post cards for handle.
func (r *Renderer) Widget(w io.Writer, handle string) error {
	return templates.ExecuteTemplate(w, "widget", widgetData{Posts: r.Posts(handle), Profile: r.Profile(handle)})
}

// Loading writes the container shown before the artifact has been loaded.
func (r *Renderer) Loading(w io.Writer, handle string) error {
	return templates.ExecuteTemplate(w, "posts", PostsView{Handle: handle, State: StateLoading})
}
