package artifact

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"portfolio-feed/internal/domain"
)

func TestGate_MissingArtifactIsDue(t *testing.T) {
	g := NewGate(time.Now)
	require.True(t, g.Due(filepath.Join(t.TempDir(), "tweets_alice.json"), 10*time.Minute))
	require.True(t, g.Due(filepath.Join(t.TempDir(), "user_alice.json"), 24*time.Hour))
}

func TestGate_MissingTimestampIsDue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets_alice.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"data":[]}`), 0o644))
	require.True(t, NewGate(time.Now).Due(path, time.Hour))
}

func TestGate_CorruptArtifactIsDue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tweets_alice.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	require.True(t, NewGate(time.Now).Due(path, time.Hour))
}

func TestGate_Threshold(t *testing.T) {
	s := newTestStore(t)
	fetched := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.WritePosts(domain.PostArtifact{FetchedAt: fetched, Username: "alice"}))

	cases := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{name: "just fetched", elapsed: 0, want: false},
		{name: "one second short", elapsed: 10*time.Minute - time.Second, want: false},
		{name: "exactly at threshold", elapsed: 10 * time.Minute, want: true},
		{name: "past threshold", elapsed: 3 * time.Hour, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			now := fetched.Add(tc.elapsed)
			g := NewGate(func() time.Time { return now })
			require.Equal(t, tc.want, g.Due(s.PostsPath("alice"), 10*time.Minute))
		})
	}
}

func TestGate_IndependentThresholds(t *testing.T) {
	s := newTestStore(t)
	fetched := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.WritePosts(domain.PostArtifact{FetchedAt: fetched, Username: "alice"}))
	require.NoError(t, s.WriteProfile(domain.ProfileArtifact{FetchedAt: fetched, Username: "alice"}))

	g := NewGate(func() time.Time { return fetched.Add(2 * time.Hour) })
	require.True(t, g.Due(s.PostsPath("alice"), 10*time.Minute))
	require.False(t, g.Due(s.ProfilePath("alice"), 24*time.Hour))
}

func TestGate_FetchedAt(t *testing.T) {
	s := newTestStore(t)
	fetched := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.WriteProfile(domain.ProfileArtifact{FetchedAt: fetched, Username: "alice"}))

	got, ok := NewGate(nil).FetchedAt(s.ProfilePath("alice"))
	require.True(t, ok)
	require.True(t, fetched.Equal(got))
}
