package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistryUnknownTool(t *testing.T) {
	r := NewRegistry(&stubProvider{}, zap.NewNop())

	res := r.Execute(context.Background(), "timeTravel", nil)
	assert.False(t, res.Success)
	assert.Equal(t, "unknown tool: timeTravel", res.Error)
}

func TestRegistryToolOrder(t *testing.T) {
	r := NewRegistry(&stubProvider{}, zap.NewNop())

	names := make([]string, 0, 4)
	for _, tool := range r.Tools() {
		names = append(names, tool.Name)
	}
	assert.Equal(t, []string{"searchMovies", "getMovieDetails", "getSimilarMovies", "getMoviesByArtist"}, names)
}

func TestSearchMoviesToolCapsResults(t *testing.T) {
	provider := &stubProvider{moodMovies: summaries(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12)}
	r := NewRegistry(provider, zap.NewNop())

	res := r.Execute(context.Background(), "searchMovies", map[string]any{"mood": "happy"})
	require.True(t, res.Success)
	assert.Len(t, res.Movies, 10)
	assert.Equal(t, 10, res.Count)
	assert.Equal(t, 12, res.TotalResults)
	assert.Equal(t, "happy", provider.lastMood)
}

func TestSearchMoviesToolNumericArgsFromJSON(t *testing.T) {
	provider := &stubProvider{moodMovies: summaries(1)}
	r := NewRegistry(provider, zap.NewNop())

	// Arguments decoded from JSON arrive as float64.
	res := r.Execute(context.Background(), "searchMovies", map[string]any{
		"mood":     "nostalgic",
		"yearFrom": float64(1990),
		"yearTo":   float64(1999),
	})
	require.True(t, res.Success)
	assert.Equal(t, 1990, provider.lastOpts.YearFrom)
	assert.Equal(t, 1999, provider.lastOpts.YearTo)
}

func TestGetMoviesByArtistToolNotFound(t *testing.T) {
	r := NewRegistry(&stubProvider{artist: nil}, zap.NewNop())

	res := r.Execute(context.Background(), "getMoviesByArtist", map[string]any{"artistName": "Nobody Atall"})
	assert.False(t, res.Success)
	assert.Equal(t, "could not find artist: Nobody Atall", res.Error)
}

func TestGetMoviesByArtistToolMissingArg(t *testing.T) {
	r := NewRegistry(&stubProvider{}, zap.NewNop())

	res := r.Execute(context.Background(), "getMoviesByArtist", map[string]any{})
	assert.False(t, res.Success)
	assert.Equal(t, "artistName is required", res.Error)
}

func TestTruncateOverview(t *testing.T) {
	short := "A short overview."
	assert.Equal(t, short, truncateOverview(short))

	long := strings.Repeat("x", 250)
	got := truncateOverview(long)
	assert.Len(t, []rune(got), 203)
	assert.True(t, strings.HasSuffix(got, "..."))

	// Rune-safe: multi-byte text is not split mid-character.
	wide := strings.Repeat("é", 201)
	got = truncateOverview(wide)
	assert.Equal(t, strings.Repeat("é", 200)+"...", got)
}
