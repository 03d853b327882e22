package tmdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moodflix/server/internal/models"
)

type memCache struct {
	payload  []byte
	cachedAt time.Time
	puts     int
}

func (c *memCache) GetMovieCache(int) ([]byte, time.Time, error) {
	return c.payload, c.cachedAt, nil
}

func (c *memCache) PutMovieCache(_ int, payload []byte, cachedAt time.Time) error {
	c.payload = payload
	c.cachedAt = cachedAt
	c.puts++
	return nil
}

func newTestService(t *testing.T, cache DetailCache, handler http.HandlerFunc) *Service {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(server.URL, "https://img.example/t/p", "test-key")
	return NewService(client, cache, zap.NewNop())
}

func listJSON(movies ...movieRecord) []byte {
	payload, _ := json.Marshal(listResponse{
		Page:         1,
		Results:      movies,
		TotalPages:   1,
		TotalResults: len(movies),
	})
	return payload
}

func TestSearchMoviesDiscoverParams(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write(listJSON(movieRecord{ID: 1, Title: "Clueless", ReleaseDate: "1995-07-19", VoteAverage: 6.9, GenreIDs: []int{35}}))
	})

	_, err := svc.SearchMovies(context.Background(), SearchParams{
		Genres:    []string{"Comedy", "NotARealGenre"},
		YearFrom:  1990,
		YearTo:    1999,
		MinRating: 6.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "/discover/movie", gotPath)
	assert.Equal(t, "35", gotQuery.Get("with_genres"))
	assert.Equal(t, "1990-01-01", gotQuery.Get("primary_release_date.gte"))
	assert.Equal(t, "1999-12-31", gotQuery.Get("primary_release_date.lte"))
	assert.Equal(t, "6.5", gotQuery.Get("vote_average.gte"))
	assert.Equal(t, "50", gotQuery.Get("vote_count.gte"))
	assert.Equal(t, "false", gotQuery.Get("include_adult"))
	assert.Equal(t, "popularity.desc", gotQuery.Get("sort_by"))
	assert.Equal(t, "test-key", gotQuery.Get("api_key"))
}

func TestSearchMoviesQueryUsesSearchEndpoint(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write(listJSON())
	})

	_, err := svc.SearchMovies(context.Background(), SearchParams{Query: "the matrix"})
	require.NoError(t, err)

	assert.Equal(t, "/search/movie", gotPath)
	assert.Equal(t, "the matrix", gotQuery.Get("query"))
}

func TestFormatMovie(t *testing.T) {
	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write(listJSON(
			movieRecord{
				ID:          13,
				Title:       "Forrest Gump",
				PosterPath:  "/poster.jpg",
				ReleaseDate: "1994-07-06",
				VoteAverage: 8.4748,
				GenreIDs:    []int{35, 18},
			},
			movieRecord{ID: 14, Title: "No Poster", ReleaseDate: ""},
		))
	})

	page, err := svc.SearchMovies(context.Background(), SearchParams{})
	require.NoError(t, err)
	require.Len(t, page.Movies, 2)

	gump := page.Movies[0]
	assert.Equal(t, "https://img.example/t/p/w500/poster.jpg", gump.PosterPath)
	assert.Equal(t, 1994, gump.Year)
	assert.Equal(t, 8.5, gump.Rating)
	assert.Equal(t, []string{"Comedy", "Drama"}, gump.Genres)

	bare := page.Movies[1]
	assert.Empty(t, bare.PosterPath)
	assert.Zero(t, bare.Year)
}

func TestMoviesByMoodShuffleIsPermutation(t *testing.T) {
	var ids []int
	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, page, 1)
		assert.LessOrEqual(t, page, 5)

		var records []movieRecord
		for i := 1; i <= 20; i++ {
			ids = append(ids, i)
			records = append(records, movieRecord{ID: i, Title: "Movie " + strconv.Itoa(i)})
		}
		w.Write(listJSON(records...))
	})

	page, err := svc.MoviesByMood(context.Background(), "happy", MoodOptions{})
	require.NoError(t, err)
	require.Len(t, page.Movies, 20)

	got := make([]int, 0, len(page.Movies))
	for _, m := range page.Movies {
		got = append(got, m.ID)
	}
	sort.Ints(got)
	assert.Equal(t, ids, got, "shuffled output must be a permutation of the input")
}

func TestMoviesByMoodOptionsOverrideProfile(t *testing.T) {
	var gotQuery url.Values
	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write(listJSON())
	})

	// The nostalgic profile carries yearTo 2010; the caller's decade wins.
	_, err := svc.MoviesByMood(context.Background(), "nostalgic", MoodOptions{YearFrom: 1990, YearTo: 1999})
	require.NoError(t, err)

	assert.Equal(t, "1990-01-01", gotQuery.Get("primary_release_date.gte"))
	assert.Equal(t, "1999-12-31", gotQuery.Get("primary_release_date.lte"))
	assert.Equal(t, "6.5", gotQuery.Get("vote_average.gte"))
}

func TestSearchPerson(t *testing.T) {
	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/person", r.URL.Path)
		assert.Equal(t, "Tom Hanks", r.URL.Query().Get("query"))
		payload, _ := json.Marshal(personSearchResponse{Results: []personRecord{
			{ID: 31, Name: "Tom Hanks", ProfilePath: "/hanks.jpg", KnownForDepartment: "Acting"},
			{ID: 32, Name: "Tom Hanks Impersonator"},
		}})
		w.Write(payload)
	})

	artist, err := svc.SearchPerson(context.Background(), "Tom Hanks")
	require.NoError(t, err)
	require.NotNil(t, artist)
	assert.Equal(t, 31, artist.ID)
	assert.Equal(t, "https://img.example/t/p/w185/hanks.jpg", artist.ProfilePath)
	assert.Equal(t, "Acting", artist.KnownFor)
}

func TestSearchPersonNoResults(t *testing.T) {
	svc := newTestService(t, nil, func(w http.ResponseWriter, _ *http.Request) {
		payload, _ := json.Marshal(personSearchResponse{})
		w.Write(payload)
	})

	artist, err := svc.SearchPerson(context.Background(), "Nobody Atall")
	require.NoError(t, err)
	assert.Nil(t, artist)
}

func TestPersonDetailsFiltersCredits(t *testing.T) {
	var record personDetailRecord
	record.ID = 31
	record.Name = "Tom Hanks"
	record.MovieCredits.Cast = []movieRecord{
		{ID: 1, Title: "Obscure", VoteCount: 10, VoteAverage: 8.0, Popularity: 99},
		{ID: 2, Title: "Low Rated", VoteCount: 500, VoteAverage: 4.9, Popularity: 98},
	}
	goodIDs := map[int]bool{}
	for i := 3; i < 28; i++ {
		goodIDs[i] = true
		record.MovieCredits.Cast = append(record.MovieCredits.Cast, movieRecord{
			ID: i, Title: "Good " + strconv.Itoa(i), VoteCount: 200, VoteAverage: 7.0,
			Popularity: float64(100 - i),
		})
	}

	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/person/31", r.URL.Path)
		assert.Equal(t, "movie_credits", r.URL.Query().Get("append_to_response"))
		payload, _ := json.Marshal(record)
		w.Write(payload)
	})

	person, err := svc.PersonDetails(context.Background(), 31)
	require.NoError(t, err)
	assert.Equal(t, "Tom Hanks", person.Name)
	assert.Len(t, person.Movies, 10)
	for _, m := range person.Movies {
		assert.True(t, goodIDs[m.ID], "movie %d should have been filtered out", m.ID)
	}
}

func detailJSON(t *testing.T) []byte {
	t.Helper()
	record := detailRecord{
		movieRecord: movieRecord{
			ID:          603,
			Title:       "The Matrix",
			ReleaseDate: "1999-03-30",
			VoteAverage: 8.16,
			Genres:      []genreRef{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
		},
		Runtime: 136,
		Tagline: "The fight for the future begins.",
		Credits: creditsBlock{
			Cast: []castCredit{
				{Name: "Keanu Reeves", Character: "Neo", ProfilePath: "/keanu.jpg"},
				{Name: "Laurence Fishburne", Character: "Morpheus"},
				{Name: "Carrie-Anne Moss", Character: "Trinity"},
				{Name: "Hugo Weaving", Character: "Agent Smith"},
				{Name: "Gloria Foster", Character: "Oracle"},
				{Name: "Joe Pantoliano", Character: "Cypher"},
			},
			Crew: []crewCredit{
				{Name: "Lilly Wachowski", Job: "Director"},
				{Name: "Lana Wachowski", Job: "Director"},
			},
		},
	}
	payload, _ := json.Marshal(record)
	return payload
}

func TestMovieDetailsFormatting(t *testing.T) {
	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/movie/603", r.URL.Path)
		assert.Equal(t, "credits,similar,keywords", r.URL.Query().Get("append_to_response"))
		w.Write(detailJSON(t))
	})

	movie, err := svc.MovieDetails(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", movie.Title)
	assert.Equal(t, 1999, movie.Year)
	assert.Equal(t, 8.2, movie.Rating)
	assert.Equal(t, []string{"Action", "Science Fiction"}, movie.Genres)
	assert.Equal(t, 136, movie.Runtime)
	assert.Equal(t, "Lilly Wachowski", movie.Director)
	require.Len(t, movie.Cast, 5)
	assert.Equal(t, "https://img.example/t/p/w185/keanu.jpg", movie.Cast[0].ProfilePath)
}

func TestMovieDetailsCacheFreshness(t *testing.T) {
	cache := &memCache{}
	fetches := 0
	svc := newTestService(t, cache, func(w http.ResponseWriter, r *http.Request) {
		fetches++
		w.Write(detailJSON(t))
	})

	_, err := svc.MovieDetails(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)
	assert.Equal(t, 1, cache.puts)

	// Fresh entry: served from cache, no second fetch.
	_, err = svc.MovieDetails(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, 1, fetches)

	// Entries older than the TTL are a miss even though the row exists.
	cache.cachedAt = time.Now().Add(-25 * time.Hour)
	_, err = svc.MovieDetails(context.Background(), 603)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
	assert.Equal(t, 2, cache.puts)
}

func TestTrendingWindowFallback(t *testing.T) {
	var gotPath string
	svc := newTestService(t, nil, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(listJSON(movieRecord{ID: 1, Title: "Trending Now"}))
	})

	_, err := svc.Trending(context.Background(), "month")
	require.NoError(t, err)
	assert.Equal(t, "/trending/movie/week", gotPath)

	_, err = svc.Trending(context.Background(), "day")
	require.NoError(t, err)
	assert.Equal(t, "/trending/movie/day", gotPath)
}

func TestShuffleIsPermutation(t *testing.T) {
	svc := NewService(NewClient("http://unused", "", ""), nil, zap.NewNop())

	movies := make([]models.MovieSummary, 50)
	want := make([]int, 50)
	for i := range movies {
		movies[i] = models.MovieSummary{ID: i}
		want[i] = i
	}

	svc.shuffle(movies)

	got := make([]int, 0, len(movies))
	for _, m := range movies {
		got = append(got, m.ID)
	}
	sort.Ints(got)
	assert.Equal(t, want, got)

	// Degenerate inputs must not panic.
	svc.shuffle(nil)
	svc.shuffle(movies[:1])
}
