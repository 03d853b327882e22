// Package tmdb implements the movie data provider: search and discovery,
// person lookup, detail lookup with a 24h cache, and the diversity
// shuffle applied to popularity-sorted result pages.
package tmdb

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/moodflix/server/internal/models"
)

// CacheTTL is how long a cached detail payload stays fresh. Older entries
// are treated as a miss even if the row still exists.
const CacheTTL = 24 * time.Hour

// DetailCache persists fully-detailed movie payloads keyed by TMDB id.
// GetMovieCache returns a nil payload when no row exists.
type DetailCache interface {
	GetMovieCache(tmdbID int) (payload []byte, cachedAt time.Time, err error)
	PutMovieCache(tmdbID int, payload []byte, cachedAt time.Time) error
}

// Service exposes the provider operations the agent's tools are built on.
type Service struct {
	client *Client
	cache  DetailCache
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewService(client *Client, cache DetailCache, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		cache:  cache,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SearchParams selects either free-text search (Query set) or filter-based
// discovery.
type SearchParams struct {
	Query     string
	Genres    []string
	YearFrom  int
	YearTo    int
	MinRating float64
	SortBy    string
	Page      int
}

// Page is one page of normalized results.
type Page struct {
	Movies       []models.MovieSummary `json:"movies"`
	Page         int                   `json:"page"`
	TotalPages   int                   `json:"total_pages"`
	TotalResults int                   `json:"total_results"`
}

// MoodOptions override the static mood profile for a mood search.
type MoodOptions struct {
	YearFrom  int
	YearTo    int
	MinRating float64
}

type moodProfile struct {
	genres    []string
	minRating float64
	yearTo    int
}

var moodProfiles = map[string]moodProfile{
	"happy":       {genres: []string{"Comedy", "Animation", "Family"}, minRating: 6.5},
	"sad":         {genres: []string{"Drama", "Romance"}, minRating: 7},
	"excited":     {genres: []string{"Action", "Adventure", "Thriller"}, minRating: 6.5},
	"relaxed":     {genres: []string{"Comedy", "Family", "Animation"}, minRating: 6},
	"thoughtful":  {genres: []string{"Documentary", "Drama", "Science Fiction"}, minRating: 7},
	"romantic":    {genres: []string{"Romance", "Comedy"}, minRating: 6},
	"scared":      {genres: []string{"Horror", "Thriller"}, minRating: 6},
	"nostalgic":   {genres: []string{"Drama", "Comedy", "Family"}, minRating: 6.5, yearTo: 2010},
	"adventurous": {genres: []string{"Adventure", "Action", "Fantasy"}, minRating: 6.5},
	"curious":     {genres: []string{"Documentary", "Mystery", "Science Fiction"}, minRating: 6.5},
	"cozy":        {genres: []string{"Comedy", "Family", "Animation", "Romance"}, minRating: 6.5},
	"melancholy":  {genres: []string{"Drama", "Romance"}, minRating: 7},
	"energetic":   {genres: []string{"Action", "Adventure", "Music"}, minRating: 6},
	"mysterious":  {genres: []string{"Mystery", "Thriller", "Crime"}, minRating: 6.5},
}

var defaultMoodProfile = moodProfile{genres: []string{"Drama", "Comedy"}, minRating: 6.5}

// SearchMovies queries /discover/movie, or /search/movie when a free-text
// query is present. A fixed vote-count floor keeps obscure entries out.
func (s *Service) SearchMovies(ctx context.Context, p SearchParams) (*Page, error) {
	endpoint := "/discover/movie"
	params := url.Values{}

	page := p.Page
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))

	sortBy := p.SortBy
	if sortBy == "" {
		sortBy = "popularity.desc"
	}
	params.Set("sort_by", sortBy)
	params.Set("vote_count.gte", "50")
	params.Set("include_adult", "false")

	if p.Query != "" {
		endpoint = "/search/movie"
		params.Set("query", p.Query)
	}

	if len(p.Genres) > 0 {
		ids := make([]string, 0, len(p.Genres))
		for _, g := range p.Genres {
			if id, ok := GenreID(g); ok {
				ids = append(ids, strconv.Itoa(id))
			}
		}
		if len(ids) > 0 {
			params.Set("with_genres", strings.Join(ids, ","))
		}
	}

	if p.YearFrom > 0 {
		params.Set("primary_release_date.gte", fmt.Sprintf("%d-01-01", p.YearFrom))
	}
	if p.YearTo > 0 {
		params.Set("primary_release_date.lte", fmt.Sprintf("%d-12-31", p.YearTo))
	}
	if p.MinRating > 0 {
		params.Set("vote_average.gte", strconv.FormatFloat(p.MinRating, 'f', -1, 64))
	}

	var resp listResponse
	if err := s.client.get(ctx, endpoint, params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search movies: %w", err)
	}

	return &Page{
		Movies:       s.formatAll(resp.Results),
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}, nil
}

// MoviesByMood resolves the mood to a static search profile, fetches one
// of the first 5 pages pseudo-randomly to counter popularity-sorted
// repetition, and shuffles the page before returning it.
func (s *Service) MoviesByMood(ctx context.Context, mood string, opts MoodOptions) (*Page, error) {
	profile, ok := moodProfiles[strings.ToLower(mood)]
	if !ok {
		profile = defaultMoodProfile
	}

	p := SearchParams{
		Genres:    profile.genres,
		MinRating: profile.minRating,
		YearTo:    profile.yearTo,
		SortBy:    "popularity.desc",
		Page:      s.randomPage(5),
	}
	// Caller options win over the profile.
	if opts.YearFrom > 0 {
		p.YearFrom = opts.YearFrom
	}
	if opts.YearTo > 0 {
		p.YearTo = opts.YearTo
	}
	if opts.MinRating > 0 {
		p.MinRating = opts.MinRating
	}

	result, err := s.SearchMovies(ctx, p)
	if err != nil {
		return nil, err
	}
	s.shuffle(result.Movies)
	return result, nil
}

// SearchPerson returns the top person match for a name, or nil when TMDB
// knows nobody by it.
func (s *Service) SearchPerson(ctx context.Context, name string) (*models.ArtistInfo, error) {
	params := url.Values{}
	params.Set("query", name)

	var resp personSearchResponse
	if err := s.client.get(ctx, "/search/person", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to search person: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}

	p := resp.Results[0]
	return &models.ArtistInfo{
		ID:          p.ID,
		Name:        p.Name,
		ProfilePath: s.client.imageURL("w185", p.ProfilePath),
		KnownFor:    p.KnownForDepartment,
	}, nil
}

// Person is an artist plus a variety-sampled slice of their filmography.
type Person struct {
	models.ArtistInfo
	Biography string                `json:"biography,omitempty"`
	Birthday  string                `json:"birthday,omitempty"`
	Movies    []models.MovieSummary `json:"movies"`
}

// PersonDetails fetches a person with movie credits. Credits are filtered
// to reasonably-known titles (vote_count > 50, rating >= 5.5), sorted by
// popularity, then the top 20 are shuffled and 10 kept. The pipeline
// balances popularity with variety.
func (s *Service) PersonDetails(ctx context.Context, personID int) (*Person, error) {
	params := url.Values{}
	params.Set("append_to_response", "movie_credits")

	var resp personDetailRecord
	if err := s.client.get(ctx, "/person/"+strconv.Itoa(personID), params, &resp); err != nil {
		return nil, fmt.Errorf("failed to get person details: %w", err)
	}

	quality := make([]movieRecord, 0, len(resp.MovieCredits.Cast))
	for _, m := range resp.MovieCredits.Cast {
		if m.VoteCount > 50 && m.VoteAverage >= 5.5 {
			quality = append(quality, m)
		}
	}
	sort.Slice(quality, func(i, j int) bool {
		return quality[i].Popularity > quality[j].Popularity
	})
	if len(quality) > 20 {
		quality = quality[:20]
	}

	movies := s.formatAll(quality)
	s.shuffle(movies)
	if len(movies) > 10 {
		movies = movies[:10]
	}

	return &Person{
		ArtistInfo: models.ArtistInfo{
			ID:          resp.ID,
			Name:        resp.Name,
			ProfilePath: s.client.imageURL("w185", resp.ProfilePath),
			KnownFor:    resp.KnownForDepartment,
		},
		Biography: resp.Biography,
		Birthday:  resp.Birthday,
		Movies:    movies,
	}, nil
}

// MovieDetails returns the fully-detailed record for a movie, serving a
// fresh cached payload when one exists and refetching otherwise. Entries
// older than CacheTTL are treated as absent.
func (s *Service) MovieDetails(ctx context.Context, movieID int) (*models.MovieDetails, error) {
	if s.cache != nil {
		payload, cachedAt, err := s.cache.GetMovieCache(movieID)
		if err != nil {
			s.logger.Warn("movie cache read failed", zap.Int("movie_id", movieID), zap.Error(err))
		} else if payload != nil && time.Since(cachedAt) < CacheTTL {
			var cached detailRecord
			if err := json.Unmarshal(payload, &cached); err == nil && len(cached.Credits.Cast) > 0 {
				return s.formatDetails(&cached), nil
			}
		}
	}

	params := url.Values{}
	params.Set("append_to_response", "credits,similar,keywords")

	var resp detailRecord
	if err := s.client.get(ctx, "/movie/"+strconv.Itoa(movieID), params, &resp); err != nil {
		return nil, fmt.Errorf("failed to get movie details: %w", err)
	}

	// Trim the payload before caching: top cast plus key crew only.
	if len(resp.Credits.Cast) > 10 {
		resp.Credits.Cast = resp.Credits.Cast[:10]
	}
	keyCrew := resp.Credits.Crew[:0:0]
	for _, c := range resp.Credits.Crew {
		switch c.Job {
		case "Director", "Writer", "Screenplay":
			keyCrew = append(keyCrew, c)
		}
	}
	resp.Credits.Crew = keyCrew

	if s.cache != nil {
		payload, err := json.Marshal(&resp)
		if err == nil {
			err = s.cache.PutMovieCache(movieID, payload, time.Now())
		}
		if err != nil {
			s.logger.Warn("movie cache write failed", zap.Int("movie_id", movieID), zap.Error(err))
		}
	}

	return s.formatDetails(&resp), nil
}

// SimilarMovies returns one page of movies similar to the given one.
func (s *Service) SimilarMovies(ctx context.Context, movieID, page int) (*Page, error) {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}

	var resp listResponse
	if err := s.client.get(ctx, "/movie/"+strconv.Itoa(movieID)+"/similar", params, &resp); err != nil {
		return nil, fmt.Errorf("failed to get similar movies: %w", err)
	}

	return &Page{
		Movies:       s.formatAll(resp.Results),
		Page:         resp.Page,
		TotalPages:   resp.TotalPages,
		TotalResults: resp.TotalResults,
	}, nil
}

// Trending returns trending movies for a time window (day or week).
func (s *Service) Trending(ctx context.Context, window string) (*Page, error) {
	if window != "day" && window != "week" {
		window = "week"
	}

	var resp listResponse
	if err := s.client.get(ctx, "/trending/movie/"+window, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to get trending movies: %w", err)
	}
	return &Page{Movies: s.formatAll(resp.Results)}, nil
}

func (s *Service) randomPage(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n) + 1
}

// shuffle applies a uniform Fisher-Yates permutation in place.
func (s *Service) shuffle(movies []models.MovieSummary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(movies) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		movies[i], movies[j] = movies[j], movies[i]
	}
}

func (s *Service) formatAll(records []movieRecord) []models.MovieSummary {
	movies := make([]models.MovieSummary, 0, len(records))
	for _, r := range records {
		movies = append(movies, s.formatMovie(r))
	}
	return movies
}

// formatMovie normalizes a raw provider record: image URLs are prefixed
// by size bucket, the rating is rounded to one decimal, the year derived
// from the release date, and genre ids resolved to names.
func (s *Service) formatMovie(r movieRecord) models.MovieSummary {
	m := models.MovieSummary{
		ID:           r.ID,
		Title:        r.Title,
		Overview:     r.Overview,
		PosterPath:   s.client.imageURL("w500", r.PosterPath),
		BackdropPath: s.client.imageURL("original", r.BackdropPath),
		ReleaseDate:  r.ReleaseDate,
		Rating:       math.Round(r.VoteAverage*10) / 10,
		Genres:       []string{},
	}

	if len(r.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(r.ReleaseDate[:4]); err == nil {
			m.Year = year
		}
	}

	switch {
	case len(r.GenreIDs) > 0:
		m.GenreIDs = r.GenreIDs
		for _, id := range r.GenreIDs {
			if name, ok := GenreMap[id]; ok {
				m.Genres = append(m.Genres, name)
			}
		}
	case len(r.Genres) > 0:
		for _, g := range r.Genres {
			m.GenreIDs = append(m.GenreIDs, g.ID)
			m.Genres = append(m.Genres, g.Name)
		}
	}
	return m
}

func (s *Service) formatDetails(d *detailRecord) *models.MovieDetails {
	details := &models.MovieDetails{
		MovieSummary: s.formatMovie(d.movieRecord),
		Runtime:      d.Runtime,
		Tagline:      d.Tagline,
	}

	for i, c := range d.Credits.Cast {
		if i == 5 {
			break
		}
		details.Cast = append(details.Cast, models.CastMember{
			Name:        c.Name,
			Character:   c.Character,
			ProfilePath: s.client.imageURL("w185", c.ProfilePath),
		})
	}
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			details.Director = c.Name
			break
		}
	}
	return details
}
