package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/moodflix/server/internal/models"
	"github.com/moodflix/server/internal/tmdb"
)

// MovieProvider is the slice of the movie data provider the tools drive.
// *tmdb.Service implements it; tests substitute stubs.
type MovieProvider interface {
	SearchMovies(ctx context.Context, p tmdb.SearchParams) (*tmdb.Page, error)
	MoviesByMood(ctx context.Context, mood string, opts tmdb.MoodOptions) (*tmdb.Page, error)
	SearchPerson(ctx context.Context, name string) (*models.ArtistInfo, error)
	PersonDetails(ctx context.Context, personID int) (*tmdb.Person, error)
	MovieDetails(ctx context.Context, movieID int) (*models.MovieDetails, error)
	SimilarMovies(ctx context.Context, movieID, page int) (*tmdb.Page, error)
}

// ToolResult is the uniform payload every tool returns. A failed call
// carries Success=false and an error text; the orchestrator treats that
// the same as a transport error.
type ToolResult struct {
	Success      bool                  `json:"success"`
	Error        string                `json:"error,omitempty"`
	Count        int                   `json:"count,omitempty"`
	TotalResults int                   `json:"total_results,omitempty"`
	Movies       []models.MovieSummary `json:"movies,omitempty"`
	Artist       *models.ArtistInfo    `json:"artist,omitempty"`
	Movie        *models.MovieDetails  `json:"movie,omitempty"`
}

// Tool is a named provider-backed operation with a declared parameter
// schema, invocable by name through the registry.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
	Execute     func(ctx context.Context, args map[string]any) (*ToolResult, error)
}

type Registry struct {
	tools  map[string]*Tool
	order  []*Tool
	logger *zap.Logger
}

func NewRegistry(provider MovieProvider, logger *zap.Logger) *Registry {
	r := &Registry{tools: make(map[string]*Tool), logger: logger}
	r.register(searchMoviesTool(provider))
	r.register(getMovieDetailsTool(provider))
	r.register(getSimilarMoviesTool(provider))
	r.register(getMoviesByArtistTool(provider))
	return r
}

func (r *Registry) register(t *Tool) {
	r.tools[t.Name] = t
	r.order = append(r.order, t)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []*Tool {
	return r.order
}

// Execute runs a tool by name. It never returns an error: failures are
// folded into a Success=false result.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) *ToolResult {
	tool, ok := r.tools[name]
	if !ok {
		return &ToolResult{Success: false, Error: "unknown tool: " + name}
	}
	res, err := tool.Execute(ctx, args)
	if err != nil {
		r.logger.Warn("tool execution failed", zap.String("tool", name), zap.Error(err))
		return &ToolResult{Success: false, Error: err.Error()}
	}
	return res
}

func searchMoviesTool(provider MovieProvider) *Tool {
	return &Tool{
		Name:        "searchMovies",
		Description: "Search for movies based on genre, year range, rating, or keywords. Use this to find movies that match specific criteria.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query":     map[string]any{"type": "string", "description": "Search query for movie title or keywords (optional)"},
				"genres":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": `List of genres to filter by (e.g., ["Action", "Comedy"])`},
				"yearFrom":  map[string]any{"type": "number", "description": "Start year for release date filter"},
				"yearTo":    map[string]any{"type": "number", "description": "End year for release date filter"},
				"minRating": map[string]any{"type": "number", "description": "Minimum rating (0-10)"},
				"mood":      map[string]any{"type": "string", "description": "Mood keyword to match (happy, sad, excited, relaxed, thoughtful, romantic, scared, nostalgic, adventurous, curious, cozy, melancholy, energetic, mysterious)"},
			},
		},
		Execute: func(ctx context.Context, args map[string]any) (*ToolResult, error) {
			var page *tmdb.Page
			var err error

			if mood := argString(args, "mood"); mood != "" {
				page, err = provider.MoviesByMood(ctx, mood, tmdb.MoodOptions{
					YearFrom:  argInt(args, "yearFrom"),
					YearTo:    argInt(args, "yearTo"),
					MinRating: argFloat(args, "minRating"),
				})
			} else {
				page, err = provider.SearchMovies(ctx, tmdb.SearchParams{
					Query:     argString(args, "query"),
					Genres:    argStrings(args, "genres"),
					YearFrom:  argInt(args, "yearFrom"),
					YearTo:    argInt(args, "yearTo"),
					MinRating: argFloat(args, "minRating"),
				})
			}
			if err != nil {
				return nil, err
			}

			movies := capMovies(page.Movies, 10)
			return &ToolResult{
				Success:      true,
				Count:        len(movies),
				TotalResults: page.TotalResults,
				Movies:       movies,
			}, nil
		},
	}
}

func getMovieDetailsTool(provider MovieProvider) *Tool {
	return &Tool{
		Name:        "getMovieDetails",
		Description: "Get detailed information about a specific movie including cast, director, runtime, and tagline. Use this when you need more information about a movie you already know the ID of.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"movieId": map[string]any{"type": "number", "description": "The TMDB movie ID"},
			},
			"required": []string{"movieId"},
		},
		Execute: func(ctx context.Context, args map[string]any) (*ToolResult, error) {
			movieID := argInt(args, "movieId")
			if movieID == 0 {
				return &ToolResult{Success: false, Error: "movieId is required"}, nil
			}
			movie, err := provider.MovieDetails(ctx, movieID)
			if err != nil {
				return nil, err
			}
			return &ToolResult{Success: true, Movie: movie}, nil
		},
	}
}

func getSimilarMoviesTool(provider MovieProvider) *Tool {
	return &Tool{
		Name:        "getSimilarMovies",
		Description: "Find movies similar to a given movie. Use this when the user mentions they liked a specific movie and want more like it.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"movieId": map[string]any{"type": "number", "description": "The TMDB movie ID to find similar movies for"},
			},
			"required": []string{"movieId"},
		},
		Execute: func(ctx context.Context, args map[string]any) (*ToolResult, error) {
			movieID := argInt(args, "movieId")
			if movieID == 0 {
				return &ToolResult{Success: false, Error: "movieId is required"}, nil
			}
			page, err := provider.SimilarMovies(ctx, movieID, argInt(args, "page"))
			if err != nil {
				return nil, err
			}
			movies := capMovies(page.Movies, 8)
			return &ToolResult{Success: true, Count: len(movies), Movies: movies}, nil
		},
	}
}

func getMoviesByArtistTool(provider MovieProvider) *Tool {
	return &Tool{
		Name:        "getMoviesByArtist",
		Description: "Search for movies starring a specific actor or actress. Use this when the user mentions an artist/actor name and wants to see their movies.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"artistName": map[string]any{"type": "string", "description": "The name of the actor/actress to search for"},
			},
			"required": []string{"artistName"},
		},
		Execute: func(ctx context.Context, args map[string]any) (*ToolResult, error) {
			name := argString(args, "artistName")
			if name == "" {
				return &ToolResult{Success: false, Error: "artistName is required"}, nil
			}

			artist, err := provider.SearchPerson(ctx, name)
			if err != nil {
				return nil, err
			}
			if artist == nil {
				return &ToolResult{Success: false, Error: fmt.Sprintf("could not find artist: %s", name)}, nil
			}

			person, err := provider.PersonDetails(ctx, artist.ID)
			if err != nil {
				return nil, err
			}

			return &ToolResult{
				Success: true,
				Artist:  artist,
				Count:   len(person.Movies),
				Movies:  capMovies(person.Movies, len(person.Movies)),
			}, nil
		},
	}
}

// capMovies truncates a result list and shortens each overview so tool
// output stays compact enough for prompt context.
func capMovies(movies []models.MovieSummary, limit int) []models.MovieSummary {
	if len(movies) > limit {
		movies = movies[:limit]
	}
	out := make([]models.MovieSummary, len(movies))
	for i, m := range movies {
		m.Overview = truncateOverview(m.Overview)
		out[i] = m
	}
	return out
}

func truncateOverview(s string) string {
	r := []rune(s)
	if len(r) <= 200 {
		return s
	}
	return string(r[:200]) + "..."
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func argInt(args map[string]any, key string) int {
	switch v := args[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}

func argFloat(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func argStrings(args map[string]any, key string) []string {
	switch v := args[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
