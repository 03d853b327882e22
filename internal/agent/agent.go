// Package agent is the orchestration engine: it turns a chat message into
// an intent, drives the movie provider tools and the language composer,
// and persists the resulting turn.
package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/moodflix/server/internal/intent"
	"github.com/moodflix/server/internal/llm"
	"github.com/moodflix/server/internal/models"
)

const (
	// maxRecommended caps every reply's movie list.
	maxRecommended = 5
	// minFilteredMovies is the retention floor for post-filters: a filter
	// that would leave fewer movies is discarded entirely.
	minFilteredMovies = 2

	apologyMessage   = "I'm having trouble finding movies right now. Please try again!"
	noResultsMessage = "I couldn't find movies matching your request. Try mentioning a mood (funny, scary, romantic), a decade (80s, 90s), or an actor's name!"

	moodSystemPrompt = "You are MoodFlix, a friendly movie recommender. Create a brief, warm response recommending the movies below. For each movie, write 1 sentence about why it fits the mood. Keep it conversational and under 200 words total."
)

// ErrEmptyMessage is the only validation failure a caller sees.
var ErrEmptyMessage = errors.New("message is required")

// Composer generates the natural-language reply. *llm.Service implements it.
type Composer interface {
	Chat(ctx context.Context, messages []llm.Message, opts llm.Options) (string, error)
}

// ConversationStore persists the append-only conversation log.
// *db.Database implements it.
type ConversationStore interface {
	CreateConversation() (*models.Conversation, error)
	GetConversation(id string) (*models.Conversation, error)
	AppendMessage(conversationID string, msg *models.Message) error
	DeleteConversation(id string) error
}

// ChatResult is the outcome of one chat turn.
type ChatResult struct {
	ConversationID string                `json:"conversationId"`
	Message        string                `json:"message"`
	Movies         []models.MovieSummary `json:"movies"`
	Artist         *models.ArtistInfo    `json:"artist"`
}

type Agent struct {
	tools    *Registry
	composer Composer
	store    ConversationStore
	logger   *zap.Logger
}

func New(tools *Registry, composer Composer, store ConversationStore, logger *zap.Logger) *Agent {
	return &Agent{tools: tools, composer: composer, store: store, logger: logger}
}

// Chat processes one user message. Provider and composer failures never
// surface to the caller: they produce the fixed apology reply, and the
// turn is persisted either way. Concurrent turns on the same conversation
// are not ordered; last write wins.
func (a *Agent) Chat(ctx context.Context, userMessage, conversationID string) (*ChatResult, error) {
	if strings.TrimSpace(userMessage) == "" {
		return nil, ErrEmptyMessage
	}

	var conversation *models.Conversation
	if conversationID != "" {
		conv, err := a.store.GetConversation(conversationID)
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation: %w", err)
		}
		conversation = conv
	}
	if conversation == nil {
		conv, err := a.store.CreateConversation()
		if err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		conversation = conv
	}

	if err := a.store.AppendMessage(conversation.ID, &models.Message{Role: "user", Content: userMessage}); err != nil {
		return nil, fmt.Errorf("failed to append user message: %w", err)
	}

	reply, movies, artist := a.respond(ctx, userMessage)
	if movies == nil {
		movies = []models.MovieSummary{}
	}

	assistant := &models.Message{Role: "assistant", Content: reply, Movies: movies}
	if err := a.store.AppendMessage(conversation.ID, assistant); err != nil {
		return nil, fmt.Errorf("failed to append assistant message: %w", err)
	}

	return &ChatResult{
		ConversationID: conversation.ID,
		Message:        reply,
		Movies:         movies,
		Artist:         artist,
	}, nil
}

// respond runs intent extraction and the branch/fallback policy. Any
// failure collapses into the apology reply with an empty movie list.
func (a *Agent) respond(ctx context.Context, userMessage string) (string, []models.MovieSummary, *models.ArtistInfo) {
	artistName := intent.DetectArtist(userMessage)
	mood := intent.DetectMood(userMessage)
	decade := intent.DetectDecade(userMessage)
	hasExplicitMood := intent.ExplicitMood(userMessage, mood)

	a.logger.Debug("intent detected",
		zap.String("artist", artistName),
		zap.String("mood", mood),
		zap.Bool("explicit_mood", hasExplicitMood),
		zap.Any("decade", decade))

	if artistName != "" {
		res := a.tools.Execute(ctx, "getMoviesByArtist", map[string]any{"artistName": artistName})
		if res.Success && len(res.Movies) > 0 {
			reply, movies, err := a.artistReply(ctx, userMessage, res, mood, hasExplicitMood, decade)
			if err != nil {
				a.logger.Error("agent error", zap.Error(err))
				return apologyMessage, nil, nil
			}
			return reply, movies, res.Artist
		}
		// Artist not found is not an error: fall through to mood search
		// over the full original message.
		a.logger.Info("artist not found, falling back to mood search",
			zap.String("artist", artistName), zap.String("error", res.Error))
	}

	reply, movies, err := a.moodSearch(ctx, userMessage)
	if err != nil {
		a.logger.Error("agent error", zap.Error(err))
		return apologyMessage, nil, nil
	}
	return reply, movies, nil
}

// artistReply builds the reply for an artist result set: optional genre
// and decade post-filters (each kept only when >= minFilteredMovies
// remain), top-5 truncation in provider order, then the composer.
func (a *Agent) artistReply(ctx context.Context, userMessage string, res *ToolResult, mood string, hasExplicitMood bool, decade *intent.Decade) (string, []models.MovieSummary, error) {
	movies := res.Movies
	genreFilter := ""

	if hasExplicitMood {
		genres := intent.GenresForMood(mood)
		if len(genres) > 0 {
			filtered := filterByGenres(movies, genres)
			if len(filtered) >= minFilteredMovies {
				movies = filtered
				genreFilter = mood
				a.logger.Debug("filtered filmography by mood genres",
					zap.String("mood", mood), zap.Int("remaining", len(filtered)))
			} else {
				a.logger.Debug("not enough genre matches, keeping full filmography",
					zap.String("mood", mood), zap.Int("matches", len(filtered)))
			}
		}
	}

	if decade != nil {
		filtered := filterByDecade(movies, *decade)
		if len(filtered) >= minFilteredMovies {
			movies = filtered
			a.logger.Debug("filtered filmography by decade",
				zap.Int("year_from", decade.YearFrom), zap.Int("remaining", len(filtered)))
		}
	}

	if len(movies) > maxRecommended {
		movies = movies[:maxRecommended]
	}

	searchContext := "Artist: " + res.Artist.Name
	if genreFilter != "" {
		searchContext += fmt.Sprintf("\nGenre filter: %s movies", genreFilter)
	}
	if decade != nil {
		searchContext += fmt.Sprintf("\nDecade: %ds", decade.YearFrom)
	}

	system := "You are MoodFlix, a friendly movie recommender. Create a brief, warm response about the actor/actress and their movies"
	if genreFilter != "" {
		system += fmt.Sprintf(" in the %s genre", genreFilter)
	}
	system += ". Mention 2-3 movies with a short note about each. Keep it under 150 words."

	user := fmt.Sprintf("User asked about: %q\n\n%s\nTheir movies:\n%s",
		userMessage, searchContext, formatMovieList(movies))

	reply, err := a.composer.Chat(ctx, []llm.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, llm.Options{})
	if err != nil {
		return "", nil, err
	}
	return reply, movies, nil
}

// moodSearch is branch B: provider discovery driven by mood and decade.
// Zero results produce the canned guidance message without touching the
// composer.
func (a *Agent) moodSearch(ctx context.Context, userMessage string) (string, []models.MovieSummary, error) {
	mood := intent.DetectMood(userMessage)
	decade := intent.DetectDecade(userMessage)

	args := map[string]any{"mood": mood}
	if decade != nil {
		args["yearFrom"] = decade.YearFrom
		args["yearTo"] = decade.YearTo
	}

	res := a.tools.Execute(ctx, "searchMovies", args)
	if !res.Success || len(res.Movies) == 0 {
		return noResultsMessage, []models.MovieSummary{}, nil
	}

	movies := res.Movies
	if len(movies) > maxRecommended {
		movies = movies[:maxRecommended]
	}

	user := fmt.Sprintf("User said: %q\n\nRecommend these movies:\n%s",
		userMessage, formatMovieList(movies))

	reply, err := a.composer.Chat(ctx, []llm.Message{
		{Role: "system", Content: moodSystemPrompt},
		{Role: "user", Content: user},
	}, llm.Options{})
	if err != nil {
		return "", nil, err
	}
	return reply, movies, nil
}

// Conversation returns a conversation with its message log, or nil when
// the id is unknown.
func (a *Agent) Conversation(id string) (*models.Conversation, error) {
	return a.store.GetConversation(id)
}

// NewConversation creates an empty conversation.
func (a *Agent) NewConversation() (*models.Conversation, error) {
	return a.store.CreateConversation()
}

// DeleteConversation removes a conversation and its messages.
func (a *Agent) DeleteConversation(id string) error {
	return a.store.DeleteConversation(id)
}

func filterByGenres(movies []models.MovieSummary, genres []string) []models.MovieSummary {
	wanted := make(map[string]struct{}, len(genres))
	for _, g := range genres {
		wanted[g] = struct{}{}
	}
	filtered := make([]models.MovieSummary, 0, len(movies))
	for _, m := range movies {
		for _, g := range m.Genres {
			if _, ok := wanted[g]; ok {
				filtered = append(filtered, m)
				break
			}
		}
	}
	return filtered
}

func filterByDecade(movies []models.MovieSummary, d intent.Decade) []models.MovieSummary {
	filtered := make([]models.MovieSummary, 0, len(movies))
	for _, m := range movies {
		if m.Year >= d.YearFrom && m.Year <= d.YearTo {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// formatMovieList renders the compact enumerated list handed to the
// composer prompt.
func formatMovieList(movies []models.MovieSummary) string {
	lines := make([]string, len(movies))
	for i, m := range movies {
		lines[i] = fmt.Sprintf("%d. %q (%d) - Rating: %.1f/10 - %s",
			i+1, m.Title, m.Year, m.Rating, strings.Join(m.Genres, ", "))
	}
	return strings.Join(lines, "\n")
}
