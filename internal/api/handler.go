// Package api exposes the chat and movie HTTP surface.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/moodflix/server/internal/agent"
	"github.com/moodflix/server/internal/models"
	"github.com/moodflix/server/internal/tmdb"
)

// AgentService is the chat-turn and conversation surface the handler
// needs from the orchestrator.
type AgentService interface {
	Chat(ctx context.Context, message, conversationID string) (*agent.ChatResult, error)
	Conversation(id string) (*models.Conversation, error)
	NewConversation() (*models.Conversation, error)
	DeleteConversation(id string) error
}

// MovieService is the provider surface behind the movie routes.
type MovieService interface {
	MovieDetails(ctx context.Context, movieID int) (*models.MovieDetails, error)
	SimilarMovies(ctx context.Context, movieID, page int) (*tmdb.Page, error)
	Trending(ctx context.Context, window string) (*tmdb.Page, error)
}

// Composer is probed by the status route.
type Composer interface {
	Available(ctx context.Context) bool
	Model() string
}

type Handler struct {
	agent    AgentService
	movies   MovieService
	composer Composer
	logger   *zap.Logger
}

func NewHandler(agentService AgentService, movies MovieService, composer Composer, logger *zap.Logger) *Handler {
	return &Handler{
		agent:    agentService,
		movies:   movies,
		composer: composer,
		logger:   logger,
	}
}

// Routes mounts the API on a fresh chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Route("/api/chat", func(r chi.Router) {
		r.Post("/", h.HandleChat)
		r.Get("/status", h.GetStatus)
		r.Post("/new", h.CreateConversation)
		r.Get("/{conversationID}", h.GetConversation)
		r.Delete("/{conversationID}", h.DeleteConversation)
	})

	r.Route("/api/movies", func(r chi.Router) {
		r.Get("/trending/{window}", h.GetTrending)
		r.Get("/{movieID}", h.GetMovieDetails)
		r.Get("/{movieID}/similar", h.GetSimilarMovies)
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, h.logger, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	return r
}

type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.agent.Chat(r.Context(), req.Message, req.ConversationID)
	if errors.Is(err, agent.ErrEmptyMessage) {
		writeError(w, h.logger, http.StatusBadRequest, "message is required")
		return
	}
	if err != nil {
		h.logger.Error("chat turn failed", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, result)
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	conversation, err := h.agent.Conversation(id)
	if err != nil {
		h.logger.Error("failed to get conversation", zap.String("id", id), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to get conversation")
		return
	}
	if conversation == nil {
		writeError(w, h.logger, http.StatusNotFound, "conversation not found")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, conversation)
}

func (h *Handler) CreateConversation(w http.ResponseWriter, r *http.Request) {
	conversation, err := h.agent.NewConversation()
	if err != nil {
		h.logger.Error("failed to create conversation", zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to create conversation")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, conversation)
}

func (h *Handler) DeleteConversation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "conversationID")

	if err := h.agent.DeleteConversation(id); err != nil {
		h.logger.Error("failed to delete conversation", zap.String("id", id), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to delete conversation")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"llmAvailable": h.composer.Available(r.Context()),
		"currentModel": h.composer.Model(),
		"provider":     "openai",
	})
}

func (h *Handler) GetMovieDetails(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.Atoi(chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid movie ID")
		return
	}

	movie, err := h.movies.MovieDetails(r.Context(), movieID)
	if err != nil {
		h.logger.Error("failed to get movie details", zap.Int("movie_id", movieID), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to get movie details")
		return
	}

	similar, err := h.movies.SimilarMovies(r.Context(), movieID, 1)
	if err != nil {
		h.logger.Error("failed to get similar movies", zap.Int("movie_id", movieID), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to get movie details")
		return
	}
	similarMovies := similar.Movies
	if len(similarMovies) > 10 {
		similarMovies = similarMovies[:10]
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"success":       true,
		"movie":         movie,
		"similarMovies": similarMovies,
	})
}

func (h *Handler) GetSimilarMovies(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.Atoi(chi.URLParam(r, "movieID"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid movie ID")
		return
	}

	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}

	result, err := h.movies.SimilarMovies(r.Context(), movieID, page)
	if err != nil {
		h.logger.Error("failed to get similar movies", zap.Int("movie_id", movieID), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to get similar movies")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"success":      true,
		"movies":       result.Movies,
		"totalPages":   result.TotalPages,
		"totalResults": result.TotalResults,
	})
}

func (h *Handler) GetTrending(w http.ResponseWriter, r *http.Request) {
	window := chi.URLParam(r, "window")

	result, err := h.movies.Trending(r.Context(), window)
	if err != nil {
		h.logger.Error("failed to get trending movies", zap.String("window", window), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "failed to get trending movies")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"success": true,
		"movies":  result.Movies,
	})
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	writeJSON(w, logger, status, map[string]any{"error": message})
}
