package models

import "time"

// Conversation is an append-only log of chat turns. Messages are never
// mutated or reordered after being appended; the only destructive
// operation is deleting the whole conversation.
type Conversation struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single chat turn. Assistant messages may carry the movie
// list that was recommended alongside the reply text.
type Message struct {
	ID        int64          `json:"id"`
	ConvID    string         `json:"conversation_id"`
	Role      string         `json:"role"` // user or assistant
	Content   string         `json:"content"`
	Movies    []MovieSummary `json:"movies,omitempty"`
	CreatedAt time.Time      `json:"timestamp"`
}

// MovieSummary is the normalized shape every raw TMDB movie record is
// reduced to. Year is 0 when the provider has no release date; image
// fields are empty when the provider path is absent.
type MovieSummary struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	ReleaseDate  string   `json:"release_date,omitempty"`
	Year         int      `json:"year,omitempty"`
	Rating       float64  `json:"rating"`
	GenreIDs     []int    `json:"genre_ids,omitempty"`
	Genres       []string `json:"genres"`
}

// MovieDetails extends MovieSummary with the credit data fetched via
// append_to_response.
type MovieDetails struct {
	MovieSummary
	Runtime  int          `json:"runtime,omitempty"`
	Tagline  string       `json:"tagline,omitempty"`
	Cast     []CastMember `json:"cast,omitempty"`
	Director string       `json:"director,omitempty"`
}

type CastMember struct {
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// ArtistInfo describes a person resolved from an artist-intent search.
type ArtistInfo struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	ProfilePath string `json:"profile_path,omitempty"`
	KnownFor    string `json:"known_for"`
}
