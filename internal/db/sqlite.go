// Package db is the SQLite persistence layer: the append-only
// conversation log and the expiring movie detail cache.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/moodflix/server/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id TEXT NOT NULL,
    role TEXT NOT NULL,
    content TEXT NOT NULL,
    movies TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, id);

CREATE TABLE IF NOT EXISTS movie_cache (
    tmdb_id INTEGER PRIMARY KEY,
    payload TEXT NOT NULL,
    cached_at TIMESTAMP NOT NULL
);`

type Database struct {
	db *sql.DB
}

func New(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}

	return &Database{db: db}, nil
}

func (db *Database) Close() error {
	return db.db.Close()
}

// CreateConversation inserts an empty conversation with a fresh id.
func (db *Database) CreateConversation() (*models.Conversation, error) {
	query := `
        INSERT INTO conversations (id, created_at, updated_at)
        VALUES (?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
        RETURNING created_at, updated_at`

	conv := &models.Conversation{ID: uuid.NewString(), Messages: []models.Message{}}
	if err := db.db.QueryRow(query, conv.ID).Scan(&conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conv, nil
}

// GetConversation loads a conversation with its full ordered message log.
// Returns (nil, nil) when no conversation has the id.
func (db *Database) GetConversation(id string) (*models.Conversation, error) {
	conv := &models.Conversation{ID: id}
	err := db.db.QueryRow(`
        SELECT created_at, updated_at FROM conversations WHERE id = ?`, id).
		Scan(&conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	rows, err := db.db.Query(`
        SELECT id, conversation_id, role, content, movies, created_at
        FROM messages
        WHERE conversation_id = ?
        ORDER BY id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	conv.Messages = make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		var movies sql.NullString
		if err := rows.Scan(&msg.ID, &msg.ConvID, &msg.Role, &msg.Content, &movies, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		if movies.Valid && movies.String != "" {
			if err := json.Unmarshal([]byte(movies.String), &msg.Movies); err != nil {
				return nil, fmt.Errorf("failed to decode message movies: %w", err)
			}
		}
		conv.Messages = append(conv.Messages, msg)
	}
	return conv, rows.Err()
}

// AppendMessage appends one message to a conversation. Messages are
// write-once: there is no update path. Concurrent appends to the same
// conversation are not ordered; the log keeps whatever insert order the
// database saw.
func (db *Database) AppendMessage(conversationID string, msg *models.Message) error {
	var movies any
	if len(msg.Movies) > 0 {
		encoded, err := json.Marshal(msg.Movies)
		if err != nil {
			return fmt.Errorf("failed to encode message movies: %w", err)
		}
		movies = string(encoded)
	}

	query := `
        INSERT INTO messages (conversation_id, role, content, movies, created_at)
        VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
        RETURNING id, created_at`

	msg.ConvID = conversationID
	if err := db.db.QueryRow(query, conversationID, msg.Role, msg.Content, movies).
		Scan(&msg.ID, &msg.CreatedAt); err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	_, err := db.db.Exec(
		`UPDATE conversations SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, conversationID)
	return err
}

// DeleteConversation removes a conversation and its messages.
func (db *Database) DeleteConversation(id string) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM conversations WHERE id = ?", id); err != nil {
		return err
	}

	return tx.Commit()
}

// GetMovieCache returns the cached detail payload for a TMDB id, or a nil
// payload when no row exists. Freshness is judged by the caller; stale
// rows are removed by PurgeExpiredCache.
func (db *Database) GetMovieCache(tmdbID int) ([]byte, time.Time, error) {
	var payload string
	var cachedAt time.Time
	err := db.db.QueryRow(
		`SELECT payload, cached_at FROM movie_cache WHERE tmdb_id = ?`, tmdbID).
		Scan(&payload, &cachedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to read movie cache: %w", err)
	}
	return []byte(payload), cachedAt, nil
}

// PutMovieCache upserts the cached payload for a TMDB id. The primary key
// keeps at most one row per id.
func (db *Database) PutMovieCache(tmdbID int, payload []byte, cachedAt time.Time) error {
	_, err := db.db.Exec(`
        INSERT INTO movie_cache (tmdb_id, payload, cached_at)
        VALUES (?, ?, ?)
        ON CONFLICT(tmdb_id) DO UPDATE SET payload = excluded.payload, cached_at = excluded.cached_at`,
		tmdbID, string(payload), cachedAt)
	if err != nil {
		return fmt.Errorf("failed to write movie cache: %w", err)
	}
	return nil
}

// PurgeExpiredCache deletes cache rows older than ttl and reports how
// many were removed.
func (db *Database) PurgeExpiredCache(ttl time.Duration) (int64, error) {
	res, err := db.db.Exec(`DELETE FROM movie_cache WHERE cached_at < ?`, time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("failed to purge movie cache: %w", err)
	}
	return res.RowsAffected()
}
