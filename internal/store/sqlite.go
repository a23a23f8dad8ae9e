package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Compile-time interface check.
var _ Store = (*SQLite)(nil)

// SQLite is the Store implementation backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (and migrates) a SQLite store at the given path.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: pragma failed: %w", err)
		}
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db, path: path}, nil
}

// CreateCategory inserts a category and fills in its ID and CreatedAt.
func (s *SQLite) CreateCategory(ctx context.Context, c *Category) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO categories (user_id, name, description, embedding, created_at) VALUES (?, ?, ?, ?, ?)",
		c.UserID, c.Name, c.Description, c.Embedding, now)
	if err != nil {
		return fmt.Errorf("store: create category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: create category: last insert id: %w", err)
	}
	c.ID = id
	c.CreatedAt = now
	return nil
}

// ListCategories returns all of a user's categories, newest first.
func (s *SQLite) ListCategories(ctx context.Context, userID int64) ([]Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, name, description, embedding, created_at FROM categories WHERE user_id = ? ORDER BY created_at DESC, id DESC",
		userID)
	if err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	defer rows.Close()

	var categories []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Embedding, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: list categories: scan: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list categories: %w", err)
	}
	return categories, nil
}

// GetCategory returns one category, checking ownership.
func (s *SQLite) GetCategory(ctx context.Context, userID, categoryID int64) (*Category, error) {
	var c Category
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, name, description, embedding, created_at FROM categories WHERE id = ? AND user_id = ?",
		categoryID, userID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.Embedding, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get category: %w", err)
	}
	return &c, nil
}

// DeleteCategory removes a category, checking ownership.
func (s *SQLite) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM categories WHERE id = ? AND user_id = ?", categoryID, userID)
	if err != nil {
		return fmt.Errorf("store: delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete category: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordFeedback appends the feedback log entry and updates the category's
// representative vector in a single transaction, so the log and the vector
// never disagree.
func (s *SQLite) RecordFeedback(ctx context.Context, entry *FeedbackEntry, newVector []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: record feedback: begin: %w", err)
	}
	defer tx.Rollback()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO feedback_log (id, user_id, category_id, text_content, text_embedding, direction, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID, entry.UserID, entry.CategoryID, entry.Text, entry.Embedding, entry.Direction, now); err != nil {
		return fmt.Errorf("store: record feedback: insert log: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE categories SET embedding = ? WHERE id = ? AND user_id = ?",
		newVector, entry.CategoryID, entry.UserID)
	if err != nil {
		return fmt.Errorf("store: record feedback: update vector: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: record feedback: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: record feedback: commit: %w", err)
	}
	entry.CreatedAt = now
	return nil
}

// AddWhitelist adds a text to the user's whitelist; duplicates are ignored.
func (s *SQLite) AddWhitelist(ctx context.Context, userID int64, text string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO whitelist (user_id, text_content, created_at) VALUES (?, ?, ?)",
		userID, text, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: add whitelist: %w", err)
	}
	return nil
}

// ListWhitelist returns the user's whitelisted texts.
func (s *SQLite) ListWhitelist(ctx context.Context, userID int64) ([]WhitelistEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, user_id, text_content, created_at FROM whitelist WHERE user_id = ? ORDER BY id",
		userID)
	if err != nil {
		return nil, fmt.Errorf("store: list whitelist: %w", err)
	}
	defer rows.Close()

	var entries []WhitelistEntry
	for rows.Next() {
		var e WhitelistEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: list whitelist: scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list whitelist: %w", err)
	}
	return entries, nil
}

// RemoveWhitelist removes a text from the user's whitelist.
func (s *SQLite) RemoveWhitelist(ctx context.Context, userID int64, text string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM whitelist WHERE user_id = ? AND text_content = ?", userID, text)
	if err != nil {
		return fmt.Errorf("store: remove whitelist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: remove whitelist: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}
