// Package store is the persistence layer for categories, feedback logs, and
// whitelists. The filtering core only consumes the Store interface; SQLite is
// the shipped implementation.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a category does not exist or is owned by a
// different user. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("store: not found")

// Category is a user-defined semantic category with its representative
// embedding. Embedding is the raw vector blob (4*D bytes, little-endian
// float32); the vector codec owns the layout.
type Category struct {
	ID          int64
	UserID      int64
	Name        string
	Description string
	Embedding   []byte
	CreatedAt   time.Time
}

// FeedbackEntry records one reinforce/weaken action on a category. Embedding
// holds the raw (non-normalized) embedding of the feedback text.
type FeedbackEntry struct {
	ID         string
	UserID     int64
	CategoryID int64
	Text       string
	Embedding  []byte
	Direction  string
	CreatedAt  time.Time
}

// WhitelistEntry is a text a user never wants filtered, matched exactly.
type WhitelistEntry struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}

// Store persists categories, feedback logs, and whitelists.
type Store interface {
	// CreateCategory inserts a category and fills in its ID and CreatedAt.
	CreateCategory(ctx context.Context, c *Category) error

	// ListCategories returns all of a user's categories, newest first.
	ListCategories(ctx context.Context, userID int64) ([]Category, error)

	// GetCategory returns one category, checking ownership.
	GetCategory(ctx context.Context, userID, categoryID int64) (*Category, error)

	// DeleteCategory removes a category, checking ownership.
	DeleteCategory(ctx context.Context, userID, categoryID int64) error

	// RecordFeedback appends the feedback log entry and updates the
	// category's representative vector in a single transaction.
	RecordFeedback(ctx context.Context, entry *FeedbackEntry, newVector []byte) error

	// AddWhitelist adds a text to the user's whitelist; adding the same
	// text twice is not an error.
	AddWhitelist(ctx context.Context, userID int64, text string) error

	// ListWhitelist returns the user's whitelisted texts.
	ListWhitelist(ctx context.Context, userID int64) ([]WhitelistEntry, error)

	// RemoveWhitelist removes a text from the user's whitelist.
	RemoveWhitelist(ctx context.Context, userID int64, text string) error

	// Close releases the underlying connection.
	Close() error
}
