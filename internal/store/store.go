package store

import (
	"context"
	"errors"

	"librarybot/internal/models"
)

// ErrInvalidCredentials is returned by Authenticate when the store rejects
// the username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrRejected is returned when the store refuses a mutation it considers
// illegal (borrow cap reached, book taken between fetch and request, unknown
// id). The store does not say which, so callers show a generic explanation.
var ErrRejected = errors.New("request rejected by store")

// Store is the external catalog/session store. It is the single source of
// truth: the client never mutates its cached catalog locally, it re-fetches
// after every successful mutation.
type Store interface {
	// Authenticate verifies credentials and returns the member identity
	Authenticate(ctx context.Context, username, password string) (models.Member, error)

	// ListBooks returns the full catalog
	ListBooks(ctx context.Context) ([]models.Book, error)

	// AddBook registers a new title; genre and coverURL may be empty
	AddBook(ctx context.Context, title, author, genre, coverURL string) error

	// DeleteBook removes a book regardless of its loan state
	DeleteBook(ctx context.Context, id int) error

	// BorrowBook lends book id to username; the store enforces the loan cap
	BorrowBook(ctx context.Context, id int, username string) error

	// ReturnBook puts a borrowed book back on the shelf
	ReturnBook(ctx context.Context, id int) error

	// RateBook folds a 1-5 star rating into the book's aggregate
	RateBook(ctx context.Context, id int, stars int) error

	// Close releases any underlying resources
	Close() error
}
