package stubs

import (
	"context"
	"sync"
	"time"

	"librarybot/internal/models"
	"librarybot/internal/store"
)

const (
	maxActiveLoans = 3
	loanPeriod     = 14 * 24 * time.Hour
)

type account struct {
	password string
	role     models.Role
}

// MockStore is an in-memory implementation of the Store interface. It mirrors
// the real store's rules (loan cap, 14-day due date, rating aggregation) so
// the bot behaves the same against either. Used by tests and the dev binary.
type MockStore struct {
	mu       sync.RWMutex
	books    []models.Book
	accounts map[string]account
	nextID   int

	// now is swappable so tests can pin due dates
	now func() time.Time
}

// NewMockStore creates a mock store with default accounts and no books
func NewMockStore() *MockStore {
	return &MockStore{
		accounts: map[string]account{
			"seldio": {password: "1234", role: models.RoleAdmin},
			"alice":  {password: "alice", role: models.RoleMember},
			"bob":    {password: "bob", role: models.RoleMember},
		},
		nextID: 1,
		now:    time.Now,
	}
}

// SetNow overrides the clock used for due dates
func (m *MockStore) SetNow(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = now
}

// Authenticate verifies credentials against the seeded accounts
func (m *MockStore) Authenticate(ctx context.Context, username, password string) (models.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acc, ok := m.accounts[username]
	if !ok || acc.password != password {
		return models.Member{}, store.ErrInvalidCredentials
	}
	return models.Member{Username: username, Role: acc.role}, nil
}

// ListBooks returns a copy of the catalog in insertion order
func (m *MockStore) ListBooks(ctx context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]models.Book, len(m.books))
	copy(books, m.books)
	return books, nil
}

// AddBook appends a new available book and assigns it an id
func (m *MockStore) AddBook(ctx context.Context, title, author, genre, coverURL string) error {
	if title == "" || author == "" {
		return store.ErrRejected
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.books = append(m.books, models.Book{
		ID:          m.nextID,
		Title:       title,
		Author:      author,
		Genre:       genre,
		CoverURL:    coverURL,
		IsAvailable: true,
	})
	m.nextID++
	return nil
}

// DeleteBook removes a book by id. Deleting a borrowed book is permitted,
// matching the real store.
func (m *MockStore) DeleteBook(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.books {
		if b.ID == id {
			m.books = append(m.books[:i], m.books[i+1:]...)
			return nil
		}
	}
	return store.ErrRejected
}

// BorrowBook lends a book to username, enforcing the loan cap and setting
// the due date 14 days out
func (m *MockStore) BorrowBook(ctx context.Context, id int, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	active := 0
	for _, b := range m.books {
		if !b.IsAvailable && b.BorrowedBy == username {
			active++
		}
	}
	if active >= maxActiveLoans {
		return store.ErrRejected
	}

	for i, b := range m.books {
		if b.ID == id && b.IsAvailable {
			m.books[i].IsAvailable = false
			m.books[i].BorrowedBy = username
			m.books[i].DueDate = m.now().Add(loanPeriod).Unix()
			return nil
		}
	}
	return store.ErrRejected
}

// ReturnBook puts a borrowed book back on the shelf
func (m *MockStore) ReturnBook(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.books {
		if b.ID == id && !b.IsAvailable {
			m.books[i].IsAvailable = true
			m.books[i].BorrowedBy = ""
			m.books[i].DueDate = 0
			return nil
		}
	}
	return store.ErrRejected
}

// RateBook folds stars into the book's running average
func (m *MockStore) RateBook(ctx context.Context, id int, stars int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, b := range m.books {
		if b.ID == id {
			total := b.Rating * float64(b.RatingCount)
			m.books[i].RatingCount++
			m.books[i].Rating = (total + float64(stars)) / float64(m.books[i].RatingCount)
			return nil
		}
	}
	return store.ErrRejected
}

// Close does nothing for the mock store
func (m *MockStore) Close() error {
	return nil
}
