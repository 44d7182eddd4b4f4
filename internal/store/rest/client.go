package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"librarybot/internal/models"
	"librarybot/internal/store"
)

// Client talks HTTP/JSON to the catalog store
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a store client for the given base URL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Authenticate posts credentials to /login. A 401 maps to
// store.ErrInvalidCredentials; anything else non-200 is a transport failure.
func (c *Client) Authenticate(ctx context.Context, username, password string) (models.Member, error) {
	body := map[string]string{"username": username, "password": password}

	resp, err := c.post(ctx, "/login", body)
	if err != nil {
		return models.Member{}, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var member models.Member
		if err := json.NewDecoder(resp.Body).Decode(&member); err != nil {
			return models.Member{}, fmt.Errorf("failed to decode login response: %w", err)
		}
		return member, nil
	case http.StatusUnauthorized:
		return models.Member{}, store.ErrInvalidCredentials
	default:
		return models.Member{}, fmt.Errorf("login: unexpected status code: %d", resp.StatusCode)
	}
}

// ListBooks fetches the full catalog from /books
func (c *Client) ListBooks(ctx context.Context) ([]models.Book, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/books", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list books: unexpected status code: %d", resp.StatusCode)
	}

	var books []models.Book
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, fmt.Errorf("failed to decode books: %w", err)
	}
	return books, nil
}

// AddBook posts a new title to /books
func (c *Client) AddBook(ctx context.Context, title, author, genre, coverURL string) error {
	body := map[string]string{
		"title":    title,
		"author":   author,
		"genre":    genre,
		"coverUrl": coverURL,
	}

	resp, err := c.post(ctx, "/books", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("add book: unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// DeleteBook removes a book by id. The store permits deleting a borrowed
// book; that is its call, not ours.
func (c *Client) DeleteBook(ctx context.Context, id int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/books/%d", c.baseURL, id), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete book: unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// BorrowBook asks the store to lend book id to username. A 400 means the
// store refused (cap reached, already taken, unknown id) and maps to
// store.ErrRejected; the store gives no structured reason.
func (c *Client) BorrowBook(ctx context.Context, id int, username string) error {
	body := map[string]string{"username": username}

	resp, err := c.post(ctx, fmt.Sprintf("/books/%d/borrow", id), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return store.ErrRejected
	default:
		return fmt.Errorf("borrow book: unexpected status code: %d", resp.StatusCode)
	}
}

// ReturnBook puts book id back on the shelf
func (c *Client) ReturnBook(ctx context.Context, id int) error {
	resp, err := c.post(ctx, fmt.Sprintf("/books/%d/return", id), nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return store.ErrRejected
	default:
		return fmt.Errorf("return book: unexpected status code: %d", resp.StatusCode)
	}
}

// RateBook submits a star rating. The aggregate is computed store-side; the
// caller re-fetches to see the new value.
func (c *Client) RateBook(ctx context.Context, id int, stars int) error {
	body := map[string]int{"stars": stars}

	resp, err := c.post(ctx, fmt.Sprintf("/books/%d/rate", id), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rate book: unexpected status code: %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op; the client holds no persistent connections
func (c *Client) Close() error {
	return nil
}

func (c *Client) post(ctx context.Context, path string, body interface{}) (*http.Response, error) {
	var payload bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&payload).Encode(body); err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", path, err)
	}
	return resp, nil
}
