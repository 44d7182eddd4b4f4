package catalog

import (
	"strings"

	"librarybot/internal/models"
)

// DefaultGenre is substituted for books whose genre field is empty
const DefaultGenre = "General"

// AllGenres is the genre filter value that matches every book
const AllGenres = "All"

// Tab selects which slice of the catalog a member is looking at
type Tab string

const (
	TabAll Tab = "all"
	TabMy  Tab = "my"
)

// FilterState holds the UI-owned filter inputs for the catalog view.
// It is passed into VisibleBooks explicitly; the view keeps no state of
// its own.
type FilterState struct {
	SearchTerm  string
	ActiveTab   Tab
	FilterGenre string
}

// NewFilterState returns the state a chat starts with: everything visible
func NewFilterState() FilterState {
	return FilterState{ActiveTab: TabAll, FilterGenre: AllGenres}
}

// Genre returns the book's genre with the empty value normalized
func Genre(b models.Book) string {
	if b.Genre == "" {
		return DefaultGenre
	}
	return b.Genre
}

// VisibleBooks filters catalog down to the books matching filters for the
// given member. A book is visible iff it matches the search term (substring
// of title or author, case-insensitive), the genre filter, and the active
// tab. The result preserves catalog order and is recomputed from scratch on
// every call.
func VisibleBooks(catalog []models.Book, filters FilterState, member models.Member) []models.Book {
	search := strings.ToLower(filters.SearchTerm)

	var visible []models.Book
	for _, b := range catalog {
		if !matchesSearch(b, search) {
			continue
		}
		if !matchesGenre(b, filters.FilterGenre) {
			continue
		}
		if !matchesTab(b, filters.ActiveTab, member.Username) {
			continue
		}
		visible = append(visible, b)
	}
	return visible
}

func matchesSearch(b models.Book, lowered string) bool {
	if lowered == "" {
		return true
	}
	return strings.Contains(strings.ToLower(b.Title), lowered) ||
		strings.Contains(strings.ToLower(b.Author), lowered)
}

func matchesGenre(b models.Book, filterGenre string) bool {
	if filterGenre == AllGenres || filterGenre == "" {
		return true
	}
	return Genre(b) == filterGenre
}

func matchesTab(b models.Book, tab Tab, username string) bool {
	if tab == TabMy {
		return b.BorrowedBy == username
	}
	return true
}

// AvailableGenres returns "All" followed by each distinct genre in the
// catalog in first-seen order. It is recomputed whenever the catalog
// changes; nothing is cached across mutations.
func AvailableGenres(catalog []models.Book) []string {
	genres := []string{AllGenres}
	seen := make(map[string]bool)
	for _, b := range catalog {
		g := Genre(b)
		if !seen[g] {
			seen[g] = true
			genres = append(genres, g)
		}
	}
	return genres
}

// FindBook looks a book up by id in the cached catalog
func FindBook(catalog []models.Book, id int) (models.Book, bool) {
	for _, b := range catalog {
		if b.ID == id {
			return b, true
		}
	}
	return models.Book{}, false
}
