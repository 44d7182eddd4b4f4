package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"librarybot/internal/models"
)

var alice = models.Member{Username: "alice", Role: models.RoleMember}

func sampleCatalog() []models.Book {
	return []models.Book{
		{ID: 1, Title: "Dune", Author: "Herbert", Genre: "Sci-Fi", IsAvailable: true},
		{ID: 2, Title: "The Hobbit", Author: "Tolkien", Genre: "Fantasy", IsAvailable: false, BorrowedBy: "alice", DueDate: 100},
		{ID: 3, Title: "Clean Code", Author: "Martin", Genre: "Tech", IsAvailable: true},
		{ID: 4, Title: "Emma", Author: "Austen", Genre: "", IsAvailable: false, BorrowedBy: "bob", DueDate: 100},
		{ID: 5, Title: "Dune Messiah", Author: "Herbert", Genre: "Sci-Fi", IsAvailable: false, BorrowedBy: "alice", DueDate: 100},
	}
}

func ids(books []models.Book) []int {
	var out []int
	for _, b := range books {
		out = append(out, b.ID)
	}
	return out
}

func TestVisibleBooks(t *testing.T) {
	testCases := []struct {
		name    string
		filters FilterState
		wantIDs []int
	}{
		{
			name:    "no filters shows everything",
			filters: NewFilterState(),
			wantIDs: []int{1, 2, 3, 4, 5},
		},
		{
			name:    "search matches title case-insensitively",
			filters: FilterState{SearchTerm: "dune", ActiveTab: TabAll, FilterGenre: AllGenres},
			wantIDs: []int{1, 5},
		},
		{
			name:    "search matches author",
			filters: FilterState{SearchTerm: "TOLKIEN", ActiveTab: TabAll, FilterGenre: AllGenres},
			wantIDs: []int{2},
		},
		{
			name:    "search with no hits",
			filters: FilterState{SearchTerm: "zzzz", ActiveTab: TabAll, FilterGenre: AllGenres},
			wantIDs: nil,
		},
		{
			name:    "genre filter is exact",
			filters: FilterState{ActiveTab: TabAll, FilterGenre: "Sci-Fi"},
			wantIDs: []int{1, 5},
		},
		{
			name:    "empty genre normalizes to General",
			filters: FilterState{ActiveTab: TabAll, FilterGenre: "General"},
			wantIDs: []int{4},
		},
		{
			name:    "my tab shows only own borrows",
			filters: FilterState{ActiveTab: TabMy, FilterGenre: AllGenres},
			wantIDs: []int{2, 5},
		},
		{
			name:    "filters combine with AND",
			filters: FilterState{SearchTerm: "dune", ActiveTab: TabMy, FilterGenre: "Sci-Fi"},
			wantIDs: []int{5},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := VisibleBooks(sampleCatalog(), tc.filters, alice)
			assert.Equal(t, tc.wantIDs, ids(got))
		})
	}
}

func TestVisibleBooks_Scenario(t *testing.T) {
	catalog := []models.Book{
		{ID: 1, Title: "Dune", Author: "Herbert", Genre: "Sci-Fi", IsAvailable: true},
	}
	filters := FilterState{SearchTerm: "dune", ActiveTab: TabAll, FilterGenre: AllGenres}

	got := VisibleBooks(catalog, filters, alice)
	assert.Equal(t, []int{1}, ids(got))
}

func TestVisibleBooks_Idempotent(t *testing.T) {
	filters := FilterState{SearchTerm: "e", ActiveTab: TabAll, FilterGenre: AllGenres}

	first := VisibleBooks(sampleCatalog(), filters, alice)
	second := VisibleBooks(sampleCatalog(), filters, alice)
	assert.Equal(t, first, second)
}

func TestVisibleBooks_PreservesOrder(t *testing.T) {
	// Output must be a subsequence of the input, never re-sorted
	got := VisibleBooks(sampleCatalog(), NewFilterState(), alice)

	input := sampleCatalog()
	pos := 0
	for _, b := range got {
		found := false
		for ; pos < len(input); pos++ {
			if input[pos].ID == b.ID {
				found = true
				pos++
				break
			}
		}
		assert.True(t, found, "book %d out of order or not in input", b.ID)
	}
}

func TestVisibleBooks_DoesNotMutateInput(t *testing.T) {
	input := sampleCatalog()
	VisibleBooks(input, FilterState{SearchTerm: "dune", ActiveTab: TabMy, FilterGenre: "Sci-Fi"}, alice)
	assert.Equal(t, sampleCatalog(), input)
}

func TestAvailableGenres(t *testing.T) {
	genres := AvailableGenres(sampleCatalog())

	assert.Equal(t, []string{"All", "Sci-Fi", "Fantasy", "Tech", "General"}, genres)
}

func TestAvailableGenres_Empty(t *testing.T) {
	assert.Equal(t, []string{"All"}, AvailableGenres(nil))
}

func TestAvailableGenres_NoDuplicates(t *testing.T) {
	catalog := []models.Book{
		{ID: 1, Genre: "Tech"},
		{ID: 2, Genre: "Tech"},
		{ID: 3, Genre: ""},
		{ID: 4, Genre: "General"},
	}

	genres := AvailableGenres(catalog)
	assert.Equal(t, []string{"All", "Tech", "General"}, genres)

	seen := make(map[string]bool)
	for _, g := range genres {
		assert.False(t, seen[g], "duplicate genre %q", g)
		seen[g] = true
	}
}

func TestFindBook(t *testing.T) {
	book, found := FindBook(sampleCatalog(), 3)
	assert.True(t, found)
	assert.Equal(t, "Clean Code", book.Title)

	_, found = FindBook(sampleCatalog(), 99)
	assert.False(t, found)
}
