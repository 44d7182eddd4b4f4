package catalog

import "fmt"

// Star rating bounds accepted by the store
const (
	MinStars = 1
	MaxStars = 5
)

// ValidStars reports whether stars may be submitted at all. Out-of-range
// input is a caller error and is rejected before the request is made,
// never clamped.
func ValidStars(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}

// FormatRating renders the aggregate rating as shown next to a book.
// The average itself is computed by the store; this only displays the
// value from the latest fetch.
func FormatRating(rating float64, count int) string {
	if rating <= 0 {
		return "No ratings"
	}
	return fmt.Sprintf("%.1f (%d)", rating, count)
}
