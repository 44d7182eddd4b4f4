package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidStars(t *testing.T) {
	testCases := []struct {
		stars int
		want  bool
	}{
		{stars: 0, want: false},
		{stars: 1, want: true},
		{stars: 3, want: true},
		{stars: 5, want: true},
		{stars: 6, want: false},
		{stars: -1, want: false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, ValidStars(tc.stars), "ValidStars(%d)", tc.stars)
	}
}

func TestFormatRating(t *testing.T) {
	testCases := []struct {
		name   string
		rating float64
		count  int
		want   string
	}{
		{name: "no ratings", rating: 0, count: 0, want: "No ratings"},
		{name: "single rating", rating: 4.0, count: 1, want: "4.0 (1)"},
		{name: "average with one decimal place", rating: 4.25, count: 4, want: "4.3 (4)"},
		{name: "low average", rating: 1.5, count: 2, want: "1.5 (2)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatRating(tc.rating, tc.count))
		})
	}
}
