package models

// Role of an authenticated member
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Book represents a single catalog record as served by the store.
// BorrowedBy and DueDate are only meaningful when IsAvailable is false;
// DueDate is unix seconds and 0 when the book is on the shelf.
type Book struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	IsAvailable bool    `json:"isAvailable"`
	BorrowedBy  string  `json:"borrowedBy"`
	Genre       string  `json:"genre"`
	CoverURL    string  `json:"coverUrl"`
	DueDate     int64   `json:"dueDate"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"ratingCount"`
}

// Member represents an authenticated library member
type Member struct {
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin reports whether the member may add or delete books
func (m Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
