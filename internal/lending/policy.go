package lending

import (
	"librarybot/internal/models"
)

// MaxActiveLoans is the number of books a member may hold at once.
// The store enforces the same limit authoritatively.
const MaxActiveLoans = 3

const secondsPerDay = 24 * 60 * 60

// UrgentThresholdDays marks loans due within this many days for visual emphasis
const UrgentThresholdDays = 2

// Reason explains why a borrow request would be refused
type Reason string

const (
	ReasonUnavailable Reason = "unavailable"
	ReasonBorrowLimit Reason = "borrow_limit"
)

// Decision is the outcome of a client-side borrow check
type Decision struct {
	Allowed bool
	Reason  Reason
}

// CanBorrow checks whether member may borrow book. The active-loan count is
// taken over the full catalog, never a filtered view. This check only avoids
// needless round trips; the store re-validates every borrow.
func CanBorrow(book models.Book, member models.Member, catalog []models.Book) Decision {
	if !book.IsAvailable {
		return Decision{Allowed: false, Reason: ReasonUnavailable}
	}
	if ActiveLoans(catalog, member.Username) >= MaxActiveLoans {
		return Decision{Allowed: false, Reason: ReasonBorrowLimit}
	}
	return Decision{Allowed: true}
}

// CanReturn reports whether member currently holds book. Admins get no
// special privilege over other members' loans.
func CanReturn(book models.Book, member models.Member) bool {
	return !book.IsAvailable && book.BorrowedBy == member.Username
}

// ActiveLoans counts the books in catalog currently borrowed by username
func ActiveLoans(catalog []models.Book, username string) int {
	count := 0
	for _, b := range catalog {
		if !b.IsAvailable && b.BorrowedBy == username {
			count++
		}
	}
	return count
}

// DaysRemaining returns the whole days until dueDate, rounded toward
// positive infinity so a loan due in one hour still reports one day.
// ok is false when the book has no due date (it is on the shelf).
// A result <= 0 means the loan is overdue.
func DaysRemaining(dueDate, now int64) (days int, ok bool) {
	if dueDate == 0 {
		return 0, false
	}
	diff := dueDate - now
	days = int(diff / secondsPerDay)
	if diff%secondsPerDay > 0 {
		days++
	}
	return days, true
}

// IsOverdue reports whether a loan with the given days-remaining has lapsed
func IsOverdue(days int) bool {
	return days <= 0
}

// IsUrgent reports whether a loan is close enough to its due date to warrant
// emphasis. Overdue loans are not urgent, they are overdue.
func IsUrgent(days int) bool {
	return days > 0 && days <= UrgentThresholdDays
}
