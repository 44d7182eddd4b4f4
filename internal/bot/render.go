package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"librarybot/internal/catalog"
	"librarybot/internal/lending"
	"librarybot/internal/models"
)

// showCatalog renders the filtered book list with tab, genre and book
// selection keyboards. The visible set is recomputed from the snapshot and
// filters on every call.
func (b *Bot) showCatalog(ctx context.Context, userID, chatID int64) {
	sess := b.sessions.Get(userID)
	if sess == nil {
		return
	}
	v := b.view(userID)

	b.mu.RLock()
	snapshot := v.Catalog
	filters := v.Filters
	b.mu.RUnlock()

	books := catalog.VisibleBooks(snapshot, filters, sess.Member)
	genres := catalog.AvailableGenres(snapshot)
	now := time.Now().Unix()

	var text strings.Builder
	if filters.ActiveTab == catalog.TabMy {
		text.WriteString("📚 Personal Collection\n\n")
	} else {
		text.WriteString("📚 Library Inventory\n\n")
	}
	if filters.SearchTerm != "" {
		fmt.Fprintf(&text, "Search: %q\n", filters.SearchTerm)
	}
	if filters.FilterGenre != "" && filters.FilterGenre != catalog.AllGenres {
		fmt.Fprintf(&text, "Genre: %s\n", filters.FilterGenre)
	}

	if len(books) == 0 {
		text.WriteString("No books found in this category.")
	} else {
		for _, book := range books {
			text.WriteString(formatBookLine(book, sess.Member.Username, now))
			text.WriteString("\n")
		}
	}

	var rows [][]tgbotapi.InlineKeyboardButton

	// Tabs
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("All Books", "tab:all"),
		tgbotapi.NewInlineKeyboardButtonData("My Borrows", "tab:my"),
	))

	// Genre chips, three per row
	var chipRow []tgbotapi.InlineKeyboardButton
	for i, g := range genres {
		label := g
		if g == filters.FilterGenre {
			label = "• " + g
		}
		chipRow = append(chipRow, tgbotapi.NewInlineKeyboardButtonData(label, "genre:"+g))
		if len(chipRow) == 3 || i == len(genres)-1 {
			rows = append(rows, chipRow)
			chipRow = nil
		}
	}

	// Book buttons, two per row
	var bookRow []tgbotapi.InlineKeyboardButton
	for i, book := range books {
		bookRow = append(bookRow, tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("#%d %s", book.ID, book.Title),
			fmt.Sprintf("book:%d", book.ID),
		))
		if len(bookRow) == 2 || i == len(books)-1 {
			rows = append(rows, bookRow)
			bookRow = nil
		}
	}

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMessage(msg)
}

// showBookCard renders one book with its action buttons. A book that
// disappeared from the snapshot (deleted, or list not yet fetched) falls
// back to the catalog view.
func (b *Bot) showBookCard(ctx context.Context, userID, chatID int64, id int) {
	sess := b.sessions.Get(userID)
	if sess == nil {
		return
	}
	v := b.view(userID)

	b.mu.RLock()
	book, found := catalog.FindBook(v.Catalog, id)
	b.mu.RUnlock()
	if !found {
		b.showCatalog(ctx, userID, chatID)
		return
	}

	now := time.Now().Unix()
	text := formatBookCard(book, sess.Member.Username, now)

	var actions []tgbotapi.InlineKeyboardButton
	if book.IsAvailable {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("Borrow", fmt.Sprintf("borrow:%d", book.ID)))
	} else if lending.CanReturn(book, sess.Member) {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("Return", fmt.Sprintf("return:%d", book.ID)))
	}
	actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("Rate ★", fmt.Sprintf("rate:%d", book.ID)))
	if sess.Member.IsAdmin() {
		actions = append(actions, tgbotapi.NewInlineKeyboardButtonData("Delete", fmt.Sprintf("delete:%d", book.ID)))
	}

	rows := [][]tgbotapi.InlineKeyboardButton{
		actions,
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("« Back to catalog", "catalog"),
		),
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.sendMessage(msg)
}

// formatBookLine renders one catalog list entry
func formatBookLine(book models.Book, username string, now int64) string {
	return fmt.Sprintf("#%d %s — %s [%s]\n★ %s · %s\n",
		book.ID,
		book.Title,
		book.Author,
		catalog.Genre(book),
		catalog.FormatRating(book.Rating, book.RatingCount),
		statusText(book, username, now),
	)
}

// formatBookCard renders the detail view of a single book
func formatBookCard(book models.Book, username string, now int64) string {
	var text strings.Builder

	fmt.Fprintf(&text, "#%d %s\nby %s\n\n", book.ID, book.Title, book.Author)
	fmt.Fprintf(&text, "Genre: %s\n", catalog.Genre(book))
	fmt.Fprintf(&text, "Rating: %s\n", catalog.FormatRating(book.Rating, book.RatingCount))
	fmt.Fprintf(&text, "Status: %s\n", statusText(book, username, now))
	if book.CoverURL != "" {
		fmt.Fprintf(&text, "Cover: %s\n", book.CoverURL)
	}

	return text.String()
}

// statusText renders the availability line for a book. Loans close to their
// due date get a warning marker, lapsed ones are flagged overdue.
func statusText(book models.Book, username string, now int64) string {
	if book.IsAvailable {
		return "Available"
	}

	days, ok := lending.DaysRemaining(book.DueDate, now)
	if !ok {
		// Borrowed without a due date should not happen; show the borrower anyway
		return fmt.Sprintf("Borrowed by @%s", book.BorrowedBy)
	}

	var label string
	switch {
	case lending.IsOverdue(days):
		label = "❗ OVERDUE"
	case lending.IsUrgent(days):
		label = fmt.Sprintf("⚠️ Due in %d days", days)
	default:
		label = fmt.Sprintf("Due in %d days", days)
	}

	if book.BorrowedBy == username {
		return fmt.Sprintf("%s — YOURS", label)
	}
	return fmt.Sprintf("%s (@%s)", label, book.BorrowedBy)
}
