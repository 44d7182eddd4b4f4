package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"librarybot/internal/catalog"
	"librarybot/internal/lending"
	"librarybot/internal/store"
)

// borrowLimitMessage is shown for every borrow the store refuses. The store
// gives no structured reason, so all rejections collapse into this one text.
const borrowLimitMessage = "Cannot borrow: you might have reached the 3-book limit."

// handleTabCallback switches between the full catalog and personal borrows
func (b *Bot) handleTabCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	tab := catalog.Tab(strings.TrimPrefix(query.Data, "tab:"))
	if tab != catalog.TabAll && tab != catalog.TabMy {
		return
	}

	v := b.view(userID)
	b.mu.Lock()
	v.Filters.ActiveTab = tab
	b.mu.Unlock()

	b.showCatalog(ctx, userID, query.Message.Chat.ID)
}

// handleGenreCallback sets the genre filter chip
func (b *Bot) handleGenreCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	genre := strings.TrimPrefix(query.Data, "genre:")

	v := b.view(userID)
	b.mu.Lock()
	v.Filters.FilterGenre = genre
	b.mu.Unlock()

	b.showCatalog(ctx, userID, query.Message.Chat.ID)
}

// handleBookCallback shows the detail card for one book
func (b *Bot) handleBookCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	id, err := strconv.Atoi(strings.TrimPrefix(query.Data, "book:"))
	if err != nil {
		return
	}

	b.showBookCard(ctx, userID, query.Message.Chat.ID, id)
}

// handleBorrowCallback runs the client-side policy check, then asks the
// store to borrow. The store re-validates: a rejection against our stale
// snapshot is expected and handled, not an error.
func (b *Bot) handleBorrowCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	id, err := strconv.Atoi(strings.TrimPrefix(query.Data, "borrow:"))
	if err != nil {
		return
	}

	sess := b.sessions.Get(userID)
	v := b.view(userID)

	b.mu.RLock()
	book, found := catalog.FindBook(v.Catalog, id)
	snapshot := v.Catalog
	b.mu.RUnlock()
	if !found {
		return
	}

	decision := lending.CanBorrow(book, sess.Member, snapshot)
	if !decision.Allowed {
		var text string
		switch decision.Reason {
		case lending.ReasonBorrowLimit:
			text = borrowLimitMessage
		default:
			text = "This book is not available right now."
		}
		b.sendMessage(tgbotapi.NewMessage(chatID, text))
		return
	}

	if err := b.store.BorrowBook(ctx, id, sess.Member.Username); err != nil {
		if errors.Is(err, store.ErrRejected) {
			// Our snapshot was stale or the cap was hit server-side
			b.sendMessage(tgbotapi.NewMessage(chatID, borrowLimitMessage))
		} else {
			b.logger.Error("Failed to borrow book",
				zap.Error(err),
				zap.Int("book_id", id),
				zap.String("username", sess.Member.Username),
			)
		}
		return
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf("You borrowed %q. Enjoy!", book.Title)))
	b.refreshCatalog(ctx, userID)
	b.showBookCard(ctx, userID, chatID, id)
}

// handleReturnCallback returns a borrowed book
func (b *Bot) handleReturnCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	id, err := strconv.Atoi(strings.TrimPrefix(query.Data, "return:"))
	if err != nil {
		return
	}

	sess := b.sessions.Get(userID)
	v := b.view(userID)

	b.mu.RLock()
	book, found := catalog.FindBook(v.Catalog, id)
	b.mu.RUnlock()
	if !found {
		return
	}

	if !lending.CanReturn(book, sess.Member) {
		b.sendMessage(tgbotapi.NewMessage(chatID, "You can only return books you borrowed yourself."))
		return
	}

	if err := b.store.ReturnBook(ctx, id); err != nil {
		b.logger.Error("Failed to return book",
			zap.Error(err),
			zap.Int("book_id", id),
			zap.String("username", sess.Member.Username),
		)
		return
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, fmt.Sprintf("You returned %q.", book.Title)))
	b.refreshCatalog(ctx, userID)
	b.showBookCard(ctx, userID, chatID, id)
}

// handleRateCallback shows the star picker for a book
func (b *Bot) handleRateCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	id, err := strconv.Atoi(strings.TrimPrefix(query.Data, "rate:"))
	if err != nil {
		return
	}

	v := b.view(userID)
	b.mu.RLock()
	book, found := catalog.FindBook(v.Catalog, id)
	b.mu.RUnlock()
	if !found {
		return
	}

	var row []tgbotapi.InlineKeyboardButton
	for stars := catalog.MinStars; stars <= catalog.MaxStars; stars++ {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			strings.Repeat("★", stars),
			fmt.Sprintf("stars:%d:%d", id, stars),
		))
	}
	keyboard := tgbotapi.NewInlineKeyboardMarkup(row)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Rate %q:", book.Title))
	msg.ReplyMarkup = keyboard
	b.sendMessage(msg)
}

// handleStarsCallback submits a rating and re-fetches the aggregate. The
// displayed value always comes from the store, never a local guess.
func (b *Bot) handleStarsCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID

	parts := strings.Split(strings.TrimPrefix(query.Data, "stars:"), ":")
	if len(parts) != 2 {
		return
	}
	id, err := strconv.Atoi(parts[0])
	if err != nil {
		return
	}
	stars, err := strconv.Atoi(parts[1])
	if err != nil || !catalog.ValidStars(stars) {
		// Out-of-range stars never leave the client
		return
	}

	if err := b.store.RateBook(ctx, id, stars); err != nil {
		b.logger.Error("Failed to rate book",
			zap.Error(err),
			zap.Int("book_id", id),
			zap.Int("stars", stars),
		)
		return
	}

	b.refreshCatalog(ctx, userID)
	b.showBookCard(ctx, userID, chatID, id)
}

// handleDeleteCallback removes a book (admins only). The store allows
// deleting a borrowed book, so we do not block it either.
func (b *Bot) handleDeleteCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID
	chatID := query.Message.Chat.ID
	id, err := strconv.Atoi(strings.TrimPrefix(query.Data, "delete:"))
	if err != nil {
		return
	}

	sess := b.sessions.Get(userID)
	if !sess.Member.IsAdmin() {
		return
	}

	if err := b.store.DeleteBook(ctx, id); err != nil {
		b.logger.Error("Failed to delete book",
			zap.Error(err),
			zap.Int("book_id", id),
		)
		return
	}

	b.sendMessage(tgbotapi.NewMessage(chatID, "Book deleted."))
	b.refreshCatalog(ctx, userID)
	b.showCatalog(ctx, userID, chatID)
}
