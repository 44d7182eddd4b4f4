package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"librarybot/internal/catalog"
)

// sendMessage sends a chattable, tolerating a nil API for tests
func (b *Bot) sendMessage(msg tgbotapi.Chattable) {
	if b.api == nil {
		return // For testing
	}

	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", zap.Error(err))
	}
}

// view returns the UI state for userID, creating it on first use
func (b *Bot) view(userID int64) *ChatView {
	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.views[userID]
	if !ok {
		v = &ChatView{Filters: catalog.NewFilterState()}
		b.views[userID] = v
	}
	return v
}

// refreshCatalog re-fetches the full catalog and replaces the user's
// snapshot. On failure the previous snapshot is kept untouched; the error
// is logged, not surfaced.
func (b *Bot) refreshCatalog(ctx context.Context, userID int64) {
	books, err := b.store.ListBooks(ctx)
	if err != nil {
		b.logger.Error("Failed to fetch catalog",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	v, ok := b.views[userID]
	if !ok {
		v = &ChatView{Filters: catalog.NewFilterState()}
		b.views[userID] = v
	}
	v.Catalog = books
}

// clearUserState drops all per-user UI state: view, filters, conversation.
// Called on logout so nothing leaks into the next session.
func (b *Bot) clearUserState(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.views, userID)
	delete(b.states, userID)
}
