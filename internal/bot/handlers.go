package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			msg := tgbotapi.NewMessage(message.Chat.ID, "An error occurred while processing your request. Please try again.")
			b.sendMessage(msg)
		}
	}()

	userID := message.From.ID
	ctx := context.Background()

	// Check if user is in a conversation
	b.mu.RLock()
	state, inConversation := b.states[userID]
	b.mu.RUnlock()
	if inConversation {
		if state.Step == -1 {
			// Conversation already complete, clean it up and fall through
			b.mu.Lock()
			delete(b.states, userID)
			b.mu.Unlock()
		} else if message.IsCommand() {
			// Allow any command to interrupt/cancel an ongoing conversation
			b.mu.Lock()
			delete(b.states, userID)
			b.mu.Unlock()
		} else {
			b.handleConversation(ctx, message, state)
			return
		}
	}

	if !message.IsCommand() {
		return
	}

	command := message.Command()

	// Everything except /start and /login requires an authenticated session
	if b.sessions.Get(userID) == nil && command != "start" && command != "login" {
		msg := tgbotapi.NewMessage(message.Chat.ID, "You are not logged in. Use /login first.")
		b.sendMessage(msg)
		return
	}

	switch command {
	case "start":
		b.handleStart(message)
	case "login":
		b.handleLoginStart(message)
	case "logout":
		b.handleLogout(message)
	case "books":
		b.handleBooks(ctx, message)
	case "my":
		b.handleMyBorrows(ctx, message)
	case "search":
		b.handleSearch(ctx, message)
	case "add_book":
		b.handleAddBookStart(message)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /start to see available commands.")
		b.sendMessage(msg)
	}
}

// handleCallbackQuery processes inline keyboard button clicks
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	userID := query.From.ID
	ctx := context.Background()

	// Answer the callback query to remove loading state
	callback := tgbotapi.NewCallback(query.ID, "")
	if b.api != nil {
		b.api.Request(callback)
	}

	// Keyboards only exist after login; ignore stale buttons
	if b.sessions.Get(userID) == nil {
		return
	}

	data := query.Data
	switch {
	case strings.HasPrefix(data, "tab:"):
		b.handleTabCallback(ctx, query)
	case strings.HasPrefix(data, "genre:"):
		b.handleGenreCallback(ctx, query)
	case strings.HasPrefix(data, "book:"):
		b.handleBookCallback(ctx, query)
	case strings.HasPrefix(data, "borrow:"):
		b.handleBorrowCallback(ctx, query)
	case strings.HasPrefix(data, "return:"):
		b.handleReturnCallback(ctx, query)
	case strings.HasPrefix(data, "rate:"):
		b.handleRateCallback(ctx, query)
	case strings.HasPrefix(data, "stars:"):
		b.handleStarsCallback(ctx, query)
	case strings.HasPrefix(data, "delete:"):
		b.handleDeleteCallback(ctx, query)
	case data == "catalog":
		b.showCatalog(ctx, query.From.ID, query.Message.Chat.ID)
	}
}
