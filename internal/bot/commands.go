package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"librarybot/internal/catalog"
)

// handleStart shows welcome message and available commands
func (b *Bot) handleStart(message *tgbotapi.Message) {
	text := `Welcome to the Library Bot! 📚

Available commands:
/login - Log in to the library
/books - Browse the catalog
/my - Show the books you borrowed
/search <text> - Filter by title or author
/add_book - Add a new book (admins)
/logout - Log out`

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	b.sendMessage(msg)
}

// handleLoginStart initiates the login conversation
func (b *Bot) handleLoginStart(message *tgbotapi.Message) {
	userID := message.From.ID

	if b.sessions.Get(userID) != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID, "You are already logged in. Use /logout first to switch accounts.")
		b.sendMessage(msg)
		return
	}

	b.mu.Lock()
	b.states[userID] = &ConversationState{
		Command: "login",
		Step:    1,
		Data:    make(map[string]interface{}),
	}
	b.mu.Unlock()

	msg := tgbotapi.NewMessage(message.Chat.ID, "Please enter your username:")
	b.sendMessage(msg)
}

// handleLogout clears the session and every bit of cached catalog state
func (b *Bot) handleLogout(message *tgbotapi.Message) {
	userID := message.From.ID

	b.sessions.Logout(userID)
	b.clearUserState(userID)

	msg := tgbotapi.NewMessage(message.Chat.ID, "You have been logged out.")
	b.sendMessage(msg)
}

// handleBooks fetches the catalog and shows the filtered list
func (b *Bot) handleBooks(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	b.refreshCatalog(ctx, userID)
	b.showCatalog(ctx, userID, message.Chat.ID)
}

// handleMyBorrows switches to the personal tab and shows the list
func (b *Bot) handleMyBorrows(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	v := b.view(userID)
	b.mu.Lock()
	v.Filters.ActiveTab = catalog.TabMy
	b.mu.Unlock()

	b.refreshCatalog(ctx, userID)
	b.showCatalog(ctx, userID, message.Chat.ID)
}

// handleSearch sets the search term from the command arguments. Called with
// no arguments it clears the current term.
func (b *Bot) handleSearch(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	term := message.CommandArguments()

	v := b.view(userID)
	b.mu.Lock()
	v.Filters.SearchTerm = term
	b.mu.Unlock()

	if term == "" {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Search cleared.")
		b.sendMessage(msg)
	} else {
		msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("Searching for %q:", term))
		b.sendMessage(msg)
	}

	b.showCatalog(ctx, userID, message.Chat.ID)
}

// handleAddBookStart initiates the add-book conversation (admins only)
func (b *Bot) handleAddBookStart(message *tgbotapi.Message) {
	userID := message.From.ID

	sess := b.sessions.Get(userID)
	if sess == nil || !sess.Member.IsAdmin() {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Only admins can add books.")
		b.sendMessage(msg)
		return
	}

	b.mu.Lock()
	b.states[userID] = &ConversationState{
		Command: "add_book",
		Step:    1,
		Data:    make(map[string]interface{}),
	}
	b.mu.Unlock()

	msg := tgbotapi.NewMessage(message.Chat.ID, "Please enter the book title:")
	b.sendMessage(msg)
}
