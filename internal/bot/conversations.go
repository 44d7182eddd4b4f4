package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"librarybot/internal/store"
)

// handleConversation processes multi-step conversations
func (b *Bot) handleConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	userID := message.From.ID

	switch state.Command {
	case "login":
		b.handleLoginConversation(ctx, message, state)
	case "add_book":
		b.handleAddBookConversation(ctx, message, state)
	}

	// Clean up completed conversations
	if state.Step == -1 {
		b.mu.Lock()
		delete(b.states, userID)
		b.mu.Unlock()
	}
}

// handleLoginConversation collects username and password, then asks the
// store to authenticate. Credentials are passed through as-is; the store is
// the only judge of them.
func (b *Bot) handleLoginConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case 1: // Waiting for username
		state.Data["username"] = message.Text
		state.Step = 2

		msg := tgbotapi.NewMessage(message.Chat.ID, "Please enter your password:")
		b.sendMessage(msg)

	case 2: // Waiting for password
		username := state.Data["username"].(string)
		password := message.Text
		state.Step = -1

		member, err := b.store.Authenticate(ctx, username, password)
		if err != nil {
			if errors.Is(err, store.ErrInvalidCredentials) {
				msg := tgbotapi.NewMessage(message.Chat.ID, "Invalid credentials. Use /login to try again.")
				b.sendMessage(msg)
				return
			}
			b.logger.Error("Login request failed",
				zap.Error(err),
				zap.String("username", username),
			)
			msg := tgbotapi.NewMessage(message.Chat.ID, "Login failed. Please try again later.")
			b.sendMessage(msg)
			return
		}

		b.sessions.Login(message.From.ID, member)

		text := fmt.Sprintf("Welcome, %s! You are logged in as %s.", member.Username, member.Role)
		msg := tgbotapi.NewMessage(message.Chat.ID, text)
		b.sendMessage(msg)

		b.refreshCatalog(ctx, message.From.ID)
		b.showCatalog(ctx, message.From.ID, message.Chat.ID)
	}
}

// handleAddBookConversation collects the new book fields step by step.
// Genre and cover URL are optional; "-" skips them.
func (b *Bot) handleAddBookConversation(ctx context.Context, message *tgbotapi.Message, state *ConversationState) {
	switch state.Step {
	case 1: // Waiting for title
		if message.Text == "" {
			msg := tgbotapi.NewMessage(message.Chat.ID, "The title cannot be empty. Please enter the book title:")
			b.sendMessage(msg)
			return
		}
		state.Data["title"] = message.Text
		state.Step = 2

		msg := tgbotapi.NewMessage(message.Chat.ID, "Please enter the author:")
		b.sendMessage(msg)

	case 2: // Waiting for author
		if message.Text == "" {
			msg := tgbotapi.NewMessage(message.Chat.ID, "The author cannot be empty. Please enter the author:")
			b.sendMessage(msg)
			return
		}
		state.Data["author"] = message.Text
		state.Step = 3

		msg := tgbotapi.NewMessage(message.Chat.ID, "Please enter the genre (or \"-\" to skip):")
		b.sendMessage(msg)

	case 3: // Waiting for genre
		if message.Text != "-" {
			state.Data["genre"] = message.Text
		}
		state.Step = 4

		msg := tgbotapi.NewMessage(message.Chat.ID, "Please enter a cover image URL (or \"-\" to skip):")
		b.sendMessage(msg)

	case 4: // Waiting for cover URL
		coverURL := ""
		if message.Text != "-" {
			coverURL = message.Text
		}

		title := state.Data["title"].(string)
		author := state.Data["author"].(string)
		genre, _ := state.Data["genre"].(string)
		state.Step = -1

		if err := b.store.AddBook(ctx, title, author, genre, coverURL); err != nil {
			b.logger.Error("Failed to add book",
				zap.Error(err),
				zap.String("title", title),
			)
			msg := tgbotapi.NewMessage(message.Chat.ID, "Failed to add the book.")
			b.sendMessage(msg)
			return
		}

		text := fmt.Sprintf("Book added!\nTitle: %s\nAuthor: %s", title, author)
		msg := tgbotapi.NewMessage(message.Chat.ID, text)
		b.sendMessage(msg)

		b.refreshCatalog(ctx, message.From.ID)
		b.showCatalog(ctx, message.From.ID, message.Chat.ID)
	}
}
