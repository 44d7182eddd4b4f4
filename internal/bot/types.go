package bot

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"librarybot/internal/catalog"
	"librarybot/internal/models"
	"librarybot/internal/session"
	"librarybot/internal/store"
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api          *tgbotapi.BotAPI
	store        store.Store
	sessions     *session.Manager
	allowedUsers map[int64]bool

	mu     sync.RWMutex
	states map[int64]*ConversationState
	views  map[int64]*ChatView

	logger *zap.Logger
}

// ConversationState tracks the state of multi-step commands
type ConversationState struct {
	Command string
	Step    int
	Data    map[string]interface{}
}

// ChatView is the per-user UI state: the catalog snapshot from the last
// successful fetch plus the active filters. It is dropped on logout; a
// fresh login starts from an empty snapshot and re-fetches.
type ChatView struct {
	Catalog []models.Book
	Filters catalog.FilterState
}
