package bot

import (
	"context"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"librarybot/internal/catalog"
	"librarybot/internal/models"
	"librarybot/internal/session"
	"librarybot/internal/store/stubs"
)

// Note: We can't easily mock tgbotapi.BotAPI, so tests focus on internal logic
// without actually sending messages to Telegram

const (
	testUserID = int64(123)
	testChatID = int64(456)
)

func newTestBot(t *testing.T) (*Bot, *stubs.MockStore) {
	t.Helper()

	st := stubs.NewMockStore()
	ctx := context.Background()
	for _, b := range []struct{ title, author, genre string }{
		{"Dune", "Herbert", "Sci-Fi"},
		{"The Hobbit", "Tolkien", "Fantasy"},
		{"Clean Code", "Martin", "Tech"},
		{"Emma", "Austen", ""},
	} {
		if err := st.AddBook(ctx, b.title, b.author, b.genre, ""); err != nil {
			t.Fatalf("Failed to seed book: %v", err)
		}
	}

	bot := &Bot{
		api:          nil, // Not needed for internal logic tests
		store:        st,
		sessions:     session.NewManager(),
		allowedUsers: map[int64]bool{testUserID: true},
		states:       make(map[int64]*ConversationState),
		views:        make(map[int64]*ChatView),
		logger:       zap.NewNop(), // Use nop logger for tests
	}
	return bot, st
}

func commandMessage(text string) *tgbotapi.Message {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: testUserID},
		Chat: &tgbotapi.Chat{ID: testChatID},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		length := len(text)
		for i, r := range text {
			if r == ' ' {
				length = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: length},
		}
	}
	return msg
}

func textMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: testUserID},
		Chat: &tgbotapi.Chat{ID: testChatID},
		Text: text,
	}
}

func callback(data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:   "test-callback",
		From: &tgbotapi.User{ID: testUserID},
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: testChatID},
		},
		Data: data,
	}
}

// loginAs walks the login conversation to completion
func loginAs(t *testing.T, bot *Bot, username, password string) {
	t.Helper()

	bot.handleMessage(commandMessage("/login"))
	if _, ok := bot.states[testUserID]; !ok {
		t.Fatal("Expected login conversation state to be created")
	}

	bot.handleMessage(textMessage(username))
	bot.handleMessage(textMessage(password))
}

func TestBot_LoginConversation(t *testing.T) {
	bot, _ := newTestBot(t)

	loginAs(t, bot, "alice", "alice")

	sess := bot.sessions.Get(testUserID)
	if sess == nil {
		t.Fatal("Expected a session after successful login")
	}
	if sess.Member.Username != "alice" {
		t.Errorf("Expected username alice, got %q", sess.Member.Username)
	}
	if sess.Member.Role != models.RoleMember {
		t.Errorf("Expected member role, got %q", sess.Member.Role)
	}

	// Login triggers the initial catalog fetch
	v := bot.view(testUserID)
	if len(v.Catalog) != 4 {
		t.Errorf("Expected 4 books in the snapshot after login, got %d", len(v.Catalog))
	}

	// Conversation state is cleaned up
	if _, ok := bot.states[testUserID]; ok {
		t.Error("Expected login conversation state to be cleaned up")
	}
}

func TestBot_LoginInvalidCredentials(t *testing.T) {
	bot, _ := newTestBot(t)

	loginAs(t, bot, "alice", "wrong-password")

	if bot.sessions.Get(testUserID) != nil {
		t.Error("Expected no session after failed login")
	}
}

func TestBot_CommandsRequireLogin(t *testing.T) {
	bot, st := newTestBot(t)

	bot.handleMessage(commandMessage("/books"))

	// No snapshot is fetched for an unauthenticated user
	if v, ok := bot.views[testUserID]; ok && len(v.Catalog) > 0 {
		t.Error("Expected no catalog snapshot before login")
	}

	// Callbacks from stale keyboards are ignored too
	bot.handleCallbackQuery(callback("borrow:1"))
	books, _ := st.ListBooks(context.Background())
	if !books[0].IsAvailable {
		t.Error("Expected borrow callback to be ignored before login")
	}
}

func TestBot_BorrowCallback(t *testing.T) {
	bot, st := newTestBot(t)
	loginAs(t, bot, "alice", "alice")

	bot.handleCallbackQuery(callback("borrow:1"))

	books, _ := st.ListBooks(context.Background())
	if books[0].IsAvailable {
		t.Fatal("Expected book 1 to be borrowed")
	}
	if books[0].BorrowedBy != "alice" {
		t.Errorf("Expected borrowedBy alice, got %q", books[0].BorrowedBy)
	}
	if books[0].DueDate == 0 {
		t.Error("Expected a due date to be set")
	}

	// The snapshot was re-fetched after the mutation
	v := bot.view(testUserID)
	snapshotBook, found := catalog.FindBook(v.Catalog, 1)
	if !found {
		t.Fatal("Expected book 1 in the refreshed snapshot")
	}
	if snapshotBook.IsAvailable {
		t.Error("Expected the refreshed snapshot to show the borrow")
	}
}

func TestBot_BorrowCapBlocksClientSide(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "alice", "alice")

	for id := 1; id <= 3; id++ {
		bot.handleCallbackQuery(callback(fmt.Sprintf("borrow:%d", id)))
	}

	books, _ := st.ListBooks(ctx)
	borrowedCount := 0
	for _, b := range books {
		if b.BorrowedBy == "alice" {
			borrowedCount++
		}
	}
	if borrowedCount != 3 {
		t.Fatalf("Expected 3 active loans, got %d", borrowedCount)
	}

	// The fourth borrow is stopped by the client-side policy
	bot.handleCallbackQuery(callback("borrow:4"))

	books, _ = st.ListBooks(ctx)
	book4, _ := catalog.FindBook(books, 4)
	if !book4.IsAvailable {
		t.Error("Expected book 4 to stay available once the cap is hit")
	}
}

func TestBot_BorrowRejectedByStaleSnapshot(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "alice", "alice")

	// Bob takes book 1 after alice's snapshot was fetched
	if err := st.BorrowBook(ctx, 1, "bob"); err != nil {
		t.Fatalf("Failed to set up bob's borrow: %v", err)
	}

	// Alice's stale snapshot still shows it available; the store rejects
	bot.handleCallbackQuery(callback("borrow:1"))

	books, _ := st.ListBooks(ctx)
	if books[0].BorrowedBy != "bob" {
		t.Errorf("Expected book 1 to stay with bob, got %q", books[0].BorrowedBy)
	}
}

func TestBot_ReturnCallback(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "alice", "alice")

	bot.handleCallbackQuery(callback("borrow:1"))
	bot.handleCallbackQuery(callback("return:1"))

	books, _ := st.ListBooks(ctx)
	if !books[0].IsAvailable {
		t.Error("Expected book 1 to be available after return")
	}
}

func TestBot_CannotReturnOthersLoan(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "alice", "alice")

	if err := st.BorrowBook(ctx, 1, "bob"); err != nil {
		t.Fatalf("Failed to set up bob's borrow: %v", err)
	}
	bot.refreshCatalog(ctx, testUserID)

	bot.handleCallbackQuery(callback("return:1"))

	books, _ := st.ListBooks(ctx)
	if books[0].IsAvailable {
		t.Error("Expected bob's loan to survive alice's return attempt")
	}
}

func TestBot_RatingFlow(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "alice", "alice")

	bot.handleCallbackQuery(callback("stars:1:4"))

	books, _ := st.ListBooks(ctx)
	if books[0].Rating != 4.0 || books[0].RatingCount != 1 {
		t.Errorf("Expected rating 4.0 (1), got %f (%d)", books[0].Rating, books[0].RatingCount)
	}

	// The snapshot shows the store's aggregate after the re-fetch
	v := bot.view(testUserID)
	snapshotBook, _ := catalog.FindBook(v.Catalog, 1)
	if snapshotBook.Rating != 4.0 {
		t.Errorf("Expected refreshed snapshot rating 4.0, got %f", snapshotBook.Rating)
	}
}

func TestBot_InvalidStarsNeverSubmitted(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "alice", "alice")

	bot.handleCallbackQuery(callback("stars:1:9"))
	bot.handleCallbackQuery(callback("stars:1:0"))

	books, _ := st.ListBooks(ctx)
	if books[0].RatingCount != 0 {
		t.Errorf("Expected out-of-range stars to be rejected client-side, got count %d", books[0].RatingCount)
	}
}

func TestBot_DeleteRequiresAdmin(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "alice", "alice")

	bot.handleCallbackQuery(callback("delete:1"))

	books, _ := st.ListBooks(ctx)
	if len(books) != 4 {
		t.Errorf("Expected member's delete to be refused, got %d books", len(books))
	}
}

func TestBot_AdminDelete(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "seldio", "1234")

	sess := bot.sessions.Get(testUserID)
	if sess == nil || !sess.Member.IsAdmin() {
		t.Fatal("Expected an admin session")
	}

	bot.handleCallbackQuery(callback("delete:1"))

	books, _ := st.ListBooks(ctx)
	if len(books) != 3 {
		t.Errorf("Expected 3 books after delete, got %d", len(books))
	}
}

func TestBot_AddBookConversation(t *testing.T) {
	bot, st := newTestBot(t)
	ctx := context.Background()
	loginAs(t, bot, "seldio", "1234")

	bot.handleMessage(commandMessage("/add_book"))
	if state, ok := bot.states[testUserID]; !ok || state.Command != "add_book" {
		t.Fatal("Expected add_book conversation state")
	}

	bot.handleMessage(textMessage("Neuromancer"))
	bot.handleMessage(textMessage("Gibson"))
	bot.handleMessage(textMessage("Sci-Fi"))
	bot.handleMessage(textMessage("-"))

	books, _ := st.ListBooks(ctx)
	if len(books) != 5 {
		t.Fatalf("Expected 5 books after add, got %d", len(books))
	}
	added := books[4]
	if added.Title != "Neuromancer" || added.Author != "Gibson" || added.Genre != "Sci-Fi" {
		t.Errorf("Unexpected added book: %+v", added)
	}
	if added.CoverURL != "" {
		t.Errorf("Expected skipped cover URL to stay empty, got %q", added.CoverURL)
	}
}

func TestBot_AddBookRequiresAdmin(t *testing.T) {
	bot, _ := newTestBot(t)
	loginAs(t, bot, "alice", "alice")

	bot.handleMessage(commandMessage("/add_book"))

	if _, ok := bot.states[testUserID]; ok {
		t.Error("Expected no add_book conversation for a plain member")
	}
}

func TestBot_SearchAndTabFilters(t *testing.T) {
	bot, _ := newTestBot(t)
	loginAs(t, bot, "alice", "alice")

	bot.handleMessage(commandMessage("/search dune"))
	v := bot.view(testUserID)
	if v.Filters.SearchTerm != "dune" {
		t.Errorf("Expected search term 'dune', got %q", v.Filters.SearchTerm)
	}

	bot.handleCallbackQuery(callback("tab:my"))
	if v.Filters.ActiveTab != catalog.TabMy {
		t.Errorf("Expected my tab, got %q", v.Filters.ActiveTab)
	}

	bot.handleCallbackQuery(callback("genre:Sci-Fi"))
	if v.Filters.FilterGenre != "Sci-Fi" {
		t.Errorf("Expected Sci-Fi genre filter, got %q", v.Filters.FilterGenre)
	}

	// Clearing the search resets only the term
	bot.handleMessage(commandMessage("/search"))
	if v.Filters.SearchTerm != "" {
		t.Errorf("Expected cleared search term, got %q", v.Filters.SearchTerm)
	}
	if v.Filters.ActiveTab != catalog.TabMy {
		t.Error("Expected tab to survive a search reset")
	}
}

func TestBot_LogoutClearsEverything(t *testing.T) {
	bot, _ := newTestBot(t)
	loginAs(t, bot, "alice", "alice")

	bot.handleMessage(commandMessage("/search dune"))
	bot.handleMessage(commandMessage("/logout"))

	if bot.sessions.Get(testUserID) != nil {
		t.Error("Expected session to be cleared on logout")
	}
	if _, ok := bot.views[testUserID]; ok {
		t.Error("Expected catalog snapshot and filters to be dropped on logout")
	}
	if _, ok := bot.states[testUserID]; ok {
		t.Error("Expected conversation state to be dropped on logout")
	}
}

func TestBot_CommandInterruptsConversation(t *testing.T) {
	bot, _ := newTestBot(t)
	loginAs(t, bot, "seldio", "1234")

	bot.handleMessage(commandMessage("/add_book"))
	if _, ok := bot.states[testUserID]; !ok {
		t.Fatal("Expected conversation state to be created")
	}

	bot.handleMessage(commandMessage("/start"))
	if _, ok := bot.states[testUserID]; ok {
		t.Error("Expected conversation state to be deleted when interrupted by new command")
	}
}

func TestBot_PanicRecovery(t *testing.T) {
	bot, _ := newTestBot(t)
	loginAs(t, bot, "alice", "alice")

	// A conversation state with missing data would panic without recovery
	bot.states[testUserID] = &ConversationState{
		Command: "login",
		Step:    2,
		Data:    map[string]interface{}{}, // Missing username
	}

	defer func() {
		if r := recover(); r != nil {
			t.Errorf("handleMessage panicked: %v", r)
		}
	}()

	bot.handleMessage(textMessage("some password"))
}
