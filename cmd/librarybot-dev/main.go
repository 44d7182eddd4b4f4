package main

import (
	"context"
	"log"
	"os"

	"librarybot/internal/app"
	"librarybot/internal/store/stubs"
)

// Dev entry point: runs the bot against the in-memory stub store seeded with
// a few sample books, so the whole flow can be exercised without the real
// catalog server. Log in as seldio/1234 (admin) or alice/alice.
func main() {
	ctx := context.Background()

	os.Setenv("USE_STUB_STORE", "true")

	if os.Getenv("TELEGRAM_BOT_TOKEN") == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set. Please set it in your .env file or environment.")
	}
	if os.Getenv("ALLOWED_USER_IDS") == "" {
		log.Println("ALLOWED_USER_IDS not set. The bot will not accept any commands without allowed user IDs.")
	}

	seed := stubs.NewMockStore()
	sample := []struct {
		title, author, genre string
	}{
		{"Dune", "Frank Herbert", "Sci-Fi"},
		{"The Hobbit", "J.R.R. Tolkien", "Fantasy"},
		{"Clean Code", "Robert C. Martin", "Tech"},
		{"The Pragmatic Programmer", "Andrew Hunt", "Tech"},
		{"Murder on the Orient Express", "Agatha Christie", ""},
	}
	for _, s := range sample {
		if err := seed.AddBook(ctx, s.title, s.author, s.genre, ""); err != nil {
			log.Fatalf("Failed to seed book %q: %v", s.title, err)
		}
	}

	log.Println("Starting application with stub store backend...")

	application, err := app.NewWithStore(seed)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}
