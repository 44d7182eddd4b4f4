package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"librarybot/internal/catalog"
	"librarybot/internal/lending"
	"librarybot/internal/models"
	"librarybot/internal/store"
	"librarybot/internal/store/rest"
)

const borrowLimitMessage = "Cannot borrow: you might have reached the 3-book limit."

var (
	apiURL   string
	username string
)

func main() {
	// Load .env if present so --api/--user defaults pick it up
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "libctl",
		Short: "Command-line client for the library catalog store",
		Long: `libctl talks to the same library store as the Telegram bot.
Every command logs in first; the password is prompted, never echoed.`,
		SilenceUsage: true,
	}

	defaultAPI := os.Getenv("LIBRARY_API_URL")
	if defaultAPI == "" {
		defaultAPI = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&apiURL, "api", defaultAPI, "base URL of the library store")
	root.PersistentFlags().StringVarP(&username, "user", "u", os.Getenv("LIBRARY_USER"), "library username")

	root.AddCommand(
		newListCmd(),
		newBorrowCmd(),
		newReturnCmd(),
		newRateCmd(),
		newAddCmd(),
		newDeleteCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// login authenticates against the store, prompting for the password
func login(ctx context.Context, client *rest.Client) (models.Member, error) {
	if username == "" {
		return models.Member{}, fmt.Errorf("no username given; use --user or set LIBRARY_USER")
	}

	password, err := readPassword(fmt.Sprintf("Password for %s: ", username))
	if err != nil {
		return models.Member{}, fmt.Errorf("failed to read password: %w", err)
	}

	member, err := client.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			return models.Member{}, fmt.Errorf("invalid credentials")
		}
		return models.Member{}, fmt.Errorf("login failed: %w", err)
	}
	return member, nil
}

// readPassword securely reads a password with masking
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}

func newListCmd() *cobra.Command {
	var (
		search string
		genre  string
		mine   bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			client := rest.NewClient(apiURL)

			member, err := login(ctx, client)
			if err != nil {
				return err
			}

			books, err := client.ListBooks(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch catalog: %w", err)
			}

			filters := catalog.NewFilterState()
			filters.SearchTerm = search
			if genre != "" {
				filters.FilterGenre = genre
			}
			if mine {
				filters.ActiveTab = catalog.TabMy
			}

			visible := catalog.VisibleBooks(books, filters, member)
			if len(visible) == 0 {
				fmt.Println("No books found in this category.")
				return nil
			}

			now := time.Now().Unix()
			for _, b := range visible {
				printBook(b, member.Username, now)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "filter by title or author substring")
	cmd.Flags().StringVar(&genre, "genre", "", "filter by exact genre")
	cmd.Flags().BoolVar(&mine, "mine", false, "only show books you borrowed")
	return cmd
}

func newBorrowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			ctx := cmd.Context()
			client := rest.NewClient(apiURL)

			member, err := login(ctx, client)
			if err != nil {
				return err
			}

			books, err := client.ListBooks(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch catalog: %w", err)
			}

			book, found := catalog.FindBook(books, id)
			if !found {
				return fmt.Errorf("book #%d not found", id)
			}

			if decision := lending.CanBorrow(book, member, books); !decision.Allowed {
				if decision.Reason == lending.ReasonBorrowLimit {
					return fmt.Errorf("%s", borrowLimitMessage)
				}
				return fmt.Errorf("book #%d is not available", id)
			}

			if err := client.BorrowBook(ctx, id, member.Username); err != nil {
				if errors.Is(err, store.ErrRejected) {
					return fmt.Errorf("%s", borrowLimitMessage)
				}
				return fmt.Errorf("failed to borrow book: %w", err)
			}

			fmt.Printf("Borrowed %q.\n", book.Title)
			return nil
		},
	}
}

func newReturnCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "return <book-id>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			ctx := cmd.Context()
			client := rest.NewClient(apiURL)

			member, err := login(ctx, client)
			if err != nil {
				return err
			}

			books, err := client.ListBooks(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch catalog: %w", err)
			}

			book, found := catalog.FindBook(books, id)
			if !found {
				return fmt.Errorf("book #%d not found", id)
			}
			if !lending.CanReturn(book, member) {
				return fmt.Errorf("you can only return books you borrowed yourself")
			}

			if err := client.ReturnBook(ctx, id); err != nil {
				return fmt.Errorf("failed to return book: %w", err)
			}

			fmt.Printf("Returned %q.\n", book.Title)
			return nil
		},
	}
}

func newRateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rate <book-id> <stars>",
		Short: "Rate a book from 1 to 5 stars",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}
			stars, err := strconv.Atoi(args[1])
			if err != nil || !catalog.ValidStars(stars) {
				return fmt.Errorf("stars must be an integer from %d to %d", catalog.MinStars, catalog.MaxStars)
			}

			ctx := cmd.Context()
			client := rest.NewClient(apiURL)

			if _, err := login(ctx, client); err != nil {
				return err
			}

			if err := client.RateBook(ctx, id, stars); err != nil {
				return fmt.Errorf("failed to rate book: %w", err)
			}

			// Re-fetch so the printed aggregate is the store's, not a guess
			books, err := client.ListBooks(ctx)
			if err == nil {
				if book, found := catalog.FindBook(books, id); found {
					fmt.Printf("Rated %q: now %s\n", book.Title, catalog.FormatRating(book.Rating, book.RatingCount))
					return nil
				}
			}
			fmt.Println("Rating submitted.")
			return nil
		},
	}
}

func newAddCmd() *cobra.Command {
	var (
		title    string
		author   string
		genre    string
		coverURL string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new book (admins only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" || author == "" {
				return fmt.Errorf("--title and --author are required")
			}

			ctx := cmd.Context()
			client := rest.NewClient(apiURL)

			member, err := login(ctx, client)
			if err != nil {
				return err
			}
			if !member.IsAdmin() {
				return fmt.Errorf("only admins can add books")
			}

			if err := client.AddBook(ctx, title, author, genre, coverURL); err != nil {
				return fmt.Errorf("failed to add book: %w", err)
			}

			fmt.Printf("Added %q by %s.\n", title, author)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "book title (required)")
	cmd.Flags().StringVar(&author, "author", "", "book author (required)")
	cmd.Flags().StringVar(&genre, "genre", "", "book genre")
	cmd.Flags().StringVar(&coverURL, "cover", "", "cover image URL")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <book-id>",
		Short: "Delete a book (admins only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			ctx := cmd.Context()
			client := rest.NewClient(apiURL)

			member, err := login(ctx, client)
			if err != nil {
				return err
			}
			if !member.IsAdmin() {
				return fmt.Errorf("only admins can delete books")
			}

			if err := client.DeleteBook(ctx, id); err != nil {
				return fmt.Errorf("failed to delete book: %w", err)
			}

			fmt.Printf("Deleted book #%d.\n", id)
			return nil
		},
	}
}

// printBook writes one catalog line to stdout
func printBook(b models.Book, username string, now int64) {
	status := "Available"
	if !b.IsAvailable {
		if days, ok := lending.DaysRemaining(b.DueDate, now); ok {
			switch {
			case lending.IsOverdue(days):
				status = fmt.Sprintf("OVERDUE (@%s)", b.BorrowedBy)
			default:
				status = fmt.Sprintf("Due in %d days (@%s)", days, b.BorrowedBy)
			}
		} else {
			status = fmt.Sprintf("Borrowed by @%s", b.BorrowedBy)
		}
		if b.BorrowedBy == username {
			status += " [YOURS]"
		}
	}

	fmt.Printf("#%-4d %-35s %-20s %-10s %-12s %s\n",
		b.ID,
		b.Title,
		b.Author,
		catalog.Genre(b),
		catalog.FormatRating(b.Rating, b.RatingCount),
		status,
	)
}
