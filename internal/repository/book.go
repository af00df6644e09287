package repository

import (
	"context"
	"errors"

	"bookshelf/internal/model"
)

// ErrNotFound is returned when a book row does not exist.
var ErrNotFound = errors.New("book not found")

// BookRepository defines data access for book rows using SQL queries only.
// Implementations only persist; they make no catalog decisions.
// All list methods order rows newest first (upload_date DESC, id DESC).
type BookRepository interface {
	// Create inserts a new book row and returns it as stored, including the
	// upload date assigned by the store.
	Create(ctx context.Context, book *model.Book) (*model.Book, error)

	// List returns every book.
	List(ctx context.Context) ([]model.Book, error)

	// ListByTag returns books whose tags contain tag (exact, case-sensitive).
	ListByTag(ctx context.Context, tag string) ([]model.Book, error)

	// Search returns books whose title, author or description contains query,
	// ignoring case. LIKE wildcards in query match literally.
	Search(ctx context.Context, query string) ([]model.Book, error)

	// IncrementDownloadCount atomically adds one to the book's download count
	// (a null count counts as zero) and returns the new value.
	// Returns ErrNotFound if the row does not exist.
	IncrementDownloadCount(ctx context.Context, id string) (int64, error)

	// Delete removes a book by ID and returns the deleted row's file path.
	// It returns an empty path and nil if the row did not exist.
	Delete(ctx context.Context, id string) (string, error)

	// Ping checks connectivity to the store.
	Ping(ctx context.Context) error
}
