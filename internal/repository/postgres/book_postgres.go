package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"bookshelf/internal/model"
	"bookshelf/internal/repository"
)

// BookPostgres is a PostgreSQL implementation of repository.BookRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Tags live in a JSONB column so tag filters can use the GIN index.
type BookPostgres struct {
	db *sql.DB
}

// NewBookPostgres creates a new BookPostgres repository.
func NewBookPostgres(db *sql.DB) *BookPostgres {
	return &BookPostgres{db: db}
}

var _ repository.BookRepository = (*BookPostgres)(nil)

const bookColumns = `id, title, author, description, tags, file_path, file_name, file_size, upload_date, COALESCE(download_count, 0), uploaded_by`

const newestFirst = ` ORDER BY upload_date DESC, id DESC`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*model.Book, error) {
	var (
		b    model.Book
		tags repository.Tags
	)
	if err := row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Description,
		&tags,
		&b.FilePath,
		&b.FileName,
		&b.FileSize,
		&b.UploadDate,
		&b.DownloadCount,
		&b.UploadedBy,
	); err != nil {
		return nil, err
	}
	b.Tags = []string(tags)
	return &b, nil
}

// Create inserts a new book row and returns the stored record.
func (r *BookPostgres) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	const q = `
		INSERT INTO books (id, title, author, description, tags, file_path, file_name, file_size, uploaded_by)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9)
		RETURNING ` + bookColumns
	row := r.db.QueryRowContext(ctx, q,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		repository.Tags(book.Tags),
		book.FilePath,
		book.FileName,
		book.FileSize,
		book.UploadedBy,
	)
	return scanBook(row)
}

// List returns all books, newest first.
func (r *BookPostgres) List(ctx context.Context) ([]model.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books` + newestFirst
	return r.query(ctx, q)
}

// ListByTag returns books whose tag array contains tag.
func (r *BookPostgres) ListByTag(ctx context.Context, tag string) ([]model.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books WHERE tags @> $1::jsonb` + newestFirst
	needle, err := json.Marshal([]string{tag})
	if err != nil {
		return nil, err
	}
	return r.query(ctx, q, string(needle))
}

// Search matches title, author or description case-insensitively.
func (r *BookPostgres) Search(ctx context.Context, query string) ([]model.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books
		WHERE title ILIKE $1 ESCAPE '\' OR author ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'` + newestFirst
	return r.query(ctx, q, repository.ContainsPattern(query))
}

// IncrementDownloadCount bumps the counter in a single statement so concurrent
// downloads never lose an update.
func (r *BookPostgres) IncrementDownloadCount(ctx context.Context, id string) (int64, error) {
	const q = `
		UPDATE books SET download_count = COALESCE(download_count, 0) + 1
		WHERE id = $1
		RETURNING download_count
	`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, repository.ErrNotFound
		}
		return 0, err
	}
	return n, nil
}

// Delete removes a book by ID and reports the file path the row pointed to.
func (r *BookPostgres) Delete(ctx context.Context, id string) (string, error) {
	const q = `DELETE FROM books WHERE id = $1 RETURNING file_path`
	var path string
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&path); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return path, nil
}

// Ping checks database connectivity.
func (r *BookPostgres) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *BookPostgres) query(ctx context.Context, q string, args ...any) ([]model.Book, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
