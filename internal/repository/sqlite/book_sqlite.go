package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookshelf/internal/model"
	"bookshelf/internal/repository"
)

// BookSQLite is a SQLite implementation of repository.BookRepository, meant
// for local development and single-node deployments. Tags are a JSON array
// queried through json_each; upload_date is stored as unix nanoseconds.
type BookSQLite struct {
	db  *sql.DB
	now func() time.Time
}

// NewBookSQLite creates a new BookSQLite repository.
func NewBookSQLite(db *sql.DB) *BookSQLite {
	return &BookSQLite{db: db, now: time.Now}
}

var _ repository.BookRepository = (*BookSQLite)(nil)

const bookColumns = `id, title, author, description, tags, file_path, file_name, file_size, upload_date, COALESCE(download_count, 0), uploaded_by`

const newestFirst = ` ORDER BY upload_date DESC, id DESC`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBook(row rowScanner) (*model.Book, error) {
	var (
		b        model.Book
		tags     repository.Tags
		uploaded int64
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
		&uploaded,
		&b.DownloadCount,
		&b.UploadedBy,
	); err != nil {
		return nil, err
	}
	b.Tags = []string(tags)
	b.UploadDate = time.Unix(0, uploaded).UTC()
	return &b, nil
}

// Create inserts a new book row, stamping the upload date, and returns the stored record.
func (r *BookSQLite) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	const q = `
		INSERT INTO books (id, title, author, description, tags, file_path, file_name, file_size, upload_date, uploaded_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
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
		r.now().UTC().UnixNano(),
		book.UploadedBy,
	)
	return scanBook(row)
}

// List returns all books, newest first.
func (r *BookSQLite) List(ctx context.Context) ([]model.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books` + newestFirst
	return r.query(ctx, q)
}

// ListByTag returns books whose tag array contains tag.
func (r *BookSQLite) ListByTag(ctx context.Context, tag string) ([]model.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books
		WHERE EXISTS (SELECT 1 FROM json_each(books.tags) WHERE json_each.value = ?)` + newestFirst
	return r.query(ctx, q, tag)
}

// Search matches title, author or description case-insensitively, with
// Unicode case folding applied to both sides (see casefold.go).
func (r *BookSQLite) Search(ctx context.Context, query string) ([]model.Book, error) {
	const q = `SELECT ` + bookColumns + ` FROM books
		WHERE ` + casefoldFunc + `(title) LIKE ?1 ESCAPE '\'
		   OR ` + casefoldFunc + `(author) LIKE ?1 ESCAPE '\'
		   OR ` + casefoldFunc + `(description) LIKE ?1 ESCAPE '\'` + newestFirst
	return r.query(ctx, q, foldString(repository.ContainsPattern(query)))
}

// IncrementDownloadCount bumps the counter in a single statement.
func (r *BookSQLite) IncrementDownloadCount(ctx context.Context, id string) (int64, error) {
	const q = `
		UPDATE books SET download_count = COALESCE(download_count, 0) + 1
		WHERE id = ?
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
func (r *BookSQLite) Delete(ctx context.Context, id string) (string, error) {
	const q = `DELETE FROM books WHERE id = ? RETURNING file_path`
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
func (r *BookSQLite) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *BookSQLite) query(ctx context.Context, q string, args ...any) ([]model.Book, error) {
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
