package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"bookshelf/internal/auth"
	"bookshelf/internal/model"
	"bookshelf/internal/repository"
	"bookshelf/internal/storage"
)

const (
	// SignedURLExpiry is how long issued download URLs stay valid.
	SignedURLExpiry = time.Hour

	blobCacheControl = "max-age=3600"
	countTimeout     = 10 * time.Second
)

// Upload states, logged at debug level as an upload progresses.
const (
	stateAuthenticating = "authenticating"
	stateBlobWriting    = "blob_writing"
	stateRowInserting   = "row_inserting"
	stateCommitted      = "committed"
	stateRollingBack    = "rolling_back"
	stateFailed         = "failed"
)

// BookInput is the metadata half of an upload. Tags is the raw comma
// separated string as typed by the user.
type BookInput struct {
	Title       string
	Author      string
	Description string
	Tags        string
}

// FileUpload is the file half of an upload.
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Download is what a client needs to start a browser download.
type Download struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}

// BookService mediates between callers and the two backing stores: book rows
// in the repository and file bytes in blob storage. There is no transaction
// across them; writes are ordered and compensated instead.
type BookService interface {
	// UploadBook writes the blob, then inserts the row. If the insert fails the
	// blob is deleted again and ErrDB is returned.
	UploadBook(ctx context.Context, in BookInput, file FileUpload) (*model.Book, error)

	// GetAllBooks returns every book, newest first, and caches the list.
	GetAllBooks(ctx context.Context) ([]model.Book, error)

	// GetBooksByTag returns books carrying tag exactly.
	GetBooksByTag(ctx context.Context, tag string) ([]model.Book, error)

	// SearchBooks matches query against title, author and description.
	SearchBooks(ctx context.Context, query string) ([]model.Book, error)

	// GetAllTags returns the distinct tags of the cached book list.
	GetAllTags() []string

	// GetSignedURL issues a temporary download URL for a storage key.
	GetSignedURL(ctx context.Context, filePath, downloadName string) (string, error)

	// DownloadBook signs the file and counts the download in the background.
	DownloadBook(ctx context.Context, bookID, filePath, fileName string) (*Download, error)

	// IncrementDownloadCount bumps the counter. Failures are only logged.
	IncrementDownloadCount(ctx context.Context, bookID string)

	// DeleteBook removes the row, then the blob it references. filePath is
	// advisory; only the deleted row's stored path is removed. A failed blob
	// delete is logged and does not fail the call.
	DeleteBook(ctx context.Context, bookID, filePath string) error

	// CurrentUser reports the session user, or nil when there is none.
	CurrentUser(ctx context.Context) *model.User
}

type bookService struct {
	repo     repository.BookRepository
	store    storage.Storage
	identity auth.IdentityProvider
	log      *slog.Logger
	metrics  *Metrics
	tracer   trace.Tracer
	now      func() time.Time

	mu    sync.RWMutex
	books []model.Book
	tags  []string

	// counting tracks detached download-count goroutines.
	counting sync.WaitGroup
}

// NewBookService constructs a BookService. A nil logger falls back to
// slog.Default and nil metrics to an unregistered set.
func NewBookService(repo repository.BookRepository, store storage.Storage, identity auth.IdentityProvider, log *slog.Logger, metrics *Metrics) BookService {
	if log == nil {
		log = slog.Default()
	}
	if metrics == nil {
		metrics, _ = NewMetrics(nil)
	}
	return &bookService{
		repo:     repo,
		store:    store,
		identity: identity,
		log:      log.With("component", "book_service"),
		metrics:  metrics,
		tracer:   otel.Tracer("bookshelf/service"),
		now:      time.Now,
	}
}

func (s *bookService) UploadBook(ctx context.Context, in BookInput, file FileUpload) (*model.Book, error) {
	ctx, span := s.tracer.Start(ctx, "BookService.UploadBook")
	defer span.End()

	log := s.log.With("op", "upload", "file_name", file.Name)
	log.DebugContext(ctx, "upload state", "state", stateAuthenticating)
	user, err := s.requireUser(ctx)
	if err != nil {
		s.metrics.uploads.WithLabelValues(resultAuthRequired).Inc()
		log.DebugContext(ctx, "upload state", "state", stateFailed, "error", err)
		return nil, fail(span, err)
	}

	key, err := StorageName(file.Name, s.now())
	if err == nil && file.Reader == nil {
		err = errReaderNil
	}
	if err != nil {
		s.metrics.uploads.WithLabelValues(resultBlobError).Inc()
		return nil, fail(span, fmt.Errorf("%w: %w", ErrBlobWrite, err))
	}
	span.SetAttributes(attribute.String("bookshelf.file_path", key))

	log = log.With("file_path", key)
	log.DebugContext(ctx, "upload state", "state", stateBlobWriting)
	_, err = s.store.Put(ctx, key, file.Reader, storage.PutObjectOptions{
		Size:         file.Size,
		ContentType:  file.ContentType,
		CacheControl: blobCacheControl,
		Metadata:     map[string]string{"original-filename": url.QueryEscape(file.Name)},
	})
	if err != nil {
		s.metrics.uploads.WithLabelValues(resultBlobError).Inc()
		log.DebugContext(ctx, "upload state", "state", stateFailed, "error", err)
		return nil, fail(span, fmt.Errorf("%w: %w", ErrBlobWrite, err))
	}

	log.DebugContext(ctx, "upload state", "state", stateRowInserting)
	stored, err := s.repo.Create(ctx, &model.Book{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Author:      in.Author,
		Description: in.Description,
		Tags:        NormalizeTags(in.Tags),
		FilePath:    key,
		FileName:    file.Name,
		FileSize:    file.Size,
		UploadedBy:  user.ID,
	})
	if err != nil {
		log.DebugContext(ctx, "upload state", "state", stateRollingBack, "error", err)
		s.removeBlob(ctx, "upload", key)
		s.metrics.uploads.WithLabelValues(resultDBError).Inc()
		log.DebugContext(ctx, "upload state", "state", stateFailed)
		return nil, fail(span, fmt.Errorf("%w: %w", ErrDB, err))
	}

	s.metrics.uploads.WithLabelValues(resultOK).Inc()
	log.DebugContext(ctx, "upload state", "state", stateCommitted, "book_id", stored.ID)
	log.InfoContext(ctx, "book uploaded", "book_id", stored.ID, "user_id", user.ID, "size", file.Size)
	return stored, nil
}

func (s *bookService) GetAllBooks(ctx context.Context) ([]model.Book, error) {
	ctx, span := s.tracer.Start(ctx, "BookService.GetAllBooks")
	defer span.End()

	books, err := s.repo.List(ctx)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", ErrFetch, err))
	}
	books = nonNil(books)

	s.mu.Lock()
	s.books = books
	s.mu.Unlock()
	return slices.Clone(books), nil
}

func (s *bookService) GetBooksByTag(ctx context.Context, tag string) ([]model.Book, error) {
	ctx, span := s.tracer.Start(ctx, "BookService.GetBooksByTag", trace.WithAttributes(attribute.String("bookshelf.tag", tag)))
	defer span.End()

	books, err := s.repo.ListByTag(ctx, tag)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", ErrFetch, err))
	}
	return nonNil(books), nil
}

func (s *bookService) SearchBooks(ctx context.Context, query string) ([]model.Book, error) {
	ctx, span := s.tracer.Start(ctx, "BookService.SearchBooks")
	defer span.End()

	books, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fail(span, fmt.Errorf("%w: %w", ErrFetch, err))
	}
	return nonNil(books), nil
}

func (s *bookService) GetAllTags() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags = CollectTags(s.books)
	return slices.Clone(s.tags)
}

func (s *bookService) GetSignedURL(ctx context.Context, filePath, downloadName string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "BookService.GetSignedURL", trace.WithAttributes(attribute.String("bookshelf.file_path", filePath)))
	defer span.End()

	if filePath == "" {
		return "", fail(span, fmt.Errorf("%w: %w", ErrSign, errPathNeeded))
	}
	u, err := s.store.PresignGet(ctx, filePath, SignedURLExpiry, downloadName)
	if err != nil {
		return "", fail(span, fmt.Errorf("%w: %w", ErrSign, err))
	}
	return u, nil
}

func (s *bookService) DownloadBook(ctx context.Context, bookID, filePath, fileName string) (*Download, error) {
	u, err := s.GetSignedURL(ctx, filePath, fileName)
	if err != nil {
		return nil, err
	}
	s.metrics.downloads.Inc()

	s.counting.Add(1)
	go func() {
		defer s.counting.Done()
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), countTimeout)
		defer cancel()
		s.IncrementDownloadCount(cctx, bookID)
	}()

	return &Download{URL: u, FileName: fileName}, nil
}

func (s *bookService) IncrementDownloadCount(ctx context.Context, bookID string) {
	ctx, span := s.tracer.Start(ctx, "BookService.IncrementDownloadCount", trace.WithAttributes(attribute.String("bookshelf.book_id", bookID)))
	defer span.End()

	if bookID == "" {
		s.log.WarnContext(ctx, "download not counted: empty book id")
		return
	}
	n, err := s.repo.IncrementDownloadCount(ctx, bookID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.log.WarnContext(ctx, "download not counted: book not found", "book_id", bookID)
	case err != nil:
		span.RecordError(err)
		s.log.ErrorContext(ctx, "download count failed", "book_id", bookID, "error", err)
	default:
		s.log.DebugContext(ctx, "download counted", "book_id", bookID, "download_count", n)
	}
}

func (s *bookService) DeleteBook(ctx context.Context, bookID, filePath string) error {
	ctx, span := s.tracer.Start(ctx, "BookService.DeleteBook", trace.WithAttributes(attribute.String("bookshelf.book_id", bookID)))
	defer span.End()

	if _, err := s.requireUser(ctx); err != nil {
		return fail(span, err)
	}

	stored, err := s.repo.Delete(ctx, bookID)
	if err != nil {
		return fail(span, fmt.Errorf("%w: %w", ErrDB, err))
	}

	// Only the deleted row's own path may be removed. A caller-supplied path
	// can belong to a book that still exists.
	if stored == "" {
		s.log.DebugContext(ctx, "no book row deleted, blob left alone", "book_id", bookID, "file_path", filePath)
		return nil
	}
	if filePath != "" && filePath != stored {
		s.log.WarnContext(ctx, "caller file path differs from stored path", "book_id", bookID, "file_path", filePath, "stored_path", stored)
	}
	s.removeBlob(ctx, "delete", stored)
	s.log.InfoContext(ctx, "book deleted", "book_id", bookID, "file_path", stored)
	return nil
}

func (s *bookService) CurrentUser(ctx context.Context) *model.User {
	user, err := s.requireUser(ctx)
	if err != nil {
		return nil
	}
	return user
}

// requireUser fails closed: any provider error or nil user is ErrAuthRequired.
func (s *bookService) requireUser(ctx context.Context) (*model.User, error) {
	if s.identity == nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthRequired, errNoSession)
	}
	user, err := s.identity.CurrentUser(ctx)
	if err == nil && user == nil {
		err = errNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAuthRequired, err)
	}
	return user, nil
}

// removeBlob is a best-effort compensation. It outlives request cancellation.
func (s *bookService) removeBlob(ctx context.Context, op, key string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.metrics.orphanedBlobs.WithLabelValues(op).Inc()
		s.log.WarnContext(ctx, "blob cleanup failed, object orphaned", "op", op, "file_path", key, "error", err)
	}
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func nonNil(books []model.Book) []model.Book {
	if books == nil {
		return []model.Book{}
	}
	return books
}
