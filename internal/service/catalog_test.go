package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/internal/config"
	"bookshelf/internal/database"
	"bookshelf/internal/database/migration"
	"bookshelf/internal/logger"
	"bookshelf/internal/model"
	"bookshelf/internal/repository/sqlite"
	"bookshelf/internal/storage"
)

// memStorage is a write-once in-memory blob store.
type memStorage struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{objects: map[string][]byte{}}
}

func (m *memStorage) Put(_ context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; ok {
		return storage.ObjectInfo{}, storage.ErrObjectExists
	}
	m.objects[key] = data
	return storage.ObjectInfo{Key: key, Size: int64(len(data)), ContentType: opt.ContentType}, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStorage) PresignGet(_ context.Context, key string, expiry time.Duration, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", storage.ErrObjectNotFound
	}
	return fmt.Sprintf("mem://%s?expires=%d", key, int(expiry.Seconds())), nil
}

type staticIdentity struct{ user *model.User }

func (s staticIdentity) CurrentUser(context.Context) (*model.User, error) { return s.user, nil }

func newCatalog(t *testing.T) (*bookService, *memStorage) {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: database.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migration.EnsureMigrated(context.Background(), db, database.DriverSQLite, logger.Discard()))

	blobs := newMemStorage()
	svc := NewBookService(sqlite.NewBookSQLite(db), blobs, staticIdentity{user: sessionUser}, logger.Discard(), nil)
	return svc.(*bookService), blobs
}

func TestCatalog_UploadSearchFilter(t *testing.T) {
	svc, blobs := newCatalog(t)
	ctx := context.Background()

	book, err := svc.UploadBook(ctx, BookInput{Title: "Foo", Author: "Bar", Tags: "x, y"}, FileUpload{
		Name:        "foo.pdf",
		ContentType: "application/pdf",
		Size:        3,
		Reader:      bytes.NewReader([]byte("pdf")),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, book.Tags)
	assert.Equal(t, "user-1", book.UploadedBy)
	assert.Equal(t, []byte("pdf"), blobs.objects[book.FilePath])

	found, err := svc.SearchBooks(ctx, "foo")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, book.ID, found[0].ID)

	tagged, err := svc.GetBooksByTag(ctx, "x")
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, book.ID, tagged[0].ID)

	none, err := svc.GetBooksByTag(ctx, "z")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCatalog_DownloadAndDelete(t *testing.T) {
	svc, blobs := newCatalog(t)
	ctx := context.Background()

	book, err := svc.UploadBook(ctx, BookInput{Title: "Dune", Author: "Herbert", Tags: "sci-fi，classic"}, FileUpload{
		Name:   "dune.epub",
		Size:   4,
		Reader: bytes.NewReader([]byte("epub")),
	})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		dl, err := svc.DownloadBook(ctx, book.ID, book.FilePath, book.FileName)
		require.NoError(t, err)
		assert.Contains(t, dl.URL, "expires=3600")
	}
	svc.counting.Wait()

	books, err := svc.GetAllBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, int64(3), books[0].DownloadCount)
	assert.Equal(t, []string{"sci-fi", "classic"}, svc.GetAllTags())

	require.NoError(t, svc.DeleteBook(ctx, book.ID, ""))
	assert.Empty(t, blobs.objects)

	books, err = svc.GetAllBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books)

	_, err = svc.DownloadBook(ctx, book.ID, book.FilePath, book.FileName)
	assert.ErrorIs(t, err, ErrSign)
}

func TestCatalog_DeleteUnknownIDKeepsOtherBlob(t *testing.T) {
	svc, blobs := newCatalog(t)
	ctx := context.Background()

	keep, err := svc.UploadBook(ctx, BookInput{Title: "Keep", Author: "Me"}, FileUpload{
		Name:   "keep.pdf",
		Size:   4,
		Reader: bytes.NewReader([]byte("keep")),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, "00000000-0000-0000-0000-000000000000", keep.FilePath))
	assert.Contains(t, blobs.objects, keep.FilePath)

	books, err := svc.GetAllBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 1)

	_, err = svc.DownloadBook(ctx, keep.ID, keep.FilePath, keep.FileName)
	require.NoError(t, err)
	svc.counting.Wait()
}
